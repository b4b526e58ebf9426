package parsers

import (
	"errors"
	"math"
	"strconv"
	"time"
)

// spdlog writes "2006-01-02 15:04:05.000"; the rest show up in JSON headers.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

var timestampKeys = []string{"TIMESTAMP", "TIME", "TS"}

var ErrTimestamp = errors.New("Parse error")

// ParseTimestamp accepts the layouts above or a Unix epoch. Epoch values above
// 1e12 are taken as milliseconds, smaller ones as seconds.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrTimestamp
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		if n > 1e12 {
			return time.UnixMilli(int64(n)).UTC(), nil
		}
		sec := int64(n)
		return time.Unix(sec, int64((n-float64(sec))*1e9)).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, ErrTimestamp
}

// Timestamp returns the first parseable timestamp field of the document.
func (d *Document) Timestamp() (time.Time, bool) {
	for _, key := range timestampKeys {
		s, ok := d.Text(key)
		if !ok {
			continue
		}
		if ts, err := ParseTimestamp(s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
