package parsers

import (
	"bytes"
	"encoding/json"
	"errors"
)

const openCurlyBrace = '{'

var ErrNotObject = errors.New("payload is not a JSON object")

// Locate returns the structured payload of a log line: everything from the
// first '{' to the end of the line, line terminator excluded. The closing
// brace is not searched for; the JSON parser rejects malformed payloads.
func Locate(line []byte) ([]byte, bool) {
	i := bytes.IndexByte(line, openCurlyBrace)
	if i < 0 {
		return nil, false
	}
	payload := line[i:]
	payload = bytes.TrimSuffix(payload, []byte{'\n'})
	payload = bytes.TrimSuffix(payload, []byte{'\r'})
	return payload, true
}

// Document is a parsed payload. It borrows the raw bytes it was parsed from,
// so it must not outlive the line it came from.
type Document struct {
	raw    []byte
	fields map[string]json.RawMessage
}

func Parse(raw []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, ErrNotObject
	}
	return &Document{raw: raw, fields: fields}, nil
}

// Raw returns the payload exactly as it appeared in the log line.
func (d *Document) Raw() []byte {
	return d.raw
}

func (d *Document) Has(key string) bool {
	_, ok := d.fields[key]
	return ok
}

// Text returns a scalar field as a string. Strings are unquoted, numbers and
// booleans keep their JSON spelling. Null, objects and arrays report false.
func (d *Document) Text(key string) (string, bool) {
	v, ok := d.fields[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[', 'n':
		return "", false
	default:
		return string(v), true
	}
}

// Object returns a nested object field.
func (d *Document) Object(key string) (*Document, bool) {
	v, ok := d.fields[key]
	if !ok || len(v) == 0 || v[0] != openCurlyBrace {
		return nil, false
	}
	doc, err := Parse(v)
	if err != nil {
		return nil, false
	}
	return doc, true
}

// Compact re-serializes the payload without insignificant whitespace. Key
// order is preserved.
func (d *Document) Compact() ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, d.raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Pretty re-serializes the payload with four space indentation.
func (d *Document) Pretty() ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, d.raw, "", "    "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
