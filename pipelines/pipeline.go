package pipelines

import (
	"logspy/metrics"
	"logspy/pipelines/parsers"

	lf "github.com/sirupsen/logrus"
)

// Sink consumes the payloads extracted from matched lines. The payload is
// borrowed and only valid for the duration of the call.
//
// Close finalizes the sink (flushes, prints the report) and is called once at
// the end of the run.
type Sink interface {
	Consume(payload []byte)
	Close() error
}

// DocumentSink is a sink that works on parsed payloads.
type DocumentSink interface {
	ConsumeDocument(doc *parsers.Document)
	Close() error
}

// Parsed wraps a DocumentSink with the shared parse step. Payloads that fail
// to parse are reported and dropped; the run carries on with the next line.
func Parsed(s DocumentSink, log *lf.Entry, m *metrics.Metrics) Sink {
	return &parsedSink{next: s, log: log, metrics: m}
}

type parsedSink struct {
	next    DocumentSink
	log     *lf.Entry
	metrics *metrics.Metrics
}

func (p *parsedSink) Consume(payload []byte) {
	if len(payload) == 0 {
		return
	}
	doc, err := parsers.Parse(payload)
	if err != nil {
		p.metrics.ParseFailures.Inc()
		p.log.WithField("payload", string(payload)).Warn("Cannot parse given string: ", err)
		return
	}
	p.next.ConsumeDocument(doc)
}

func (p *parsedSink) Close() error {
	return p.next.Close()
}

// Options are the run-wide switches a sink may honour.
type Options struct {
	Silent  bool
	Color   bool
	Verbose bool
}
