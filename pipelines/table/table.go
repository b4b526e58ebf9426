package table

import (
	"encoding/csv"
	"io"

	"logspy/pipelines"
	"logspy/pipelines/parsers"
)

// Header is the column layout. Entity columns come from the REQUEST shape,
// RESOURCENAME lives at the top level of the payload.
var Header = []string{"prefix", "level", "timestamp", "resource", "job", "pool", "schema", "instance", "message"}

// Pipeline writes one CSV row per parsed payload. Fields a payload does not
// carry are left empty.
type Pipeline struct {
	w       *csv.Writer
	silent  bool
	started bool
}

func NewPipeline(out io.Writer, opts pipelines.Options) *Pipeline {
	return &Pipeline{w: csv.NewWriter(out), silent: opts.Silent}
}

func (p *Pipeline) ConsumeDocument(doc *parsers.Document) {
	if p.silent {
		return
	}
	if !p.started {
		p.w.Write(Header)
		p.started = true
	}
	p.w.Write(Row(doc))
}

// Row decomposes a payload into the Header columns.
func Row(doc *parsers.Document) []string {
	text := func(d *parsers.Document, key string) string {
		if d == nil {
			return ""
		}
		s, _ := d.Text(key)
		return s
	}
	req, _ := doc.Object("REQUEST")
	return []string{
		text(doc, "PREFIX"),
		text(doc, "LEVEL"),
		timestamp(doc),
		text(doc, "RESOURCENAME"),
		text(req, "JOB"),
		text(req, "POOL"),
		text(req, "SCHEMA"),
		text(req, "INSTANCE"),
		text(doc, "MESSAGE"),
	}
}

func timestamp(doc *parsers.Document) string {
	for _, key := range []string{"TIMESTAMP", "TIME", "TS"} {
		if s, ok := doc.Text(key); ok {
			return s
		}
	}
	return ""
}

// Close flushes buffered rows and reports the first write error.
func (p *Pipeline) Close() error {
	p.w.Flush()
	return p.w.Error()
}
