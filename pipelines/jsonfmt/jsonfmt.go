package jsonfmt

import (
	"io"

	"logspy/pipelines"
	"logspy/pipelines/parsers"
)

// Layout selects how payloads are re-serialized.
type Layout int

const (
	Compact Layout = iota
	Pretty
)

// Pipeline re-serializes parsed payloads, one document per line (compact) or
// one indented block per payload (pretty).
type Pipeline struct {
	out    io.Writer
	layout Layout
	silent bool
	err    error
}

func NewPipeline(out io.Writer, layout Layout, opts pipelines.Options) *Pipeline {
	return &Pipeline{out: out, layout: layout, silent: opts.Silent}
}

func (p *Pipeline) ConsumeDocument(doc *parsers.Document) {
	if p.silent || p.err != nil {
		return
	}
	var data []byte
	if p.layout == Pretty {
		data, p.err = doc.Pretty()
	} else {
		data, p.err = doc.Compact()
	}
	if p.err != nil {
		return
	}
	_, p.err = p.out.Write(append(data, '\n'))
}

func (p *Pipeline) Close() error {
	return p.err
}
