package raw

import (
	"io"

	"logspy/pipelines"

	"github.com/mgutz/ansi"
)

const highlight = "green+b"

// Pipeline writes payloads verbatim, one per line.
type Pipeline struct {
	out  io.Writer
	opts pipelines.Options
	err  error
}

func NewPipeline(out io.Writer, opts pipelines.Options) *Pipeline {
	return &Pipeline{out: out, opts: opts}
}

func (p *Pipeline) Consume(payload []byte) {
	if p.opts.Silent || p.err != nil {
		return
	}
	if p.opts.Color {
		_, p.err = io.WriteString(p.out, ansi.Color(string(payload), highlight)+"\n")
		return
	}
	if _, p.err = p.out.Write(payload); p.err == nil {
		_, p.err = p.out.Write([]byte{'\n'})
	}
}

// Close reports the first write error, if any.
func (p *Pipeline) Close() error {
	return p.err
}
