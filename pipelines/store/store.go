package store

import "logspy/pipelines"

// Pipeline keeps an owned copy of every payload, in arrival order.
type Pipeline struct {
	silent  bool
	results []string
}

func NewPipeline(opts pipelines.Options) *Pipeline {
	return &Pipeline{silent: opts.Silent}
}

func (p *Pipeline) Consume(payload []byte) {
	if !p.silent {
		p.results = append(p.results, string(payload))
	}
}

func (p *Pipeline) Close() error {
	return nil
}

func (p *Pipeline) Results() []string {
	return p.results
}
