package service

import (
	"context"
	"errors"
	"io"

	"logspy/matchers"
	"logspy/metrics"
	"logspy/pipelines"
	"logspy/pipelines/store"
	"logspy/stream"
	"logspy/types"

	lf "github.com/sirupsen/logrus"
)

// Run reads every input of the run in order and feeds it through h. Inputs
// that cannot be opened or read are logged and skipped. With Follow set, plain
// files stay open afterwards and appended bytes are processed until ctx is
// done.
func Run(ctx context.Context, p types.Params, h *stream.Handler) error {
	inputs := Expand(p.Paths, p.Stdin, h.Log)
	if len(inputs) == 0 {
		return types.ErrNoInput
	}
	chunkSize := p.ChunkSize
	if chunkSize <= 0 {
		chunkSize = types.DefaultChunkSize
	}
	buf := make([]byte, chunkSize)

	var tails []*tail
	for _, name := range inputs {
		if ctx.Err() != nil {
			break
		}
		log := h.Log.WithField("source", name)
		src, err := openSource(name, chunkSize)
		if err != nil {
			h.Metrics.InputErrors.Inc()
			log.Error("Cannot open input: ", err)
			continue
		}

		s := h.Open(name)
		err = drain(ctx, src, s, buf)
		if err != nil && !errors.Is(err, context.Canceled) {
			h.Metrics.InputErrors.Inc()
			log.Error("Cannot read input: ", err)
		} else {
			h.Metrics.InputsProcessed.Inc()
		}

		if p.Follow && err == nil && src.followable() {
			tails = append(tails, &tail{name: name, src: src, stream: s})
			continue
		}
		s.Close()
		src.Close()
		log.WithFields(lf.Fields{
			"lines": s.Lines(),
			"bytes": s.Offset(),
		}).Debug("Input done")
	}

	if len(tails) == 0 {
		return nil
	}
	return follow(ctx, tails, buf, h.Log)
}

// drain feeds r to s chunk by chunk until EOF.
func drain(ctx context.Context, r io.Reader, s *stream.Stream, buf []byte) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			s.Process(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Extract runs the line pipeline over r and returns the payloads of the
// matched lines. A nil matcher accepts every line.
func Extract(ctx context.Context, r io.Reader, m matchers.Matcher, chunkSize int, log *lf.Entry) ([]string, error) {
	if m == nil {
		m = matchers.All{}
	}
	if chunkSize <= 0 {
		chunkSize = types.DefaultChunkSize
	}
	if log == nil {
		log = lf.NewEntry(lf.StandardLogger())
	}

	r, _, err := decode(r, chunkSize)
	if err != nil {
		return nil, err
	}
	sink := store.NewPipeline(pipelines.Options{})
	h := &stream.Handler{Matcher: m, Sink: sink, Log: log, Metrics: metrics.New()}
	s := h.Open("reader")
	err = drain(ctx, r, s, make([]byte, chunkSize))
	s.Close()
	return sink.Results(), err
}
