package stream

import (
	"logspy/matchers"
	"logspy/metrics"
	"logspy/pipelines"
	"logspy/pipelines/parsers"

	lf "github.com/sirupsen/logrus"
)

// Handler carries what every input of a run shares: the matcher, the sink
// and the run's logger and counters.
type Handler struct {
	Matcher matchers.Matcher
	Sink    pipelines.Sink
	Log     *lf.Entry
	Metrics *metrics.Metrics
}

// Open starts a stream for one input. Each input gets its own Stream so a
// partial line is never joined with the next input's first line.
func (h *Handler) Open(source string) *Stream {
	s := &Stream{
		h:   h,
		log: h.Log.WithField("source", source),
	}
	s.splitter = NewSplitter(s.processLine)
	return s
}

// Stream feeds the chunks of one input through split, match, locate and sink.
type Stream struct {
	h        *Handler
	log      *lf.Entry
	splitter *Splitter
	lines    uint64
	pos      uint64
}

// Process consumes the next chunk of the input.
func (s *Stream) Process(chunk []byte) {
	s.h.Metrics.BytesRead.Add(float64(len(chunk)))
	s.splitter.Feed(chunk)
	s.pos += uint64(len(chunk))
}

// Close flushes the last, unterminated line of the input.
func (s *Stream) Close() {
	s.splitter.Flush()
}

// Lines returns the number of lines seen so far.
func (s *Stream) Lines() uint64 {
	return s.lines
}

// Offset returns the number of bytes consumed so far.
func (s *Stream) Offset() uint64 {
	return s.pos
}

func (s *Stream) processLine(line []byte) {
	s.lines++
	s.h.Metrics.LinesScanned.Inc()
	if len(line) == 0 || !s.h.Matcher.Match(line) {
		return
	}
	s.h.Metrics.LinesMatched.Inc()

	payload, ok := parsers.Locate(line)
	if !ok {
		s.h.Metrics.MalformedLines.Inc()
		s.log.WithFields(lf.Fields{
			"line": s.lines,
			"len":  len(line),
		}).Warn("Invalid log message: ", string(line))
		return
	}
	s.h.Metrics.Payloads.Inc()
	s.h.Sink.Consume(payload)
}
