package stream

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logspy/matchers"
	"logspy/metrics"
	"logspy/pipelines"
	"logspy/pipelines/store"
)

func newHandler(m matchers.Matcher) (*Handler, *store.Pipeline, *test.Hook) {
	logger, hook := test.NewNullLogger()
	sink := store.NewPipeline(pipelines.Options{})
	return &Handler{
		Matcher: m,
		Sink:    sink,
		Log:     logrus.NewEntry(logger),
		Metrics: metrics.New(),
	}, sink, hook
}

func TestStreamExtractsPayloads(t *testing.T) {
	h, sink, hook := newHandler(matchers.All{})

	s := h.Open("test.log")
	s.Process([]byte("2024 INFO {\"a\":1}\n2024 INFO {\"b\""))
	s.Process([]byte(":2}\n2024 INFO {\"c\":3}"))
	s.Close()

	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}, sink.Results())
	assert.Empty(t, hook.Entries)
	assert.Equal(t, uint64(3), s.Lines())
	assert.Equal(t, uint64(53), s.Offset())
	assert.Equal(t, 53.0, testutil.ToFloat64(h.Metrics.BytesRead))
	assert.Equal(t, 3.0, testutil.ToFloat64(h.Metrics.Payloads))
}

func TestStreamMalformedLine(t *testing.T) {
	h, sink, hook := newHandler(matchers.All{})

	s := h.Open("test.log")
	s.Process([]byte("no payload here\n2024 INFO {\"a\":1}\n"))
	s.Close()

	assert.Equal(t, []string{`{"a":1}`}, sink.Results())
	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "test.log", entry.Data["source"])
	assert.Equal(t, uint64(1), entry.Data["line"])
	assert.Equal(t, 16, entry.Data["len"])
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Metrics.MalformedLines))
}

func TestStreamMatcherFilters(t *testing.T) {
	h, sink, hook := newHandler(matchers.NewExact("ERROR", false))

	s := h.Open("test.log")
	s.Process([]byte("INFO {\"a\":1}\nERROR {\"b\":2}\nERROR without payload\nDEBUG nothing\n"))
	s.Close()

	assert.Equal(t, []string{`{"b":2}`}, sink.Results())
	assert.Len(t, hook.Entries, 1)
	assert.Equal(t, 4.0, testutil.ToFloat64(h.Metrics.LinesScanned))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.Metrics.LinesMatched))
}

func TestStreamInverseMatch(t *testing.T) {
	m, err := matchers.NewInverseRegex(`DEBUG|TRACE`, true)
	require.NoError(t, err)
	h, sink, _ := newHandler(m)

	s := h.Open("test.log")
	s.Process([]byte("debug {\"a\":1}\nINFO {\"b\":2}\ntrace {\"c\":3}\n"))
	s.Close()

	assert.Equal(t, []string{`{"b":2}`}, sink.Results())
}

func TestStreamsDoNotShareRemainders(t *testing.T) {
	h, sink, _ := newHandler(matchers.All{})

	a := h.Open("a.log")
	a.Process([]byte("x {\"a\":1}"))
	a.Close()

	b := h.Open("b.log")
	b.Process([]byte("y {\"b\":2}\n"))
	b.Close()

	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, sink.Results())
}
