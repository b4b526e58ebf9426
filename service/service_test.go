package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logspy/matchers"
	"logspy/metrics"
	"logspy/stream"
	"logspy/types"
)

// lockedSink collects payloads and may be read while a follow run is active.
type lockedSink struct {
	mu       sync.Mutex
	payloads []string
}

func (s *lockedSink) Consume(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, string(payload))
}

func (s *lockedSink) Close() error { return nil }

func (s *lockedSink) Payloads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.payloads...)
}

func newHandler() (*stream.Handler, *lockedSink, *test.Hook) {
	logger, hook := test.NewNullLogger()
	sink := &lockedSink{}
	return &stream.Handler{
		Matcher: matchers.All{},
		Sink:    sink,
		Log:     logrus.NewEntry(logger),
		Metrics: metrics.New(),
	}, sink, hook
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func gzipped(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRunReadsFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.log", "1 {\"a\":1}\n2 {\"a\":2}")
	b := writeFile(t, dir, "b.log", "3 {\"b\":3}\n")

	h, sink, hook := newHandler()
	err := Run(context.Background(), types.Params{Paths: []string{a, b}, ChunkSize: 4}, h)
	require.NoError(t, err)

	// the unterminated last line of a.log is flushed before b.log starts
	assert.Equal(t, []string{`{"a":1}`, `{"a":2}`, `{"b":3}`}, sink.Payloads())
	assert.Empty(t, hook.Entries)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.Metrics.InputsProcessed))
}

func TestRunSkipsMissingInput(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.log", "{\"a\":1}\n")

	h, sink, hook := newHandler()
	err := Run(context.Background(), types.Params{Paths: []string{filepath.Join(dir, "missing.log"), a}}, h)
	require.NoError(t, err)

	assert.Equal(t, []string{`{"a":1}`}, sink.Payloads())
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Metrics.InputErrors))
}

func TestRunGzipInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log.gz")
	require.NoError(t, os.WriteFile(path, gzipped(t, "x {\"z\":1}\ny {\"z\":2}\n"), 0o644))

	h, sink, _ := newHandler()
	require.NoError(t, Run(context.Background(), types.Params{Paths: []string{path}}, h))
	assert.Equal(t, []string{`{"z":1}`, `{"z":2}`}, sink.Payloads())
}

func TestRunGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.log", "{\"n\":1}\n")
	writeFile(t, dir, "nested/b.log", "{\"n\":2}\n")
	writeFile(t, dir, "nested/c.txt", "{\"n\":3}\n")

	h, sink, _ := newHandler()
	err := Run(context.Background(), types.Params{Paths: []string{filepath.Join(dir, "**", "*.log")}}, h)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{`{"n":1}`, `{"n":2}`}, sink.Payloads())
}

func TestRunNothingMatches(t *testing.T) {
	h, _, hook := newHandler()
	err := Run(context.Background(), types.Params{Paths: []string{filepath.Join(t.TempDir(), "*.log")}}, h)
	assert.ErrorIs(t, err, types.ErrNoInput)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRunStdin(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "stdin", "{\"in\":true}\n")
	a := writeFile(t, dir, "a.log", "{\"a\":1}\n")

	f, err := os.Open(in)
	require.NoError(t, err)
	defer f.Close()
	saved := stdin
	stdin = f
	defer func() { stdin = saved }()

	h, sink, _ := newHandler()
	err = Run(context.Background(), types.Params{Paths: []string{a, Stdin}, Stdin: true}, h)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"in":true}`, `{"a":1}`}, sink.Payloads())
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.log", "")
	b := writeFile(t, dir, "b.log", "")
	literal := writeFile(t, dir, "[x].log", "")
	log := logrus.NewEntry(logrus.New())

	assert.Equal(t, []string{Stdin, a, b}, Expand([]string{a, Stdin, b}, true, log))
	assert.Equal(t, []string{a, Stdin}, Expand([]string{a, Stdin, Stdin}, false, log))
	assert.Equal(t, []string{a, b}, Expand([]string{filepath.Join(dir, "?.log")}, false, log))
	assert.Equal(t, []string{literal}, Expand([]string{literal}, false, log))
	assert.Empty(t, Expand(nil, false, log))
}

func TestExtract(t *testing.T) {
	m, err := matchers.NewRegex(`INFO`, false)
	require.NoError(t, err)

	input := "INFO {\"a\":1}\nDEBUG {\"b\":2}\nINFO {\"c\":3}"
	got, err := Extract(context.Background(), strings.NewReader(input), m, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, `{"c":3}`}, got)

	got, err = Extract(context.Background(), bytes.NewReader(gzipped(t, input)), nil, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}, got)
}

func TestExtractCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extract(ctx, strings.NewReader("{\"a\":1}\n"), nil, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunFollow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.log", "{\"n\":1}\n{\"n\":")

	h, sink, _ := newHandler()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, types.Params{Paths: []string{path}, Follow: true}, h)
	}()

	require.Eventually(t, func() bool {
		return len(sink.Payloads()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("2}\n{\"n\":3}")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return len(sink.Payloads()) == 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not stop")
	}

	// the pending remainder is flushed when following stops
	assert.Equal(t, []string{`{"n":1}`, `{"n":2}`, `{"n":3}`}, sink.Payloads())
}
