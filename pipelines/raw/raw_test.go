package raw

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"logspy/pipelines"
)

func TestRaw(t *testing.T) {
	var out bytes.Buffer
	p := NewPipeline(&out, pipelines.Options{})

	p.Consume([]byte(`{"a":1}`))
	p.Consume([]byte(`{"b":2} trailing`))

	assert.NoError(t, p.Close())
	assert.Equal(t, "{\"a\":1}\n{\"b\":2} trailing\n", out.String())
}

func TestRawSilent(t *testing.T) {
	var out bytes.Buffer
	p := NewPipeline(&out, pipelines.Options{Silent: true})

	p.Consume([]byte(`{"a":1}`))

	assert.NoError(t, p.Close())
	assert.Empty(t, out.String())
}

func TestRawColor(t *testing.T) {
	var out bytes.Buffer
	p := NewPipeline(&out, pipelines.Options{Color: true})

	p.Consume([]byte(`{"a":1}`))

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "\033["), "expected an escape sequence, got %q", s)
	assert.Contains(t, s, `{"a":1}`)
	assert.True(t, strings.HasSuffix(s, "\033[0m\n"), "expected a reset, got %q", s)
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, errors.New("broken pipe")
}

func TestRawWriteErrorIsSticky(t *testing.T) {
	w := &failingWriter{}
	p := NewPipeline(w, pipelines.Options{})

	p.Consume([]byte(`{}`))
	p.Consume([]byte(`{}`))

	assert.EqualError(t, p.Close(), "broken pipe")
	assert.Equal(t, 1, w.calls)
}
