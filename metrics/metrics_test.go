package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersStartAtZero(t *testing.T) {
	m := New()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LinesScanned))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Payloads))

	m.LinesScanned.Inc()
	m.BytesRead.Add(42)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinesScanned))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.BytesRead))
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.LinesMatched.Add(3)

	path := filepath.Join(t.TempDir(), "logspy.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logspy_lines_matched_total 3")
	assert.Contains(t, string(data), "# HELP logspy_bytes_read_total")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.InputsProcessed.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.InputsProcessed))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.InputsProcessed))
}
