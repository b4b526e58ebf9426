package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "logspy"

// Metrics holds the counters of a single run. Each run owns its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	BytesRead       prometheus.Counter
	LinesScanned    prometheus.Counter
	LinesMatched    prometheus.Counter
	MalformedLines  prometheus.Counter
	ParseFailures   prometheus.Counter
	Payloads        prometheus.Counter
	InputsProcessed prometheus.Counter
	InputErrors     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Bytes handed to the line splitter.",
		}),
		LinesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_scanned_total",
			Help:      "Lines emitted by the line splitter.",
		}),
		LinesMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_matched_total",
			Help:      "Lines accepted by the matcher.",
		}),
		MalformedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_lines_total",
			Help:      "Matched lines without a structured payload.",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_parse_failures_total",
			Help:      "Payloads rejected by the JSON parser.",
		}),
		Payloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_total",
			Help:      "Payloads handed to the output sink.",
		}),
		InputsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_processed_total",
			Help:      "Files or streams read to completion.",
		}),
		InputErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_errors_total",
			Help:      "Inputs that could not be opened or read.",
		}),
	}
	m.Registry.MustRegister(
		m.BytesRead,
		m.LinesScanned,
		m.LinesMatched,
		m.MalformedLines,
		m.ParseFailures,
		m.Payloads,
		m.InputsProcessed,
		m.InputErrors,
	)
	return m
}

// WriteFile dumps the registry in the Prometheus text format, suitable for the
// node exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
