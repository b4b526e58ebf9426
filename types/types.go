package types

import (
	"errors"
	"fmt"
)

var (
	ErrNoInput        = errors.New("no input given, pass one or more paths or use --stdin")
	ErrInvalidPattern = errors.New("invalid search pattern")
	ErrOutputMode     = errors.New("invalid output mode")
)

// OutputMode selects the sink a run writes to. It is chosen once per run.
type OutputMode int

const (
	OutputReport OutputMode = iota
	OutputTable
	OutputRaw
	OutputCompactJSON
	OutputPrettyJSON
)

func (m OutputMode) String() string {
	switch m {
	case OutputReport:
		return "report"
	case OutputTable:
		return "table"
	case OutputRaw:
		return "raw"
	case OutputCompactJSON:
		return "compact-json"
	case OutputPrettyJSON:
		return "pretty-json"
	default:
		return fmt.Sprintf("OutputMode(%d)", int(m))
	}
}

// OutputFlags mirrors the mutually exclusive output switches of the command line.
type OutputFlags struct {
	Report      bool
	Table       bool
	Raw         bool
	JSON        bool
	CompactJSON bool
	PrettyJSON  bool
}

// Resolve picks the output mode. Config files and environment variables can
// set several switches at once, so the first one in precedence order wins.
func (f OutputFlags) Resolve() OutputMode {
	switch {
	case f.Report:
		return OutputReport
	case f.Table:
		return OutputTable
	case f.Raw:
		return OutputRaw
	case f.JSON, f.CompactJSON:
		return OutputCompactJSON
	case f.PrettyJSON:
		return OutputPrettyJSON
	default:
		return OutputReport
	}
}

// Report summary encodings accepted by --report-format.
const (
	ReportText = "text"
	ReportJSON = "json"
	ReportYAML = "yaml"
)

// DefaultChunkSize is the read buffer handed to the line splitter.
const DefaultChunkSize = 1 << 20

// Params is the resolved configuration of one run.
type Params struct {
	Paths      []string
	Pattern    string
	OutputFile string

	Verbose      bool
	Color        bool
	ExactMatch   bool
	InverseMatch bool
	IgnoreCase   bool
	Stdin        bool
	Silent       bool
	Follow       bool
	Timer        bool

	Output       OutputMode
	ReportFormat string
	ChunkSize    int
	MetricsFile  string
}

// Validate reports configuration errors that must stop the run before any
// input is read.
func (p *Params) Validate() error {
	if len(p.Paths) == 0 && !p.Stdin {
		return ErrNoInput
	}
	switch p.ReportFormat {
	case "", ReportText, ReportJSON, ReportYAML:
	default:
		return fmt.Errorf("%w: unknown report format %q", ErrOutputMode, p.ReportFormat)
	}
	if p.ChunkSize < 0 {
		return fmt.Errorf("chunk size cannot be negative: %d", p.ChunkSize)
	}
	return nil
}

// WithDefaults fills in zero values.
func (p Params) WithDefaults() Params {
	if p.ChunkSize == 0 {
		p.ChunkSize = DefaultChunkSize
	}
	if p.ReportFormat == "" {
		p.ReportFormat = ReportText
	}
	return p
}
