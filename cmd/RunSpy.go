package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logspy/matchers"
	"logspy/metrics"
	"logspy/pipelines"
	"logspy/pipelines/jsonfmt"
	"logspy/pipelines/raw"
	"logspy/pipelines/report"
	"logspy/pipelines/table"
	"logspy/service"
	"logspy/stream"
	"logspy/types"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func RunSpy(cmd *cobra.Command, args []string) error {
	start := time.Now()
	params, err := loadParams(args)
	if err != nil {
		return err
	}

	runLog := log.WithField("run", uuid.NewString())
	if params.Verbose {
		runLog.WithFields(log.Fields{
			"paths":         params.Paths,
			"pattern":       params.Pattern,
			"exact_match":   params.ExactMatch,
			"inverse_match": params.InverseMatch,
			"ignore_case":   params.IgnoreCase,
			"stdin":         params.Stdin,
			"output":        params.Output.String(),
			"output_file":   params.OutputFile,
			"report_format": params.ReportFormat,
			"silent":        params.Silent,
			"color":         params.Color,
			"follow":        params.Follow,
			"chunk_size":    params.ChunkSize,
		}).Info("Running with parameters")
	}
	if params.ExactMatch && params.InverseMatch {
		runLog.Warn("Both --exact-match and --inverse-match given, using exact match")
	}

	matcher, err := matchers.New(params)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(params.OutputFile)
	if err != nil {
		return err
	}
	defer closeOut()
	params.Color = params.Color && isTerminal(out)

	m := metrics.New()
	sink := newSink(params, out, runLog, m)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := service.Run(ctx, params, &stream.Handler{
		Matcher: matcher,
		Sink:    sink,
		Log:     runLog,
		Metrics: m,
	})
	if errors.Is(runErr, types.ErrNoInput) {
		return runErr
	}
	if err := sink.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("cannot write output: %w", err)
	}

	if params.MetricsFile != "" {
		if err := m.WriteFile(params.MetricsFile); err != nil {
			runLog.WithField("file", params.MetricsFile).Error("Cannot write metrics: ", err)
		}
	}
	if params.Timer {
		runLog.WithField("elapsed", time.Since(start).String()).Info("Run finished")
	}
	return runErr
}

// loadParams resolves the run parameters from viper and the positional
// arguments.
func loadParams(args []string) (types.Params, error) {
	pattern := viper.GetString("pattern")
	if pattern == "" {
		pattern = viper.GetString("regex")
	}
	if viper.GetBool("positional-pattern") && pattern == "" && len(args) > 0 {
		pattern, args = args[0], args[1:]
	}

	p := types.Params{
		Paths:        args,
		Pattern:      pattern,
		OutputFile:   viper.GetString("output"),
		Verbose:      viper.GetBool("verbose"),
		Color:        viper.GetBool("color"),
		ExactMatch:   viper.GetBool("exact-match"),
		InverseMatch: viper.GetBool("inverse-match"),
		IgnoreCase:   viper.GetBool("ignore-case"),
		Stdin:        viper.GetBool("stdin"),
		Silent:       viper.GetBool("silent"),
		Follow:       viper.GetBool("follow"),
		Timer:        viper.GetBool("timer"),
		Output: types.OutputFlags{
			Report:      viper.GetBool("report"),
			Table:       viper.GetBool("table"),
			Raw:         viper.GetBool("raw"),
			JSON:        viper.GetBool("json"),
			CompactJSON: viper.GetBool("compact-json"),
			PrettyJSON:  viper.GetBool("pretty-json"),
		}.Resolve(),
		ReportFormat: viper.GetString("report-format"),
		ChunkSize:    viper.GetInt("chunk-size"),
		MetricsFile:  viper.GetString("metrics-file"),
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p.WithDefaults(), nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open output file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.WithField("file", path).Error("Cannot close output file: ", err)
		}
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newSink builds the sink of the selected output mode. Every structured sink
// sits behind the shared parse step.
func newSink(p types.Params, out io.Writer, l *log.Entry, m *metrics.Metrics) pipelines.Sink {
	opts := pipelines.Options{Silent: p.Silent, Color: p.Color, Verbose: p.Verbose}
	switch p.Output {
	case types.OutputRaw:
		return raw.NewPipeline(out, opts)
	case types.OutputTable:
		return pipelines.Parsed(table.NewPipeline(out, opts), l, m)
	case types.OutputCompactJSON:
		return pipelines.Parsed(jsonfmt.NewPipeline(out, jsonfmt.Compact, opts), l, m)
	case types.OutputPrettyJSON:
		return pipelines.Parsed(jsonfmt.NewPipeline(out, jsonfmt.Pretty, opts), l, m)
	default:
		return pipelines.Parsed(report.NewPipeline(out, opts, p.ReportFormat), l, m)
	}
}
