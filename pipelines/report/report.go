package report

import (
	"fmt"
	"io"
	"time"

	"logspy/pipelines"
	"logspy/pipelines/parsers"
	"logspy/types"
)

// Pipeline builds the end-of-run report: deduplicated entity tables plus the
// lifecycle of every job, keyed by PREFIX (the message id). State accumulates
// across every input of the run and is summarized once, on Close.
type Pipeline struct {
	out    io.Writer
	opts   pipelines.Options
	format string
	now    func() time.Time

	Resources *EntityTable
	Jobs      *EntityTable
	Pools     *EntityTable
	Schemas   *EntityTable
	Instances *EntityTable

	infos   []*JobInfo
	current map[string]*JobInfo

	closed bool
	err    error
}

func NewPipeline(out io.Writer, opts pipelines.Options, format string) *Pipeline {
	if format == "" {
		format = types.ReportText
	}
	return &Pipeline{
		out:       out,
		opts:      opts,
		format:    format,
		now:       time.Now,
		Resources: NewEntityTable("The number of resources"),
		Jobs:      NewEntityTable("The number of jobs"),
		Pools:     NewEntityTable("The number of pools"),
		Schemas:   NewEntityTable("The number of schemas"),
		Instances: NewEntityTable("The number of instances"),
		current:   make(map[string]*JobInfo),
	}
}

// JobInfos returns every job record in the order it was created.
func (p *Pipeline) JobInfos() []*JobInfo {
	return p.infos
}

// Job returns the current record of a message id.
func (p *Pipeline) Job(prefix string) (*JobInfo, bool) {
	info, ok := p.current[prefix]
	return info, ok
}

func (p *Pipeline) ConsumeDocument(doc *parsers.Document) {
	prefix, ok := doc.Text("PREFIX")
	if !ok {
		p.print("Invalid JSON structure: ", doc)
		return
	}
	level, ok := doc.Text("LEVEL")
	if !ok {
		p.print("Invalid JSON structure: ", doc)
		return
	}
	if prefix == "" {
		// Nothing to correlate without a message id.
		return
	}

	ts, ok := doc.Timestamp()
	if !ok {
		ts = p.now()
	}

	switch {
	case doc.Has("MESSAGE"):
		p.message(prefix, level, doc, ts)
	case doc.Has("REQUEST"):
		p.request(prefix, doc, ts)
	case doc.Has("RAW_ERROR"):
		if info, ok := p.current[prefix]; ok {
			info.transition(Error, ts)
		}
		p.print("", doc)
	default:
		p.print("Unrecognized JSON structure: ", doc)
	}
}

func (p *Pipeline) message(prefix, level string, doc *parsers.Document, ts time.Time) {
	msg, _ := doc.Text("MESSAGE")
	next := Classify(msg)
	if next == None && isErrorLevel(level) {
		next = Error
	}
	if next == None {
		return
	}
	info, ok := p.current[prefix]
	if !ok {
		info = p.track(prefix)
	}
	info.transition(next, ts)
}

func (p *Pipeline) request(prefix string, doc *parsers.Document, ts time.Time) {
	info := p.track(prefix)
	info.Status = Published
	info.Published = ts

	if name, ok := doc.Text("RESOURCENAME"); ok {
		info.Resource = p.Resources.Intern(name)
	}

	req, ok := doc.Object("REQUEST")
	if !ok {
		return
	}
	if name, ok := req.Text("JOB"); ok {
		info.Job = p.Jobs.Intern(name)
	}
	if name, ok := req.Text("SCHEMA"); ok {
		info.Schema = p.Schemas.Intern(name)
	}
	if name, ok := req.Text("POOL"); ok {
		info.Pool = p.Pools.Intern(name)
	}
	if name, ok := req.Text("INSTANCE"); ok {
		info.Instance = p.Instances.Intern(name)
	}
}

// track starts a fresh record for prefix and makes it the current one.
func (p *Pipeline) track(prefix string) *JobInfo {
	info := newJobInfo(prefix)
	p.infos = append(p.infos, info)
	p.current[prefix] = info
	return info
}

// print writes a payload that is not aggregated, so operators can spot
// schema drift.
func (p *Pipeline) print(label string, doc *parsers.Document) {
	if p.opts.Silent || p.err != nil {
		return
	}
	pretty, err := doc.Pretty()
	if err != nil {
		p.err = err
		return
	}
	_, p.err = fmt.Fprintf(p.out, "%s%s\n", label, pretty)
}

// Close prints the summary. Later calls are no-ops.
func (p *Pipeline) Close() error {
	if p.closed {
		return p.err
	}
	p.closed = true

	summary := p.Summary()
	var err error
	switch p.format {
	case types.ReportJSON:
		err = summary.writeJSON(p.out)
	case types.ReportYAML:
		err = summary.writeYAML(p.out)
	default:
		err = p.writeText(summary)
	}
	if p.err == nil {
		p.err = err
	}
	return p.err
}
