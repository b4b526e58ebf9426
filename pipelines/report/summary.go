package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Summary is the end-of-run view of the report. Entity lists are sorted.
type Summary struct {
	Resources []string       `json:"resources" yaml:"resources"`
	Jobs      []string       `json:"jobs" yaml:"jobs"`
	Pools     []string       `json:"pools" yaml:"pools"`
	Schemas   []string       `json:"schemas" yaml:"schemas"`
	Instances []string       `json:"instances" yaml:"instances"`
	Records   int            `json:"job_records" yaml:"job_records"`
	Status    map[string]int `json:"status,omitempty" yaml:"status,omitempty"`
	Finished  []FinishedJob  `json:"finished,omitempty" yaml:"finished,omitempty"`
}

// FinishedJob is a job whose runtime is known.
type FinishedJob struct {
	Prefix  string  `json:"prefix" yaml:"prefix"`
	Job     string  `json:"job,omitempty" yaml:"job,omitempty"`
	Seconds float64 `json:"runtime_seconds" yaml:"runtime_seconds"`
}

func (p *Pipeline) Summary() Summary {
	s := Summary{
		Resources: p.Resources.Sorted(),
		Jobs:      p.Jobs.Sorted(),
		Pools:     p.Pools.Sorted(),
		Schemas:   p.Schemas.Sorted(),
		Instances: p.Instances.Sorted(),
		Records:   len(p.infos),
	}
	for _, info := range p.infos {
		if s.Status == nil {
			s.Status = make(map[string]int)
		}
		s.Status[info.Status.String()]++
		if info.Runtime == UnknownRuntime {
			continue
		}
		job, _ := p.Jobs.Name(info.Job)
		s.Finished = append(s.Finished, FinishedJob{
			Prefix:  info.Prefix,
			Job:     job,
			Seconds: info.Runtime.Seconds(),
		})
	}
	return s
}

func (s Summary) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(s)
}

func (s Summary) writeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// writeText prints, per table, the title and its cardinality; verbose mode
// lists every member beneath the count.
func (p *Pipeline) writeText(s Summary) error {
	title, item := plain, plain
	if p.opts.Color {
		r := lipgloss.NewRenderer(p.out)
		title = r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")).Render
		item = r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).Render
	}

	tables := []struct {
		title string
		names []string
	}{
		{p.Resources.Title, s.Resources},
		{p.Jobs.Title, s.Jobs},
		{p.Pools.Title, s.Pools},
		{p.Schemas.Title, s.Schemas},
		{p.Instances.Title, s.Instances},
	}
	for _, t := range tables {
		if _, err := fmt.Fprintf(p.out, "%s: %d\n", title(t.title), len(t.names)); err != nil {
			return err
		}
		if !p.opts.Verbose {
			continue
		}
		for _, name := range t.names {
			if _, err := fmt.Fprintf(p.out, "    - %s\n", item(name)); err != nil {
				return err
			}
		}
	}

	if s.Records == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(p.out, "%s: %d\n", title("The number of job records"), s.Records); err != nil {
		return err
	}
	if !p.opts.Verbose {
		return nil
	}
	for status := Published; status <= Error; status++ {
		n := s.Status[status.String()]
		if n == 0 {
			continue
		}
		if _, err := fmt.Fprintf(p.out, "    - %s: %d\n", item(status.String()), n); err != nil {
			return err
		}
	}
	for _, f := range s.Finished {
		if _, err := fmt.Fprintf(p.out, "    - %s finished in %.3fs\n", item(f.Prefix), f.Seconds); err != nil {
			return err
		}
	}
	return nil
}

func plain(strs ...string) string {
	return strings.Join(strs, " ")
}
