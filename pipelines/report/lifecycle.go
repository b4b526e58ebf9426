package report

import (
	"math"
	"strings"
	"time"
)

// JobStatus is the lifecycle state of a job. A job only ever moves forward:
// Published, Relaying, Received, Executing, then Finished or Error.
type JobStatus int

const (
	None JobStatus = iota
	Published
	Relaying
	Received
	Executing
	Finished
	Error
)

var statusNames = [...]string{"none", "published", "relaying", "received", "executing", "finished", "error"}

func (s JobStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == Finished || s == Error
}

// Advance applies next to s. Backward moves and moves out of a terminal state
// are ignored.
func (s JobStatus) Advance(next JobStatus) (JobStatus, bool) {
	if s.Terminal() || next <= s {
		return s, false
	}
	return next, true
}

// UnknownRuntime is the runtime of a job that has not finished.
const UnknownRuntime = time.Duration(math.MaxInt64)

// Message fragments, checked from the most advanced state down.
var messageClasses = []struct {
	fragment string
	status   JobStatus
}{
	{"finished in", Finished},
	{"Starting execution", Executing},
	{"received", Received},
	{"Relaying message", Relaying},
}

// Classify maps a MESSAGE text to the state it announces, or None.
func Classify(message string) JobStatus {
	for _, c := range messageClasses {
		if strings.Contains(message, c.fragment) {
			return c.status
		}
	}
	return None
}

func isErrorLevel(level string) bool {
	switch strings.ToUpper(level) {
	case "E", "ERR", "ERROR", "F", "FATAL", "CRITICAL":
		return true
	}
	return false
}

// JobInfo is one observed job occurrence.
type JobInfo struct {
	Prefix   string
	Status   JobStatus
	Job      ID
	Resource ID
	Pool     ID
	Schema   ID
	Instance ID

	Published time.Time
	Runtime   time.Duration
}

func newJobInfo(prefix string) *JobInfo {
	return &JobInfo{
		Prefix:   prefix,
		Job:      NoID,
		Resource: NoID,
		Pool:     NoID,
		Schema:   NoID,
		Instance: NoID,
		Runtime:  UnknownRuntime,
	}
}

// transition moves the job to next at time ts. The runtime is set when the
// job finishes and its publication time is known.
func (j *JobInfo) transition(next JobStatus, ts time.Time) bool {
	status, ok := j.Status.Advance(next)
	if !ok {
		return false
	}
	j.Status = status
	if status == Finished && !j.Published.IsZero() {
		j.Runtime = ts.Sub(j.Published)
	}
	return true
}
