package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/psantana5/timethis/internal/hostinfo"
	"github.com/psantana5/timethis/internal/logging"
)

// Mode says which timing construct produced a Result
type Mode string

const (
	ModeOnce Mode = "once"
	ModeLoop Mode = "loop"
)

// ModeFor returns the mode used for a given loop count. One loop is timed
// as a single run; anything else, zero included, goes through the loop timer.
func ModeFor(loops uint) Mode {
	if loops == 1 {
		return ModeOnce
	}
	return ModeLoop
}

// Result is the immutable record of one measurement. Set once, never change.
// A failed measurement carries Error and no Duration.
type Result struct {
	ID      string `json:"id" yaml:"id"`
	Label   string `json:"label" yaml:"label"`
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
	Mode    Mode   `json:"mode" yaml:"mode"`
	Loops   uint   `json:"loops" yaml:"loops"`

	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`

	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	ExitCode int    `json:"exit_code" yaml:"exit_code"`

	Host *hostinfo.Info `json:"host,omitempty" yaml:"host,omitempty"`
}

// NewResult records a completed measurement
func NewResult(label, command string, loops uint, start time.Time, elapsed time.Duration) *Result {
	return &Result{
		ID:        uuid.New().String(),
		Label:     label,
		Command:   command,
		Mode:      ModeFor(loops),
		Loops:     loops,
		StartTime: start,
		EndTime:   start.Add(elapsed),
		Duration:  elapsed,
	}
}

// NewFailure records a measurement whose work failed. No duration is kept.
// Error is never empty, even for an error with an empty message.
func NewFailure(label, command string, loops uint, start, end time.Time, err error, exitCode int) *Result {
	msg := err.Error()
	if msg == "" {
		msg = fmt.Sprintf("unnamed error (%T)", err)
	}
	return &Result{
		ID:        uuid.New().String(),
		Label:     label,
		Command:   command,
		Mode:      ModeFor(loops),
		Loops:     loops,
		StartTime: start,
		EndTime:   end,
		Error:     msg,
		ExitCode:  exitCode,
	}
}

// WithHost returns a copy of r annotated with host details
func (r *Result) WithHost(info hostinfo.Info) *Result {
	c := *r
	c.Host = &info
	return &c
}

// Failed reports whether the measured work failed
func (r *Result) Failed() bool {
	return r.Error != ""
}

// Outcome is "ok" or "failed"
func (r *Result) Outcome() string {
	if r.Failed() {
		return "failed"
	}
	return "ok"
}

// LogSummary writes a one-line, grep-able summary of the result
func (r *Result) LogSummary(logger *logging.Logger) {
	fields := logging.Fields{
		"id":    r.ID,
		"label": r.Label,
		"mode":  string(r.Mode),
		"loops": r.Loops,
	}

	if r.Failed() {
		fields["error"] = r.Error
		fields["exit_code"] = r.ExitCode
		logger.Error(fmt.Sprintf("MEASUREMENT %s | outcome=failed", r.Label), fields)
		return
	}

	fields["duration"] = r.Duration.String()
	fields["seconds"] = r.Duration.Seconds()
	logger.Info(fmt.Sprintf("MEASUREMENT %s | outcome=ok | elapsed=%s", r.Label, r.Duration), fields)
}
