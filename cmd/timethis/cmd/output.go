package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/timethis/internal/hostinfo"
	"github.com/psantana5/timethis/internal/report"
)

// resultView is the shape of a Result on stdout. Duration is spelled out in
// every unit so scripts never have to convert.
type resultView struct {
	ID      string         `json:"id" yaml:"id"`
	Label   string         `json:"label" yaml:"label"`
	Command string         `json:"command,omitempty" yaml:"command,omitempty"`
	Mode    string         `json:"mode" yaml:"mode"`
	Loops   uint           `json:"loops" yaml:"loops"`
	Start   time.Time      `json:"start_time" yaml:"start_time"`
	Outcome string         `json:"outcome" yaml:"outcome"`
	Elapsed *elapsedView   `json:"elapsed,omitempty" yaml:"elapsed,omitempty"`
	Error   string         `json:"error,omitempty" yaml:"error,omitempty"`
	Exit    int            `json:"exit_code" yaml:"exit_code"`
	Host    *hostinfo.Info `json:"host,omitempty" yaml:"host,omitempty"`
}

type elapsedView struct {
	Human        string  `json:"human" yaml:"human"`
	Seconds      float64 `json:"seconds" yaml:"seconds"`
	Milliseconds int64   `json:"milliseconds" yaml:"milliseconds"`
	Microseconds int64   `json:"microseconds" yaml:"microseconds"`
	Nanoseconds  int64   `json:"nanoseconds" yaml:"nanoseconds"`
}

func newResultView(r *report.Result) resultView {
	view := resultView{
		ID:      r.ID,
		Label:   r.Label,
		Command: r.Command,
		Mode:    string(r.Mode),
		Loops:   r.Loops,
		Start:   r.StartTime,
		Outcome: r.Outcome(),
		Error:   r.Error,
		Exit:    r.ExitCode,
		Host:    r.Host,
	}
	if !r.Failed() {
		view.Elapsed = &elapsedView{
			Human:        r.Duration.String(),
			Seconds:      r.Duration.Seconds(),
			Milliseconds: r.Duration.Milliseconds(),
			Microseconds: r.Duration.Microseconds(),
			Nanoseconds:  r.Duration.Nanoseconds(),
		}
	}
	return view
}

// encode writes v as JSON or YAML
func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// printResult renders a single measurement
func printResult(w io.Writer, format string, r *report.Result) error {
	view := newResultView(r)
	if format != "table" {
		return encode(w, format, view)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	rows := [][]string{
		{"ID", view.ID},
		{"Label", view.Label},
		{"Command", view.Command},
		{"Mode", view.Mode},
		{"Loops", strconv.FormatUint(uint64(view.Loops), 10)},
		{"Outcome", view.Outcome},
	}
	if view.Elapsed != nil {
		rows = append(rows,
			[]string{"Elapsed", view.Elapsed.Human},
			[]string{"Seconds", strconv.FormatFloat(view.Elapsed.Seconds, 'f', 9, 64)},
			[]string{"Milliseconds", strconv.FormatInt(view.Elapsed.Milliseconds, 10)},
			[]string{"Microseconds", strconv.FormatInt(view.Elapsed.Microseconds, 10)},
			[]string{"Nanoseconds", strconv.FormatInt(view.Elapsed.Nanoseconds, 10)},
		)
	} else {
		rows = append(rows,
			[]string{"Error", view.Error},
			[]string{"Exit code", strconv.Itoa(view.Exit)},
		)
	}
	if view.Host != nil {
		rows = append(rows, []string{"Host", view.Host.String()})
	}

	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return err
		}
	}
	return table.Render()
}

// printResults renders a list of measurements, newest first
func printResults(w io.Writer, format string, results []*report.Result) error {
	if format != "table" {
		views := make([]resultView, 0, len(results))
		for _, r := range results {
			views = append(views, newResultView(r))
		}
		return encode(w, format, map[string]interface{}{
			"results": views,
			"count":   len(views),
		})
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No measurements recorded")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Started", "Label", "Mode", "Loops", "Elapsed", "Outcome")
	for _, r := range results {
		elapsed := r.Duration.String()
		outcome := r.Outcome()
		if r.Failed() {
			elapsed = "-"
			outcome = fmt.Sprintf("failed (exit %d)", r.ExitCode)
		}
		if err := table.Append(
			r.StartTime.Local().Format("2006-01-02 15:04:05"),
			r.Label,
			string(r.Mode),
			strconv.FormatUint(uint64(r.Loops), 10),
			elapsed,
			outcome,
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTotal measurements: %d\n", len(results))
	return nil
}

// printHost renders host details
func printHost(w io.Writer, format string, info hostinfo.Info) error {
	if format != "table" {
		return encode(w, format, info)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	rows := [][]string{
		{"Hostname", info.Hostname},
		{"OS", fmt.Sprintf("%s/%s", info.OS, info.Architecture)},
		{"Platform", info.Platform},
		{"Kernel", info.KernelVersion},
		{"CPU", info.CPUModel},
		{"CPU threads", strconv.Itoa(info.CPUThreads)},
		{"RAM total", hostinfo.FormatRAM(info.RAMTotalBytes)},
		{"RAM available", hostinfo.FormatRAM(info.RAMFreeBytes)},
	}
	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return err
		}
	}
	return table.Render()
}
