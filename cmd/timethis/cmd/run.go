package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/psantana5/timethis/internal/hostinfo"
	"github.com/psantana5/timethis/internal/measure"
	"github.com/psantana5/timethis/internal/report"
	"github.com/psantana5/timethis/internal/workload"
)

var (
	runLabel    string
	runUseShell bool
	runNoHost   bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Time a command once or in a loop",
	Long: `Run executes a command and reports how long it took.

With --loops N (N != 1) the command is executed N times back to back and the
total time for all iterations is reported. The total is not divided by N.
--loops 0 executes nothing and reports the bare timer overhead.

If the command fails no elapsed time is reported and timethis exits with the
command's exit status. The command's own output is sent to stderr so that
stdout only carries the report.

Example:
  timethis run -- make build
  timethis run --loops 10 --label curl -o json -- curl -s https://example.com
  timethis run --shell -- 'for i in 1 2 3; do sleep 0.1; done'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMeasure,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// everything after the command name belongs to the command
	runCmd.Flags().SetInterspersed(false)

	runCmd.Flags().UintP("loops", "n", 1, "number of times to run the command")
	runCmd.Flags().StringVar(&runLabel, "label", "", "name for this measurement (default is the command name)")
	runCmd.Flags().BoolVar(&runUseShell, "shell", false, "run the command through the configured shell")
	runCmd.Flags().String("shell-path", "/bin/sh", "shell used with --shell")
	runCmd.Flags().BoolVar(&runNoHost, "no-host", false, "do not attach host details to the result")
	runCmd.Flags().String("metrics-file", "", "write Prometheus text metrics to this file after the run")
}

func labelFor(label string, command *workload.Command) string {
	if label != "" {
		return label
	}
	return filepath.Base(command.Name)
}

func parseCommand(args []string, useShell bool) (*workload.Command, error) {
	shell := ""
	if useShell {
		shell = cfg.Shell
	}
	command, err := workload.Parse(args, shell)
	if err != nil {
		return nil, err
	}
	command.Stdout = os.Stderr
	command.Stderr = os.Stderr
	return command, nil
}

func runMeasure(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	command, err := parseCommand(args, runUseShell)
	if err != nil {
		return err
	}

	sinks, err := buildSinks(ctx)
	if err != nil {
		return err
	}
	defer sinks.Close(context.Background())

	opts := sinks.opts
	if !runNoHost {
		opts = append(opts, measure.WithHost(hostinfo.Detect()))
	}

	var metrics *report.Metrics
	if cfg.MetricsFile != "" {
		metrics = report.NewMetrics()
		opts = append(opts, measure.WithSink(measure.MetricsSink(metrics)))
	}

	runner := measure.NewRunner(opts...)
	result, runErr := runner.Measure(ctx, labelFor(runLabel, command), command.String(), cfg.Loops, command.Work(ctx))

	if metrics != nil {
		if err := writeMetricsFile(cfg.MetricsFile, metrics); err != nil {
			return err
		}
	}

	if err := printResult(cmd.OutOrStdout(), cfg.Output, result); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	return runErr
}

// writeMetricsFile writes atomically so a textfile collector never reads a
// partial file
func writeMetricsFile(path string, metrics *report.Metrics) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".timethis-metrics-*")
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := metrics.WriteText(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move metrics file into place: %w", err)
	}
	return nil
}
