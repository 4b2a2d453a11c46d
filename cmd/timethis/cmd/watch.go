package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/psantana5/timethis/internal/hostinfo"
	"github.com/psantana5/timethis/internal/logging"
	"github.com/psantana5/timethis/internal/measure"
	"github.com/psantana5/timethis/internal/report"
	"github.com/psantana5/timethis/internal/server"
)

var (
	watchLabel    string
	watchUseShell bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] -- <command> [args...]",
	Short: "Time a command on an interval and serve the results",
	Long: `Watch measures a command every --interval until interrupted and serves
the measurements over HTTP:

  GET /metrics    Prometheus metrics
  GET /results    latest results, newest first (?limit=N)
  GET /failures   latest failed measurements (?limit=N)
  GET /health     liveness

Measurements never overlap: if a run takes longer than the interval the next
one starts as soon as it finishes.

Example:
  timethis watch --interval 1m --listen :9464 -- curl -sf https://example.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	// everything after the command name belongs to the command
	watchCmd.Flags().SetInterspersed(false)

	watchCmd.Flags().UintP("loops", "n", 1, "number of times to run the command per measurement")
	watchCmd.Flags().StringVar(&watchLabel, "label", "", "name for the measurements (default is the command name)")
	watchCmd.Flags().BoolVar(&watchUseShell, "shell", false, "run the command through the configured shell")
	watchCmd.Flags().String("shell-path", "/bin/sh", "shell used with --shell")
	watchCmd.Flags().Duration("interval", 30*time.Second, "time between measurements")
	watchCmd.Flags().String("listen", ":9464", "address to serve metrics and results on")
	watchCmd.Flags().Int("keep", 100, "number of results and failures kept in memory")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	command, err := parseCommand(args, watchUseShell)
	if err != nil {
		return err
	}
	label := labelFor(watchLabel, command)

	sinks, err := buildSinks(ctx)
	if err != nil {
		return err
	}
	defer sinks.Close(context.Background())

	metrics := report.NewMetrics()
	recent := report.NewRecentResults(cfg.Watch.Keep)
	failures := report.NewFailureLog(cfg.Watch.Keep)

	opts := append(sinks.opts,
		measure.WithHost(hostinfo.Detect()),
		measure.WithSink(measure.MetricsSink(metrics)),
		measure.WithSink(measure.RecentSink(recent)),
		measure.WithSink(measure.FailureSink(failures)),
	)
	runner := measure.NewRunner(opts...)

	srv := server.NewServer(cfg.Watch.Listen, server.NewHandler(metrics, recent, failures, logger))
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	w := &watcher{
		runner:   runner,
		label:    label,
		command:  command.String(),
		loops:    cfg.Loops,
		work:     command.Work(ctx),
		interval: cfg.Watch.Interval,
		log:      logger.WithField("label", label),
	}
	w.log.Info(fmt.Sprintf("Watching %q every %s, serving on %s", w.command, w.interval, cfg.Watch.Listen))

	loopErr := w.loop(ctx, serveErr)
	if err := shutdown(srv, w.log); err != nil && loopErr == nil {
		return err
	}
	return loopErr
}

// watcher re-measures one command on a fixed interval
type watcher struct {
	runner   *measure.Runner
	label    string
	command  string
	loops    uint
	work     func() error
	interval time.Duration
	log      *logging.Logger
}

// loop measures right away and then on every tick until ctx is cancelled or
// the server stops. Measurements never overlap.
func (w *watcher) loop(ctx context.Context, serveErr <-chan error) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.runner.Measure(ctx, w.label, w.command, w.loops, w.work); err != nil && ctx.Err() == nil {
			w.log.Debug("measurement failed", logging.Fields{"error": err.Error()})
		}

		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-serveErr:
			if ok && err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ticker.C:
		}
	}
}

func shutdown(srv *http.Server, log *logging.Logger) error {
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}
