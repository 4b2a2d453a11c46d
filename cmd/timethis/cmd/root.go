package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/timethis/internal/config"
	"github.com/psantana5/timethis/internal/logging"
	"github.com/psantana5/timethis/internal/measure"
	"github.com/psantana5/timethis/internal/report"
	"github.com/psantana5/timethis/internal/store"
	"github.com/psantana5/timethis/internal/tracing"
	"github.com/psantana5/timethis/internal/workload"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

var (
	cfgFile string
	cfg     *config.Config

	v      = viper.New()
	logger = logging.Discard()
)

// flagKeys maps config keys to the flag that may override them
var flagKeys = map[string]string{
	"output":         "output",
	"log_level":      "log-level",
	"log_format":     "log-format",
	"log_file":       "log-file",
	"history_db":     "history-db",
	"otlp_endpoint":  "otlp-endpoint",
	"shell":          "shell-path",
	"loops":          "loops",
	"metrics_file":   "metrics-file",
	"watch.interval": "interval",
	"watch.listen":   "listen",
	"watch.keep":     "keep",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "timethis",
	Short: "Measure how long a command takes",
	Long: `timethis runs a command once, or a fixed number of times back to back,
and reports the elapsed wall-clock time measured on the monotonic clock.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	err := rootCmd.Execute()
	var exitErr *workload.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// ExitCode maps an error from Execute to a process exit status. A measured
// command that failed passes its own status through.
func ExitCode(err error) int {
	return workload.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.timethis/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().String("log-file", "", "also append logs to this file")
	rootCmd.PersistentFlags().String("history-db", "", "SQLite file to store measurements in (disabled when empty)")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP/HTTP collector host:port for measurement spans (disabled when empty)")
}

// initConfig binds the flags of the running command, then reads the config
// file and the environment.
func initConfig(cmd *cobra.Command, args []string) error {
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := logging.ParseLevel(cfg.LogLevel)
	jsonLogs := cfg.LogFormat == "json"
	if cfg.LogFile != "" {
		fileLogger, err := logging.NewFileLogger(cfg.LogFile, level, jsonLogs)
		if err != nil {
			return err
		}
		logger = fileLogger
	} else {
		logger = logging.NewLogger(level, jsonLogs, os.Stderr)
	}
	logger.Debug("configuration loaded", logging.Fields{"config": v.ConfigFileUsed()})
	return nil
}

// sinkSet collects the optional outputs shared by run and watch
type sinkSet struct {
	opts     []measure.Option
	history  *store.SQLiteStore
	provider *tracing.Provider
}

// buildSinks wires the history store and tracing when configured
func buildSinks(ctx context.Context) (*sinkSet, error) {
	s := &sinkSet{}
	s.opts = append(s.opts, measure.WithLogger(logger), measure.WithSink(measure.LogSink(logger)))

	if cfg.HistoryDB != "" {
		history, err := store.Open(cfg.HistoryDB)
		if err != nil {
			return nil, err
		}
		s.history = history
		s.opts = append(s.opts, measure.WithSink(measure.SinkFunc(history.Save)))
	}

	if cfg.OTLPEndpoint != "" {
		provider, err := tracing.Init(ctx, tracing.Config{
			ServiceName:    "timethis",
			ServiceVersion: Version,
			OTLPEndpoint:   cfg.OTLPEndpoint,
		})
		if err != nil {
			s.Close(ctx)
			return nil, err
		}
		s.provider = provider
		s.opts = append(s.opts, measure.WithSink(measure.SinkFunc(func(ctx context.Context, r *report.Result) error {
			provider.RecordResult(ctx, r)
			return nil
		})))
	}

	return s, nil
}

// Close flushes spans and closes the history database
func (s *sinkSet) Close(ctx context.Context) {
	if s.provider != nil {
		if err := s.provider.Shutdown(ctx); err != nil {
			logger.Warn("failed to flush spans", logging.Fields{"error": err.Error()})
		}
	}
	if s.history != nil {
		s.history.Close()
	}
}
