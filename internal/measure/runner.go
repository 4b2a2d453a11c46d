package measure

import (
	"context"

	"github.com/psantana5/timethis/internal/hostinfo"
	"github.com/psantana5/timethis/internal/logging"
	"github.com/psantana5/timethis/internal/report"
	"github.com/psantana5/timethis/internal/workload"
	"github.com/psantana5/timethis/pkg/timethis"
)

// Sink receives every Result a Runner produces
type Sink interface {
	Record(ctx context.Context, r *report.Result) error
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(ctx context.Context, r *report.Result) error

func (f SinkFunc) Record(ctx context.Context, r *report.Result) error {
	return f(ctx, r)
}

// Runner times units of work and hands the Results to its sinks
type Runner struct {
	clock  timethis.Clock
	timer  *timethis.Timer
	host   *hostinfo.Info
	sinks  []Sink
	logger *logging.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithClock sets the clock used for timing and timestamps
func WithClock(clock timethis.Clock) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithHost annotates every Result with host details
func WithHost(info hostinfo.Info) Option {
	return func(r *Runner) {
		r.host = &info
	}
}

// WithSink adds a sink
func WithSink(s Sink) Option {
	return func(r *Runner) {
		r.sinks = append(r.sinks, s)
	}
}

// WithLogger sets the logger used for sink failures
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a Runner on the system clock unless told otherwise
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		clock:  timethis.SystemClock{},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.timer = timethis.New(r.clock)
	return r
}

// Measure runs work once when loops is 1 and through the loop timer otherwise.
// The error from work comes back unchanged alongside a failure Result, which
// carries no duration. A failure caused by ctx being cancelled is returned
// but not handed to the sinks.
func (r *Runner) Measure(ctx context.Context, label, command string, loops uint, work func() error) (*report.Result, error) {
	var (
		span timethis.Span
		err  error
	)
	if report.ModeFor(loops) == report.ModeOnce {
		span, err = r.timer.OnceSpan(work)
	} else {
		span, err = r.timer.LoopsSpan(loops, work)
	}

	var result *report.Result
	if err != nil {
		result = report.NewFailure(label, command, loops, span.Start, r.clock.Now(), err, workload.ExitCode(err))
	} else {
		result = report.NewResult(label, command, loops, span.Start, span.Elapsed)
	}
	if r.host != nil {
		result = result.WithHost(*r.host)
	}

	if err != nil && ctx.Err() != nil {
		r.logger.Debug("measurement interrupted, not recorded", logging.Fields{
			"label": label,
			"error": err.Error(),
		})
		return result, err
	}

	r.dispatch(ctx, result)
	return result, err
}

// dispatch feeds every sink. A failing sink is logged and never hides the
// measurement outcome.
func (r *Runner) dispatch(ctx context.Context, result *report.Result) {
	for _, s := range r.sinks {
		if err := s.Record(ctx, result); err != nil {
			r.logger.Warn("failed to record measurement", logging.Fields{
				"id":    result.ID,
				"error": err.Error(),
			})
		}
	}
}
