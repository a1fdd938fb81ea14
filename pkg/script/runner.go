package script

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Event records one executed step.
type Event struct {
	Step   int
	Op     string
	Detail string
}

// Result is the outcome of a successful run.
type Result struct {
	Name   string
	Events []Event

	// Lists are the final contents of every list, by name.
	Lists map[string][]int64
}

type metrics struct {
	ops      *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics() *metrics {
	return &metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "script_ops_total",
			Help: "The total number of executed script steps",
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "script_failures_total",
			Help: "The total number of failed script runs",
		}, []string{"script"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "script_run_duration_seconds",
			Help:    "The duration of script runs",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.ops, m.failures, m.duration} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return nil
}

// Runner runs scripts. A Runner may be used by multiple goroutines, every
// run works on its own lists.
type Runner struct {
	logger  *zap.Logger
	metrics *metrics
}

// NewRunner returns a Runner. reg may be nil.
func NewRunner(logger *zap.Logger, reg prometheus.Registerer) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := newMetrics()
	if reg != nil {
		if err := m.register(reg); err != nil {
			return nil, err
		}
	}
	return &Runner{logger: logger, metrics: m}, nil
}

// Run executes the steps of s in order on fresh lists built from
// s.Lists. It stops at the first failing step or when ctx is done.
func (r *Runner) Run(ctx context.Context, s *Script) (*Result, error) {
	start := time.Now()
	res, err := r.run(ctx, s)
	r.metrics.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.failures.WithLabelValues(s.Name).Inc()
		return nil, err
	}
	r.logger.Debug("script done",
		zap.String("script", s.Name),
		zap.Int("steps", len(res.Events)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (r *Runner) run(ctx context.Context, s *Script) (*Result, error) {
	if err := s.Compile(); err != nil {
		return nil, err
	}

	st := newState(s.Lists)
	res := &Result{Name: s.Name, Events: make([]Event, 0, len(s.Steps))}
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.metrics.ops.WithLabelValues(step.Op).Inc()
		detail, err := step.exec(st)
		if err != nil {
			return nil, &StepError{Script: s.Name, Step: i, Op: step.Op, Err: err}
		}
		r.logger.Debug("step done",
			zap.String("script", s.Name),
			zap.Int("step", i),
			zap.String("op", step.Op),
			zap.String("detail", detail),
		)
		res.Events = append(res.Events, Event{Step: i, Op: step.Op, Detail: detail})
	}
	res.Lists = st.snapshot()
	return res, nil
}
