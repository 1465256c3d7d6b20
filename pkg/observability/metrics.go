package observability

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// InlineMachine labels runs of machines outside the known set.
const InlineMachine = "inline"

// Metrics collects run statistics from lifecycle hooks.
type Metrics struct {
	RunsStarted  *prometheus.CounterVec
	RunsFinished *prometheus.CounterVec
	Transitions  *prometheus.CounterVec
	RunSteps     *prometheus.HistogramVec

	known map[string]struct{}
}

// Option configures Metrics.
type Option func(*Metrics)

// WithKnownMachines restricts the machine label to names. Any other machine
// is counted as InlineMachine, which keeps the number of series bounded when
// clients submit their own definitions.
func WithKnownMachines(names ...string) Option {
	return func(m *Metrics) {
		m.known = make(map[string]struct{}, len(names))
		for _, name := range names {
			m.known[name] = struct{}{}
		}
	}
}

// NewMetrics creates the collectors and registers them on reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, opts ...Option) *Metrics {
	m := &Metrics{
		RunsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_runs_started_total",
				Help: "Total number of runs started",
			},
			[]string{"machine"},
		),
		RunsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_runs_finished_total",
				Help: "Total number of runs that halted, by outcome",
			},
			[]string{"machine", "outcome", "reason"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_transitions_total",
				Help: "Total number of transitions applied",
			},
			[]string{"machine"},
		),
		RunSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turing_run_steps",
				Help:    "Steps taken by halted runs",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"machine"},
		),
	}

	for _, opt := range opts {
		opt(m)
	}

	if reg != nil {
		reg.MustRegister(m.RunsStarted, m.RunsFinished, m.Transitions, m.RunSteps)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			m.RunsStarted.WithLabelValues(m.label(e.Machine)).Inc()
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			m.Transitions.WithLabelValues(m.label(e.Machine)).Inc()
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			machine := m.label(e.Machine)
			m.RunsFinished.WithLabelValues(machine, string(e.Outcome), string(e.Reason)).Inc()
			m.RunSteps.WithLabelValues(machine).Observe(float64(e.Steps))
		},
	}
}

// label maps a machine name to its label value. Without a known set every
// name is used as is.
func (m *Metrics) label(name string) string {
	if m.known == nil {
		return name
	}
	if _, ok := m.known[name]; ok {
		return name
	}
	return InlineMachine
}
