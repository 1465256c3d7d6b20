package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart EventType = "run_start"
	EventStep     EventType = "step"
	EventHalt     EventType = "halt"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Machine   string    `json:"machine,omitempty"`
}

// RunEvent is emitted when a session is created.
type RunEvent struct {
	EventBase
	Input string `json:"input"`
}

// StepEvent is emitted after a transition has been applied.
type StepEvent struct {
	EventBase
	Step       int        `json:"step"`
	Transition Transition `json:"transition"`
	Head       int        `json:"head"`
}

// HaltEvent is emitted once, when a session leaves the running status.
type HaltEvent struct {
	EventBase
	Outcome Status     `json:"outcome"`
	Reason  HaltReason `json:"reason,omitempty"`
	State   State      `json:"state"`
	Steps   int        `json:"steps"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRunStart func(context.Context, *RunEvent)
	OnStep     func(context.Context, *StepEvent)
	OnHalt     func(context.Context, *HaltEvent)
}

// Compose returns hooks that call each of the given hooks in order.
func Compose(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnStep: func(ctx context.Context, e *StepEvent) {
			for _, h := range hooks {
				if h.OnStep != nil {
					h.OnStep(ctx, e)
				}
			}
		},
		OnHalt: func(ctx context.Context, e *HaltEvent) {
			for _, h := range hooks {
				if h.OnHalt != nil {
					h.OnHalt(ctx, e)
				}
			}
		},
	}
}
