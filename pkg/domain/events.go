package domain

import (
	"context"
	"time"
)

// ExecEvent describes one execution for observability hooks.
type ExecEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	ExecutionID string    `json:"execution_id"`
	Identity    string    `json:"identity"`
	// Exit is the exit that fired. Empty on start and when the runner settled the execution itself.
	Exit     string        `json:"exit,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously on the goroutine driving the event and must not block.
type LifecycleHooks struct {
	OnExecStart func(context.Context, *ExecEvent)
	OnSettle    func(context.Context, *ExecEvent)
	// OnLateExit fires when an exit is called after the execution already settled.
	OnLateExit func(context.Context, *ExecEvent)
}
