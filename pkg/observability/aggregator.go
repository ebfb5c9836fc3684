package observability

import (
	"context"
	"sync"

	"github.com/aretw0/machine/pkg/domain"
)

// Aggregator combines multiple hook sets into a single one.
// Hook sets are invoked in the order they were added.
type Aggregator struct {
	mu    sync.RWMutex
	hooks []domain.LifecycleHooks
}

// NewAggregator creates a new aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		hooks: make([]domain.LifecycleHooks, 0),
	}
}

// Add registers a hook set. Nil callbacks are skipped.
func (a *Aggregator) Add(h domain.LifecycleHooks) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, h)
}

// Len returns the number of registered hook sets.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.hooks)
}

// Hooks returns a hook set dispatching to every registered set.
// Sets added after the call are observed as well.
func (a *Aggregator) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExecStart: func(ctx context.Context, e *domain.ExecEvent) {
			for _, h := range a.snapshot() {
				if h.OnExecStart != nil {
					h.OnExecStart(ctx, e)
				}
			}
		},
		OnSettle: func(ctx context.Context, e *domain.ExecEvent) {
			for _, h := range a.snapshot() {
				if h.OnSettle != nil {
					h.OnSettle(ctx, e)
				}
			}
		},
		OnLateExit: func(ctx context.Context, e *domain.ExecEvent) {
			for _, h := range a.snapshot() {
				if h.OnLateExit != nil {
					h.OnLateExit(ctx, e)
				}
			}
		},
	}
}

func (a *Aggregator) snapshot() []domain.LifecycleHooks {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hooks
}
