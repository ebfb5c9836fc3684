package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/machine/internal/omen"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/exits"
)

// Deferred is the execution engine for one call of a machine.
type Deferred struct {
	def    domain.Definition
	argins domain.Argins
	origin domain.Origin
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	meta      domain.Metadata
	startedAt time.Time
	timer     *time.Timer
	cancel    context.CancelFunc

	settlement *settlement
}

// New creates an inert Deferred for def. def must already be normalized.
// A nil origin is replaced by one captured at the caller of New.
func New(def domain.Definition, argins domain.Argins, meta domain.Metadata, origin domain.Origin, opts Options) *Deferred {
	if origin == nil {
		origin = omen.Capture(1)
	}
	if argins == nil {
		argins = domain.Argins{}
	}
	if meta == nil {
		meta = domain.Metadata{}
	}
	d := &Deferred{
		def:        def,
		argins:     argins,
		origin:     origin,
		opts:       opts,
		logger:     opts.logger(),
		meta:       meta,
		settlement: newSettlement(),
	}
	// Bookkeeping runs before any caller-supplied listener.
	d.settlement.subscribe(d.finish)
	return d
}

// ID returns the unique identifier of this execution.
func (d *Deferred) ID() string { return d.origin.ID() }

// Identity returns the identity of the machine being executed.
func (d *Deferred) Identity() string { return d.def.Identity }

// Origin returns the call-site anchor shared by every error of this execution.
func (d *Deferred) Origin() domain.Origin { return d.origin }

// State returns the current lifecycle state.
func (d *Deferred) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Meta replaces the execution metadata wholesale and returns d for chaining.
// It panics with a *domain.UsageError once execution has started.
func (d *Deferred) Meta(meta domain.Metadata) *Deferred {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateCreated {
		panic(&domain.UsageError{
			Message: "Invalid usage of .Meta(): metadata cannot be replaced once execution has started.",
			Origin:  d.origin,
		})
	}
	if meta == nil {
		meta = domain.Metadata{}
	}
	d.meta = meta
	return d
}

// Exec starts the execution, if it has not started yet, and delivers the
// outcome to cb exactly once. cb may be nil. The returned Promise observes
// the same outcome.
func (d *Deferred) Exec(cb domain.Callback) *Promise {
	if cb != nil {
		d.settlement.subscribe(func(c domain.Completion) {
			cb(c.Err, c.Result)
		})
	}
	d.start()
	return &Promise{s: d.settlement}
}

// Await starts the execution and blocks until it settles or ctx is done.
// Canceling ctx stops the wait, not the execution.
func (d *Deferred) Await(ctx context.Context) (any, error) {
	return d.Exec(nil).Await(ctx)
}

// ExecSync runs a machine declared sync and returns its outcome directly.
func (d *Deferred) ExecSync() (any, error) {
	if !d.def.Sync {
		return nil, &domain.UsageError{
			Message: fmt.Sprintf("Sorry, `%s` cannot be called synchronously, because it does not declare support for synchronous usage (i.e. `Sync: true`).", d.def.Identity),
			Origin:  d.origin,
		}
	}
	d.start()
	c, ok := d.settlement.peek()
	if !ok {
		return nil, &domain.ImplementationError{
			Identity: d.def.Identity,
			Message: fmt.Sprintf("Failed to call `%s` synchronously: its implementation returned before calling any exit. "+
				"A machine declared `Sync: true` must call an exit before its Fn returns.", d.def.Identity),
			Origin: d.origin,
		}
	}
	return c.Result, c.Err
}

func (d *Deferred) start() {
	d.mu.Lock()
	if d.state != StateCreated {
		d.mu.Unlock()
		return
	}
	d.state = StateRunning
	d.startedAt = time.Now()
	meta := d.meta
	ctx, cancel := context.WithCancel(domain.WithMetadata(context.Background(), meta))
	d.cancel = cancel
	if d.def.Timeout > 0 {
		d.timer = time.AfterFunc(d.def.Timeout, d.expire)
	}
	startedAt := d.startedAt
	d.mu.Unlock()

	d.logger.Debug("machine execution started",
		"identity", d.def.Identity,
		"execution_id", d.ID(),
	)
	if d.opts.Hooks.OnExecStart != nil {
		d.opts.Hooks.OnExecStart(ctx, &domain.ExecEvent{
			Timestamp:   startedAt,
			ExecutionID: d.ID(),
			Identity:    d.def.Identity,
		})
	}

	d.invoke(ctx, meta)
}

func (d *Deferred) invoke(ctx context.Context, meta domain.Metadata) {
	switch d.def.ImplementationType {
	case domain.ImplementationDefault:
	case domain.ImplementationComposite:
		d.proceed(domain.Failed("", &domain.UsageError{
			Message: fmt.Sprintf("`%s` is a composite machine; composite implementations cannot be executed by this runner.", d.def.Identity),
			Origin:  d.origin,
		}))
		return
	case domain.ImplementationAsyncFunction, domain.ImplementationClassicFunction:
		d.proceed(domain.Failed("", &domain.UsageError{
			Message: fmt.Sprintf("`%s` declares the experimental `%s` implementation type, which is not supported yet.", d.def.Identity, d.def.ImplementationType),
			Origin:  d.origin,
		}))
		return
	default:
		panic(&domain.ConsistencyError{Message: fmt.Sprintf("unrecognized implementation type %q reached the engine", d.def.ImplementationType)})
	}

	if d.def.Fn == nil {
		d.proceed(domain.Failed("", &domain.UsageError{
			Message: fmt.Sprintf("`%s` has no implementation function (Fn).", d.def.Identity),
			Origin:  d.origin,
		}))
		return
	}

	handlers := exits.Build(d.def, d.origin, d.proceed)

	defer d.recoverFn()
	if err := d.def.Fn(ctx, d.argins, handlers, meta); err != nil {
		d.proceed(domain.Failed("", exits.CoerceError(d.def.Identity, err, d.origin)))
	}
}

// recoverFn turns a panic of the implementation function into a settlement.
// Panics raised by completion handlers and consistency violations propagate.
func (d *Deferred) recoverFn() {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case listenerPanic:
		panic(v.value)
	case *domain.ConsistencyError:
		panic(v)
	case *domain.CompatibilityError:
		d.proceed(domain.Failed("", v))
	default:
		d.proceed(domain.Failed("", &domain.RuntimeError{
			Identity: d.def.Identity,
			Message:  fmt.Sprintf("`%s` panicked: %v", d.def.Identity, v),
			Raw:      v,
			Origin:   d.origin,
		}))
	}
}

func (d *Deferred) expire() {
	d.proceed(domain.Failed("", &domain.TimeoutError{
		Identity: d.def.Identity,
		Timeout:  d.def.Timeout,
		Origin:   d.origin,
	}))
}

// proceed settles the execution. Every call after the first is reported and discarded.
func (d *Deferred) proceed(c domain.Completion) {
	if d.settlement.resolve(c) {
		return
	}
	d.logger.Warn("exit called after execution settled; ignoring",
		"identity", d.def.Identity,
		"execution_id", d.ID(),
		"exit", c.Exit,
	)
	if d.opts.Hooks.OnLateExit != nil {
		d.opts.Hooks.OnLateExit(context.Background(), &domain.ExecEvent{
			Timestamp:   time.Now(),
			ExecutionID: d.ID(),
			Identity:    d.def.Identity,
			Exit:        c.Exit,
			Err:         c.Err,
		})
	}
}

func (d *Deferred) finish(c domain.Completion) {
	d.mu.Lock()
	d.state = StateSettled
	timer, cancel, startedAt := d.timer, d.cancel, d.startedAt
	d.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if cancel != nil {
		cancel()
	}
	duration := time.Since(startedAt)

	if c.Err != nil {
		d.logger.Debug("machine execution settled",
			"identity", d.def.Identity,
			"execution_id", d.ID(),
			"exit", c.Exit,
			"kind", domain.Kind(c.Err),
			"error", c.Err,
			"duration", duration,
		)
	} else {
		d.logger.Debug("machine execution settled",
			"identity", d.def.Identity,
			"execution_id", d.ID(),
			"exit", c.Exit,
			"duration", duration,
		)
	}

	ctx := context.Background()
	if d.opts.Hooks.OnSettle != nil {
		d.opts.Hooks.OnSettle(ctx, &domain.ExecEvent{
			Timestamp:   time.Now(),
			ExecutionID: d.ID(),
			Identity:    d.def.Identity,
			Exit:        c.Exit,
			Err:         c.Err,
			Duration:    duration,
		})
	}

	if d.opts.Journal != nil {
		rec := domain.NewRecord(d.ID(), d.def.Identity, c, startedAt, duration)
		if err := d.opts.Journal.Record(ctx, rec); err != nil {
			d.logger.Warn("failed to record execution", "identity", d.def.Identity, "execution_id", d.ID(), "error", err)
		}
	}
}
