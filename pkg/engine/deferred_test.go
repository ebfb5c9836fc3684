package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/machine/pkg/adapters/memory"
	"github.com/aretw0/machine/pkg/definition"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNormalize(t *testing.T, def domain.Definition) domain.Definition {
	t.Helper()
	def, err := definition.Normalize(def)
	require.NoError(t, err)
	return def
}

func awaitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func adder(t *testing.T) domain.Definition {
	return mustNormalize(t, domain.Definition{
		Identity: "add",
		Sync:     true,
		Fn: func(_ context.Context, in domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			exits.Success(in["a"].(int) + in["b"].(int))
			return nil
		},
	})
}

func TestDeferred_ExecSync(t *testing.T) {
	d := engine.New(adder(t), domain.Argins{"a": 1, "b": 2}, nil, nil, engine.Options{})

	result, err := d.ExecSync()
	require.NoError(t, err)
	assert.Equal(t, 3, result)
	assert.Equal(t, engine.StateSettled, d.State())
}

func TestDeferred_ExecSync_NotDeclaredSync(t *testing.T) {
	var calls int32
	def := mustNormalize(t, domain.Definition{
		Identity: "slow",
		Fn: func(context.Context, domain.Argins, domain.Exits, domain.Metadata) error {
			atomic.AddInt32(&calls, 1)
			return nil
		},
	})
	d := engine.New(def, nil, nil, nil, engine.Options{})

	_, err := d.ExecSync()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUsage)
	assert.Contains(t, err.Error(), "`slow` cannot be called synchronously")
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Equal(t, engine.StateCreated, d.State())
}

func TestDeferred_ExecSync_AsyncImplementation(t *testing.T) {
	release := make(chan struct{})
	def := mustNormalize(t, domain.Definition{
		Identity: "liar",
		Sync:     true,
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			go func() {
				<-release
				exits.Success("late")
			}()
			return nil
		},
	})
	d := engine.New(def, nil, nil, nil, engine.Options{})

	_, err := d.ExecSync()
	var implErr *domain.ImplementationError
	require.ErrorAs(t, err, &implErr)
	assert.Equal(t, "liar", implErr.Identity)

	close(release)
	result, err := d.Await(awaitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "late", result)
}

func TestDeferred_Exec_CallbackExactlyOnce(t *testing.T) {
	var late int32
	hooks := domain.LifecycleHooks{
		OnLateExit: func(context.Context, *domain.ExecEvent) { atomic.AddInt32(&late, 1) },
	}
	def := mustNormalize(t, domain.Definition{
		Identity: "chatty",
		Exits:    map[string]domain.ExitSpec{"notFound": {}},
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			exits.Success("first")
			exits.Error("second")
			exits.Trigger("notFound", nil)
			return errors.New("returned")
		},
	})

	var (
		calls  int
		result any
		cbErr  error
	)
	engine.New(def, nil, nil, nil, engine.Options{Hooks: hooks}).Exec(func(err error, r any) {
		calls++
		cbErr, result = err, r
	})

	assert.Equal(t, 1, calls)
	assert.NoError(t, cbErr)
	assert.Equal(t, "first", result)
	assert.EqualValues(t, 3, atomic.LoadInt32(&late))
}

func TestDeferred_Exec_RepeatedCallsDoNotRerun(t *testing.T) {
	var calls int32
	def := mustNormalize(t, domain.Definition{
		Identity: "once",
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			atomic.AddInt32(&calls, 1)
			exits.Success("done")
			return nil
		},
	})
	d := engine.New(def, nil, nil, nil, engine.Options{})

	var results []any
	d.Exec(func(_ error, r any) { results = append(results, r) })
	p := d.Exec(func(_ error, r any) { results = append(results, r) })
	p.Then(func(r any) { results = append(results, r) }, nil)

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, []any{"done", "done", "done"}, results)

	c, ok := p.Completion()
	require.True(t, ok)
	assert.Equal(t, domain.ExitSuccess, c.Exit)
}

func TestDeferred_CustomExitException(t *testing.T) {
	def := mustNormalize(t, domain.Definition{
		Identity: "findUser",
		Exits:    map[string]domain.ExitSpec{"notFound": {Description: "No such user."}},
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			exits.Exit("notFound")(nil)
			return nil
		},
	})

	_, err := engine.New(def, nil, nil, nil, engine.Options{}).Await(awaitCtx(t))

	var exc *domain.Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "notFound", exc.Code)
	assert.Equal(t, "findUser", exc.Identity)
	assert.Equal(t, "`findUser` triggered its `notFound` exit: No such user.", exc.Error())
	assert.ErrorIs(t, err, domain.ErrException)
}

func TestDeferred_ErrorExitString(t *testing.T) {
	def := mustNormalize(t, domain.Definition{
		Identity: "failer",
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			exits.Error("boom")
			return nil
		},
	})

	var got error
	engine.New(def, nil, nil, nil, engine.Options{}).Exec(func(err error, _ any) { got = err })

	var rt *domain.RuntimeError
	require.ErrorAs(t, got, &rt)
	assert.Equal(t, "boom", rt.Error())
}

func TestDeferred_ReturnedErrorSettles(t *testing.T) {
	sentinel := errors.New("rejected")
	def := mustNormalize(t, domain.Definition{
		Identity: "rejecter",
		Fn: func(context.Context, domain.Argins, domain.Exits, domain.Metadata) error {
			return sentinel
		},
	})

	_, err := engine.New(def, nil, nil, nil, engine.Options{}).Await(awaitCtx(t))
	assert.ErrorIs(t, err, sentinel)
}

type statusError struct{ status int }

func (e *statusError) Error() string { return fmt.Sprintf("status %d", e.status) }

func TestDeferred_NilErrorPointerIsUnset(t *testing.T) {
	tests := []struct {
		name string
		fn   domain.Fn
	}{
		{"error exit", func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			var err *statusError
			exits.Error(err)
			return nil
		}},
		{"returned", func(context.Context, domain.Argins, domain.Exits, domain.Metadata) error {
			var err *statusError
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			journal := memory.NewJournal()
			def := mustNormalize(t, domain.Definition{Identity: "lookup", Fn: tt.fn})
			d := engine.New(def, nil, nil, nil, engine.Options{Journal: journal})

			_, err := d.Await(awaitCtx(t))

			var rt *domain.RuntimeError
			require.ErrorAs(t, err, &rt)
			assert.Equal(t, "Internal error occurred while running `lookup`.", rt.Error())

			rec, err := journal.Get(context.Background(), d.ID())
			require.NoError(t, err)
			assert.Equal(t, "Internal error occurred while running `lookup`.", rec.Error)
		})
	}
}

func TestDeferred_PanicBecomesRuntimeError(t *testing.T) {
	def := mustNormalize(t, domain.Definition{
		Identity: "panicky",
		Fn: func(context.Context, domain.Argins, domain.Exits, domain.Metadata) error {
			panic("kaboom")
		},
	})

	_, err := engine.New(def, nil, nil, nil, engine.Options{}).Await(awaitCtx(t))

	var rt *domain.RuntimeError
	require.ErrorAs(t, err, &rt)
	assert.Equal(t, "kaboom", rt.Raw)
	assert.Contains(t, rt.Error(), "`panicky` panicked: kaboom")
}

func TestDeferred_PanicAfterExitIgnored(t *testing.T) {
	def := mustNormalize(t, domain.Definition{
		Identity: "sloppy",
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			exits.Success(1)
			panic("after the fact")
		},
	})

	result, err := engine.New(def, nil, nil, nil, engine.Options{}).Await(awaitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 1, result)
}

func TestDeferred_UnknownExitName(t *testing.T) {
	def := mustNormalize(t, domain.Definition{
		Identity: "typo",
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			exits.Exit("nope")(nil)
			return nil
		},
	})

	_, err := engine.New(def, nil, nil, nil, engine.Options{}).Await(awaitCtx(t))

	var rt *domain.RuntimeError
	require.ErrorAs(t, err, &rt)
	assert.Contains(t, rt.Error(), "`typo` has no exit named `nope`")
}

func TestDeferred_LegacyExitsCall(t *testing.T) {
	def := mustNormalize(t, domain.Definition{
		Identity: "legacy",
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			exits.Call(map[string]any{"success": nil})
			return nil
		},
	})

	_, err := engine.New(def, nil, nil, nil, engine.Options{}).Await(awaitCtx(t))
	assert.ErrorIs(t, err, domain.ErrCompatibility)
}

func TestDeferred_CallbackPanicPropagates(t *testing.T) {
	d := engine.New(adder(t), domain.Argins{"a": 1, "b": 1}, nil, nil, engine.Options{})

	assert.PanicsWithValue(t, "caller bug", func() {
		d.Exec(func(error, any) { panic("caller bug") })
	})
}

func TestDeferred_CallbackPanicStillNotifiesLaterSubscribers(t *testing.T) {
	var handlers domain.Exits
	def := mustNormalize(t, domain.Definition{
		Identity: "deferredExit",
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			handlers = exits
			return nil
		},
	})
	d := engine.New(def, nil, nil, nil, engine.Options{})

	p := d.Exec(func(error, any) { panic("callback") })
	var got any
	p.Then(func(result any) { got = result }, nil)

	assert.Panics(t, func() { handlers.Success("done") })
	assert.Equal(t, "done", got)
	assert.Equal(t, engine.StateSettled, d.State())
}

func TestDeferred_UnsupportedImplementationTypes(t *testing.T) {
	tests := []struct {
		name string
		def  domain.Definition
		want string
	}{
		{
			name: "composite",
			def:  domain.Definition{Identity: "c", ImplementationType: domain.ImplementationComposite, Fn: noop},
			want: "composite",
		},
		{
			name: "async function",
			def:  domain.Definition{Identity: "a", ImplementationType: domain.ImplementationAsyncFunction, Fn: noop},
			want: "`asyncFunction`",
		},
		{
			name: "classic function",
			def:  domain.Definition{Identity: "k", ImplementationType: domain.ImplementationClassicFunction, Fn: noop},
			want: "`classicFunction`",
		},
		{
			name: "missing fn",
			def:  domain.Definition{Identity: "empty"},
			want: "no implementation function",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.New(mustNormalize(t, tt.def), nil, nil, nil, engine.Options{}).Await(awaitCtx(t))
			require.ErrorIs(t, err, domain.ErrUsage)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func noop(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
	exits.Success(nil)
	return nil
}

func TestDeferred_Meta(t *testing.T) {
	var fromArg, fromCtx domain.Metadata
	def := mustNormalize(t, domain.Definition{
		Identity: "whoami",
		Sync:     true,
		Fn: func(ctx context.Context, _ domain.Argins, exits domain.Exits, meta domain.Metadata) error {
			fromArg, fromCtx = meta, domain.MetadataFrom(ctx)
			exits.Success(meta["user"])
			return nil
		},
	})
	d := engine.New(def, nil, domain.Metadata{"user": "overwritten"}, nil, engine.Options{})

	result, err := d.Meta(domain.Metadata{"user": "ana"}).ExecSync()
	require.NoError(t, err)
	assert.Equal(t, "ana", result)
	assert.Equal(t, domain.Metadata{"user": "ana"}, fromArg)
	assert.Equal(t, fromArg, fromCtx)
}

func TestDeferred_MetaDefaultsToEmpty(t *testing.T) {
	var got domain.Metadata
	def := mustNormalize(t, domain.Definition{
		Identity: "meta",
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, meta domain.Metadata) error {
			got = meta
			exits.Success(nil)
			return nil
		},
	})

	engine.New(def, nil, nil, nil, engine.Options{}).Meta(nil).Exec(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDeferred_MetaAfterStartPanics(t *testing.T) {
	d := engine.New(adder(t), domain.Argins{"a": 1, "b": 1}, nil, nil, engine.Options{})
	d.Exec(nil)

	assert.PanicsWithError(t, "Invalid usage of .Meta(): metadata cannot be replaced once execution has started.", func() {
		d.Meta(domain.Metadata{})
	})
}

func TestDeferred_Timeout(t *testing.T) {
	var (
		mu      sync.Mutex
		exitsOf domain.Exits
		late    = make(chan struct{}, 1)
		ctxDone = make(chan struct{})
	)
	def := mustNormalize(t, domain.Definition{
		Identity: "sleepy",
		Timeout:  20 * time.Millisecond,
		Fn: func(ctx context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			mu.Lock()
			exitsOf = exits
			mu.Unlock()
			go func() {
				<-ctx.Done()
				close(ctxDone)
			}()
			return nil
		},
	})
	hooks := domain.LifecycleHooks{
		OnLateExit: func(context.Context, *domain.ExecEvent) { late <- struct{}{} },
	}
	d := engine.New(def, nil, nil, nil, engine.Options{Hooks: hooks})

	_, err := d.Await(awaitCtx(t))

	var tmo *domain.TimeoutError
	require.ErrorAs(t, err, &tmo)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 20*time.Millisecond, tmo.Timeout)

	select {
	case <-ctxDone:
	case <-time.After(time.Second):
		t.Fatal("context passed to Fn was not canceled on timeout")
	}

	mu.Lock()
	exitsOf.Success("too late")
	mu.Unlock()

	select {
	case <-late:
	case <-time.After(time.Second):
		t.Fatal("late exit was not reported")
	}
	_, err = d.Await(awaitCtx(t))
	assert.ErrorAs(t, err, &tmo)
}

func TestDeferred_TimeoutNotArmedWhenSettledInTime(t *testing.T) {
	def := adder(t)
	def.Timeout = 10 * time.Millisecond
	d := engine.New(def, domain.Argins{"a": 2, "b": 2}, nil, nil, engine.Options{})

	result, err := d.ExecSync()
	require.NoError(t, err)
	assert.Equal(t, 4, result)

	time.Sleep(30 * time.Millisecond)
	result, err = d.Await(awaitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 4, result)
}

func TestDeferred_Hooks(t *testing.T) {
	var started, settled []*domain.ExecEvent
	hooks := domain.LifecycleHooks{
		OnExecStart: func(_ context.Context, e *domain.ExecEvent) { started = append(started, e) },
		OnSettle:    func(_ context.Context, e *domain.ExecEvent) { settled = append(settled, e) },
	}
	d := engine.New(adder(t), domain.Argins{"a": 1, "b": 2}, nil, nil, engine.Options{Hooks: hooks})

	_, err := d.ExecSync()
	require.NoError(t, err)

	require.Len(t, started, 1)
	require.Len(t, settled, 1)
	assert.Equal(t, "add", started[0].Identity)
	assert.Equal(t, d.ID(), settled[0].ExecutionID)
	assert.Equal(t, domain.ExitSuccess, settled[0].Exit)
	assert.NoError(t, settled[0].Err)
}

func TestDeferred_StateTransitions(t *testing.T) {
	release := make(chan struct{})
	def := mustNormalize(t, domain.Definition{
		Identity: "gated",
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			go func() {
				<-release
				exits.Success(nil)
			}()
			return nil
		},
	})
	d := engine.New(def, nil, nil, nil, engine.Options{})
	assert.Equal(t, engine.StateCreated, d.State())

	p := d.Exec(nil)
	assert.Equal(t, engine.StateRunning, d.State())

	close(release)
	<-p.Done()
	assert.Equal(t, engine.StateSettled, d.State())
	assert.Equal(t, "settled", d.State().String())
}

func TestPromise_AwaitRespectsContext(t *testing.T) {
	def := mustNormalize(t, domain.Definition{
		Identity: "never",
		Fn:       func(context.Context, domain.Argins, domain.Exits, domain.Metadata) error { return nil },
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := engine.New(def, nil, nil, nil, engine.Options{}).Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPromise_ThenError(t *testing.T) {
	def := mustNormalize(t, domain.Definition{
		Identity: "failer",
		Fn: func(_ context.Context, _ domain.Argins, exits domain.Exits, _ domain.Metadata) error {
			exits.Error(errors.New("nope"))
			return nil
		},
	})

	var got error
	engine.New(def, nil, nil, nil, engine.Options{}).Exec(nil).Then(func(any) {
		t.Fatal("success handler called")
	}, func(err error) { got = err })

	assert.EqualError(t, got, "nope")
}

func TestDeferred_Compatibility(t *testing.T) {
	d := engine.New(adder(t), domain.Argins{"a": 1, "b": 1}, nil, nil, engine.Options{})

	assert.ErrorIs(t, d.Cache(), domain.ErrCompatibility)
	assert.ErrorIs(t, d.DemuxSync(), domain.ErrCompatibility)

	d.SetEnv(domain.Metadata{"legacy": true})
	result, err := d.ExecSync()
	require.NoError(t, err)
	assert.Equal(t, 2, result)
}
