package machine

import (
	"errors"
	"log/slog"

	"github.com/aretw0/machine/internal/invocation"
	"github.com/aretw0/machine/internal/logging"
	"github.com/aretw0/machine/internal/omen"
	"github.com/aretw0/machine/pkg/definition"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/engine"
	"github.com/aretw0/machine/pkg/observability"
	"github.com/aretw0/machine/pkg/ports"
)

// Machine is the callable built from a Definition.
// It is safe for concurrent use; each call owns its own execution.
type Machine struct {
	def     domain.Definition
	logger  *slog.Logger
	hooks   *observability.Aggregator
	journal ports.Journal
}

// Option defines a functional option for configuring a Machine.
type Option func(*Machine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
// It may be passed several times; every hook set is invoked.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks.Add(hooks)
	}
}

// WithJournal records every settled execution in j.
func WithJournal(j ports.Journal) Option {
	return func(m *Machine) {
		m.journal = j
	}
}

// Build normalizes def and returns its callable.
func Build(def domain.Definition, opts ...Option) (*Machine, error) {
	normalized, err := definition.Normalize(def)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		def:   normalized,
		hooks: observability.NewAggregator(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	m.logger = m.logger.With("machine", normalized.Identity)

	return m, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(def domain.Definition, opts ...Option) *Machine {
	m, err := Build(def, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Identity returns the resolved identity of the machine.
func (m *Machine) Identity() string {
	return m.def.Identity
}

// Definition returns a copy of the normalized definition.
func (m *Machine) Definition() domain.Definition {
	def := m.def
	def.Exits = make(map[string]domain.ExitSpec, len(m.def.Exits))
	for name, spec := range m.def.Exits {
		def.Exits[name] = spec
	}
	return def
}

// Call invokes the machine with up to three positional values: argins, an
// error-first callback and metadata (see the invocation rules in the
// package documentation). When a callback is given, execution starts
// immediately; otherwise the returned Deferred is inert until consumed.
func (m *Machine) Call(args ...any) (*engine.Deferred, error) {
	o := omen.Capture(1)

	inv, err := invocation.Parse(args...)
	if err != nil {
		var usage *domain.UsageError
		if errors.As(err, &usage) {
			usage.Origin = o
		}
		return nil, err
	}

	d := engine.New(m.def, inv.Argins, inv.Metadata, o, m.engineOptions())
	if inv.Callback != nil {
		d.Exec(inv.Callback)
	}
	return d, nil
}

// Run is the typed form of Call for the common case of argins only.
func (m *Machine) Run(in domain.Argins) *engine.Deferred {
	return engine.New(m.def, in, nil, omen.Capture(1), m.engineOptions())
}

func (m *Machine) engineOptions() engine.Options {
	opts := engine.Options{
		Logger:  m.logger,
		Journal: m.journal,
	}
	if m.hooks.Len() > 0 {
		opts.Hooks = m.hooks.Hooks()
	}
	return opts
}
