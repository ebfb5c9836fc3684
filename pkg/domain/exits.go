package domain

import (
	"fmt"
	"sort"
)

// ExitFunc signals one exit with the raw output of the implementation.
type ExitFunc func(out any)

// Exits is the handler set passed to an implementation function.
// It has one handler per declared exit; only the first call across all
// handlers has any effect.
type Exits struct {
	identity string
	handlers map[string]ExitFunc
	legacy   func(args ...any)
}

// NewExits assembles a handler set. legacy is invoked by Call.
func NewExits(identity string, handlers map[string]ExitFunc, legacy func(args ...any)) Exits {
	return Exits{identity: identity, handlers: handlers, legacy: legacy}
}

// Success signals the success exit.
func (x Exits) Success(out any) { x.Trigger(ExitSuccess, out) }

// Error signals the error exit. out may be an error, a string, a value with
// an error-shaped cause, or anything else; see the exits package for how each
// shape becomes an error.
func (x Exits) Error(out any) { x.Trigger(ExitError, out) }

// Exit returns the handler for a declared exit.
// It panics if the machine declares no such exit.
func (x Exits) Exit(name string) ExitFunc {
	h, ok := x.handlers[name]
	if !ok {
		panic(fmt.Errorf("`%s` has no exit named `%s`", x.identity, name))
	}
	return h
}

// Trigger signals the named exit with out.
func (x Exits) Trigger(name string, out any) {
	x.Exit(name)(out)
}

// Has reports whether name is a declared exit.
func (x Exits) Has(name string) bool {
	_, ok := x.handlers[name]
	return ok
}

// Names returns the declared exit names in lexical order.
func (x Exits) Names() []string {
	names := make([]string, 0, len(x.handlers))
	for name := range x.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call is the removed "implementor-land switchback" convention, where the
// handler set itself was invoked. It always fails with a CompatibilityError.
func (x Exits) Call(args ...any) {
	if x.legacy != nil {
		x.legacy(args...)
		return
	}
	panic(&CompatibilityError{Message: "Implementor-land switchbacks are no longer supported. Call exits.Success() or exits.Error() instead."})
}
