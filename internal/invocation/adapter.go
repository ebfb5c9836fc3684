// Package invocation interprets the positional values a machine is called with.
//
// A machine accepts up to three values, in order: argins, an error-first
// callback and metadata. Each may be omitted, and a callback may be passed
// first when no argins are needed.
package invocation

import (
	"fmt"

	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/engine"
)

// MaxArgs is the maximum number of positional values accepted by a call.
const MaxArgs = 3

// Invocation is the normalized form of a call.
type Invocation struct {
	Argins   domain.Argins
	Callback domain.Callback
	Metadata domain.Metadata
}

// Parse normalizes the values passed to a machine call.
// Errors are always *domain.UsageError and nothing is executed.
func Parse(args ...any) (Invocation, error) {
	if len(args) > MaxArgs {
		return Invocation{}, usagef("Invalid usage: a machine accepts at most %d values (argins, callback, metadata) but got %d.", MaxArgs, len(args))
	}

	var rawArgins, rawCallback, rawMeta any
	if len(args) > 0 {
		rawArgins = args[0]
	}
	if len(args) > 1 {
		rawCallback = args[1]
	}
	if len(args) > 2 {
		rawMeta = args[2]
	}

	// A callback passed as the only value (or followed by nothing) stands in
	// for the callback position.
	if _, ok := asCallback(rawArgins); ok && isUnset(rawCallback) {
		rawArgins, rawCallback = nil, rawArgins
	}

	inv := Invocation{}

	switch v := rawArgins.(type) {
	case nil:
		inv.Argins = domain.Argins{}
	case domain.Argins:
		inv.Argins = orEmptyArgins(v)
	case map[string]any:
		inv.Argins = orEmptyArgins(v)
	default:
		return Invocation{}, usagef("Invalid usage: argins must be a map of named values (domain.Argins), but got %T.", rawArgins)
	}

	if !isUnset(rawCallback) {
		cb, ok := asCallback(rawCallback)
		if !ok {
			if isSwitchback(rawCallback) {
				return Invocation{}, usagef("Invalid usage: a switchback cannot be passed when calling a machine. " +
					"Call the machine without a callback and use .Switch() on the result instead.")
			}
			return Invocation{}, usagef("Invalid usage: the callback must be a func(error, any), but got %T.", rawCallback)
		}
		inv.Callback = cb
	}

	switch v := rawMeta.(type) {
	case nil:
		inv.Metadata = domain.Metadata{}
	case domain.Metadata:
		inv.Metadata = orEmptyMeta(v)
	case map[string]any:
		inv.Metadata = orEmptyMeta(v)
	default:
		return Invocation{}, usagef("Invalid usage: metadata must be a map (domain.Metadata), but got %T.", rawMeta)
	}

	return inv, nil
}

func asCallback(v any) (domain.Callback, bool) {
	switch cb := v.(type) {
	case domain.Callback:
		return cb, cb != nil
	case func(error, any):
		return cb, cb != nil
	default:
		return nil, false
	}
}

func isSwitchback(v any) bool {
	switch v.(type) {
	case engine.Switchback, *engine.Switchback, map[string]func(any), map[string]any:
		return true
	default:
		return false
	}
}

// isUnset reports whether v is absent, including typed nil callbacks.
func isUnset(v any) bool {
	switch cb := v.(type) {
	case nil:
		return true
	case domain.Callback:
		return cb == nil
	case func(error, any):
		return cb == nil
	default:
		return false
	}
}

func orEmptyArgins(m map[string]any) domain.Argins {
	if m == nil {
		return domain.Argins{}
	}
	return domain.Argins(m)
}

func orEmptyMeta(m map[string]any) domain.Metadata {
	if m == nil {
		return domain.Metadata{}
	}
	return domain.Metadata(m)
}

func usagef(format string, args ...any) *domain.UsageError {
	return &domain.UsageError{Message: fmt.Sprintf(format, args...)}
}
