package exits

import (
	"github.com/aretw0/machine/pkg/domain"
)

// Proceed receives the completion computed by a handler. The engine makes
// every call after the first a no-op.
type Proceed func(domain.Completion)

var legacyCall = func(args ...any) {
	panic(&domain.CompatibilityError{Message: "Implementor-land switchbacks are no longer supported by default in the machine runner. " +
		"Instead of `exits.Call()`, please call `exits.Success()` or `exits.Error()` from within your machine Fn."})
}

// Build produces the handler set for one execution of def.
func Build(def domain.Definition, origin domain.Origin, proceed Proceed) domain.Exits {
	identity := def.Identity
	handlers := make(map[string]domain.ExitFunc, len(def.Exits)+2)

	handlers[domain.ExitSuccess] = func(out any) {
		proceed(domain.Succeeded(out))
	}

	handlers[domain.ExitError] = func(out any) {
		proceed(domain.Failed(domain.ExitError, CoerceError(identity, out, origin)))
	}

	for _, code := range def.CustomExits() {
		handlers[code] = func(out any) {
			// Looked up at trigger time so a definition mutated mid-flight is caught.
			spec, declared := def.Exits[code]
			proceed(domain.Failed(code, NewException(identity, code, spec, declared, out, origin)))
		}
	}

	return domain.NewExits(identity, handlers, legacyCall)
}
