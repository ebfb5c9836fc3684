package exits

import (
	"fmt"

	"github.com/aretw0/machine/internal/inspect"
	"github.com/aretw0/machine/pkg/domain"
)

// CoerceError turns the raw output of the error exit into an error.
//
//	unset          -> *domain.RuntimeError naming the machine
//	error          -> unchanged
//	wrapped cause  -> the cause
//	string         -> *domain.RuntimeError with the string as message
//	anything else  -> *domain.RuntimeError embedding a dump of the value
func CoerceError(identity string, out any, origin domain.Origin) error {
	c := Classify(out)
	switch c.Shape {
	case ShapeUnset:
		return &domain.RuntimeError{
			Identity: identity,
			Message:  fmt.Sprintf("Internal error occurred while running `%s`.", identity),
			Origin:   origin,
		}
	case ShapeNativeError, ShapeWrappedCause:
		return c.Err
	case ShapeStringMessage:
		return &domain.RuntimeError{
			Identity: identity,
			Message:  c.Message,
			Raw:      out,
			Origin:   origin,
		}
	default:
		return &domain.RuntimeError{
			Identity: identity,
			Message:  fmt.Sprintf("Internal error occurred while running `%s`.  Got non-error: %s", identity, inspect.Value(out)),
			Raw:      out,
			Origin:   origin,
		}
	}
}

// NewException maps a custom exit firing onto a *domain.Exception.
// spec is the declaration of the exit; declared is false if it went missing.
func NewException(identity, code string, spec domain.ExitSpec, declared bool, out any, origin domain.Origin) *domain.Exception {
	msg := fmt.Sprintf("`%s` triggered its `%s` exit", identity, code)

	c := Classify(out)
	switch c.Shape {
	case ShapeUnset:
		if !declared {
			panic(&domain.ConsistencyError{Message: fmt.Sprintf(
				"machine (%s) has become corrupted! One of its exits (`%s`) has gone missing while the machine was being executed!",
				identity, code)})
		}
		if spec.Description != "" {
			msg += ": " + spec.Description
		}
	case ShapeNativeError, ShapeWrappedCause:
		msg += ": " + c.Err.Error()
	default:
		msg += " with: \n\n" + inspect.Value(out)
	}

	return domain.NewException(identity, code, msg, out, c.Err, origin)
}
