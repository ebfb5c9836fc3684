package engine

import (
	"fmt"

	"github.com/aretw0/machine/pkg/domain"
)

// Switchback maps exits to handlers. Error is required and receives every
// error that has no more specific handler. Success is required as well.
type Switchback struct {
	Success func(result any)
	Error   func(err error)
	// Exits holds handlers for custom exits, keyed by exit name.
	// They receive the raw output passed to the exit.
	Exits map[string]func(raw any)
}

// Switch starts the execution and dispatches its outcome by exit name.
//
// Only exceptions raised by this very execution reach a handler in sb.Exits;
// an exception surfacing from a nested call of another machine (even one
// with an exit of the same name) goes to sb.Error.
func (d *Deferred) Switch(sb Switchback) error {
	if sb.Error == nil {
		return &domain.UsageError{
			Message: "Invalid usage of .Switch(): the switchback must provide at least an `Error` handler.",
			Origin:  d.origin,
		}
	}
	if sb.Success == nil {
		sb.Error(&domain.UsageError{
			Message: "Invalid usage of .Switch(): the switchback must provide a `Success` handler.",
			Origin:  d.origin,
		})
		return nil
	}

	d.settlement.subscribe(func(c domain.Completion) {
		d.dispatch(sb, c)
	})
	d.start()
	return nil
}

func (d *Deferred) dispatch(sb Switchback, c domain.Completion) {
	if c.Err == nil {
		sb.Success(c.Result)
		return
	}

	exc, ok := c.Err.(*domain.Exception)
	if !ok || exc.Origin != d.origin {
		sb.Error(c.Err)
		return
	}
	if exc.Code == "" {
		panic(&domain.ConsistencyError{Message: fmt.Sprintf("exception raised by `%s` has no exit code", d.def.Identity)})
	}
	if h, ok := sb.Exits[exc.Code]; ok && h != nil && exc.Code != domain.ExitError {
		h(exc.Raw)
		return
	}
	sb.Error(exc)
}
