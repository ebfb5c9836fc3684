// Package omen captures the call-site of a machine invocation.
//
// An Omen is allocated when a callable is invoked, before any asynchronous work
// starts, so that errors produced much later (from another goroutine, after a
// timeout, ...) can still point back at the code that made the call. Errors
// reference the Omen as their domain.Origin; the Omen itself is never handed
// out as an error.
package omen

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/oklog/ulid/v2"
)

const maxDepth = 32

// Omen identifies one execution and owns the trace captured at its call site.
// It implements domain.Origin.
type Omen struct {
	id  ulid.ULID
	pcs []uintptr
}

// Capture records the stack of the caller. skip is the number of additional
// frames to drop above the function calling Capture.
func Capture(skip int) *Omen {
	pcs := make([]uintptr, maxDepth)
	// 2 = runtime.Callers + Capture
	n := runtime.Callers(skip+2, pcs)
	return &Omen{
		id:  ulid.Make(),
		pcs: pcs[:n],
	}
}

// ID returns the unique execution identifier.
func (o *Omen) ID() string {
	return o.id.String()
}

// StackTrace resolves the captured program counters.
func (o *Omen) StackTrace() []runtime.Frame {
	if o == nil || len(o.pcs) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(o.pcs)
	out := make([]runtime.Frame, 0, len(o.pcs))
	for {
		f, more := frames.Next()
		out = append(out, f)
		if !more {
			break
		}
	}
	return out
}

// String renders the trace the way panics print goroutine stacks.
func (o *Omen) String() string {
	var b strings.Builder
	for _, f := range o.StackTrace() {
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
	}
	return b.String()
}
