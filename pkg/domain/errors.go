package domain

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
)

// Sentinel errors for classification with errors.Is.
var (
	// ErrUsage matches misuse of a callable or of its consumption API.
	ErrUsage = errors.New("usage error")

	// ErrCompatibility matches calls to removed legacy features.
	ErrCompatibility = errors.New("compatibility error")

	// ErrImplementation matches definitions violating their own declared contract.
	ErrImplementation = errors.New("implementation error")

	// ErrException matches errors produced by a custom exit.
	ErrException = errors.New("exception")

	// ErrTimeout matches executions abandoned after their timeout.
	ErrTimeout = errors.New("timeout")

	// ErrRecordNotFound is returned by journals when an execution ID is unknown.
	ErrRecordNotFound = errors.New("execution record not found")
)

// Origin is the call-site anchor of one execution.
type Origin interface {
	// ID uniquely identifies the execution.
	ID() string
	// StackTrace resolves the frames captured when the machine was called.
	StackTrace() []runtime.Frame
}

func stackOf(o Origin) []runtime.Frame {
	if o == nil {
		return nil
	}
	return o.StackTrace()
}

// UsageError reports that the caller misused a callable or an engine method.
type UsageError struct {
	Message string
	Origin  Origin
}

func (e *UsageError) Error() string { return e.Message }

// Is reports whether target is ErrUsage.
func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// StackTrace returns the call-site frames, if known.
func (e *UsageError) StackTrace() []runtime.Frame { return stackOf(e.Origin) }

// CompatibilityError reports the use of a deliberately removed feature.
// Message includes remediation guidance.
type CompatibilityError struct {
	Message string
}

func (e *CompatibilityError) Error() string { return e.Message }

// Is reports whether target is ErrCompatibility.
func (e *CompatibilityError) Is(target error) bool { return target == ErrCompatibility }

// ImplementationError reports a Definition that breaks its declared contract,
// such as declaring sync but completing asynchronously.
type ImplementationError struct {
	Identity string
	Message  string
	Origin   Origin
}

func (e *ImplementationError) Error() string { return e.Message }

// Is reports whether target is ErrImplementation.
func (e *ImplementationError) Is(target error) bool { return target == ErrImplementation }

// StackTrace returns the call-site frames, if known.
func (e *ImplementationError) StackTrace() []runtime.Frame { return stackOf(e.Origin) }

// RuntimeError is the generic error built by the error exit, or when an
// implementation function panics.
type RuntimeError struct {
	Identity string
	Message  string
	// Raw is the value passed to the error exit, if any.
	Raw    any
	Origin Origin
}

func (e *RuntimeError) Error() string { return e.Message }

// StackTrace returns the call-site frames, if known.
func (e *RuntimeError) StackTrace() []runtime.Frame { return stackOf(e.Origin) }

// Exception is produced when a machine triggers one of its custom exits.
//
// Code is the name of the exit and is the only field meant for programmatic
// dispatch; Message is for humans reading logs.
type Exception struct {
	Identity string
	Code     string
	Message  string
	// Raw is the value the implementation passed to the exit.
	Raw    any
	Origin Origin

	cause error
}

// NewException builds an Exception. cause is the error-shaped raw output, if any.
func NewException(identity, code, message string, raw any, cause error, origin Origin) *Exception {
	return &Exception{
		Identity: identity,
		Code:     code,
		Message:  message,
		Raw:      raw,
		Origin:   origin,
		cause:    cause,
	}
}

func (e *Exception) Error() string { return e.Message }

// Unwrap returns the error-shaped raw output, if any.
func (e *Exception) Unwrap() error { return e.cause }

// Is reports whether target is ErrException.
func (e *Exception) Is(target error) bool { return target == ErrException }

// StackTrace returns the call-site frames, if known.
func (e *Exception) StackTrace() []runtime.Frame { return stackOf(e.Origin) }

// TimeoutError settles an execution that did not complete within its timeout.
type TimeoutError struct {
	Identity string
	Timeout  time.Duration
	Origin   Origin
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("`%s` did not finish within its %s timeout", e.Identity, e.Timeout)
}

// Is matches ErrTimeout and context.DeadlineExceeded.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout || target == context.DeadlineExceeded
}

// StackTrace returns the call-site frames, if known.
func (e *TimeoutError) StackTrace() []runtime.Frame { return stackOf(e.Origin) }

// ConsistencyError signals a broken internal invariant. It is raised with
// panic and never recovered by the runner.
type ConsistencyError struct {
	Message string
}

func (e *ConsistencyError) Error() string { return "Consistency violation: " + e.Message }

// Kind names the category of err for logs and wire formats.
func Kind(err error) string {
	var (
		usage  *UsageError
		compat *CompatibilityError
		impl   *ImplementationError
		exc    *Exception
		tmo    *TimeoutError
		rt     *RuntimeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &exc):
		return "Exception"
	case errors.As(err, &usage):
		return "UsageError"
	case errors.As(err, &compat):
		return "CompatibilityError"
	case errors.As(err, &impl):
		return "ImplementationError"
	case errors.As(err, &tmo):
		return "TimeoutError"
	case errors.As(err, &rt):
		return "RuntimeError"
	default:
		return "Error"
	}
}
