package domain

// Callback receives the outcome of an execution, error first.
type Callback func(err error, result any)

// Completion is the canonical outcome of one execution.
// Err and Result are never both set.
type Completion struct {
	// Exit is the exit that fired, or empty when the runner settled the
	// execution itself (timeout, panic, returned error, unsupported type).
	Exit   string
	Result any
	Err    error
}

// Succeeded builds a success completion.
func Succeeded(result any) Completion {
	return Completion{Exit: ExitSuccess, Result: result}
}

// Failed builds an error completion for the given exit.
func Failed(exit string, err error) Completion {
	return Completion{Exit: exit, Err: err}
}

// OK returns true if the completion carries no error.
func (c Completion) OK() bool {
	return c.Err == nil
}
