package engine

// State is the lifecycle position of a Deferred.
type State int32

const (
	// StateCreated is the inert state entered at call time.
	StateCreated State = iota
	// StateRunning is entered when a terminal consumption method is called.
	StateRunning
	// StateSettled is terminal; the completion is fixed.
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}
