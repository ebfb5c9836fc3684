package domain

import "time"

// Record is the journal entry written when an execution settles.
type Record struct {
	ID        string        `json:"id"`
	Identity  string        `json:"identity"`
	Exit      string        `json:"exit,omitempty"`
	Kind      string        `json:"kind,omitempty"`
	Code      string        `json:"code,omitempty"`
	Error     string        `json:"error,omitempty"`
	Result    any           `json:"result,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// NewRecord summarizes a settled execution.
func NewRecord(id, identity string, c Completion, startedAt time.Time, d time.Duration) Record {
	r := Record{
		ID:        id,
		Identity:  identity,
		Exit:      c.Exit,
		Result:    c.Result,
		StartedAt: startedAt,
		Duration:  d,
	}
	if c.Err != nil {
		r.Kind = Kind(c.Err)
		r.Error = c.Err.Error()
		if exc, ok := c.Err.(*Exception); ok {
			r.Code = exc.Code
		}
	}
	return r
}

// OK returns true if the recorded execution succeeded.
func (r Record) OK() bool {
	return r.Error == ""
}
