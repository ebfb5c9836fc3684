package engine

import (
	"context"

	"github.com/aretw0/machine/pkg/domain"
)

// Promise observes the settlement of one execution.
type Promise struct {
	s *settlement
}

// Done is closed when the execution settles.
func (p *Promise) Done() <-chan struct{} {
	return p.s.done
}

// Await blocks until the execution settles or ctx is done.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.s.done:
		c, _ := p.s.peek()
		return c.Result, c.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then registers handlers for the outcome. Either may be nil.
// Handlers registered after settlement run immediately.
func (p *Promise) Then(onSuccess func(result any), onError func(err error)) *Promise {
	p.s.subscribe(func(c domain.Completion) {
		if c.Err != nil {
			if onError != nil {
				onError(c.Err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(c.Result)
		}
	})
	return p
}

// Completion returns the outcome, if the execution has settled.
func (p *Promise) Completion() (domain.Completion, bool) {
	return p.s.peek()
}
