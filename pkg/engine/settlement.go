package engine

import (
	"fmt"
	"sync"

	"github.com/aretw0/machine/pkg/domain"
)

// settlement is the one-shot completion slot of an execution.
// Only the first resolve stores a completion; listeners registered before or
// after that moment each observe it exactly once.
type settlement struct {
	mu         sync.Mutex
	done       chan struct{}
	settled    bool
	completion domain.Completion
	listeners  []func(domain.Completion)
}

func newSettlement() *settlement {
	return &settlement{done: make(chan struct{})}
}

// resolve stores c and notifies listeners on the calling goroutine.
// It returns false if the slot was already settled.
func (s *settlement) resolve(c domain.Completion) bool {
	s.mu.Lock()
	if s.settled {
		s.mu.Unlock()
		return false
	}
	s.settled = true
	s.completion = c
	listeners := s.listeners
	s.listeners = nil
	close(s.done)
	s.mu.Unlock()

	notifyAll(listeners, c)
	return true
}

// subscribe registers l. If the slot is already settled, l runs immediately
// on the calling goroutine.
func (s *settlement) subscribe(l func(domain.Completion)) {
	s.mu.Lock()
	if !s.settled {
		s.listeners = append(s.listeners, l)
		s.mu.Unlock()
		return
	}
	c := s.completion
	s.mu.Unlock()
	notify(l, c)
}

func (s *settlement) peek() (domain.Completion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completion, s.settled
}

// listenerPanic marks a panic raised by caller code inside a listener, so
// the engine can tell it apart from a panic of the implementation function.
type listenerPanic struct {
	value any
}

func (p listenerPanic) Error() string {
	return fmt.Sprintf("machine: panic in completion handler: %v", p.value)
}

func notify(l func(domain.Completion), c domain.Completion) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(listenerPanic); ok {
				panic(r)
			}
			panic(listenerPanic{value: r})
		}
	}()
	l(c)
}

// notifyAll runs every listener even if some panic, then re-raises the first
// panic.
func notifyAll(listeners []func(domain.Completion), c domain.Completion) {
	var first any
	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil && first == nil {
					first = r
				}
			}()
			notify(l, c)
		}()
	}
	if first != nil {
		panic(first)
	}
}
