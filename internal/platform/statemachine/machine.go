package statemachine

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid state transition")

type edge[S comparable, A comparable] struct {
	from   S
	action A
}

// Machine is an immutable transition table over a closed set of states and
// actions. Build it once at package init with Allow/Reject and share it.
type Machine[S comparable, A comparable] struct {
	name     string
	next     map[edge[S, A]]S
	rejected map[edge[S, A]]error
}

func New[S comparable, A comparable](name string) *Machine[S, A] {
	return &Machine[S, A]{
		name:     name,
		next:     make(map[edge[S, A]]S),
		rejected: make(map[edge[S, A]]error),
	}
}

// Allow registers from --action--> to.
func (m *Machine[S, A]) Allow(from S, action A, to S) *Machine[S, A] {
	m.next[edge[S, A]{from: from, action: action}] = to
	return m
}

// Reject registers a specific error for an illegal move that callers need to
// distinguish from ErrInvalidTransition.
func (m *Machine[S, A]) Reject(from S, action A, err error) *Machine[S, A] {
	m.rejected[edge[S, A]{from: from, action: action}] = err
	return m
}

// Next returns the target state for action applied in from.
func (m *Machine[S, A]) Next(from S, action A) (S, error) {
	key := edge[S, A]{from: from, action: action}
	if to, ok := m.next[key]; ok {
		return to, nil
	}
	if err, ok := m.rejected[key]; ok {
		return from, err
	}
	return from, fmt.Errorf("%w: %s cannot %v from %v", ErrInvalidTransition, m.name, action, from)
}

func (m *Machine[S, A]) Can(from S, action A) bool {
	_, ok := m.next[edge[S, A]{from: from, action: action}]
	return ok
}
