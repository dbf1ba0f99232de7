package mapview

import (
	"context"
	"errors"

	"github.com/diwise/quakemap/internal/pkg/dataset"
)

type State struct {
	Selection dataset.Selection
	MapReady  bool
}

func (s State) equal(other State) bool {
	return s.MapReady == other.MapReady && s.Selection.Equal(other.Selection)
}

// Subscriber is notified after a transition has been applied while the map is ready.
type Subscriber func(ctx context.Context, prev, next State) error

type transition func(State) State

// Store owns the view state. Transitions requested while subscribers are being
// notified are queued and applied once the current notification has returned.
// A failed notification leaves the store stale, so the next transition notifies
// even if it does not change the state.
type Store struct {
	state       State
	subscribers []Subscriber
	notifying   bool
	stale       bool
	pending     []transition
}

func NewStore() *Store {
	return &Store{
		state: State{Selection: dataset.AllRegions},
	}
}

func (s *Store) State() State {
	return s.state
}

func (s *Store) Subscribe(fn Subscriber) {
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) Select(ctx context.Context, selection dataset.Selection) error {
	return s.apply(ctx, func(st State) State {
		st.Selection = selection
		return st
	})
}

func (s *Store) SetMapReady(ctx context.Context, ready bool) error {
	return s.apply(ctx, func(st State) State {
		st.MapReady = ready
		return st
	})
}

func (s *Store) apply(ctx context.Context, t transition) error {
	if s.notifying {
		s.pending = append(s.pending, t)
		return nil
	}

	errs := []error{s.run(ctx, t)}

	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		errs = append(errs, s.run(ctx, next))
	}

	return errors.Join(errs...)
}

func (s *Store) run(ctx context.Context, t transition) error {
	prev := s.state
	next := t(prev)

	if next.equal(prev) && !s.stale {
		return nil
	}

	s.state = next

	if !next.MapReady {
		return nil
	}

	s.notifying = true
	defer func() { s.notifying = false }()

	errs := make([]error, 0)
	for _, fn := range s.subscribers {
		if err := fn(ctx, prev, next); err != nil {
			errs = append(errs, err)
		}
	}

	s.stale = len(errs) > 0

	return errors.Join(errs...)
}
