package appstate

import "sync"

// DispatchFunc delivers an action to a store.
type DispatchFunc func(Action)

// Listener observes every transition applied by a Store.
type Listener func(prev, next State, a Action)

// Store owns the process-lifetime State. Reducer invocations are serialised,
// so concurrent dispatches apply one at a time in arrival order.
type Store struct {
	mu      sync.Mutex
	reducer *Reducer
	state   State

	listenerMu sync.RWMutex
	listeners  map[int]Listener
	nextID     int
}

// NewStore creates a Store holding initial.
func NewStore(reducer *Reducer, initial State) *Store {
	return &Store{
		reducer:   reducer,
		state:     initial,
		listeners: make(map[int]Listener),
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch runs a through the reducer and returns the resulting state.
// Listeners are notified after the state is committed.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	prev := s.state
	next := s.reducer.Reduce(prev, a)
	s.state = next
	s.mu.Unlock()

	s.listenerMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenerMu.RUnlock()

	for _, l := range listeners {
		l(prev, next, a)
	}
	return next
}

// DispatchFunc adapts the store to a DispatchFunc.
func (s *Store) DispatchFunc() DispatchFunc {
	return func(a Action) { s.Dispatch(a) }
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}
