package goform

import "sync"

// Store is the single source of truth for field values and field errors of
// one form instance.
//
// Writes are serialized by a mutex. Change notifications are queued in write
// order and drained by one goroutine at a time outside the lock, so a
// subscriber may write back into the store; such writes are delivered after
// the current notification round.
type Store struct {
	mu     sync.Mutex
	values map[string]Value
	flags  map[string]FieldFlag
	errors ErrorMap

	subs    []subscriber
	nextSub int

	pending  []change
	draining bool
}

type change struct {
	field string
	value Value
	snap  ValueMap
}

type subscriber struct {
	id    int
	field string // empty: every field
	fn    func(change)
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		values: make(map[string]Value),
		flags:  make(map[string]FieldFlag),
		errors: make(ErrorMap),
	}
}

// SetValue replaces the value of one field and notifies subscribers with the
// resulting snapshot.
func (s *Store) SetValue(name string, v Value) {
	s.mu.Lock()
	s.values[name] = v
	s.flags[name] |= FieldTouched
	s.pending = append(s.pending, change{field: name, value: v, snap: s.snapshotLocked()})
	s.drainLocked()
}

// Value returns the current value of a field, including fields that are not
// part of the ValueMap.
func (s *Store) Value(name string) Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[name]
}

// Snapshot returns a copy of the current ValueMap.
func (s *Store) Snapshot() ValueMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() ValueMap {
	out := make(ValueMap, len(s.values))
	for k, v := range s.values {
		if !s.flags[k].included() {
			continue
		}
		out[k] = v
	}
	return out
}

// Flags returns the bit set recorded for a field.
func (s *Store) Flags(name string) FieldFlag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[name]
}

// seed marks a field registered. The first registration stores Absent; the
// value of an already known field is kept.
func (s *Store) seed(name string, include bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[name]; !ok {
		s.values[name] = Absent()
	}
	f := s.flags[name] | FieldRegistered
	if include {
		f |= FieldIncluded
	}
	s.flags[name] = f
}

// SetError records the message for a field, overwriting a previous one.
func (s *Store) SetError(name, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[name] = msg
}

// ClearErrors drops every field error.
func (s *Store) ClearErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = make(ErrorMap)
}

// ReplaceErrors swaps the whole ErrorMap; nothing from the previous map survives.
func (s *Store) ReplaceErrors(m ErrorMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = m.Clone()
}

// Error returns the current message for a field.
func (s *Store) Error(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.errors[name]
	return msg, ok
}

// Errors returns a copy of the ErrorMap.
func (s *Store) Errors() ErrorMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors.Clone()
}

// Subscribe registers fn to receive the snapshot after every value change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(ValueMap)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	return s.subscribe("", func(c change) { fn(c.snap.Clone()) })
}

// Watch registers fn to receive the new value of one field after each write
// to it, excluded fields included.
func (s *Store) Watch(name string, fn func(Value)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	return s.subscribe(name, func(c change) { fn(c.value) })
}

func (s *Store) subscribe(field string, fn func(change)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, field: field, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// drainLocked is entered with s.mu held and returns with it released.
func (s *Store) drainLocked() {
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		c := s.pending[0]
		s.pending = s.pending[1:]
		subs := append([]subscriber(nil), s.subs...)
		s.mu.Unlock()
		s.notify(subs, c)
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

// notify runs the subscribers for one change. A panicking subscriber drops
// the queued notifications so the next write starts a fresh drain.
func (s *Store) notify(subs []subscriber, c change) {
	done := false
	defer func() {
		if done {
			return
		}
		s.mu.Lock()
		s.draining = false
		s.pending = nil
		s.mu.Unlock()
	}()
	for _, sub := range subs {
		if sub.field != "" && sub.field != c.field {
			continue
		}
		sub.fn(c)
	}
	done = true
}
