// Package refstore memoizes artifacts computed from type model nodes.
//
// An entry is reachable by two keys: an optional string id and the identity of
// the source node. Lookups try the id first, so two distinct nodes declaring
// the same id share one artifact.
package refstore

// Store caches artifacts of type V. The zero value is not usable; call New.
type Store[V any] struct {
	byID     map[string]V
	bySource map[any]V
	order    []V
}

func New[V any]() *Store[V] {
	return &Store[V]{
		byID:     make(map[string]V),
		bySource: make(map[any]V),
	}
}

// Get returns the artifact stored under id or source, computing and storing
// it on a miss. An empty id is never used as a key. source must be comparable;
// pointer nodes compare by identity.
func (s *Store[V]) Get(id string, source any, compute func() V) V {
	if v, ok := s.Lookup(id, source); ok {
		return v
	}
	v := compute()
	s.Put(id, source, v)
	return v
}

// Lookup reports a cached artifact without computing one.
func (s *Store[V]) Lookup(id string, source any) (V, bool) {
	if id != "" {
		if v, ok := s.byID[id]; ok {
			return v, true
		}
	}
	if source != nil {
		if v, ok := s.bySource[source]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Put stores v under both keys. Keys already in use keep their artifact.
func (s *Store[V]) Put(id string, source any, v V) {
	if _, ok := s.Lookup(id, source); !ok {
		s.order = append(s.order, v)
	}
	if _, ok := s.byID[id]; id != "" && !ok {
		s.byID[id] = v
	}
	if source == nil {
		return
	}
	if _, ok := s.bySource[source]; !ok {
		s.bySource[source] = v
	}
}

// All returns the stored artifacts in the order they were first stored.
func (s *Store[V]) All() []V {
	out := make([]V, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of distinct artifacts.
func (s *Store[V]) Len() int { return len(s.order) }
