// Package dedupe provides an insertion-ordered set of ids.
//
// The pipeline uses it to collapse repeated participant ids into a stable,
// first-seen ordering so that registry filtering and missing-participant
// notices do not depend on map iteration order.
package dedupe

// Deduper records ids and remembers the order they were first seen in.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. Empty ids are never recorded and always report true.
	SeenAndRecord(id string) bool

	// Contains reports whether id has been recorded.
	Contains(id string) bool

	// Values returns the recorded ids in first-seen order.
	Values() []string

	Size() int
}

type orderedSet struct {
	seen  map[string]struct{}
	order []string
}

// New creates an empty Deduper.
func New(opts ...Option) Deduper {
	s := &orderedSet{}
	for _, opt := range opts {
		opt(s)
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	return s
}

// FromValues builds a Deduper holding ids, skipping empties and repeats.
func FromValues(ids []string) Deduper {
	d := New(WithCapacity(len(ids)))
	for _, id := range ids {
		d.SeenAndRecord(id)
	}
	return d
}

func (s *orderedSet) SeenAndRecord(id string) bool {
	if id == "" {
		return true
	}
	if _, ok := s.seen[id]; ok {
		return true
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return false
}

func (s *orderedSet) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *orderedSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *orderedSet) Size() int {
	return len(s.order)
}
