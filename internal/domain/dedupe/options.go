package dedupe

// Option applies a configuration option to a Deduper.
type Option func(*orderedSet)

// WithCapacity preallocates room for n ids.
func WithCapacity(n int) Option {
	return func(s *orderedSet) {
		if n > 0 {
			s.seen = make(map[string]struct{}, n)
			s.order = make([]string, 0, n)
		}
	}
}
