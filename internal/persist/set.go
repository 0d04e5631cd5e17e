package persist

// Set is a persistent, copy-on-write set built on top of Map.
type Set[K comparable] struct {
	m Map[K, struct{}]
}

// NewSet returns an empty Set.
func NewSet[K comparable]() Set[K] {
	return Set[K]{m: New[K, struct{}]()}
}

// Len reports the number of elements in the set.
func (s Set[K]) Len() int { return s.m.Len() }

// Has reports whether key is a member of the set.
func (s Set[K]) Has(key K) bool { return s.m.Has(key) }

// Add returns a new Set with key added.
func (s Set[K]) Add(key K) Set[K] {
	return Set[K]{m: s.m.Set(key, struct{}{})}
}

// Remove returns a new Set with key removed.
func (s Set[K]) Remove(key K) Set[K] {
	return Set[K]{m: s.m.Delete(key)}
}

// Range calls fn for every element of the set in an unspecified order,
// stopping early if fn returns false.
func (s Set[K]) Range(fn func(key K) bool) {
	s.m.Range(func(k K, _ struct{}) bool { return fn(k) })
}
