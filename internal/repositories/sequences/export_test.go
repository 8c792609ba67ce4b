package sequences

// Seed sets a counter's current value so tests can start near the top of
// the range.
func (s *MemoryStore) Seed(name string, value uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] = value
}
