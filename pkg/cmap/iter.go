package cmap

// Range calls fn for every item until fn returns false.
// Each shard is snapshotted under its read lock, so fn may call back into
// the map.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		keys := make([]K, 0, len(s.items))
		values := make([]V, 0, len(s.items))
		for k, v := range s.items {
			keys = append(keys, k)
			values = append(values, v)
		}
		s.mu.RUnlock()

		for i := range keys {
			if !fn(keys[i], values[i]) {
				return
			}
		}
	}
}
