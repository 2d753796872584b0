// Package cmap provides a concurrent map implementation for minikv.
//
// The map is split into a power-of-two number of shards, each guarded by
// its own RWMutex. Shards are chosen with a caller-supplied Hasher; the
// package ships a murmur3-based hasher for int keys.
//
// Usage:
//
//	m := cmap.New[int, *Session](cmap.IntHasher)
//	m.Set(7, sess)
//	s, ok := m.Pop(7)
//
// Range snapshots one shard at a time, so callbacks may modify the map.
package cmap
