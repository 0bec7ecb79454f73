// Package kv defines the durable key/value contract the subscription store
// persists through, plus in-process implementations and decorators.
//
// Backends live in sibling packages (redis, sqlite, pg, mongo); this package
// only holds what every backend shares:
//
//   - Storage: synchronous Get/Set/Delete by string key. Get returns
//     ErrNotFound for absent keys, Delete of an absent key succeeds.
//   - Batch: optional all-or-nothing multi-key writes. SetAll and DeleteAll
//     use it when a backend provides it and fall back to ordered single
//     writes otherwise.
//   - NewMemory: map-backed Storage with an optional byte quota, used by tests
//     and the "memory" CLI backend.
//   - NewCached: write-through LRU read cache for remote backends.
//   - WithPrefix: namespaces keys, e.g. per signed-in user.
//
// Example:
//
//	store := kv.WithPrefix(kv.NewMemory(), "user:42:")
//	if err := kv.SetAll(ctx, store, kv.Pair{Key: "a", Value: "1"}, kv.Pair{Key: "b", Value: "2"}); err != nil {
//		return err
//	}
//	v, err := store.Get(ctx, "a")
//	if errors.Is(err, kv.ErrNotFound) {
//		// absent
//	}
package kv
