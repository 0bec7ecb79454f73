// Package cache provides a small generic LRU cache on top of
// github.com/hashicorp/golang-lru/v2 with hit and miss counters.
//
// The kv package layers it in front of remote storage backends so that
// repeated reads of the subscription keys do not round-trip to Redis,
// Postgres or Mongo:
//
//	c := cache.New[string, string](64)
//	c.Add("subscriptionPlan", "premium")
//	v, ok := c.Get("subscriptionPlan")
//
// All methods are safe for concurrent use. When the cache is full the least
// recently used entry is dropped.
package cache
