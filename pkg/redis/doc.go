// Package redis connects to a redis server and exposes it as a kv.Storage.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	storage := redis.NewStorage(client)
//	defer storage.Close()
//
// Multi-key writes go through MULTI/EXEC, so a subscription's plan and
// start time are stored or removed together. Healthcheck returns a probe
// suitable for readiness checks.
//
// Config is read from REDIS_URL, REDIS_RETRY_ATTEMPTS, REDIS_RETRY_INTERVAL
// and REDIS_CONNECT_TIMEOUT.
package redis
