// Package redis backs the session store with Redis.
//
// Connect creates a verified go-redis client from a redis:// or rediss://
// URL with retry logic; NewStore wraps a client as a session.Store whose
// records expire server-side via Redis TTLs.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	sessions := session.NewManager(redis.NewStore(client), cookies)
//
// Healthcheck returns a ping-based probe for readiness endpoints.
package redis
