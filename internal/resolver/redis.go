package resolver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs the resolver with a redis hash so that parallel batch workers
// in separate processes can share one mapping. The hash lives under a
// per-run key and is deleted on Close; a TTL guards against leaked runs.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ Resolver = (*Redis)(nil)

// NewRedis creates a resolver for one import run identified by runID.
func NewRedis(client *redis.Client, runID string) *Redis {
	return &Redis{
		client: client,
		key:    "heritage:import:xrefs:" + runID,
		ttl:    2 * time.Hour,
	}
}

func (r *Redis) Put(ctx context.Context, xref string, id uint) error {
	set, err := r.client.HSetNX(ctx, r.key, xref, strconv.FormatUint(uint64(id), 10)).Result()
	if err != nil {
		return fmt.Errorf("resolver put %s: %w", xref, err)
	}
	if !set {
		return duplicateErr(xref)
	}
	// Fire-and-forget TTL refresh: the mapping is already stored, and a
	// missed refresh only delays cleanup of a leaked run. Close deletes the
	// key on every normal path.
	_ = r.client.Expire(ctx, r.key, r.ttl).Err()
	return nil
}

func (r *Redis) Get(ctx context.Context, xref string) (uint, bool) {
	value, err := r.client.HGet(ctx, r.key, xref).Result()
	if err != nil {
		// redis.Nil and transport errors both mean the reference cannot be
		// resolved right now; callers skip the relationship either way.
		return 0, false
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (r *Redis) Close(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
