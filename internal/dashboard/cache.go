package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gokatarajesh/lgs-tracker/internal/listing"
)

const defaultCacheTTL = 30 * time.Second

// OverviewCache stores computed overviews keyed by owner and view.
type OverviewCache interface {
	Get(ctx context.Context, ownerID string, scope listing.Scope, course string) (*Overview, error)
	Set(ctx context.Context, ownerID string, ov Overview) error
	Invalidate(ctx context.Context, ownerID string) error
}

// Cache keeps one Redis hash per owner with a field per scope and course, so
// a write by the owner drops every cached view with a single DEL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ OverviewCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl, prefix: "dashboard"}
}

func (c *Cache) key(ownerID string) string {
	return c.prefix + ":" + ownerID
}

func field(scope listing.Scope, course string) string {
	return string(scope) + "|" + course
}

// Get returns nil, nil on a miss.
func (c *Cache) Get(ctx context.Context, ownerID string, scope listing.Scope, course string) (*Overview, error) {
	data, err := c.client.HGet(ctx, c.key(ownerID), field(scope, course)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var ov Overview
	if err := json.Unmarshal(data, &ov); err != nil {
		return nil, err
	}
	return &ov, nil
}

func (c *Cache) Set(ctx context.Context, ownerID string, ov Overview) error {
	data, err := json.Marshal(ov)
	if err != nil {
		return err
	}
	key := c.key(ownerID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field(ov.Scope, ov.Course), data)
	pipe.Expire(ctx, key, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *Cache) Invalidate(ctx context.Context, ownerID string) error {
	return c.client.Del(ctx, c.key(ownerID)).Err()
}
