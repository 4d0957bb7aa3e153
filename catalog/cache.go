package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/timetable/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultCacheTTL = 10 * time.Minute

// Cached is a read-through redis cache in front of another Catalog.
// A nil client disables caching and every call goes to next.
type Cached struct {
	next Catalog
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCached(next Catalog, rdb *redis.Client, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl}
}

func (c *Cached) GetInstructor(ctx context.Context, id uuid.UUID) (*models.Instructor, error) {
	return readThrough(ctx, c, KindInstructor, id, c.next.GetInstructor)
}

func (c *Cached) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return readThrough(ctx, c, KindRoom, id, c.next.GetRoom)
}

func (c *Cached) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return readThrough(ctx, c, KindCourse, id, c.next.GetCourse)
}

func (c *Cached) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	return readThrough(ctx, c, KindGroup, id, c.next.GetGroup)
}

func (c *Cached) GetHourSlot(ctx context.Context, id uuid.UUID) (*models.HourSlot, error) {
	return readThrough(ctx, c, KindHourSlot, id, c.next.GetHourSlot)
}

// Invalidate drops a cached record after it was edited or deleted.
func (c *Cached) Invalidate(ctx context.Context, kind Kind, id uuid.UUID) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(kind, id)).Err(); err != nil {
		log.Printf("⚠️ Failed to invalidate cached %s %s: %v", kind, id, err)
	}
}

func cacheKey(kind Kind, id uuid.UUID) string {
	return fmt.Sprintf("catalog:%s:%s", kind, id)
}

func readThrough[T any](ctx context.Context, c *Cached, kind Kind, id uuid.UUID, load func(context.Context, uuid.UUID) (*T, error)) (*T, error) {
	if c.rdb == nil {
		return load(ctx, id)
	}

	key := cacheKey(kind, id)
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var record T
		if err := json.Unmarshal(data, &record); err == nil {
			return &record, nil
		}
		log.Printf("⚠️ Discarding unreadable cache entry %s", key)
	case !errors.Is(err, redis.Nil):
		log.Printf("🔥 Redis GET %s failed: %v", key, err)
	}

	record, err := load(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(record); err != nil {
		log.Printf("🔥 Failed to marshal %s for caching: %v", key, err)
	} else if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("🔥 Redis SET %s failed: %v", key, err)
	}
	return record, nil
}
