package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis key prefix for cached availability views
	availabilityKeyPrefix = "availability:"

	// Timeout for individual Redis operations on the write path
	cacheWriteTimeout = 2 * time.Second
)

// AvailabilityCache is a short-lived read cache in front of the availability
// query. It is never authoritative: entries carry a TTL no longer than the
// client polling interval, and every write path (booking create, cancel)
// invalidates the affected (doctor, date) key. A miss or a Redis failure
// simply falls through to the database.
//
// All methods are nil-safe so tests and redis-less deployments can pass a
// nil cache.
type AvailabilityCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

func NewAvailabilityCache(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

func availabilityKey(doctorID uuid.UUID, date string) string {
	return fmt.Sprintf("%s%s:%s", availabilityKeyPrefix, doctorID, date)
}

// Get returns the cached slot list for (doctor, date) and whether it was
// present. Redis errors count as a miss.
func (c *AvailabilityCache) Get(ctx context.Context, doctorID uuid.UUID, date string) ([]string, bool) {
	if c == nil || c.redisClient == nil {
		return nil, false
	}

	raw, err := c.redisClient.Get(ctx, availabilityKey(doctorID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debugf("Availability cache read failed for %s %s: %+v", doctorID, date, err)
		}
		return nil, false
	}

	var slots []string
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.log.Warnf("Discarding malformed availability cache entry for %s %s: %+v", doctorID, date, err)
		return nil, false
	}
	return slots, true
}

// Set stores the slot list with the configured TTL. Best effort.
func (c *AvailabilityCache) Set(ctx context.Context, doctorID uuid.UUID, date string, slots []string) {
	if c == nil || c.redisClient == nil {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.redisClient.Set(ctx, availabilityKey(doctorID, date), raw, c.ttl).Err(); err != nil {
		c.log.Debugf("Availability cache write failed for %s %s: %+v", doctorID, date, err)
	}
}

// Invalidate drops the cached view covering the given slot timestamp so the
// next poll recomputes against committed state. Called after every booking
// create and cancel; uses its own timeout because the request context may
// already be done.
func (c *AvailabilityCache) Invalidate(doctorID uuid.UUID, scheduledAt time.Time) {
	if c == nil || c.redisClient == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	date := scheduledAt.Format("2006-01-02")
	if err := c.redisClient.Del(ctx, availabilityKey(doctorID, date)).Err(); err != nil {
		c.log.Warnf("Failed to invalidate availability cache for %s %s (non-fatal): %+v", doctorID, date, err)
	}
}
