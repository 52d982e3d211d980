package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"property-service/internal/models"
)

const (
	// L1 cache (in-memory) TTL
	L1CacheTTL = 1 * time.Minute

	// L2 cache (Redis) TTL
	L2CacheTTL = 10 * time.Minute

	// Redis key prefix for house occupancy summaries
	OccupancyKeyPrefix = "occupancy:house:"
)

// L1CacheEntry represents an entry in the L1 cache
type L1CacheEntry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// OccupancyCache provides multi-layer caching for house occupancy
// summaries. Writers invalidate per house; stale reads last at most the
// L1 TTL.
type OccupancyCache struct {
	// L1 cache (in-memory)
	l1Cache sync.Map

	// L2 cache (Redis) - optional
	redisClient *redis.Client

	// Whether Redis is available
	redisEnabled bool
}

// NewOccupancyCache creates a new occupancy cache
func NewOccupancyCache(redisClient *redis.Client) *OccupancyCache {
	cache := &OccupancyCache{
		redisClient:  redisClient,
		redisEnabled: redisClient != nil,
	}

	// Start background cleanup for L1 cache
	go cache.cleanupL1Cache()

	return cache
}

// NewOccupancyCacheWithoutRedis creates a cache without Redis
func NewOccupancyCacheWithoutRedis() *OccupancyCache {
	cache := &OccupancyCache{
		redisEnabled: false,
	}

	go cache.cleanupL1Cache()

	return cache
}

// Get retrieves a house's occupancy summary (L1 first, then L2)
func (c *OccupancyCache) Get(houseID uuid.UUID) (*models.HouseOccupancy, bool) {
	key := c.houseKey(houseID)

	// Try L1 cache first
	if entry, ok := c.l1Cache.Load(key); ok {
		l1Entry := entry.(L1CacheEntry)
		if time.Now().Before(l1Entry.ExpiresAt) {
			if summary, ok := l1Entry.Data.(*models.HouseOccupancy); ok {
				return summary, true
			}
		}
		// Expired, remove from L1
		c.l1Cache.Delete(key)
	}

	// Try L2 cache (Redis)
	if c.redisEnabled {
		if summary, ok := c.getFromRedis(key); ok {
			// Populate L1 cache
			c.setL1Cache(key, summary)
			return summary, true
		}
	}

	return nil, false
}

// Set stores a summary in both L1 and L2 caches
func (c *OccupancyCache) Set(summary *models.HouseOccupancy) {
	key := c.houseKey(summary.HouseID)

	// Set in L1 cache
	c.setL1Cache(key, summary)

	// Set in L2 cache (Redis)
	if c.redisEnabled {
		c.setToRedis(key, summary, L2CacheTTL)
	}
}

// Invalidate drops the cached summary for one house
func (c *OccupancyCache) Invalidate(houseID uuid.UUID) {
	key := c.houseKey(houseID)
	c.l1Cache.Delete(key)

	if c.redisEnabled {
		c.redisClient.Del(context.Background(), key)
	}
}

// InvalidateAll clears every cached summary
func (c *OccupancyCache) InvalidateAll() {
	c.l1Cache.Range(func(key, _ interface{}) bool {
		c.l1Cache.Delete(key)
		return true
	})

	if c.redisEnabled {
		ctx := context.Background()
		keys, err := c.redisClient.Keys(ctx, OccupancyKeyPrefix+"*").Result()
		if err == nil && len(keys) > 0 {
			c.redisClient.Del(ctx, keys...)
		}
	}
}

// setL1Cache sets a value in the L1 cache
func (c *OccupancyCache) setL1Cache(key string, data interface{}) {
	c.l1Cache.Store(key, L1CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(L1CacheTTL),
	})
}

// houseKey generates a cache key for a house
func (c *OccupancyCache) houseKey(houseID uuid.UUID) string {
	return fmt.Sprintf("%s%s", OccupancyKeyPrefix, houseID)
}

// getFromRedis retrieves a summary from Redis
func (c *OccupancyCache) getFromRedis(key string) (*models.HouseOccupancy, bool) {
	ctx := context.Background()
	data, err := c.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var summary models.HouseOccupancy
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false
	}

	return &summary, true
}

// setToRedis stores a summary in Redis
func (c *OccupancyCache) setToRedis(key string, summary *models.HouseOccupancy, ttl time.Duration) {
	ctx := context.Background()
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	c.redisClient.Set(ctx, key, data, ttl)
}

// cleanupL1Cache periodically removes expired entries from L1 cache
func (c *OccupancyCache) cleanupL1Cache() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.l1Cache.Range(func(key, value interface{}) bool {
			entry := value.(L1CacheEntry)
			if now.After(entry.ExpiresAt) {
				c.l1Cache.Delete(key)
			}
			return true
		})
	}
}
