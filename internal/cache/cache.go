// Package cache is a versioned memoization layer for analytics results.
// Each (user, metric) has a redis version counter; values live under
// version-suffixed keys, so bumping the counter orphans the old value
// instead of racing a delete against concurrent readers. A small
// freecache layer in front of redis absorbs repeated reads, safe because
// a versioned key's value never changes once written.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mkovacev/liftwatch/internal/telemetry/metrics"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultTTL garbage-collects value blobs, current version included;
	// an expired current value is just recomputed on the next fetch.
	DefaultTTL = 12 * time.Hour

	localCacheSize = 10 * 1024 * 1024
	localTTL       = 60 // seconds
)

// Invalidator bumps the version counters for a user's metric keys.
type Invalidator interface {
	Invalidate(ctx context.Context, userID int, keys ...string) error
}

type Analytics struct {
	rdb     redis.Cmdable
	local   *freecache.Cache
	metrics *metrics.Manager
	ttl     time.Duration
}

func NewAnalytics(rdb redis.Cmdable, metricsManager *metrics.Manager) *Analytics {
	return &Analytics{
		rdb:     rdb,
		local:   freecache.NewCache(localCacheSize),
		metrics: metricsManager,
		ttl:     DefaultTTL,
	}
}

func versionKey(userID int, metricKey string) string {
	return fmt.Sprintf("analytics:version:%d:%s", userID, metricKey)
}

func valueKey(userID int, metricKey string, version int64) string {
	return fmt.Sprintf("analytics:value:%d:%s:v%d", userID, metricKey, version)
}

// version reads the current version counter; an absent counter means
// version 1.
func (a *Analytics) version(ctx context.Context, userID int, metricKey string) (int64, error) {
	v, err := a.rdb.Get(ctx, versionKey(userID, metricKey)).Int64()
	if err == redis.Nil {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	if v < 1 {
		v = 1
	}
	return v, nil
}

// Invalidate atomically bumps the version counter for each key. Old
// value blobs are left to expire on their own.
func (a *Analytics) Invalidate(ctx context.Context, userID int, keys ...string) error {
	for _, key := range keys {
		v, err := a.rdb.Incr(ctx, versionKey(userID, key)).Result()
		if err != nil {
			return fmt.Errorf("incr version %s: %w", key, err)
		}
		if v == 1 {
			// the counter was absent, and an absent counter already
			// means version 1: bump once more to move past it
			if err := a.rdb.Incr(ctx, versionKey(userID, key)).Err(); err != nil {
				return fmt.Errorf("incr version %s: %w", key, err)
			}
		}
		a.metrics.CounterCacheInvalidations.Inc()
	}
	return nil
}

// Fetch returns the memoized value for (userID, metricKey) at its
// current version, calling compute and storing the result on a miss.
// Cache infrastructure failures degrade to a direct compute.
func Fetch[T any](ctx context.Context, a *Analytics, userID int, metricKey string, compute func(ctx context.Context) (T, error)) (T, error) {
	var value T

	version, err := a.version(ctx, userID, metricKey)
	if err != nil {
		log.Warnf("analytics cache [%s]: %s, computing directly", metricKey, err)
		return compute(ctx)
	}
	key := valueKey(userID, metricKey, version)

	if blob, err := a.local.Get([]byte(key)); err == nil {
		if err := json.Unmarshal(blob, &value); err == nil {
			a.metrics.CounterCacheHits.WithLabelValues(metricKey).Inc()
			return value, nil
		}
	}

	blob, err := a.rdb.Get(ctx, key).Bytes()
	if err == nil {
		if err := json.Unmarshal(blob, &value); err != nil {
			return value, fmt.Errorf("unmarshal cached %s: %w", metricKey, err)
		}
		if err := a.local.Set([]byte(key), blob, localTTL); err != nil {
			log.Tracef("analytics cache [%s]: local set: %s", metricKey, err)
		}
		a.metrics.CounterCacheHits.WithLabelValues(metricKey).Inc()
		return value, nil
	}
	if err != redis.Nil {
		log.Warnf("analytics cache [%s]: %s, computing directly", metricKey, err)
		return compute(ctx)
	}

	a.metrics.CounterCacheMisses.WithLabelValues(metricKey).Inc()

	value, err = compute(ctx)
	if err != nil {
		return value, err
	}

	blob, err = json.Marshal(value)
	if err != nil {
		return value, fmt.Errorf("marshal %s: %w", metricKey, err)
	}
	if err := a.rdb.Set(ctx, key, blob, a.ttl).Err(); err != nil {
		log.Warnf("analytics cache [%s]: store: %s", metricKey, err)
		return value, nil
	}
	if err := a.local.Set([]byte(key), blob, localTTL); err != nil {
		log.Tracef("analytics cache [%s]: local set: %s", metricKey, err)
	}
	return value, nil
}

// InvalidationScope deduplicates version bumps within one logical unit
// of work, such as a single notification refresh. The second bump for
// the same (user, key) in a scope is a no-op. Skipping it never affects
// correctness, only write volume: the version is already past every
// value cached before the scope began.
type InvalidationScope struct {
	inv Invalidator

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewInvalidationScope(inv Invalidator) *InvalidationScope {
	return &InvalidationScope{
		inv:  inv,
		seen: make(map[string]struct{}),
	}
}

func (s *InvalidationScope) Invalidate(ctx context.Context, userID int, keys ...string) error {
	s.mu.Lock()
	fresh := make([]string, 0, len(keys))
	for _, key := range keys {
		id := fmt.Sprintf("%d:%s", userID, key)
		if _, ok := s.seen[id]; ok {
			continue
		}
		s.seen[id] = struct{}{}
		fresh = append(fresh, key)
	}
	s.mu.Unlock()

	if len(fresh) == 0 {
		return nil
	}
	return s.inv.Invalidate(ctx, userID, fresh...)
}
