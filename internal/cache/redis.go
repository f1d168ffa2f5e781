package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/actuallystonmai/bookshelf/internal/domain"
	"github.com/actuallystonmai/bookshelf/internal/logging"
	"github.com/actuallystonmai/bookshelf/internal/metrics"
)

const (
	defaultTTL = 10 * time.Minute
	keyPrefix  = "rec:"
)

// Key identifies one recommendation result. Seed order does not matter.
type Key struct {
	Fingerprint string
	SeedIDs     []int64
	PageRange   *domain.PageRange
	Aggregation domain.Aggregation
	Limit       int
}

func (k Key) String() string {
	seeds := slices.Clone(k.SeedIDs)
	slices.Sort(seeds)
	parts := make([]string, len(seeds))
	for i, id := range seeds {
		parts[i] = strconv.FormatInt(id, 10)
	}

	pages := "all"
	if k.PageRange != nil {
		pages = fmt.Sprintf("%d-%d", k.PageRange.Min, k.PageRange.Max)
	}

	return fmt.Sprintf("%s%s:seeds:%s:pages:%s:agg:%s:limit:%d",
		keyPrefix, k.Fingerprint, strings.Join(parts, ","), pages, k.Aggregation, k.Limit)
}

type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[any]
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{
		client:  client,
		ttl:     ttl,
		breaker: newBreaker("redis-cache"),
	}
}

// newBreaker opens after five consecutive failures so a dead Redis costs
// one fast rejection per request instead of a network timeout.
func newBreaker(name string) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[cache] circuit breaker state change")
		},
	})
}

// Get returns found=false on a miss.
func (c *Cache) Get(ctx context.Context, key Key) ([]domain.ScoredBook, bool, error) {
	k := key.String()
	val, err := c.breaker.Execute(func() (any, error) {
		v, err := c.client.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return v, err
	})
	if err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		return nil, false, fmt.Errorf("get recommendations from cache: %w", err)
	}
	if val == nil {
		metrics.CacheMisses.Inc()
		return nil, false, nil
	}

	var recs []domain.ScoredBook
	if err := json.Unmarshal(val.([]byte), &recs); err != nil {
		metrics.CacheErrors.WithLabelValues("decode").Inc()
		return nil, false, fmt.Errorf("unmarshal recommendations %s: %w", k, err)
	}
	metrics.CacheHits.Inc()
	return recs, true, nil
}

func (c *Cache) Set(ctx context.Context, key Key, recs []domain.ScoredBook) error {
	val, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	_, err = c.breaker.Execute(func() (any, error) {
		return nil, c.client.Set(ctx, key.String(), val, c.ttl).Err()
	})
	if err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("set recommendations in cache: %w", err)
	}
	return nil
}

// ClearStale removes results cached for any snapshot other than fingerprint.
func (c *Cache) ClearStale(ctx context.Context, fingerprint string) (int, error) {
	current := keyPrefix + fingerprint + ":"
	removed := 0
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if strings.HasPrefix(iter.Val(), current) {
			continue
		}
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
		removed++
	}
	return removed, iter.Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
