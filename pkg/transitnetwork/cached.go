package transitnetwork

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
)

const DefaultCacheExpiration = 90 * time.Minute

const routesCacheTag = "routeplanner/routes"

// Cached wraps a Network and keeps route lookups in redis. Lookups fall
// through to the wrapped Network whenever the cache misses or errors.
type Cached struct {
	Network

	Cache *cache.Cache[string]
}

func NewCached(network Network, client *redis.Client, expiration time.Duration) *Cached {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &Cached{
		Network: network,
		Cache:   cache.New[string](redisStore),
	}
}

func (c *Cached) FindRoutesServing(ctx context.Context, stop *ctdf.Stop) ([]*ctdf.Route, error) {
	cacheKey := fmt.Sprintf("routeplanner/routesserving/%s", stop.PrimaryIdentifier)

	return cachedLookup(ctx, c.Cache, cacheKey, func() ([]*ctdf.Route, error) {
		return c.Network.FindRoutesServing(ctx, stop)
	})
}

func (c *Cached) FindRoutesServingBoth(ctx context.Context, stopA *ctdf.Stop, stopB *ctdf.Stop) ([]*ctdf.Route, error) {
	cacheKey := fmt.Sprintf("routeplanner/routesservingboth/%s/%s", stopA.PrimaryIdentifier, stopB.PrimaryIdentifier)

	return cachedLookup(ctx, c.Cache, cacheKey, func() ([]*ctdf.Route, error) {
		return c.Network.FindRoutesServingBoth(ctx, stopA, stopB)
	})
}

func (c *Cached) GetRouteStops(ctx context.Context, route *ctdf.Route) ([]*ctdf.Stop, error) {
	cacheKey := fmt.Sprintf("routeplanner/routestops/%s", route.PrimaryIdentifier)

	return cachedLookup(ctx, c.Cache, cacheKey, func() ([]*ctdf.Stop, error) {
		return c.Network.GetRouteStops(ctx, route)
	})
}

func cachedLookup[T any](ctx context.Context, resultCache *cache.Cache[string], cacheKey string, lookup func() (T, error)) (T, error) {
	if cachedValue, err := resultCache.Get(ctx, cacheKey); err == nil {
		var result T
		if err := json.Unmarshal([]byte(cachedValue), &result); err == nil {
			return result, nil
		}
		log.Debug().Str("key", cacheKey).Msg("Discarding unreadable cache entry")
	}

	result, err := lookup()
	if err != nil {
		return result, err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Str("key", cacheKey).Msg("Failed to encode cache entry")
		return result, nil
	}

	if err := resultCache.Set(ctx, cacheKey, string(encoded), store.WithTags([]string{routesCacheTag})); err != nil {
		log.Error().Err(err).Str("key", cacheKey).Msg("Failed to store cache entry")
	}

	return result, nil
}

// InvalidateRoutes drops every cached route lookup. Call it whenever a route's
// stops or active flag change.
func (c *Cached) InvalidateRoutes(ctx context.Context) error {
	return c.Cache.Invalidate(ctx, store.WithInvalidateTags([]string{routesCacheTag}))
}
