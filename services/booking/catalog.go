package booking

import (
	"context"
	"encoding/json"
	"time"

	providerRepo "hustlr/database/repository/provider"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const serviceTypesKey = "catalog:service_types"

// Catalog lists the service types offered by providers, cached in redis when
// a client is configured.
type Catalog struct {
	Providers providerRepo.ProviderRepository
	Cache     *redis.Client
	TTL       time.Duration
	Logger    *zap.Logger
}

func NewCatalog(providers providerRepo.ProviderRepository, cache *redis.Client, logger *zap.Logger) *Catalog {
	return &Catalog{Providers: providers, Cache: cache, TTL: 5 * time.Minute, Logger: logger}
}

// ServiceTypes returns the distinct service types. Cache failures fall back
// to the repository.
func (c *Catalog) ServiceTypes(ctx context.Context) ([]string, error) {
	if c.Cache != nil {
		data, err := c.Cache.Get(ctx, serviceTypesKey).Bytes()
		switch {
		case err == nil:
			var types []string
			if jsonErr := json.Unmarshal(data, &types); jsonErr == nil {
				return types, nil
			}
		case err != redis.Nil:
			c.Logger.Warn("service type cache read failed", zap.Error(err))
		}
	}

	types, err := c.Providers.DistinctServiceTypes(ctx)
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		if b, err := json.Marshal(types); err == nil {
			if err := c.Cache.Set(ctx, serviceTypesKey, b, c.TTL).Err(); err != nil {
				c.Logger.Warn("service type cache write failed", zap.Error(err))
			}
		}
	}
	return types, nil
}

// Invalidate drops the cached list, e.g. after a provider changes service type.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.Cache == nil {
		return
	}
	if err := c.Cache.Del(ctx, serviceTypesKey).Err(); err != nil {
		c.Logger.Warn("service type cache invalidation failed", zap.Error(err))
	}
}
