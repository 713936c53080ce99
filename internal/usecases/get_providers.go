package usecases

import (
	"context"
	"strings"

	"github.com/goccy/go-json"

	"cinematch/internal/metrics"
	"cinematch/pkg/log"
)

// DefaultRegion is used when a providers request names no region.
const DefaultRegion = "US"

// GetProvidersUseCase handles retrieving streaming providers with a cache-first strategy.
type GetProvidersUseCase struct {
	cache  Cache
	lookup ProviderLookup
}

// NewGetProvidersUseCase creates a new GetProvidersUseCase. A nil cache disables caching.
func NewGetProvidersUseCase(cache Cache, lookup ProviderLookup) *GetProvidersUseCase {
	if cache == nil {
		cache = noopCache{}
	}
	return &GetProvidersUseCase{
		cache:  cache,
		lookup: lookup,
	}
}

// Execute returns the flat-rate provider names for a movie in a region.
// Lookup failures are logged and answered with an empty list.
func (uc *GetProvidersUseCase) Execute(ctx context.Context, movieID, region string) []string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	key := "providers:" + movieID + ":" + region

	// Check cache first
	if data, found := uc.cache.Get(ctx, key); found {
		var providers []string
		if err := json.Unmarshal(data, &providers); err == nil {
			metrics.CacheLookups.WithLabelValues("providers", "hit").Inc()
			log.GlobalDebugCtx(ctx, "cache hit", "movie_id", movieID, "region", region)
			return providers
		}
	}
	metrics.CacheLookups.WithLabelValues("providers", "miss").Inc()

	providers, err := uc.lookup.WatchProviders(ctx, movieID, region)
	if err != nil {
		log.GlobalWarnCtx(ctx, "provider lookup failed", "movie_id", movieID, "region", region, "error", err.Error())
		return []string{}
	}
	if providers == nil {
		providers = []string{}
	}

	if data, err := json.Marshal(providers); err == nil {
		uc.cache.Set(ctx, key, data)
	}
	return providers
}
