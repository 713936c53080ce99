package usecases

import (
	"context"
	"net/url"

	"cinematch/internal/domain"
)

// Catalog defines the movie catalog endpoints the search flow depends on.
type Catalog interface {
	Discover(ctx context.Context, query url.Values, page int) (domain.CatalogPage, error)
	Search(ctx context.Context, query url.Values, page int) (domain.CatalogPage, error)
}

// IntentExtractor defines the model-backed intent extraction.
type IntentExtractor interface {
	Extract(ctx context.Context, query string) (*domain.LLMExtract, error)
}

// ProviderLookup defines the per-title streaming provider lookup.
type ProviderLookup interface {
	WatchProviders(ctx context.Context, movieID, region string) ([]string, error)
}

// Cache defines the byte cache used for catalog pages and provider lists.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// SearchRecorder defines the analytics sink for served queries.
type SearchRecorder interface {
	Record(ctx context.Context, event domain.SearchEvent) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (noopCache) Set(context.Context, string, []byte)        {}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, domain.SearchEvent) error { return nil }
