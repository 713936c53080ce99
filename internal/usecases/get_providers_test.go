package usecases_test

import (
	"context"
	"errors"
	"testing"

	"cinematch/internal/usecases"
)

// MockLookup is a mock implementation of ProviderLookup.
type MockLookup struct {
	providers []string
	err       error
	calls     int
	region    string
}

func (m *MockLookup) WatchProviders(ctx context.Context, movieID, region string) ([]string, error) {
	m.calls++
	m.region = region
	if m.err != nil {
		return nil, m.err
	}
	return m.providers, nil
}

func TestGetProvidersUseCase_Execute_CacheHit(t *testing.T) {
	// Arrange
	cache := newMemoryCache()
	cache.Set(context.Background(), "providers:603:US", []byte(`["Cached Flix"]`))
	lookup := &MockLookup{providers: []string{"Fresh Flix"}}
	uc := usecases.NewGetProvidersUseCase(cache, lookup)

	// Act
	providers := uc.Execute(context.Background(), "603", "us")

	// Assert
	if len(providers) != 1 || providers[0] != "Cached Flix" {
		t.Errorf("expected cached providers, got %v", providers)
	}
	if lookup.calls != 0 {
		t.Errorf("expected no lookup on cache hit, got %d", lookup.calls)
	}
}

func TestGetProvidersUseCase_Execute_CacheMiss_StoresInCache(t *testing.T) {
	// Arrange
	cache := newMemoryCache()
	lookup := &MockLookup{providers: []string{"Netflix", "Hulu"}}
	uc := usecases.NewGetProvidersUseCase(cache, lookup)

	// Act
	providers := uc.Execute(context.Background(), "603", "")

	// Verify cache was populated
	cached, found := cache.Get(context.Background(), "providers:603:US")

	// Assert
	if len(providers) != 2 {
		t.Errorf("expected 2 providers, got %v", providers)
	}
	if lookup.region != usecases.DefaultRegion {
		t.Errorf("region: got %v, want %v", lookup.region, usecases.DefaultRegion)
	}
	if !found {
		t.Fatal("expected providers to be cached after lookup")
	}
	if string(cached) != `["Netflix","Hulu"]` {
		t.Errorf("cached value: got %s", cached)
	}
}

func TestGetProvidersUseCase_Execute_LookupError_ReturnsEmpty(t *testing.T) {
	// Arrange
	cache := newMemoryCache()
	lookup := &MockLookup{err: errors.New("upstream down")}
	uc := usecases.NewGetProvidersUseCase(cache, lookup)

	// Act
	providers := uc.Execute(context.Background(), "603", "GB")

	// Assert
	if providers == nil || len(providers) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", providers)
	}
	if _, found := cache.Get(context.Background(), "providers:603:GB"); found {
		t.Error("failed lookups must not be cached")
	}
}
