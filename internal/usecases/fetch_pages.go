package usecases

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/goccy/go-json"

	"cinematch/internal/domain"
	"cinematch/internal/metrics"
	"cinematch/pkg/log"
)

// PageFetcher fetches several catalog pages at once and joins whatever succeeded.
type PageFetcher struct {
	catalog Catalog
	cache   Cache
}

// NewPageFetcher creates a new PageFetcher. A nil cache disables caching.
func NewPageFetcher(catalog Catalog, cache Cache) *PageFetcher {
	if cache == nil {
		cache = noopCache{}
	}
	return &PageFetcher{catalog: catalog, cache: cache}
}

// Fetch requests pages 1..pages concurrently. A failed page is logged and
// left out; it never fails its siblings. Movies come back in page order with
// duplicates removed.
func (f *PageFetcher) Fetch(ctx context.Context, path domain.Path, query url.Values, pages int) []domain.Movie {
	results := make([][]domain.Movie, pages)

	var wg sync.WaitGroup
	for i := range pages {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			movies, err := f.fetchPage(ctx, path, query, page)
			if err != nil {
				log.GlobalWarnCtx(ctx, "catalog page failed",
					"path", string(path), "page", page, "error", err.Error())
				return
			}
			results[page-1] = movies
		}(i + 1)
	}
	wg.Wait()

	var out []domain.Movie
	seen := make(map[string]bool)
	for _, movies := range results {
		for _, m := range movies {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			out = append(out, m)
		}
	}
	return out
}

func (f *PageFetcher) fetchPage(ctx context.Context, path domain.Path, query url.Values, page int) ([]domain.Movie, error) {
	key := pageKey(path, query, page)
	if data, found := f.cache.Get(ctx, key); found {
		var cached domain.CatalogPage
		if err := json.Unmarshal(data, &cached); err == nil {
			metrics.CacheLookups.WithLabelValues("page", "hit").Inc()
			return cached.Movies, nil
		}
	}
	metrics.CacheLookups.WithLabelValues("page", "miss").Inc()

	var (
		result domain.CatalogPage
		err    error
	)
	if path == domain.PathSearch {
		result, err = f.catalog.Search(ctx, query, page)
	} else {
		result, err = f.catalog.Discover(ctx, query, page)
	}
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		f.cache.Set(ctx, key, data)
	}
	return result.Movies, nil
}

// pageKey is stable for equal queries since url.Values.Encode sorts by key.
func pageKey(path domain.Path, query url.Values, page int) string {
	return "page:" + string(path) + ":" + query.Encode() + ":" + strconv.Itoa(page)
}
