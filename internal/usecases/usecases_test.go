package usecases_test

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"cinematch/internal/domain"
)

// stubCatalog answers catalog calls through per-endpoint functions and counts them.
type stubCatalog struct {
	mu              sync.Mutex
	discover        func(q url.Values, page int) (domain.CatalogPage, error)
	search          func(q url.Values, page int) (domain.CatalogPage, error)
	discoverQueries []url.Values
	searchQueries   []url.Values
}

func (s *stubCatalog) Discover(ctx context.Context, q url.Values, page int) (domain.CatalogPage, error) {
	s.mu.Lock()
	s.discoverQueries = append(s.discoverQueries, q)
	s.mu.Unlock()
	if s.discover == nil {
		return domain.CatalogPage{Page: page}, nil
	}
	return s.discover(q, page)
}

func (s *stubCatalog) Search(ctx context.Context, q url.Values, page int) (domain.CatalogPage, error) {
	s.mu.Lock()
	s.searchQueries = append(s.searchQueries, q)
	s.mu.Unlock()
	if s.search == nil {
		return domain.CatalogPage{Page: page}, nil
	}
	return s.search(q, page)
}

func (s *stubCatalog) discoverCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.discoverQueries)
}

func (s *stubCatalog) searchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.searchQueries)
}

// movieSource hands out movies with unique ids.
type movieSource struct {
	mu   sync.Mutex
	next int
}

func (m *movieSource) page(page, n, year int, genres ...string) domain.CatalogPage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := domain.CatalogPage{Page: page, TotalPages: 5}
	for range n {
		m.next++
		out.Movies = append(out.Movies, domain.Movie{
			ID:          fmt.Sprintf("m%d", m.next),
			Title:       fmt.Sprintf("Movie %d", m.next),
			PosterURL:   "https://image.tmdb.org/t/p/w500/p.jpg",
			Genres:      genres,
			ReleaseYear: year,
		})
	}
	return out
}

// stubExtractor returns a fixed extract or error.
type stubExtractor struct {
	extract *domain.LLMExtract
	err     error
	panics  bool
}

func (s *stubExtractor) Extract(ctx context.Context, query string) (*domain.LLMExtract, error) {
	if s.panics {
		panic("extractor exploded")
	}
	return s.extract, s.err
}

// memoryCache is a map-backed Cache.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// recordingRecorder keeps every recorded event.
type recordingRecorder struct {
	mu     sync.Mutex
	events []domain.SearchEvent
	err    error
}

func (r *recordingRecorder) Record(ctx context.Context, e domain.SearchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}
