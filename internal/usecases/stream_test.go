package usecases_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinematch/internal/domain"
	"cinematch/internal/usecases"
)

func collect(uc *usecases.SearchMoviesUseCase, query string) ([]domain.StreamEvent, int) {
	var events []domain.StreamEvent
	count := uc.Stream(context.Background(), query, func(e domain.StreamEvent) {
		events = append(events, e)
	})
	return events, count
}

// assertWellFormed checks meta first, done last and that batches add up to done.
func assertWellFormed(t *testing.T, events []domain.StreamEvent) int {
	t.Helper()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, domain.EventMeta, events[0].Type)
	require.NotNil(t, events[0].Debug)

	last := events[len(events)-1]
	require.Equal(t, domain.EventDone, last.Type)
	require.NotNil(t, last.Count)

	sum := 0
	for _, e := range events[1 : len(events)-1] {
		assert.Equal(t, domain.EventBatch, e.Type)
		assert.NotEmpty(t, e.Movies)
		sum += len(e.Movies)
	}
	assert.Equal(t, *last.Count, sum)
	return sum
}

func TestStream_EmitsBatchPerLadderStep(t *testing.T) {
	// Arrange
	src := &movieSource{}
	catalog := &stubCatalog{
		discover: func(q url.Values, page int) (domain.CatalogPage, error) {
			return src.page(page, 1, 2019, "Thriller"), nil
		},
	}
	uc := newSearch(catalog, nil, nil)

	// Act
	events, count := collect(uc, "korean thrillers from 2019")

	// Assert
	sum := assertWellFormed(t, events)
	assert.Equal(t, 6, sum)
	assert.Equal(t, 6, count)
	assert.Len(t, events, 5) // meta, three batches, done
	assert.Equal(t, domain.PathDiscover, events[0].Debug.Path)
}

func TestStream_CapsCumulativeCount(t *testing.T) {
	src := &movieSource{}
	catalog := &stubCatalog{
		discover: func(q url.Values, page int) (domain.CatalogPage, error) {
			return src.page(page, 40, 2015, "Comedy"), nil
		},
	}
	uc := newSearch(catalog, nil, nil)

	events, count := collect(uc, "animated comedies")

	assert.Equal(t, usecases.MaxResults, assertWellFormed(t, events))
	assert.Equal(t, usecases.MaxResults, count)
}

func TestStream_BatchesAreMoodFiltered(t *testing.T) {
	catalog := &stubCatalog{
		discover: func(q url.Values, page int) (domain.CatalogPage, error) {
			if page > 1 {
				return domain.CatalogPage{Page: page}, nil
			}
			return domain.CatalogPage{Page: 1, Movies: []domain.Movie{
				{ID: "war", Genres: []string{"War"}},
				{ID: "comedy", Genres: []string{"Comedy"}},
			}}, nil
		},
	}
	uc := newSearch(catalog, nil, nil)

	events, _ := collect(uc, "something funny")

	assertWellFormed(t, events)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"comedy"}, movieIDs(events[1].Movies))
	assert.Equal(t, []string{"funny", "lighthearted"}, events[0].Debug.MoodFilters)
}

func TestStream_NoResults_StillTerminates(t *testing.T) {
	uc := newSearch(&stubCatalog{}, nil, nil)

	events, count := collect(uc, "90s westerns")

	assert.Equal(t, 0, assertWellFormed(t, events))
	assert.Equal(t, 0, count)
	assert.Len(t, events, 2)
}

func TestStream_ParseError_EndsWithDone(t *testing.T) {
	catalog := &stubCatalog{}
	uc := newSearch(catalog, &stubExtractor{err: domain.ErrParse}, nil)

	events, _ := collect(uc, "hindi dramas")

	assertWellFormed(t, events)
	assert.Len(t, events, 2)
	assert.Equal(t, 0, catalog.discoverCalls())
}

func TestStream_Panic_EndsWithDone(t *testing.T) {
	uc := newSearch(&stubCatalog{}, &stubExtractor{panics: true}, nil)

	events, count := collect(uc, "hindi dramas")

	assertWellFormed(t, events)
	assert.Equal(t, 0, count)
}

func TestStream_RecordsStreamedEvent(t *testing.T) {
	src := &movieSource{}
	catalog := &stubCatalog{
		discover: func(q url.Values, page int) (domain.CatalogPage, error) {
			return src.page(page, 10, 2019, "Drama"), nil
		},
	}
	recorder := &recordingRecorder{}
	uc := newSearch(catalog, nil, recorder)

	_, count := collect(uc, "hindi dramas")

	require.Len(t, recorder.events, 1)
	assert.True(t, recorder.events[0].Streamed)
	assert.Equal(t, count, recorder.events[0].ResultCount)
	assert.Equal(t, []string{domain.StepInitial}, recorder.events[0].Steps)
}
