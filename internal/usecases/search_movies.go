package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinematch/internal/domain"
	"cinematch/internal/intent"
	"cinematch/internal/metrics"
	"cinematch/pkg/log"
)

// MaxResults caps the movies returned or streamed for one query.
const MaxResults = 100

// SearchMoviesUseCase turns a free-text request into ranked movies.
type SearchMoviesUseCase struct {
	rules     *intent.Rules
	extractor IntentExtractor
	fetcher   *PageFetcher
	recorder  SearchRecorder
	minVotes  int
	now       func() time.Time
}

// NewSearchMoviesUseCase creates a new SearchMoviesUseCase. extractor and
// recorder may be nil; minVotes <= 0 uses DefaultMinVotes.
func NewSearchMoviesUseCase(rules *intent.Rules, extractor IntentExtractor, fetcher *PageFetcher, recorder SearchRecorder, minVotes int) *SearchMoviesUseCase {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if minVotes <= 0 {
		minVotes = DefaultMinVotes
	}
	return &SearchMoviesUseCase{
		rules:     rules,
		extractor: extractor,
		fetcher:   fetcher,
		recorder:  recorder,
		minVotes:  minVotes,
		now:       time.Now,
	}
}

// Execute interprets the query, walks the fallback ladder and returns the
// mood-ranked result in one piece.
func (uc *SearchMoviesUseCase) Execute(ctx context.Context, query string) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrValidation
	}
	ctx = log.WithFields(ctx, "query", query, "mode", "batch")

	parsed, llmUsed, err := uc.interpret(ctx, query)
	if err != nil {
		return nil, err
	}
	debug := uc.debugFor(parsed, llmUsed)

	res := newLadder(uc.fetcher, uc.minVotes, uc.now(), nil).run(ctx, parsed)
	debug.Steps = res.Steps
	debug.Fallback = res.Fallback

	movies := uc.rules.FilterByMood(res.Movies, parsed.MoodTags)
	if len(movies) > MaxResults {
		movies = movies[:MaxResults]
	}
	if movies == nil {
		movies = []domain.Movie{}
	}

	result := &domain.SearchResult{
		Type:   responseType(parsed),
		Movies: movies,
		Mood:   parsed.MoodTags,
		Debug:  debug,
	}
	metrics.SearchRequests.WithLabelValues(string(result.Type), "batch").Inc()
	uc.record(ctx, query, result.Type, debug, len(movies), false)

	log.GlobalInfoCtx(ctx, "search served",
		"path", string(debug.Path), "steps", strings.Join(debug.Steps, ","), "count", len(movies))
	return result, nil
}

// Stream runs the same flow as Execute but hands results to emit as the
// ladder produces them: one meta event, mood-filtered batch events capped at
// MaxResults in total, then one done event. done is emitted even when the
// flow fails or panics. Returns the number of movies emitted.
func (uc *SearchMoviesUseCase) Stream(ctx context.Context, query string, emit func(domain.StreamEvent)) (count int) {
	query = strings.TrimSpace(query)
	ctx = log.WithFields(ctx, "query", query, "mode", "stream")
	metaSent := false
	var debug domain.Debug

	defer func() {
		if r := recover(); r != nil {
			log.GlobalErrorCtx(ctx, "stream aborted", "panic", fmt.Sprint(r))
		}
		if !metaSent {
			emit(domain.MetaEvent(debug))
		}
		emit(domain.DoneEvent(count))
		metrics.SearchRequests.WithLabelValues(string(responseType(debug.Parsed)), "stream").Inc()
		uc.record(ctx, query, responseType(debug.Parsed), debug, count, true)
	}()

	if query == "" {
		return 0
	}

	parsed, llmUsed, err := uc.interpret(ctx, query)
	debug = uc.debugFor(parsed, llmUsed)
	emit(domain.MetaEvent(debug))
	metaSent = true
	if err != nil {
		log.GlobalErrorCtx(ctx, "stream interpretation failed", "error", err.Error())
		return 0
	}

	res := newLadder(uc.fetcher, uc.minVotes, uc.now(), func(batch []domain.Movie) {
		if count >= MaxResults {
			return
		}
		ranked := uc.rules.FilterByMood(batch, parsed.MoodTags)
		if room := MaxResults - count; len(ranked) > room {
			ranked = ranked[:room]
		}
		if len(ranked) == 0 {
			return
		}
		emit(domain.BatchEvent(ranked))
		count += len(ranked)
	}).run(ctx, parsed)

	debug.Steps = res.Steps
	debug.Fallback = res.Fallback
	return count
}

// interpret merges heuristic and model intent. Model failures other than an
// unparseable answer fall back to the heuristic intent; a parse failure is
// returned together with the heuristic intent.
func (uc *SearchMoviesUseCase) interpret(ctx context.Context, query string) (domain.ParsedQuery, bool, error) {
	heuristic := uc.rules.Parse(query)
	if uc.extractor == nil {
		return heuristic, false, nil
	}

	extract, err := uc.extractor.Extract(ctx, query)
	switch {
	case err == nil:
		metrics.LLMExtractions.WithLabelValues("ok").Inc()
		return uc.rules.Merge(heuristic, extract), true, nil
	case errors.Is(err, domain.ErrParse):
		metrics.LLMExtractions.WithLabelValues("parse").Inc()
		return heuristic, false, fmt.Errorf("extract intent: %w", err)
	case errors.Is(err, domain.ErrConfiguration):
		metrics.LLMExtractions.WithLabelValues("config").Inc()
	case errors.Is(err, domain.ErrExtractSchema):
		metrics.LLMExtractions.WithLabelValues("schema").Inc()
	default:
		metrics.LLMExtractions.WithLabelValues("error").Inc()
	}
	log.GlobalWarnCtx(ctx, "model extraction unavailable, using heuristic intent", "error", err.Error())
	return heuristic, false, nil
}

func (uc *SearchMoviesUseCase) debugFor(parsed domain.ParsedQuery, llmUsed bool) domain.Debug {
	path, upstream := upstreamQuery(parsed, uc.minVotes, uc.now())
	return domain.Debug{
		Path:          path,
		UpstreamQuery: upstream,
		MoodFilters:   parsed.MoodTags,
		Parsed:        parsed,
		LLMUsed:       llmUsed,
	}
}

func (uc *SearchMoviesUseCase) record(ctx context.Context, query string, typ domain.ResponseType, debug domain.Debug, count int, streamed bool) {
	if query == "" {
		return
	}
	err := uc.recorder.Record(ctx, domain.SearchEvent{
		RequestID:   log.RequestIDFromContext(ctx),
		Query:       query,
		Type:        typ,
		Path:        debug.Path,
		Steps:       debug.Steps,
		ResultCount: count,
		Streamed:    streamed,
	})
	if err != nil {
		log.GlobalWarnCtx(ctx, "search event not recorded", "error", err.Error())
	}
}

func responseType(q domain.ParsedQuery) domain.ResponseType {
	if q.Subjective {
		return domain.ResponseVibe
	}
	return domain.ResponseFactual
}
