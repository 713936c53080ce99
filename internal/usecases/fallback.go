package usecases

import (
	"context"
	"net/url"
	"sort"
	"time"

	"cinematch/internal/domain"
	"cinematch/internal/metrics"
	"cinematch/pkg/log"
)

// MinResults is the result count the fallback ladder tries to reach.
const MinResults = 10

// ladderResult is the outcome of one walk down the fallback ladder.
type ladderResult struct {
	Movies   []domain.Movie
	Steps    []string
	Fallback string // last relaxation taken, empty when the initial step sufficed
}

// ladder runs the initial retrieval and the ordered relaxations. Every step
// runs at most once. Each step's new, unique movies are handed to emit as
// soon as the step finishes.
type ladder struct {
	fetcher  *PageFetcher
	minVotes int
	now      time.Time
	emit     func([]domain.Movie)

	movies []domain.Movie
	seen   map[string]bool
	steps  []string
}

func newLadder(fetcher *PageFetcher, minVotes int, now time.Time, emit func([]domain.Movie)) *ladder {
	if emit == nil {
		emit = func([]domain.Movie) {}
	}
	return &ladder{
		fetcher:  fetcher,
		minVotes: minVotes,
		now:      now,
		emit:     emit,
		seen:     make(map[string]bool),
	}
}

func (l *ladder) run(ctx context.Context, q domain.ParsedQuery) ladderResult {
	if SelectPath(q) == domain.PathSearch {
		l.runSearch(ctx, q)
	} else {
		l.runDiscover(ctx, q)
	}

	res := ladderResult{Movies: l.movies, Steps: l.steps}
	if n := len(l.steps); n > 1 {
		res.Fallback = l.steps[n-1]
	}
	return res
}

func (l *ladder) runSearch(ctx context.Context, q domain.ParsedQuery) {
	l.step(ctx, domain.StepInitial, l.search(ctx, q))
	if l.enough() {
		return
	}
	l.step(ctx, domain.StepDiscoverFallback, l.discover(ctx, q, QueryOptions{}))
}

func (l *ladder) runDiscover(ctx context.Context, q domain.ParsedQuery) {
	l.step(ctx, domain.StepInitial, l.discover(ctx, q, QueryOptions{}))
	if l.enough() {
		return
	}

	relaxed := l.discover(ctx, q, QueryOptions{RelaxVotes: true})
	l.step(ctx, domain.StepRelaxVotes, relaxed)
	if l.enough() {
		return
	}

	years, ok := q.Years()
	if !ok {
		return
	}

	if len(relaxed) == 0 {
		unfiltered := l.discover(ctx, q, QueryOptions{RelaxVotes: true, DropYear: true, SuppressLatestWindow: true})
		l.step(ctx, domain.StepDropYear, sortByYearDistance(unfiltered, years))
		return
	}

	widened := l.discover(ctx, q, QueryOptions{RelaxVotes: true, WidenYears: true})
	l.step(ctx, domain.StepWidenYear, withinYears(widened, years))
	if l.enough() || q.TitleCandidate == "" {
		return
	}
	l.step(ctx, domain.StepSearchFallback, l.search(ctx, q))
}

func (l *ladder) discover(ctx context.Context, q domain.ParsedQuery, opts QueryOptions) []domain.Movie {
	opts.MinVotes = l.minVotes
	opts.Now = l.now
	return l.fetcher.Fetch(ctx, domain.PathDiscover, BuildDiscoverQuery(q, opts), DiscoverPages(q))
}

func (l *ladder) search(ctx context.Context, q domain.ParsedQuery) []domain.Movie {
	return l.fetcher.Fetch(ctx, domain.PathSearch, BuildSearchQuery(q), searchPages)
}

// step records a finished step and emits the movies not seen before.
func (l *ladder) step(ctx context.Context, name string, movies []domain.Movie) {
	l.steps = append(l.steps, name)
	metrics.FallbackSteps.WithLabelValues(name).Inc()

	var fresh []domain.Movie
	for _, m := range movies {
		if l.seen[m.ID] {
			continue
		}
		l.seen[m.ID] = true
		fresh = append(fresh, m)
	}
	log.GlobalDebugCtx(ctx, "ladder step", "step", name, "fetched", len(movies), "new", len(fresh))

	l.movies = append(l.movies, fresh...)
	if len(fresh) > 0 {
		l.emit(fresh)
	}
}

func (l *ladder) enough() bool {
	return len(l.movies) >= MinResults
}

// sortByYearDistance orders movies by distance from the requested years,
// preferring the later year and then the higher rating on ties.
func sortByYearDistance(movies []domain.Movie, years domain.YearRange) []domain.Movie {
	out := append([]domain.Movie(nil), movies...)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := yearDistance(out[i].ReleaseYear, years), yearDistance(out[j].ReleaseYear, years)
		if di != dj {
			return di < dj
		}
		if out[i].ReleaseYear != out[j].ReleaseYear {
			return out[i].ReleaseYear > out[j].ReleaseYear
		}
		return out[i].Rating > out[j].Rating
	})
	return out
}

func yearDistance(year int, years domain.YearRange) int {
	switch {
	case year < years.Start:
		return years.Start - year
	case year > years.End:
		return year - years.End
	default:
		return 0
	}
}

func withinYears(movies []domain.Movie, years domain.YearRange) []domain.Movie {
	var out []domain.Movie
	for _, m := range movies {
		if years.Contains(m.ReleaseYear) {
			out = append(out, m)
		}
	}
	return out
}

// upstreamQuery describes the initial request for debug output.
func upstreamQuery(q domain.ParsedQuery, minVotes int, now time.Time) (domain.Path, string) {
	path := SelectPath(q)
	var v url.Values
	if path == domain.PathSearch {
		v = BuildSearchQuery(q)
	} else {
		v = BuildDiscoverQuery(q, QueryOptions{MinVotes: minVotes, Now: now})
	}
	return path, "/" + string(path) + "/movie?" + v.Encode()
}
