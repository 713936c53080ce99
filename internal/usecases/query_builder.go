package usecases

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinematch/internal/domain"
)

// Vote-count floors applied to discover queries.
const (
	DefaultMinVotes = 100
	TopMinVotes     = 500
	RelaxedMinVotes = 10
)

const (
	widePages          = 5
	narrowPages        = 2
	searchPages        = 2
	latestWindowMonths = 18
	dateLayout         = "2006-01-02"
)

// QueryOptions adjusts discover query construction for fallback steps.
type QueryOptions struct {
	RelaxVotes           bool
	SuppressLatestWindow bool
	DropYear             bool
	WidenYears           bool // start the release window one year early
	MinVotes             int  // base floor; 0 means DefaultMinVotes
	Now                  time.Time
}

// SelectPath picks title search when the intent has a title and no filters.
func SelectPath(q domain.ParsedQuery) domain.Path {
	if !q.HasFilters() && q.TitleCandidate != "" {
		return domain.PathSearch
	}
	return domain.PathDiscover
}

// BuildDiscoverQuery returns the discover parameters for a parsed intent.
func BuildDiscoverQuery(q domain.ParsedQuery, opts QueryOptions) url.Values {
	v := url.Values{}
	v.Set("include_adult", "false")

	switch {
	case q.Intent.Top:
		v.Set("sort_by", "vote_average.desc")
	case q.Intent.Latest:
		v.Set("sort_by", "primary_release_date.desc")
	default:
		v.Set("sort_by", "popularity.desc")
	}
	v.Set("vote_count.gte", strconv.Itoa(voteFloor(q, opts)))

	if q.Language != "" {
		v.Set("with_original_language", q.Language)
	}
	if q.Region != "" {
		v.Set("region", q.Region)
	}
	if ids := genreIDs(q.Genres); ids != "" {
		v.Set("with_genres", ids)
	}
	if ids := genreIDs(q.ExcludeGenres); ids != "" {
		v.Set("without_genres", ids)
	}

	if years, ok := q.Years(); ok && !opts.DropYear {
		start := years.Start
		if opts.WidenYears {
			start--
		}
		v.Set("primary_release_date.gte", strconv.Itoa(start)+"-01-01")
		v.Set("primary_release_date.lte", strconv.Itoa(years.End)+"-12-31")
	} else if q.Intent.Latest && !opts.SuppressLatestWindow {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		v.Set("primary_release_date.gte", now.AddDate(0, -latestWindowMonths, 0).Format(dateLayout))
		v.Set("primary_release_date.lte", now.Format(dateLayout))
	}

	return v
}

func voteFloor(q domain.ParsedQuery, opts QueryOptions) int {
	if opts.RelaxVotes {
		return RelaxedMinVotes
	}
	floor := opts.MinVotes
	if floor <= 0 {
		floor = DefaultMinVotes
	}
	if q.Intent.Top && floor < TopMinVotes {
		floor = TopMinVotes
	}
	return floor
}

func genreIDs(names []string) string {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := domain.GenreID(name); ok {
			ids = append(ids, strconv.Itoa(id))
		}
	}
	return strings.Join(ids, ",")
}

// BuildSearchQuery returns the title search parameters for a parsed intent.
func BuildSearchQuery(q domain.ParsedQuery) url.Values {
	v := url.Values{}
	v.Set("query", q.TitleCandidate)
	v.Set("include_adult", "false")
	if q.Year != nil {
		v.Set("primary_release_year", strconv.Itoa(*q.Year))
	}
	return v
}

// DiscoverPages returns how many discover pages to fetch. Narrow filters
// rarely fill more than two pages.
func DiscoverPages(q domain.ParsedQuery) int {
	if q.HasYear() || q.Language != "" || q.Region != "" {
		return narrowPages
	}
	return widePages
}
