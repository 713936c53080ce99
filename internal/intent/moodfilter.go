package intent

import (
	"sort"
	"strings"

	"cinematch/internal/domain"
)

const (
	genreMatchPoints   = 3
	keywordMatchPoints = 2
)

// FilterByMood drops movies whose genres hit any active exclude set and orders
// the rest by mood score, keeping input order between equal scores.
// With no tags the input is returned unchanged.
func (r *Rules) FilterByMood(movies []domain.Movie, tags []string) []domain.Movie {
	if len(tags) == 0 {
		return movies
	}

	include := make(map[string]bool)
	exclude := make(map[string]bool)
	var keywords []string
	for _, tag := range tags {
		rule, ok := r.moodRules[tag]
		if !ok {
			continue
		}
		for _, g := range rule.Include {
			include[g] = true
		}
		for _, g := range rule.Exclude {
			exclude[g] = true
		}
		for _, k := range rule.Keywords {
			keywords = appendUnique(keywords, k)
		}
	}

	type scored struct {
		movie domain.Movie
		score int
	}
	kept := make([]scored, 0, len(movies))
	for _, m := range movies {
		if hasAny(m.Genres, exclude) {
			continue
		}
		score := 0
		for _, g := range m.Genres {
			if include[g] {
				score += genreMatchPoints
			}
		}
		text := strings.ToLower(m.Title + " " + m.Overview)
		for _, k := range keywords {
			if strings.Contains(text, k) {
				score += keywordMatchPoints
			}
		}
		kept = append(kept, scored{movie: m, score: score})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	out := make([]domain.Movie, len(kept))
	for i, s := range kept {
		out[i] = s.movie
	}
	return out
}

func hasAny(genres []string, set map[string]bool) bool {
	for _, g := range genres {
		if set[g] {
			return true
		}
	}
	return false
}
