package intent

import (
	"strings"

	"cinematch/internal/domain"
)

const (
	minYear = 1900
	maxYear = 2100
)

// Merge combines heuristic intent with a model extract. Each field prefers the
// model value when present and usable and falls back to the heuristic value.
// Model genres and moods are normalized to the canonical vocabulary first, and
// mood expansion is re-applied to the result.
func (r *Rules) Merge(h domain.ParsedQuery, x *domain.LLMExtract) domain.ParsedQuery {
	if x == nil {
		return h
	}

	out := h
	out.Year, out.YearRange = mergeYears(h, x)

	lang := r.languageCode(deref(x.Language))
	out.Language = prefer(lang, h.Language)
	switch {
	case normalizeRegion(deref(x.Region)) != "":
		out.Region = normalizeRegion(deref(x.Region))
	case lang != "":
		out.Region = r.RegionFor(lang)
	}

	out.ExcludeGenres = preferList(r.normalizeGenres(x.ExcludeGenres), h.ExcludeGenres)
	out.Genres = without(preferList(r.normalizeGenres(x.Genres), h.Genres), out.ExcludeGenres)
	out.MoodTags = r.ExpandMoodTags(preferList(r.normalizeMoods(x.MoodTags), h.MoodTags))

	if x.Intent != nil {
		out.Intent = *x.Intent
	}
	if x.Subjective != nil {
		out.Subjective = *x.Subjective
	}

	title := strings.TrimSpace(deref(x.TitleCandidate))
	if r.isMoodWord(title) {
		title = ""
	}
	out.TitleCandidate = prefer(title, h.TitleCandidate)

	return out
}

// mergeYears takes year and range as a pair so only one is ever set.
func mergeYears(h domain.ParsedQuery, x *domain.LLMExtract) (*int, *domain.YearRange) {
	if x.Year != nil && validYear(*x.Year) {
		y := *x.Year
		return &y, nil
	}
	if x.YearRange != nil && validYear(x.YearRange.Start) && validYear(x.YearRange.End) {
		return nil, &domain.YearRange{
			Start: min(x.YearRange.Start, x.YearRange.End),
			End:   max(x.YearRange.Start, x.YearRange.End),
		}
	}
	return h.Year, h.YearRange
}

func validYear(y int) bool {
	return y >= minYear && y <= maxYear
}

// normalizeGenres maps free-text genre phrases onto the vocabulary.
func (r *Rules) normalizeGenres(phrases []string) []string {
	var out []string
	for _, p := range phrases {
		if name, ok := canonicalGenre(p); ok {
			out = appendUnique(out, name)
			continue
		}
		for _, g := range r.ScanGenres(p) {
			out = appendUnique(out, g)
		}
	}
	return out
}

func canonicalGenre(phrase string) (string, bool) {
	for _, g := range domain.Genres {
		if strings.EqualFold(strings.TrimSpace(phrase), g.Name) {
			return g.Name, true
		}
	}
	return "", false
}

// normalizeMoods maps free-text mood phrases onto canonical tags.
func (r *Rules) normalizeMoods(phrases []string) []string {
	var out []string
	for _, p := range phrases {
		lower := strings.ToLower(strings.TrimSpace(p))
		tag := tagReplacer.Replace(lower)
		if _, ok := r.moodRules[tag]; ok {
			out = appendUnique(out, tag)
			continue
		}
		for _, t := range r.triggeredTags(lower) {
			out = appendUnique(out, t)
		}
	}
	return out
}

func normalizeRegion(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return ""
	}
	return s
}

func prefer(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

func preferList(primary, fallback []string) []string {
	if len(primary) > 0 {
		return primary
	}
	return fallback
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
