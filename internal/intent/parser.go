package intent

import (
	"strings"

	"cinematch/internal/domain"
)

// Parse derives structured intent from text with keyword rules only.
func (r *Rules) Parse(text string) domain.ParsedQuery {
	lower := strings.ToLower(text)

	var q domain.ParsedQuery
	q.Year, q.YearRange = ParseYearRange(lower)

	q.ExcludeGenres = r.ExtractExcludedGenres(lower)
	q.Genres = without(r.ScanGenres(lower), q.ExcludeGenres)

	if langs := r.ScanLanguages(lower); len(langs) > 0 {
		q.Language = langs[0].Code
		q.Region = langs[0].Region
	}

	q.MoodTags = r.DetectMoodTags(lower)
	q.Intent = domain.IntentFlags{
		Top:    matchesAny(lower, r.top),
		Latest: matchesAny(lower, r.latest),
		Award:  matchesAny(lower, r.award),
	}
	q.Subjective = matchesAny(lower, r.subjective)
	q.TitleCandidate = r.TitleCandidate(text)

	return q
}

// Parse derives structured intent with the embedded rules.
func Parse(text string) domain.ParsedQuery {
	return DefaultRules().Parse(text)
}
