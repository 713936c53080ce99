package intent

import (
	"regexp"
	"strconv"
	"strings"

	"cinematch/internal/domain"
)

var (
	decadeWordRegex  = regexp.MustCompile(`\b(twenties|thirties|forties|fifties|sixties|seventies|eighties|nineties|noughties)\b`)
	shortDecadeRegex = regexp.MustCompile(`\b(\d)0['’]?s\b`)
	yearSpanRegex    = regexp.MustCompile(`\b((?:19|20)\d{2})\s*(?:-|–|—|to)\s*((?:19|20)\d{2})\b`)
	longDecadeRegex  = regexp.MustCompile(`\b((?:19|20)\d)0['’]?s\b`)
	singleYearRegex  = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
)

var decadeWords = map[string]int{
	"twenties":  1920,
	"thirties":  1930,
	"forties":   1940,
	"fifties":   1950,
	"sixties":   1960,
	"seventies": 1970,
	"eighties":  1980,
	"nineties":  1990,
	"noughties": 2000,
}

// ParseYearRange extracts an exact year or an inclusive year range from text.
// Patterns are tried in priority order and the first match wins, so at most
// one of the two results is non-nil.
func ParseYearRange(text string) (*int, *domain.YearRange) {
	lower := strings.ToLower(text)

	if m := decadeWordRegex.FindStringSubmatch(lower); m != nil {
		return nil, decade(decadeWords[m[1]])
	}

	if m := shortDecadeRegex.FindStringSubmatch(lower); m != nil {
		d, _ := strconv.Atoi(m[1])
		// "00s"-"20s" read as this century, "30s"-"90s" as the last
		start := 1900 + d*10
		if d < 3 {
			start = 2000 + d*10
		}
		return nil, decade(start)
	}

	if m := yearSpanRegex.FindStringSubmatch(lower); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		return nil, &domain.YearRange{Start: min(a, b), End: max(a, b)}
	}

	if m := longDecadeRegex.FindStringSubmatch(lower); m != nil {
		d, _ := strconv.Atoi(m[1])
		return nil, decade(d * 10)
	}

	if m := singleYearRegex.FindStringSubmatch(lower); m != nil {
		y, _ := strconv.Atoi(m[1])
		return &y, nil
	}

	return nil, nil
}

func decade(start int) *domain.YearRange {
	return &domain.YearRange{Start: start, End: start + 9}
}

// isYearToken reports whether a token only carries year information.
func isYearToken(tok string) bool {
	if _, ok := decadeWords[tok]; ok {
		return true
	}
	trimmed := strings.TrimSuffix(tok, "s")
	if len(trimmed) != 2 && len(trimmed) != 4 {
		return false
	}
	_, err := strconv.Atoi(trimmed)
	return err == nil
}
