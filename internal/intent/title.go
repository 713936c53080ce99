package intent

import (
	"regexp"
	"strings"
	"unicode"
)

var quotedRegex = regexp.MustCompile(`["“”]([^"“”]+)["“”]`)

// negations never count as title words.
var negations = map[string]struct{}{"not": {}, "no": {}, "without": {}}

// TitleCandidate returns a best-guess literal title from the raw query, or ""
// when the query does not read like a title lookup. Quoted or hinted titles
// are taken as given, so "Scary Movie" stays a title.
func (r *Rules) TitleCandidate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if candidate := r.literalTitle(trimmed); candidate != "" {
		return candidate
	}
	candidate := r.tokenTitle(strings.ToLower(trimmed))
	if candidate == "" || r.isMoodWord(candidate) {
		return ""
	}
	return candidate
}

// literalTitle handles explicit titles: a quoted span, or the whole query
// when it carries a title hint.
func (r *Rules) literalTitle(trimmed string) string {
	if m := quotedRegex.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	lower := strings.ToLower(trimmed)
	if strings.ContainsAny(lower, `"“”`) {
		return trimmed
	}
	for _, hint := range r.titleHints {
		if strings.HasSuffix(hint, ":") {
			if strings.Contains(lower, hint) {
				return trimmed
			}
			continue
		}
		for _, tok := range strings.Fields(lower) {
			if tok == hint {
				return trimmed
			}
		}
	}
	return ""
}

// tokenTitle keeps the words that carry no year, filler or intent meaning and
// accepts two to four of them, or a single word of four letters or more.
func (r *Rules) tokenTitle(lower string) string {
	var kept []string
	for _, tok := range tokenize(lower) {
		if isYearToken(tok) {
			continue
		}
		if _, ok := r.filler[tok]; ok {
			continue
		}
		if _, ok := negations[tok]; ok {
			continue
		}
		if _, ok := r.signal[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}

	switch {
	case len(kept) >= 2 && len(kept) <= 4:
		return strings.Join(kept, " ")
	case len(kept) == 1 && len([]rune(kept[0])) >= 4:
		return kept[0]
	default:
		return ""
	}
}

// tokenize strips punctuation and splits on whitespace. Hyphens and slashes
// separate words; other punctuation is dropped ("90's" -> "90s").
func tokenize(s string) []string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '-' || r == '/' || r == '–' || r == '—':
			b.WriteRune(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}
