package intent

import "strings"

// ExtractExcludedGenres returns genres negated in text ("no horror",
// "without romance"). Returns nil when nothing is excluded.
func (r *Rules) ExtractExcludedGenres(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, g := range r.exclusions {
		if g.kw.re.MatchString(lower) {
			out = appendUnique(out, g.genre)
		}
	}
	return out
}

// ScanGenres returns every genre whose keyword appears in text.
func (r *Rules) ScanGenres(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, g := range r.genres {
		if g.kw.re.MatchString(lower) {
			out = appendUnique(out, g.genre)
		}
	}
	return out
}

// Language is a language match with the region it implies.
type Language struct {
	Code   string
	Region string
}

// ScanLanguages returns every language whose keyword appears in text, in table order.
func (r *Rules) ScanLanguages(text string) []Language {
	lower := strings.ToLower(text)
	var out []Language
	seen := make(map[string]bool)
	for _, l := range r.languages {
		if seen[l.code] {
			continue
		}
		if l.kw.re.MatchString(lower) {
			seen[l.code] = true
			out = append(out, Language{Code: l.code, Region: l.region})
		}
	}
	return out
}

// languageCode resolves a language name or code to an ISO-639-1 code.
func (r *Rules) languageCode(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return ""
	}
	if _, ok := r.regions[lower]; ok {
		return lower
	}
	if langs := r.ScanLanguages(lower); len(langs) > 0 {
		return langs[0].Code
	}
	if len(lower) == 2 {
		return lower
	}
	return ""
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// without returns list minus every element of drop; nil when nothing is left.
func without(list, drop []string) []string {
	if len(drop) == 0 {
		return list
	}
	var out []string
	for _, v := range list {
		keep := true
		for _, d := range drop {
			if v == d {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, v)
		}
	}
	return out
}
