package intent

import "strings"

// DetectMoodTags returns the canonical mood tags triggered by text, followed by
// their one-hop expansions. Returns nil when no trigger matches.
func (r *Rules) DetectMoodTags(text string) []string {
	return r.ExpandMoodTags(r.triggeredTags(strings.ToLower(text)))
}

// triggeredTags returns tags whose triggers match, in trigger order, without expansion.
func (r *Rules) triggeredTags(lower string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, t := range r.triggers {
		if seen[t.tag] {
			continue
		}
		if t.kw.re.MatchString(lower) {
			seen[t.tag] = true
			tags = append(tags, t.tag)
		}
	}
	return tags
}

// ExpandMoodTags appends the one-hop expansion of every tag. The rule loader
// guarantees the table is closed under one hop, so expanding an expanded set
// adds nothing.
func (r *Rules) ExpandMoodTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	for _, tag := range tags {
		add(tag)
	}
	for _, tag := range tags {
		for _, next := range r.expansions[tag] {
			add(next)
		}
	}
	return out
}

// isMoodWord reports whether text is, as a whole, a mood trigger keyword or a
// tag name. Titles that merely contain one ("Funny Games") are not mood words.
func (r *Rules) isMoodWord(text string) bool {
	lower := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if _, ok := r.moodRules[tagReplacer.Replace(lower)]; ok {
		return true
	}
	for _, t := range r.triggers {
		if t.kw.text == lower {
			return true
		}
	}
	return false
}

var tagReplacer = strings.NewReplacer(" ", "_", "-", "_")
