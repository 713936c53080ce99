// Package intent turns free-text movie requests into structured search intent
// and ranks candidates against mood rules.
package intent

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"cinematch/internal/domain"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// MoodRule biases ranking for one mood tag.
type MoodRule struct {
	Include  []string
	Exclude  []string
	Keywords []string
}

// Rules holds the compiled keyword tables. A Rules value is immutable after loading
// and safe for concurrent use.
type Rules struct {
	genres     []genreKeyword
	exclusions []genreKeyword
	languages  []languageKeyword
	triggers   []moodTrigger
	expansions map[string][]string
	moodRules  map[string]MoodRule
	top        []keyword
	latest     []keyword
	award      []keyword
	subjective []keyword
	filler     map[string]struct{}
	signal     map[string]struct{} // single words of every signal keyword
	titleHints []string
	regions    map[string]string // language code -> region
}

type keyword struct {
	text string
	re   *regexp.Regexp
}

type genreKeyword struct {
	genre string
	kw    keyword
}

type languageKeyword struct {
	code   string
	region string
	kw     keyword
}

type moodTrigger struct {
	tag string
	kw  keyword
}

// rawRules represents the YAML structure.
type rawRules struct {
	Genres []struct {
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"genres"`
	Languages []struct {
		Code     string   `yaml:"code"`
		Region   string   `yaml:"region"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"languages"`
	Moods struct {
		Triggers []struct {
			Tag      string   `yaml:"tag"`
			Keywords []string `yaml:"keywords"`
		} `yaml:"triggers"`
		Expansions map[string][]string `yaml:"expansions"`
		Rules      map[string]struct {
			Include  []string `yaml:"include"`
			Exclude  []string `yaml:"exclude"`
			Keywords []string `yaml:"keywords"`
		} `yaml:"rules"`
	} `yaml:"moods"`
	Intent struct {
		Top    []string `yaml:"top"`
		Latest []string `yaml:"latest"`
		Award  []string `yaml:"award"`
	} `yaml:"intent"`
	Subjective []string `yaml:"subjective"`
	Filler     []string `yaml:"filler"`
	TitleHints []string `yaml:"title_hints"`
}

var (
	defaultRules     *Rules
	defaultRulesOnce sync.Once
)

// DefaultRules returns the rules embedded in the binary.
func DefaultRules() *Rules {
	defaultRulesOnce.Do(func() {
		r, err := LoadRules(defaultRulesYAML)
		if err != nil {
			panic(fmt.Sprintf("intent: embedded rules are invalid: %v", err))
		}
		defaultRules = r
	})
	return defaultRules
}

// LoadRulesFile loads rules from a YAML file.
func LoadRulesFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadRules(data)
}

// LoadRules parses and validates a YAML rules document.
func LoadRules(data []byte) (*Rules, error) {
	var raw rawRules
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	r := &Rules{
		expansions: make(map[string][]string, len(raw.Moods.Expansions)),
		moodRules:  make(map[string]MoodRule, len(raw.Moods.Rules)),
		filler:     make(map[string]struct{}, len(raw.Filler)),
		signal:     make(map[string]struct{}),
		regions:    make(map[string]string, len(raw.Languages)),
	}

	for _, g := range raw.Genres {
		if !domain.IsGenre(g.Name) {
			return nil, fmt.Errorf("unknown genre %q", g.Name)
		}
		for _, text := range g.Keywords {
			kw := r.newSignal(text)
			r.genres = append(r.genres, genreKeyword{genre: g.Name, kw: kw})
			r.exclusions = append(r.exclusions, genreKeyword{
				genre: g.Name,
				kw:    keyword{text: kw.text, re: regexp.MustCompile(`\b(?:not|no|without)\s+` + regexp.QuoteMeta(kw.text) + `\b`)},
			})
		}
	}

	for _, l := range raw.Languages {
		code := strings.ToLower(l.Code)
		region := strings.ToUpper(l.Region)
		if _, seen := r.regions[code]; !seen {
			r.regions[code] = region
		}
		for _, text := range l.Keywords {
			r.languages = append(r.languages, languageKeyword{code: code, region: region, kw: r.newSignal(text)})
		}
	}

	for tag, rule := range raw.Moods.Rules {
		for _, g := range append(append([]string{}, rule.Include...), rule.Exclude...) {
			if !domain.IsGenre(g) {
				return nil, fmt.Errorf("mood %q: unknown genre %q", tag, g)
			}
		}
		keywords := make([]string, 0, len(rule.Keywords))
		for _, k := range rule.Keywords {
			keywords = append(keywords, strings.ToLower(k))
		}
		r.moodRules[tag] = MoodRule{Include: rule.Include, Exclude: rule.Exclude, Keywords: keywords}
	}

	for _, t := range raw.Moods.Triggers {
		if _, ok := r.moodRules[t.Tag]; !ok {
			return nil, fmt.Errorf("trigger tag %q has no mood rule", t.Tag)
		}
		for _, text := range t.Keywords {
			r.triggers = append(r.triggers, moodTrigger{tag: t.Tag, kw: r.newSignal(text)})
		}
	}

	for tag, targets := range raw.Moods.Expansions {
		for _, target := range targets {
			if _, ok := r.moodRules[target]; !ok {
				return nil, fmt.Errorf("expansion %q -> %q has no mood rule", tag, target)
			}
		}
		r.expansions[tag] = targets
	}
	if err := checkExpansionClosure(r.expansions); err != nil {
		return nil, err
	}

	r.top = r.newSignals(raw.Intent.Top)
	r.latest = r.newSignals(raw.Intent.Latest)
	r.award = r.newSignals(raw.Intent.Award)
	r.subjective = r.newSignals(raw.Subjective)

	for _, w := range raw.Filler {
		r.filler[strings.ToLower(w)] = struct{}{}
	}
	for _, h := range raw.TitleHints {
		r.titleHints = append(r.titleHints, strings.ToLower(h))
	}

	return r, nil
}

// checkExpansionClosure rejects tables where a second hop would add tags, so a
// single expansion pass is always complete. Expansion never recurses, which
// keeps a cycle in the table from looping.
func checkExpansionClosure(expansions map[string][]string) error {
	for tag, targets := range expansions {
		reached := map[string]bool{tag: true}
		for _, t := range targets {
			if t == tag {
				return fmt.Errorf("mood %q expands to itself", tag)
			}
			reached[t] = true
		}
		for _, t := range targets {
			for _, next := range expansions[t] {
				if !reached[next] {
					return fmt.Errorf("mood %q reaches %q only through %q; list it directly", tag, next, t)
				}
			}
		}
	}
	return nil
}

// newSignal compiles a keyword and records its words as intent-bearing.
func (r *Rules) newSignal(text string) keyword {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, w := range tokenize(lower) {
		r.signal[w] = struct{}{}
	}
	return keyword{text: lower, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(lower) + `\b`)}
}

func (r *Rules) newSignals(texts []string) []keyword {
	out := make([]keyword, 0, len(texts))
	for _, t := range texts {
		out = append(out, r.newSignal(t))
	}
	return out
}

// MoodRule returns the rule for a tag.
func (r *Rules) MoodRule(tag string) (MoodRule, bool) {
	rule, ok := r.moodRules[tag]
	return rule, ok
}

// RegionFor returns the region associated with a language code.
func (r *Rules) RegionFor(language string) string {
	return r.regions[strings.ToLower(language)]
}

func matchesAny(text string, keywords []keyword) bool {
	for _, k := range keywords {
		if k.re.MatchString(text) {
			return true
		}
	}
	return false
}
