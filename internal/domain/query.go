package domain

// YearRange is an inclusive range of release years.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// IntentFlags describes the superlative, temporal and award framing of a request.
type IntentFlags struct {
	Top    bool `json:"top"`
	Latest bool `json:"latest"`
	Award  bool `json:"award"`
}

// ParsedQuery is the structured intent derived from a raw query.
// List fields are nil when no signal was found; they are never empty but non-nil.
// At most one of Year and YearRange is set.
type ParsedQuery struct {
	Year           *int        `json:"year,omitempty"`
	YearRange      *YearRange  `json:"yearRange,omitempty"`
	Language       string      `json:"language,omitempty"`
	Region         string      `json:"region,omitempty"`
	Genres         []string    `json:"genres,omitempty"`
	ExcludeGenres  []string    `json:"excludeGenres,omitempty"`
	MoodTags       []string    `json:"moodTags,omitempty"`
	Intent         IntentFlags `json:"intent"`
	TitleCandidate string      `json:"titleCandidate,omitempty"`
	Subjective     bool        `json:"subjective"`
}

// HasYear reports whether an exact year or a year range was requested.
func (q ParsedQuery) HasYear() bool {
	return q.Year != nil || q.YearRange != nil
}

// HasFilters reports whether any structured filter narrows the query.
func (q ParsedQuery) HasFilters() bool {
	return q.HasYear() || q.Language != "" || len(q.Genres) > 0
}

// Years returns the requested years as an inclusive range.
func (q ParsedQuery) Years() (YearRange, bool) {
	switch {
	case q.Year != nil:
		return YearRange{Start: *q.Year, End: *q.Year}, true
	case q.YearRange != nil:
		return *q.YearRange, true
	default:
		return YearRange{}, false
	}
}

// LLMExtract is the intent extracted by the language model.
// Every field is independently nullable and not cross-validated.
type LLMExtract struct {
	Year           *int         `json:"year"`
	YearRange      *YearRange   `json:"yearRange"`
	Language       *string      `json:"language"`
	Region         *string      `json:"region"`
	Genres         []string     `json:"genres"`
	ExcludeGenres  []string     `json:"excludeGenres"`
	MoodTags       []string     `json:"moodTags"`
	Intent         *IntentFlags `json:"intent"`
	TitleCandidate *string      `json:"titleCandidate"`
	Subjective     *bool        `json:"subjective"`
}
