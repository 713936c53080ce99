package domain

// Path is the retrieval strategy chosen for a query.
type Path string

const (
	PathDiscover Path = "discover"
	PathSearch   Path = "search"
)

// ResponseType classifies a search response.
type ResponseType string

const (
	ResponseFactual ResponseType = "factual"
	ResponseVibe    ResponseType = "vibe"
	ResponseError   ResponseType = "error"
)

// Fallback step labels, in ladder order.
const (
	StepInitial          = "initial"
	StepRelaxVotes       = "relax_votes"
	StepDropYear         = "drop_year_keep_language"
	StepWidenYear        = "widen_year"
	StepSearchFallback   = "search_fallback"
	StepDiscoverFallback = "discover_fallback"
)

// Debug carries trace information about how a query was served.
type Debug struct {
	Path          Path        `json:"path"`
	UpstreamQuery string      `json:"upstreamQuery"`
	MoodFilters   []string    `json:"moodFilters,omitempty"`
	Parsed        ParsedQuery `json:"parsed"`
	LLMUsed       bool        `json:"llmUsed"`
	Steps         []string    `json:"steps,omitempty"`
	Fallback      string      `json:"fallback,omitempty"`
}

// SearchResult is the non-streaming answer to a query.
type SearchResult struct {
	Type   ResponseType `json:"type"`
	Movies []Movie      `json:"movies"`
	Mood   []string     `json:"mood,omitempty"`
	Debug  Debug        `json:"debug"`
}

// Stream event types.
const (
	EventMeta  = "meta"
	EventBatch = "batch"
	EventDone  = "done"
)

// StreamEvent is one line of a streamed response.
type StreamEvent struct {
	Type   string  `json:"type"`
	Debug  *Debug  `json:"debug,omitempty"`
	Movies []Movie `json:"movies,omitempty"`
	Count  *int    `json:"count,omitempty"`
}

// MetaEvent opens a stream.
func MetaEvent(debug Debug) StreamEvent {
	return StreamEvent{Type: EventMeta, Debug: &debug}
}

// BatchEvent carries a slice of results.
func BatchEvent(movies []Movie) StreamEvent {
	return StreamEvent{Type: EventBatch, Movies: movies}
}

// DoneEvent terminates a stream with the number of movies emitted.
func DoneEvent(count int) StreamEvent {
	return StreamEvent{Type: EventDone, Count: &count}
}

// SearchEvent is the analytics record of one served query.
type SearchEvent struct {
	RequestID   string
	Query       string
	Type        ResponseType
	Path        Path
	Steps       []string
	ResultCount int
	Streamed    bool
}
