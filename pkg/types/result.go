package types

// Search status values
const (
	StatusOK        = "ok"
	StatusNoQuery   = "no_query"
	StatusNoResults = "no_results"
	StatusError     = "error"
)

// Search methods report which rung of the ladder produced the results
const (
	MethodStrategyLadder  = "strategy_ladder"
	MethodKeywordFallback = "keyword_fallback"
	MethodContextualHints = "contextual_hints"
	MethodFuzzyStem       = "fuzzy_stem"
)

// SearchResult is one formatted search hit
type SearchResult struct {
	Title            string  `json:"title"`
	VideoID          string  `json:"video_id"`
	StartTime        float64 `json:"start_time"`
	TimestampSeconds int     `json:"timestamp_seconds"`
	Timestamp        string  `json:"timestamp"`
	Text             string  `json:"text"`
	ExternalURL      string  `json:"external_url"`
	Explanation      string  `json:"explanation"`
	Score            int     `json:"score"`
}

// SearchResponse is the uniform response shape for every surface
type SearchResponse struct {
	Query   string         `json:"query"`
	Method  string         `json:"method"`
	Count   int            `json:"count"`
	Status  string         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Results []SearchResult `json:"results"`
}

// SearchFilters carries caller-supplied filters that are ANDed with the
// directives parsed from the query text itself
type SearchFilters struct {
	YearStart int `json:"year_start,omitempty"`
	YearEnd   int `json:"year_end,omitempty"`
}
