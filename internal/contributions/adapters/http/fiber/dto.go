package fiber

// DayResponse is one merged calendar day.
// @Description Per-day contribution counts across sources
type DayResponse struct {
	Date   string         `json:"date" example:"2025-06-01"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total" example:"8"`
}

type SourceErrorResponse struct {
	Source  string `json:"source" example:"gitlab"`
	Message string `json:"message"`
}

type ContributionsResponse struct {
	From             string                `json:"from" example:"2025-06-01"`
	To               string                `json:"to" example:"2025-06-30"`
	Days             []DayResponse         `json:"days"`
	SourcesRequested int                   `json:"sources_requested"`
	SourcesSucceeded int                   `json:"sources_succeeded"`
	Errors           []SourceErrorResponse `json:"errors,omitempty"`
}

type CacheStatsResponse struct {
	Size      int      `json:"size"`
	Hits      uint64   `json:"hits"`
	Misses    uint64   `json:"misses"`
	Evictions uint64   `json:"evictions"`
	HitRate   float64  `json:"hit_rate"`
	Keys      []string `json:"keys"`
}

type ErrorResponse struct {
	Error   string                `json:"error" example:"invalid_request"`
	Message string                `json:"message,omitempty"`
	Errors  []SourceErrorResponse `json:"errors,omitempty"`
}
