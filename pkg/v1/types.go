package v1

import "time"

// BuildResult describes a completed index build.
type BuildResult struct {
	Count     int    `json:"count"`
	Dimension int    `json:"dimension"`
	Model     string `json:"model"`
}

// SearchResult is a retrieved query/solution pair with its distance to the
// search query (smaller is closer).
type SearchResult struct {
	Query    string  `json:"query"`
	Solution string  `json:"solution"`
	Distance float32 `json:"distance"`
}

// Answer is a synthesized answer with the context it was grounded on.
type Answer struct {
	Text    string         `json:"text"`
	Sources []SearchResult `json:"sources,omitempty"`
}

// Gap is a query the knowledge base could not answer.
type Gap struct {
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

// Report summarizes recorded feedback.
type Report struct {
	Total          int     `json:"total"`
	Resolved       int     `json:"resolved"`
	Gaps           []Gap   `json:"gaps"`
	ResolutionRate float64 `json:"resolution_rate"`
}
