package lexicon

import (
	"context"
	"time"
)

// QueryLogEntry is one search issued against the catalog. Entries are
// written by the live search service and are immutable.
type QueryLogEntry struct {
	ID                   string    `json:"id"`
	Query                string    `json:"query"`
	DetectedRegions      []string  `json:"detectedRegions"`
	QueryType            string    `json:"queryType"`
	RecommendationsCount *int      `json:"recommendationsCount"`
	ResponseTimeMs       *int      `json:"responseTimeMs"`
	Complexity           string    `json:"complexity"`
	SessionID            string    `json:"sessionId"`
	CreatedAt            time.Time `json:"createdAt"`
}

// Recommendations returns the recommendation count, treating null as zero.
func (e *QueryLogEntry) Recommendations() int {
	if e.RecommendationsCount == nil {
		return 0
	}
	return *e.RecommendationsCount
}

// ZeroResult reports whether the search produced no recommendations.
func (e *QueryLogEntry) ZeroResult() bool {
	return e.Recommendations() == 0
}

// Validate returns an error if the entry contains invalid fields.
func (e *QueryLogEntry) Validate() error {
	if e.Query == "" {
		return Errorf(EINVALID, "query log entry query required")
	}
	if e.RecommendationsCount != nil && *e.RecommendationsCount < 0 {
		return Errorf(EINVALID, "query log entry recommendations count must not be negative")
	}
	return nil
}

// QueryLogService represents the query log store.
type QueryLogService interface {
	// CreateQueryLog appends an entry. CreatedAt defaults to now.
	CreateQueryLog(ctx context.Context, e *QueryLogEntry) error

	// FindQueryLogByID retrieves an entry by ID.
	// Returns ENOTFOUND if the entry does not exist.
	FindQueryLogByID(ctx context.Context, id string) (*QueryLogEntry, error)

	// FindQueryLogs retrieves entries matching the filter, newest first.
	FindQueryLogs(ctx context.Context, filter QueryLogFilter) ([]*QueryLogEntry, error)
}

// QueryLogFilter represents a filter for FindQueryLogs.
// Since is inclusive and Until is exclusive.
type QueryLogFilter struct {
	Since *time.Time `json:"since"`
	Until *time.Time `json:"until"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
