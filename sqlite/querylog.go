package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/lexicon"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ lexicon.QueryLogService = (*QueryLogService)(nil)

// QueryLogService implements lexicon.QueryLogService using SQLite.
type QueryLogService struct {
	db *DB
}

// NewQueryLogService creates a new QueryLogService.
func NewQueryLogService(db *DB) *QueryLogService {
	return &QueryLogService{db: db}
}

const queryLogColumns = `id, query, detected_regions, query_type, recommendations_count,
	response_time_ms, complexity, session_id, created_at`

// CreateQueryLog appends an entry to the log.
func (s *QueryLogService) CreateQueryLog(ctx context.Context, e *lexicon.QueryLogEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	if e.DetectedRegions == nil {
		e.DetectedRegions = []string{}
	}
	regions, err := json.Marshal(e.DetectedRegions)
	if err != nil {
		return fmt.Errorf("failed to encode detected_regions: %w", err)
	}

	e.ID = uuid.New().String()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.db.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_query_logs (id, query, detected_regions, query_type, recommendations_count,
			response_time_ms, complexity, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Query, string(regions), e.QueryType, nullInt(e.RecommendationsCount),
		nullInt(e.ResponseTimeMs), e.Complexity, e.SessionID, formatTime(e.CreatedAt))

	return err
}

// FindQueryLogByID retrieves an entry by ID.
func (s *QueryLogService) FindQueryLogByID(ctx context.Context, id string) (*lexicon.QueryLogEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+queryLogColumns+` FROM search_query_logs WHERE id = ?`, id)
	e, err := scanQueryLog(row)
	if err == sql.ErrNoRows {
		return nil, lexicon.Errorf(lexicon.ENOTFOUND, "query log entry not found")
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindQueryLogs retrieves entries in the filter's window, newest first.
func (s *QueryLogService) FindQueryLogs(ctx context.Context, filter lexicon.QueryLogFilter) ([]*lexicon.QueryLogEntry, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + queryLogColumns + ` FROM search_query_logs WHERE 1=1`)

	if filter.Since != nil {
		query.WriteString(" AND created_at >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	if filter.Until != nil {
		query.WriteString(" AND created_at < ?")
		args = append(args, formatTime(*filter.Until))
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*lexicon.QueryLogEntry
	for rows.Next() {
		e, err := scanQueryLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func scanQueryLog(row scanner) (*lexicon.QueryLogEntry, error) {
	var e lexicon.QueryLogEntry
	var regions, createdAt string
	var recs, latency sql.NullInt64

	if err := row.Scan(&e.ID, &e.Query, &regions, &e.QueryType, &recs,
		&latency, &e.Complexity, &e.SessionID, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(regions), &e.DetectedRegions); err != nil {
		return nil, fmt.Errorf("failed to parse detected_regions: %w", err)
	}
	e.RecommendationsCount = scanNullInt(recs)
	e.ResponseTimeMs = scanNullInt(latency)

	var err error
	if e.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}

	return &e, nil
}
