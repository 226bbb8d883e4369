package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/lexicon"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ lexicon.MappingService = (*MappingService)(nil)
	_ lexicon.Promoter       = (*MappingService)(nil)
)

// MappingService implements lexicon.MappingService using SQLite.
type MappingService struct {
	db *DB
}

// NewMappingService creates a new MappingService.
func NewMappingService(db *DB) *MappingService {
	return &MappingService{db: db}
}

const mappingColumns = `id, category, user_term, canonical_term, confidence, provenance,
	usage_count, last_used_at, is_active, is_verified, created_at`

// UpsertSeed inserts an active, verified seed mapping unless the natural
// key already exists.
func (s *MappingService) UpsertSeed(ctx context.Context, m *lexicon.Mapping) (bool, error) {
	m.Provenance = lexicon.ProvenanceSeed
	m.Confidence = 1
	m.IsActive = true
	m.IsVerified = true
	return s.insert(ctx, m)
}

// InsertSuggested inserts an inactive, unverified mapping unless the
// natural key already exists.
func (s *MappingService) InsertSuggested(ctx context.Context, m *lexicon.Mapping) (bool, error) {
	if m.Provenance == "" || m.Provenance == lexicon.ProvenanceSeed {
		m.Provenance = lexicon.ProvenanceAISuggested
	}
	m.IsActive = false
	m.IsVerified = false
	return s.insert(ctx, m)
}

func (s *MappingService) insert(ctx context.Context, m *lexicon.Mapping) (bool, error) {
	m.UserTerm = strings.TrimSpace(m.UserTerm)
	m.CanonicalTerm = strings.TrimSpace(m.CanonicalTerm)
	if err := m.Validate(); err != nil {
		return false, err
	}

	id := uuid.New().String()
	createdAt := s.db.now()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO terminology_map (id, category, user_term, canonical_term, confidence, provenance,
			usage_count, is_active, is_verified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?)
		ON CONFLICT (category, user_term) DO NOTHING
	`, id, string(m.Category), m.UserTerm, m.CanonicalTerm, m.Confidence, string(m.Provenance),
		boolToInt(m.IsActive), boolToInt(m.IsVerified), formatTime(createdAt))
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	m.ID = id
	m.CreatedAt = createdAt
	m.UsageCount = 0
	m.LastUsedAt = nil
	return true, nil
}

// FindMappingByID retrieves a mapping by ID.
func (s *MappingService) FindMappingByID(ctx context.Context, id string) (*lexicon.Mapping, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mappingColumns+` FROM terminology_map WHERE id = ?`, id)
	m, err := scanMapping(row)
	if err == sql.ErrNoRows {
		return nil, lexicon.Errorf(lexicon.ENOTFOUND, "mapping not found")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// FindMappings retrieves mappings matching the filter, most used first.
func (s *MappingService) FindMappings(ctx context.Context, filter lexicon.MappingFilter) ([]*lexicon.Mapping, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + mappingColumns + ` FROM terminology_map WHERE 1=1`)

	if filter.Category != nil {
		query.WriteString(" AND category = ?")
		args = append(args, string(*filter.Category))
	}
	if filter.Active != nil {
		query.WriteString(" AND is_active = ?")
		args = append(args, boolToInt(*filter.Active))
	}
	if filter.UserTerm != nil {
		query.WriteString(" AND user_term = ?")
		args = append(args, strings.TrimSpace(*filter.UserTerm))
	}

	query.WriteString(" ORDER BY usage_count DESC, category ASC, user_term ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []*lexicon.Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}

// RecordUsage increments the usage count and last-used time of a mapping.
// A missing mapping is not an error.
func (s *MappingService) RecordUsage(ctx context.Context, category lexicon.Category, userTerm string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE terminology_map
		SET usage_count = usage_count + 1, last_used_at = ?
		WHERE category = ? AND user_term = ?
	`, formatTime(s.db.now()), string(category), strings.TrimSpace(userTerm))
	return err
}

// DeactivateMapping marks a mapping inactive.
func (s *MappingService) DeactivateMapping(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE terminology_map SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return lexicon.Errorf(lexicon.ENOTFOUND, "mapping not found")
	}
	return nil
}

// PromoteMapping marks a reviewed mapping active and verified.
func (s *MappingService) PromoteMapping(ctx context.Context, id string) (*lexicon.Mapping, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE terminology_map SET is_active = 1, is_verified = 1 WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, lexicon.Errorf(lexicon.ENOTFOUND, "mapping not found")
	}
	return s.FindMappingByID(ctx, id)
}

// MappingStats summarizes the terminology store.
func (s *MappingService) MappingStats(ctx context.Context, since time.Time) (*lexicon.MappingStats, error) {
	stats := &lexicon.MappingStats{ByProvenance: make(map[lexicon.Provenance]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM terminology_map
	`, formatTime(since)).Scan(&stats.Total, &stats.Active, &stats.AddedSince)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT provenance, COUNT(*) FROM terminology_map GROUP BY provenance ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, err
		}
		stats.ByProvenance[lexicon.Provenance(p)] = n
	}

	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMapping(row scanner) (*lexicon.Mapping, error) {
	var m lexicon.Mapping
	var category, provenance, createdAt string
	var lastUsedAt sql.NullString
	var isActive, isVerified int

	if err := row.Scan(&m.ID, &category, &m.UserTerm, &m.CanonicalTerm, &m.Confidence, &provenance,
		&m.UsageCount, &lastUsedAt, &isActive, &isVerified, &createdAt); err != nil {
		return nil, err
	}

	m.Category = lexicon.Category(category)
	m.Provenance = lexicon.Provenance(provenance)
	m.IsActive = isActive == 1
	m.IsVerified = isVerified == 1

	var err error
	if m.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if m.LastUsedAt, err = parseNullRFC3339(lastUsedAt, "last_used_at"); err != nil {
		return nil, err
	}

	return &m, nil
}
