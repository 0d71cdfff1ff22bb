package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spetersoncode/ago/internal/errors"
	"github.com/spetersoncode/ago/internal/models"
)

// MarkRepo provides database operations for marks.
type MarkRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewMarkRepo creates a new MarkRepo.
func NewMarkRepo(db *sql.DB) *MarkRepo {
	return &MarkRepo{db: db, now: time.Now}
}

// MarkFilter defines filters for listing marks.
type MarkFilter struct {
	// SinceMs restricts the list to marks at or after this timestamp.
	SinceMs *int64
	Limit   int
	Offset  int
}

const markColumns = `id, name, timestamp_ms, note, created_at`

// SuggestListMarks is attached to errors for marks that do not exist.
const SuggestListMarks = "Run 'ago mark list' to see available marks."

// Create stores a new mark. A taken name yields a KindConflict error.
func (r *MarkRepo) Create(m *models.Mark) error {
	if err := m.Validate(); err != nil {
		return errors.InvalidArgs("invalid mark: %v", err)
	}

	query := `
		INSERT INTO marks (name, timestamp_ms, note, created_at)
		VALUES (?, ?, ?, ?)
	`
	now := r.now()
	result, err := r.db.Exec(query, m.Name, m.TimestampMs, nullString(m.Note), now.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("mark %q already exists", m.Name).
				WithDetails("name", m.Name).
				WithSuggestion(fmt.Sprintf("Run 'ago mark touch %s' to move it.", m.Name))
		}
		return errors.WrapInternal(err, "failed to create mark")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.WrapInternal(err, "failed to get mark id")
	}

	m.ID = id
	m.CreatedAt = time.UnixMilli(now.UnixMilli())
	return nil
}

// GetByName retrieves a mark by name. A missing mark yields a KindNotFound error.
func (r *MarkRepo) GetByName(name string) (*models.Mark, error) {
	query := `SELECT ` + markColumns + ` FROM marks WHERE name = ?`
	m, err := scanMark(r.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.WrapInternal(err, "failed to get mark")
	}
	return m, nil
}

// List retrieves marks matching the filter, newest timestamp first.
func (r *MarkRepo) List(filter MarkFilter) ([]*models.Mark, error) {
	query := `SELECT ` + markColumns + ` FROM marks WHERE 1=1`
	args := []interface{}{}

	if filter.SinceMs != nil {
		query += " AND timestamp_ms >= ?"
		args = append(args, *filter.SinceMs)
	}

	query += " ORDER BY timestamp_ms DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite requires LIMIT before OFFSET
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, errors.WrapInternal(err, "failed to list marks")
	}
	defer rows.Close()

	var marks []*models.Mark
	for rows.Next() {
		m, err := scanMark(rows)
		if err != nil {
			return nil, errors.WrapInternal(err, "failed to scan mark")
		}
		marks = append(marks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal(err, "error iterating marks")
	}
	return marks, nil
}

// Touch moves an existing mark to timestampMs.
func (r *MarkRepo) Touch(name string, timestampMs int64) (*models.Mark, error) {
	if timestampMs < 0 {
		return nil, errors.InvalidArgs("timestamp must not be negative: %d", timestampMs)
	}

	result, err := r.db.Exec(`UPDATE marks SET timestamp_ms = ? WHERE name = ?`, timestampMs, name)
	if err != nil {
		return nil, errors.WrapInternal(err, "failed to update mark")
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, errors.WrapInternal(err, "failed to update mark")
	} else if n == 0 {
		return nil, notFound(name)
	}

	return r.GetByName(name)
}

// Delete removes a mark by name.
func (r *MarkRepo) Delete(name string) error {
	result, err := r.db.Exec(`DELETE FROM marks WHERE name = ?`, name)
	if err != nil {
		return errors.WrapInternal(err, "failed to delete mark")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.WrapInternal(err, "failed to delete mark")
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}

// Count returns the number of stored marks.
func (r *MarkRepo) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM marks`).Scan(&n); err != nil {
		return 0, errors.WrapInternal(err, "failed to count marks")
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMark(row rowScanner) (*models.Mark, error) {
	var m models.Mark
	var note sql.NullString
	var createdAt int64
	if err := row.Scan(&m.ID, &m.Name, &m.TimestampMs, &note, &createdAt); err != nil {
		return nil, err
	}
	m.Note = note.String
	m.CreatedAt = time.UnixMilli(createdAt)
	return &m, nil
}

func notFound(name string) error {
	return errors.NotFound("mark %q not found", name).
		WithDetails("name", name).
		WithSuggestion(SuggestListMarks)
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
