// Package receipt keeps the import_receipts table: one entry per aisle
// import run, successful or not, for reviewing what was applied to a
// facility and when.
package receipt

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of one import run.
type Status string

const (
	// StatusCompleted means every aisle in the file was finalized.
	StatusCompleted Status = "completed"
	// StatusPartial means the run finished but some aisles stopped on an error.
	StatusPartial Status = "partial"
	// StatusFailed means the file was rejected before any row was applied.
	StatusFailed Status = "failed"
)

// Receipt records one import run.
type Receipt struct {
	ID       string        `json:"id"`
	Facility string        `json:"facility"`
	Source   string        `json:"source"`
	Subject  string        `json:"subject,omitempty"`
	Status   Status        `json:"status"`
	Rows     int           `json:"rows"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Retained int           `json:"retained"`
	Warnings int           `json:"warnings"`
	Aisles   []string      `json:"aisles,omitempty"`
	Failed   []string      `json:"failed,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	Received time.Time     `json:"received"`
}

// Filter controls which receipts to return.
type Filter struct {
	Facility string // optional: facility domain ID
	Status   Status // optional: completed, partial or failed
	Limit    int    // default 50, max 200
	Offset   int    // pagination offset
}

// ListResult contains one page of receipts.
type ListResult struct {
	Receipts []Receipt `json:"receipts"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository defines the receipt operations.
type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// SQLiteRepository stores receipts in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new receipt repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a receipt. The ID and Received time are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, rc *Receipt) error {
	if rc.ID == "" {
		rc.ID = "rcpt-" + uuid.NewString()[:8]
	}
	if rc.Received.IsZero() {
		rc.Received = time.Now().UTC()
	}

	aisles, err := encodeList(rc.Aisles)
	if err != nil {
		return err
	}
	failed, err := encodeList(rc.Failed)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO import_receipts (id, facility, source, subject, status, rows_read, created, updated,
		 retained, warnings, aisles, failed_aisles, error, duration_ms, received_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rc.ID, rc.Facility, rc.Source, rc.Subject, string(rc.Status),
		rc.Rows, rc.Created, rc.Updated, rc.Retained, rc.Warnings,
		aisles, failed, nullableString(rc.Error),
		rc.Duration.Milliseconds(),
		rc.Received.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting import receipt: %w", err)
	}
	return nil
}

// encodeList stores a string list as a JSON array, or NULL when empty.
func encodeList(items []string) (any, error) {
	if len(items) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshalling receipt list: %w", err)
	}
	return string(b), nil
}

func decodeList(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var items []string
	if json.Unmarshal([]byte(s.String), &items) != nil {
		return nil
	}
	return items
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns receipts matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for receipt queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.Facility != "" {
		conditions = append(conditions, "facility = ? COLLATE NOCASE")
		args = append(args, filter.Facility)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM import_receipts %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting import receipts: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		`SELECT id, facility, source, subject, status, rows_read, created, updated, retained, warnings,
		 aisles, failed_aisles, error, duration_ms, received_at
		 FROM import_receipts %s ORDER BY received_at DESC LIMIT ? OFFSET ?`,
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying import receipts: %w", err)
	}
	defer rows.Close()

	receipts := []Receipt{}
	for rows.Next() {
		var (
			rc                  Receipt
			status, received    string
			aisles, failed, msg sql.NullString
			durationMs          int64
		)
		if err := rows.Scan(&rc.ID, &rc.Facility, &rc.Source, &rc.Subject, &status,
			&rc.Rows, &rc.Created, &rc.Updated, &rc.Retained, &rc.Warnings,
			&aisles, &failed, &msg, &durationMs, &received); err != nil {
			return nil, fmt.Errorf("scanning import receipt: %w", err)
		}
		rc.Status = Status(status)
		rc.Aisles = decodeList(aisles)
		rc.Failed = decodeList(failed)
		rc.Error = msg.String
		rc.Duration = time.Duration(durationMs) * time.Millisecond

		t, err := time.Parse(timeLayout, received)
		if err != nil {
			return nil, fmt.Errorf("parsing receipt timestamp %q: %w", received, err)
		}
		rc.Received = t

		receipts = append(receipts, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating import receipts: %w", err)
	}

	return &ListResult{
		Receipts: receipts,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}, nil
}

// Purge deletes receipts received before the cutoff and reports how many
// were removed.
func (r *SQLiteRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM import_receipts WHERE received_at < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("purging import receipts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged receipts: %w", err)
	}
	return n, nil
}
