package safety

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// HistoryEntry is one persisted safety decision.
type HistoryEntry struct {
	ID       int64
	Decision Decision
}

// History persists safety decisions to SQLite for diagnostics.
//
// History is optional: when the database is disabled the poller simply
// runs without a recorder. Failed writes never influence a decision.
type History struct {
	db *sql.DB
}

// NewHistory creates a decision history repository.
//
// Parameters:
//   - db: Open SQLite connection with the decision_history table migrated
//
// Returns:
//   - *History: Repository instance ready for use
func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// Record inserts one decision into the history table.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - d: The decision to persist
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (h *History) Record(ctx context.Context, d Decision) error {
	sunAngle := sql.NullFloat64{Float64: d.SunAngle, Valid: d.SunAngleOK}
	secondary := sql.NullString{String: string(d.Secondary.Status), Valid: d.Secondary.Present}
	diagnostic := sql.NullString{String: d.Diagnostic, Valid: d.Diagnostic != ""}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO decision_history
		 (evaluated_at, roof_status, raw_status, is_safe, sun_angle, sun_safe, overridden, secondary_status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.EvaluatedAt.UTC().Format(time.RFC3339),
		string(d.Final),
		string(d.Raw),
		boolToInt(d.IsSafe),
		sunAngle,
		boolToInt(d.SunSafeForOpen),
		boolToInt(d.Overridden),
		secondary,
		diagnostic,
	)
	if err != nil {
		return fmt.Errorf("inserting decision history: %w", err)
	}

	return nil
}

// Recent returns the latest decisions, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 50, max 500)
//
// Returns:
//   - []HistoryEntry: Entries ordered by evaluated_at DESC
//   - error: nil on success, otherwise the underlying query error
func (h *History) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, evaluated_at, roof_status, raw_status, is_safe, sun_angle, sun_safe, overridden, secondary_status, error
		 FROM decision_history
		 ORDER BY evaluated_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying decision history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var (
			entry       HistoryEntry
			evaluatedAt string
			finalStatus string
			rawStatus   string
			isSafe      int
			sunAngle    sql.NullFloat64
			sunSafe     int
			overridden  int
			secondary   sql.NullString
			diagnostic  sql.NullString
		)

		if err := rows.Scan(&entry.ID, &evaluatedAt, &finalStatus, &rawStatus, &isSafe,
			&sunAngle, &sunSafe, &overridden, &secondary, &diagnostic); err != nil {
			return nil, fmt.Errorf("scanning decision history: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, evaluatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing evaluated_at %q: %w", evaluatedAt, err)
		}

		entry.Decision = Decision{
			EvaluatedAt:    ts,
			Final:          RoofStatus(finalStatus),
			Raw:            RawClassification(rawStatus),
			IsSafe:         isSafe != 0,
			SunAngle:       sunAngle.Float64,
			SunAngleOK:     sunAngle.Valid,
			SunSafeForOpen: sunSafe != 0,
			Overridden:     overridden != 0,
			Diagnostic:     diagnostic.String,
		}
		if secondary.Valid {
			entry.Decision.Secondary = SecondaryStatus{
				Present: true,
				Status:  RoofStatus(secondary.String),
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decision history: %w", err)
	}

	return entries, nil
}

// Prune deletes entries older than the cutoff.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Entries evaluated before this instant are removed
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (h *History) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := h.db.ExecContext(ctx,
		"DELETE FROM decision_history WHERE evaluated_at < ?",
		olderThan.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning decision history: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}

	return deleted, nil
}

// boolToInt converts a bool to the 0/1 representation stored in SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
