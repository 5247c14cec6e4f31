package storage

import (
	"context"
	"database/sql"
	"time"
)

// Queries is the hand-written query layer over the session store.
type Queries struct {
	db *sql.DB
}

func NewQueries(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// GetCartJSON returns the serialized line-item list for a session.
// Returns sql.ErrNoRows when the session has never stored a cart.
func (q *Queries) GetCartJSON(ctx context.Context, sessionID string) (string, error) {
	var items string
	err := q.db.QueryRowContext(ctx,
		`SELECT items_json FROM carts WHERE session_id = ?`, sessionID).Scan(&items)
	return items, err
}

// UpsertCart writes the serialized line-item list for a session.
// Write-through: every cart mutation lands here synchronously.
func (q *Queries) UpsertCart(ctx context.Context, sessionID, itemsJSON string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO carts (session_id, items_json, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
			items_json = excluded.items_json,
			updated_at = CURRENT_TIMESTAMP`,
		sessionID, itemsJSON)
	return err
}

// ClearCart empties a session's cart without deleting the row.
func (q *Queries) ClearCart(ctx context.Context, sessionID string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE carts SET items_json = '[]', updated_at = CURRENT_TIMESTAMP
		WHERE session_id = ?`, sessionID)
	return err
}

// CartRow is one stored cart as the admin console sees it.
type CartRow struct {
	SessionID    string
	ItemsJSON    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastActivity time.Time
}

// ListCarts returns stored carts ordered by most recent activity.
func (q *Queries) ListCarts(ctx context.Context, limit int64) ([]CartRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT session_id, items_json, created_at, updated_at
		FROM carts
		WHERE items_json != '[]'
		ORDER BY updated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []CartRow
	for rows.Next() {
		var row CartRow
		if err := rows.Scan(&row.SessionID, &row.ItemsJSON, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		row.LastActivity = row.UpdatedAt
		carts = append(carts, row)
	}
	return carts, rows.Err()
}

// CartMetricsRow summarizes stored carts for the admin console.
type CartMetricsRow struct {
	TotalCarts     int64
	ActiveCount    int64
	AbandonedCount int64
}

// GetCartMetrics counts non-empty carts; a cart idle for 30 minutes or
// more counts as abandoned.
func (q *Queries) GetCartMetrics(ctx context.Context) (CartMetricsRow, error) {
	var m CartMetricsRow
	err := q.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN updated_at >= datetime('now', '-30 minutes') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN updated_at < datetime('now', '-30 minutes') THEN 1 ELSE 0 END), 0)
		FROM carts
		WHERE items_json != '[]'`).Scan(&m.TotalCarts, &m.ActiveCount, &m.AbandonedCount)
	return m, err
}

// AddRecentSearch records a search query for a session.
func (q *Queries) AddRecentSearch(ctx context.Context, id, sessionID, query string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO recent_searches (id, session_id, query)
		VALUES (?, ?, ?)`, id, sessionID, query)
	return err
}

// ListRecentSearches returns a session's most recent search queries,
// newest first, de-duplicated by query text.
func (q *Queries) ListRecentSearches(ctx context.Context, sessionID string, limit int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT query FROM recent_searches
		WHERE session_id = ?
		GROUP BY query
		ORDER BY MAX(created_at) DESC, MAX(rowid) DESC
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		queries = append(queries, s)
	}
	return queries, rows.Err()
}

// PruneRecentSearches keeps only the newest `keep` entries per session.
func (q *Queries) PruneRecentSearches(ctx context.Context, sessionID string, keep int64) error {
	_, err := q.db.ExecContext(ctx, `
		DELETE FROM recent_searches
		WHERE session_id = ?
		AND rowid NOT IN (
			SELECT rowid FROM recent_searches
			WHERE session_id = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)`, sessionID, sessionID, keep)
	return err
}

// CheckoutAttemptRow tracks one idempotency-keyed checkout attempt.
type CheckoutAttemptRow struct {
	IdempotencyKey string
	SessionID      string
	Status         string
	OrderID        sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateCheckoutAttempt records a new pending attempt under its
// idempotency key.
func (q *Queries) CreateCheckoutAttempt(ctx context.Context, key, sessionID string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO checkout_attempts (idempotency_key, session_id)
		VALUES (?, ?)`, key, sessionID)
	return err
}

// GetCheckoutAttempt looks up an attempt by idempotency key.
func (q *Queries) GetCheckoutAttempt(ctx context.Context, key string) (CheckoutAttemptRow, error) {
	var row CheckoutAttemptRow
	err := q.db.QueryRowContext(ctx, `
		SELECT idempotency_key, session_id, status, order_id, created_at, updated_at
		FROM checkout_attempts WHERE idempotency_key = ?`, key).
		Scan(&row.IdempotencyKey, &row.SessionID, &row.Status, &row.OrderID, &row.CreatedAt, &row.UpdatedAt)
	return row, err
}

// GetPendingCheckoutAttempt returns the newest still-pending attempt
// for a session, so a retry after failure reuses the same key.
func (q *Queries) GetPendingCheckoutAttempt(ctx context.Context, sessionID string) (CheckoutAttemptRow, error) {
	var row CheckoutAttemptRow
	err := q.db.QueryRowContext(ctx, `
		SELECT idempotency_key, session_id, status, order_id, created_at, updated_at
		FROM checkout_attempts
		WHERE session_id = ? AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`, sessionID).
		Scan(&row.IdempotencyKey, &row.SessionID, &row.Status, &row.OrderID, &row.CreatedAt, &row.UpdatedAt)
	return row, err
}

// MarkCheckoutAttempt updates an attempt's terminal status. orderID
// may be empty for failed attempts.
func (q *Queries) MarkCheckoutAttempt(ctx context.Context, key, status, orderID string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE checkout_attempts
		SET status = ?, order_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE idempotency_key = ?`,
		status, sql.NullString{String: orderID, Valid: orderID != ""}, key)
	return err
}
