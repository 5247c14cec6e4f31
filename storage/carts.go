package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourease/storefront/internal/cart"
)

// CartStore is the single owned read/write API over the persisted
// cart. Every call site goes through it; there is exactly one storage
// key per session.
type CartStore struct {
	queries *Queries
}

func NewCartStore(queries *Queries) *CartStore {
	return &CartStore{queries: queries}
}

// Get loads a session's cart. A missing row or corrupt stored JSON
// reads as an empty cart; corruption resets the slot on the next write
// rather than surfacing an error.
func (s *CartStore) Get(ctx context.Context, sessionID string) ([]cart.LineItem, error) {
	raw, err := s.queries.GetCartJSON(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return []cart.LineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []cart.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Warn("corrupt cart payload, treating as empty", "session_id", sessionID, "error", err)
		return []cart.LineItem{}, nil
	}
	if items == nil {
		items = []cart.LineItem{}
	}
	return items, nil
}

// Save serializes and persists a session's full line-item list.
func (s *CartStore) Save(ctx context.Context, sessionID string, items []cart.LineItem) error {
	if items == nil {
		items = []cart.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("serialize cart: %w", err)
	}
	if err := s.queries.UpsertCart(ctx, sessionID, string(raw)); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

// Clear empties a session's cart.
func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.queries.ClearCart(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
