// Package catalog shapes upstream product data for the storefront:
// listing with filters and sort, search suggestions, recent searches.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yourease/storefront/internal/backend"
	"github.com/yourease/storefront/storage"
)

const (
	cacheTTL          = 2 * time.Minute
	maxSuggestions    = 8
	maxRecentSearches = 10
)

// Sort orders accepted by Browse.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortRating    = "rating"
)

type Service struct {
	backend *backend.Client
	queries *storage.Queries
	cache   *ttlCache
}

func NewService(backendClient *backend.Client, queries *storage.Queries) *Service {
	return &Service{
		backend: backendClient,
		queries: queries,
		cache:   newTTLCache(cacheTTL),
	}
}

// BrowseParams narrows and orders a product listing. Category and
// keyword go upstream; price band and stock are filtered here.
type BrowseParams struct {
	Category      string
	Keyword       string
	MinPricePaisa int64
	MaxPricePaisa int64
	InStockOnly   bool
	Sort          string
	Page          int64
}

// Browse lists products through the response cache, then applies the
// local filters and sort.
func (s *Service) Browse(ctx context.Context, params BrowseParams) ([]backend.Product, error) {
	products, err := s.listProducts(ctx, params.Category, params.Keyword, params.Page)
	if err != nil {
		return nil, err
	}

	filtered := make([]backend.Product, 0, len(products))
	for _, p := range products {
		if params.MinPricePaisa > 0 && p.PricePaisa < params.MinPricePaisa {
			continue
		}
		if params.MaxPricePaisa > 0 && p.PricePaisa > params.MaxPricePaisa {
			continue
		}
		if params.InStockOnly && p.CountInStock <= 0 {
			continue
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, params.Sort)
	return filtered, nil
}

func sortProducts(products []backend.Product, order string) {
	switch order {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].PricePaisa < products[j].PricePaisa })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].PricePaisa > products[j].PricePaisa })
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Rating > products[j].Rating })
	}
}

func (s *Service) listProducts(ctx context.Context, category, keyword string, page int64) ([]backend.Product, error) {
	key := fmt.Sprintf("products|%s|%s|%d", category, keyword, page)
	if cached, ok := s.cache.get(key); ok {
		return cached.([]backend.Product), nil
	}

	products, err := s.backend.ListProducts(ctx, backend.ListProductsParams{
		Category: category,
		Keyword:  keyword,
		Page:     page,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	s.cache.set(key, products)
	return products, nil
}

// Categories lists product categories through the cache.
func (s *Service) Categories(ctx context.Context) ([]backend.Category, error) {
	if cached, ok := s.cache.get("categories"); ok {
		return cached.([]backend.Category), nil
	}
	categories, err := s.backend.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	s.cache.set("categories", categories)
	return categories, nil
}

// Suggest matches product titles against the query, word-prefix first
// and substring second, capped at 8 suggestions.
func (s *Service) Suggest(ctx context.Context, query string) ([]string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	products, err := s.listProducts(ctx, "", "", 0)
	if err != nil {
		return nil, err
	}

	var prefix, substr []string
	for _, p := range products {
		title := strings.ToLower(p.Title)
		switch {
		case hasWordPrefix(title, query):
			prefix = append(prefix, p.Title)
		case strings.Contains(title, query):
			substr = append(substr, p.Title)
		}
	}

	suggestions := append(prefix, substr...)
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}

func hasWordPrefix(title, query string) bool {
	if strings.HasPrefix(title, query) {
		return true
	}
	for _, word := range strings.Fields(title) {
		if strings.HasPrefix(word, query) {
			return true
		}
	}
	return false
}

// RecordSearch stores a session's search query and prunes the history
// to the most recent ten. Failures are logged, not surfaced; search
// history is never worth failing a search for.
func (s *Service) RecordSearch(ctx context.Context, sessionID, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	if err := s.queries.AddRecentSearch(ctx, ulid.Make().String(), sessionID, query); err != nil {
		slog.Warn("failed to record search", "error", err)
		return
	}
	if err := s.queries.PruneRecentSearches(ctx, sessionID, maxRecentSearches); err != nil {
		slog.Warn("failed to prune searches", "error", err)
	}
}

// RecentSearches returns a session's stored search history.
func (s *Service) RecentSearches(ctx context.Context, sessionID string) ([]string, error) {
	return s.queries.ListRecentSearches(ctx, sessionID, maxRecentSearches)
}

// InvalidateCache clears the response cache; the admin console calls
// this after catalog-affecting writes.
func (s *Service) InvalidateCache() {
	s.cache.invalidate()
}
