package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/yourease/storefront/internal/cart"
	"github.com/yourease/storefront/storage"
)

const (
	numActiveCarts    = 8
	numAbandonedCarts = 15
	numSearchSessions = 10
)

var sampleOptions = []map[string]string{
	nil,
	{"size": "S"},
	{"size": "M"},
	{"size": "L", "color": "Black"},
	{"size": "XL", "color": "Indigo"},
	{"color": "Maroon"},
}

var searchTerms = []string{
	"kurta", "silk scarf", "dress", "cotton", "saree",
	"shirt", "lehenga", "dupatta", "palazzo", "jacket",
}

func main() {
	gofakeit.Seed(time.Now().UnixNano())

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./db/yourease.db"
	}

	store, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	carts := storage.NewCartStore(store.Queries)

	seedCarts(ctx, store, carts)
	seedSearches(ctx, store)

	fmt.Println("Seed complete.")
}

func fakeItems() []cart.LineItem {
	n := 1 + rand.Intn(4)
	items := make([]cart.LineItem, 0, n)
	for i := 0; i < n; i++ {
		items = cart.AddItem(items, cart.LineItem{
			ID:              uuid.NewString(),
			Title:           gofakeit.ProductName(),
			Image:           gofakeit.ImageURL(640, 640),
			PricePaisa:      int64(gofakeit.Number(9900, 499900)),
			Quantity:        int64(1 + rand.Intn(3)),
			CountInStock:    int64(5 + rand.Intn(50)),
			SelectedOptions: sampleOptions[rand.Intn(len(sampleOptions))],
		})
	}
	return items
}

func seedCarts(ctx context.Context, store *storage.Storage, carts *storage.CartStore) {
	for i := 0; i < numActiveCarts; i++ {
		sessionID := uuid.NewString()
		if err := carts.Save(ctx, sessionID, fakeItems()); err != nil {
			log.Fatalf("Failed to seed active cart: %v", err)
		}
	}

	// Abandoned carts get a backdated updated_at so the admin metrics
	// count them on the abandoned side.
	for i := 0; i < numAbandonedCarts; i++ {
		sessionID := uuid.NewString()
		raw, err := json.Marshal(fakeItems())
		if err != nil {
			log.Fatalf("Failed to serialize cart: %v", err)
		}
		age := time.Duration(31+rand.Intn(600)) * time.Minute
		_, err = store.DB().ExecContext(ctx, `
			INSERT INTO carts (session_id, items_json, created_at, updated_at)
			VALUES (?, ?, ?, ?)`,
			sessionID, string(raw),
			time.Now().UTC().Add(-age-time.Hour),
			time.Now().UTC().Add(-age))
		if err != nil {
			log.Fatalf("Failed to seed abandoned cart: %v", err)
		}
	}
	fmt.Printf("Seeded %d active and %d abandoned carts\n", numActiveCarts, numAbandonedCarts)
}

func seedSearches(ctx context.Context, store *storage.Storage) {
	for i := 0; i < numSearchSessions; i++ {
		sessionID := uuid.NewString()
		n := 2 + rand.Intn(6)
		for j := 0; j < n; j++ {
			query := searchTerms[rand.Intn(len(searchTerms))]
			if err := store.Queries.AddRecentSearch(ctx, ulid.Make().String(), sessionID, query); err != nil {
				log.Fatalf("Failed to seed search: %v", err)
			}
		}
	}
	fmt.Printf("Seeded searches for %d sessions\n", numSearchSessions)
}
