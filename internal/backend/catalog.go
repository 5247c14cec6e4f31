package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Product struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Slug         string              `json:"slug"`
	Description  string              `json:"description,omitempty"`
	Image        string              `json:"image,omitempty"`
	PricePaisa   int64               `json:"price_paisa"`
	CategoryID   string              `json:"category_id,omitempty"`
	CountInStock int64               `json:"count_in_stock"`
	Rating       float64             `json:"rating,omitempty"`
	NumReviews   int64               `json:"num_reviews,omitempty"`
	Options      map[string][]string `json:"options,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// ListProductsParams are passed through to the upstream query string.
type ListProductsParams struct {
	Category string
	Keyword  string
	Page     int64
}

func (c *Client) ListProducts(ctx context.Context, params ListProductsParams) ([]Product, error) {
	values := url.Values{}
	if params.Category != "" {
		values.Set("category", params.Category)
	}
	if params.Keyword != "" {
		values.Set("keyword", params.Keyword)
	}
	if params.Page > 0 {
		values.Set("page", strconv.FormatInt(params.Page, 10))
	}

	path := "/api/products"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var products []Product
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categories", "", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
