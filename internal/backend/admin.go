package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// SaleCampaign is an admin-managed discount campaign.
type SaleCampaign struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	DiscountPercent int64     `json:"discount_percent"`
	ProductIDs      []string  `json:"product_ids,omitempty"`
	CategoryID      string    `json:"category_id,omitempty"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	Active          bool      `json:"active"`
}

func (c *Client) ListSaleCampaigns(ctx context.Context, token string) ([]SaleCampaign, error) {
	var sales []SaleCampaign
	if err := c.doJSON(ctx, http.MethodGet, "/api/sales", token, nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (c *Client) CreateSaleCampaign(ctx context.Context, token string, sale SaleCampaign) (*SaleCampaign, error) {
	var created SaleCampaign
	if err := c.doJSON(ctx, http.MethodPost, "/api/sales", token, sale, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateSaleCampaign(ctx context.Context, token string, sale SaleCampaign) (*SaleCampaign, error) {
	var updated SaleCampaign
	if err := c.doJSON(ctx, http.MethodPut, "/api/sales/"+url.PathEscape(sale.ID), token, sale, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteSaleCampaign(ctx context.Context, token, saleID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/sales/"+url.PathEscape(saleID), token, nil, nil)
}

// Banner is a storefront hero/promo banner.
type Banner struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Image    string `json:"image"`
	LinkURL  string `json:"link_url,omitempty"`
	Position int64  `json:"position"`
	Active   bool   `json:"active"`
}

func (c *Client) ListBanners(ctx context.Context) ([]Banner, error) {
	var banners []Banner
	if err := c.doJSON(ctx, http.MethodGet, "/api/banners", "", nil, &banners); err != nil {
		return nil, err
	}
	return banners, nil
}

func (c *Client) CreateBanner(ctx context.Context, token string, banner Banner) (*Banner, error) {
	var created Banner
	if err := c.doJSON(ctx, http.MethodPost, "/api/banners", token, banner, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateBanner(ctx context.Context, token string, banner Banner) (*Banner, error) {
	var updated Banner
	if err := c.doJSON(ctx, http.MethodPut, "/api/banners/"+url.PathEscape(banner.ID), token, banner, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteBanner(ctx context.Context, token, bannerID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/banners/"+url.PathEscape(bannerID), token, nil, nil)
}

// ListAllOrders is the admin order-management listing; status filters
// server-side when non-empty.
func (c *Client) ListAllOrders(ctx context.Context, token, status string) ([]Order, error) {
	path := "/api/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var orders []Order
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token, orderID, status string) (*Order, error) {
	body := map[string]string{"status": status}
	var order Order
	if err := c.doJSON(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(orderID)+"/status", token, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
