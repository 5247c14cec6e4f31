package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse carries the bearer token the rest of the session uses.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var auth AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", req, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var auth AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", req, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func (c *Client) GetAuthProfile(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/profile", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodPut, "/api/users/profile", token, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type Preferences struct {
	Newsletter   bool   `json:"newsletter"`
	OrderUpdates bool   `json:"order_updates"`
	Language     string `json:"language,omitempty"`
}

func (c *Client) UpdatePreferences(ctx context.Context, token string, prefs Preferences) error {
	return c.doJSON(ctx, http.MethodPut, "/api/users/preferences", token, prefs, nil)
}

// UserDashboard is the account overview block (order counts, wishlist
// size, recent orders) assembled upstream.
type UserDashboard struct {
	OrderCount    int64   `json:"order_count"`
	WishlistCount int64   `json:"wishlist_count"`
	TotalSpent    int64   `json:"total_spent_paisa"`
	RecentOrders  []Order `json:"recent_orders"`
}

func (c *Client) GetUserDashboard(ctx context.Context, token string) (*UserDashboard, error) {
	var dash UserDashboard
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/dashboard", token, nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

type WishlistItem struct {
	ProductID string    `json:"product_id"`
	Product   Product   `json:"product"`
	AddedAt   time.Time `json:"added_at"`
}

func (c *Client) ListWishlist(ctx context.Context, token string) ([]WishlistItem, error) {
	var items []WishlistItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/wishlist", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) AddToWishlist(ctx context.Context, token, productID string) error {
	body := map[string]string{"product_id": productID}
	return c.doJSON(ctx, http.MethodPost, "/api/wishlist", token, body, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, token, productID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/wishlist/"+url.PathEscape(productID), token, nil, nil)
}

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserName  string    `json:"user_name"`
	Rating    int64     `json:"rating"`
	Comment   string    `json:"comment"`
	MediaURLs []string  `json:"media_urls,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Client) ListReviews(ctx context.Context, productID string) ([]Review, error) {
	var reviews []Review
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/"+url.PathEscape(productID)+"/reviews", "", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ReviewMedia is one uploaded image or video attached to a review.
type ReviewMedia struct {
	Filename string
	Content  io.Reader
}

// CreateReview submits a review as multipart form data so media files
// pass straight through to the upstream uploader.
func (c *Client) CreateReview(ctx context.Context, token, productID string, rating int64, comment string, media []ReviewMedia) (*Review, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	_ = writer.WriteField("rating", fmt.Sprintf("%d", rating))
	_ = writer.WriteField("comment", comment)

	for _, m := range media {
		part, err := writer.CreateFormFile("media", m.Filename)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, m.Content); err != nil {
			return nil, fmt.Errorf("copy media content: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	path := "/api/products/" + url.PathEscape(productID) + "/reviews"
	resp, err := c.doRequest(ctx, http.MethodPost, path, token, &body, writer.FormDataContentType())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var review Review
	if err := json.NewDecoder(resp.Body).Decode(&review); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &review, nil
}
