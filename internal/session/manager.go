package session

import (
	"encoding/gob"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	sessionName = "yourease_session"
	dataKey     = "data"

	// ContextKey is where middleware parks the session data on the
	// echo context.
	ContextKey = "session_data"
)

// Manager manages storefront sessions
type Manager struct {
	store sessions.Store
}

// NewManager creates a new session manager
func NewManager(secret string) *Manager {
	gob.Register(&Data{})

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: 2,     // Lax mode
	}

	return &Manager{
		store: store,
	}
}

// Load returns the session data for the request, minting a session id
// on first contact.
func (m *Manager) Load(c echo.Context) (*Data, error) {
	sess, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		// A bad cookie decodes as a fresh session rather than an error.
		sess, _ = m.store.New(c.Request(), sessionName)
	}

	data, ok := sess.Values[dataKey].(*Data)
	if !ok || data == nil || data.ID == "" {
		data = &Data{ID: uuid.NewString()}
		sess.Values[dataKey] = data
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}
	return data, nil
}

// Save writes the session data back to the cookie.
func (m *Manager) Save(c echo.Context, data *Data) error {
	sess, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		sess, _ = m.store.New(c.Request(), sessionName)
	}

	sess.Values[dataKey] = data
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Destroy clears the session
func (m *Manager) Destroy(c echo.Context) error {
	sess, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	sess.Options.MaxAge = -1
	delete(sess.Values, dataKey)

	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// Middleware loads (or creates) the session and parks it on the
// context for handlers.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			data, err := m.Load(c)
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}
			c.Set(ContextKey, data)
			return next(c)
		}
	}
}

// FromContext returns the session data set by Middleware.
func FromContext(c echo.Context) *Data {
	data, _ := c.Get(ContextKey).(*Data)
	return data
}
