// Package session keeps the browser session in a signed cookie. The cookie
// holds the session id (which keys the cart) and, once logged in, the customer.
package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const (
	DefaultCookieName = "storefront_session"
	contextKey        = "session"
)

type Session struct {
	ID           string
	CustomerID   uint
	CustomerName string
}

func (s *Session) LoggedIn() bool {
	return s != nil && s.CustomerID != 0
}

type Manager struct {
	Secret     []byte
	CookieName string
	Secure     bool
}

func NewManager(secret []byte, secure bool) *Manager {
	return &Manager{Secret: secret, CookieName: DefaultCookieName, Secure: secure}
}

// Middleware attaches a session to every request. A missing or tampered cookie
// gets a fresh anonymous session.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, fresh := m.read(c)
			if fresh {
				if err := m.Save(c, sess); err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "cannot create session")
				}
			}
			c.Set(contextKey, sess)
			return next(c)
		}
	}
}

func (m *Manager) read(c echo.Context) (*Session, bool) {
	cookie, err := c.Cookie(m.CookieName)
	if err == nil && cookie.Value != "" {
		sess, err := Parse(cookie.Value, m.Secret)
		if err == nil {
			return sess, false
		}
		logging.FromContext(c.Request().Context()).Warn("session_rejected", "reason", "invalid session cookie", "error", err)
	}
	return &Session{ID: uuid.NewString()}, true
}

// Save signs the session and writes the cookie.
func (m *Manager) Save(c echo.Context, s *Session) error {
	token, err := Sign(s, m.Secret)
	if err != nil {
		return err
	}
	c.SetCookie(createCookie(m.CookieName, token, m.Secure))
	c.Set(contextKey, s)
	return nil
}

// Login stores the identity. The session id stays, so the cart survives.
func (m *Manager) Login(c echo.Context, customerID uint, name string) error {
	s := FromContext(c)
	s.CustomerID = customerID
	s.CustomerName = name
	return m.Save(c, s)
}

// Logout drops the identity but keeps the session and its cart.
func (m *Manager) Logout(c echo.Context) error {
	s := FromContext(c)
	s.CustomerID = 0
	s.CustomerName = ""
	return m.Save(c, s)
}

// FromContext returns the request's session, starting an anonymous one when
// the middleware did not run.
func FromContext(c echo.Context) *Session {
	if s, ok := c.Get(contextKey).(*Session); ok && s != nil {
		return s
	}
	s := &Session{ID: uuid.NewString()}
	c.Set(contextKey, s)
	return s
}
