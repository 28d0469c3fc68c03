package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/vitrine/internal/config"
)

// DefaultCookieName is used when auth.cookie_name is empty.
const DefaultCookieName = "vitrine_session"

// Manager carries the opaque session token between the admin panel and the
// API in an HttpOnly cookie scoped to the whole site.
type Manager struct {
	name   string
	domain string
	secure bool
	now    func() time.Time
}

func NewManager(cfg config.Config) *Manager {
	name := cfg.AuthCookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &Manager{
		name:   name,
		domain: cfg.AuthCookieDomain,
		secure: cfg.AuthCookieSecure,
		now:    time.Now,
	}
}

// ReadToken returns the raw token, or false when the cookie is missing or blank.
func (m *Manager) ReadToken(c *gin.Context) (string, bool) {
	cookie, err := c.Request.Cookie(m.name)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(cookie.Value)
	return token, token != ""
}

// Set issues the cookie until expiresAt, matching the server-side session.
func (m *Manager) Set(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(m.now()).Seconds())
	if maxAge <= 0 {
		m.Clear(c)
		return
	}
	http.SetCookie(c.Writer, m.cookie(token, expiresAt, maxAge))
}

func (m *Manager) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, m.cookie("", time.Unix(0, 0), -1))
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		Domain:   m.domain,
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
