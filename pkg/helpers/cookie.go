package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the httpOnly cookie carrying the session token.
const SessionCookie = "token"

type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

func (m *Manager) SetSession(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(m.sameSite())
	c.SetCookie(SessionCookie, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(m.sameSite())
	c.SetCookie(SessionCookie, "", -1, "/", m.Domain, m.Secure, true)
}

// Cross-site SPA deployments need SameSite=None, which browsers only accept on secure cookies.
func (m *Manager) sameSite() http.SameSite {
	if m.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
