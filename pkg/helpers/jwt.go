package helpers

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	// Clients use the distinct code to trigger a refresh or re-login.
	ErrTokenExpired = apperr.Expired("token_expired", "session expired").WithStatus(http.StatusUnauthorized)
	// ErrTokenInvalid covers malformed, forged or wrongly signed tokens.
	ErrTokenInvalid = apperr.Unauthorized("token_invalid", "invalid session token")
)

// JWTManager issues and verifies HS256 session tokens.
type JWTManager struct {
	Secret        []byte
	TTL           time.Duration
	RefreshWindow time.Duration
}

func NewJWTManager(secret string, ttl, refreshWindow time.Duration) *JWTManager {
	return &JWTManager{
		Secret:        []byte(secret),
		TTL:           ttl,
		RefreshWindow: refreshWindow,
	}
}

type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Expiry returns the expiry time, zero when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Generate signs a token for the subject and role, valid for TTL.
func (m *JWTManager) Generate(userID, role string) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	if err != nil {
		return "", nil, err
	}
	return s, claims, nil
}

// Parse verifies the signature and expiry of tokenStr.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenInvalid
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(ErrTokenExpired, err)
		}
		return nil, apperr.Wrap(ErrTokenInvalid, err)
	}
	if !tkn.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// NeedsRefresh reports whether the token expires within the refresh window.
func (m *JWTManager) NeedsRefresh(c *Claims, now time.Time) bool {
	exp := c.Expiry()
	if exp.IsZero() {
		return false
	}
	return exp.Sub(now) <= m.RefreshWindow
}
