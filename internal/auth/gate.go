// Package auth implements the moderator login gate: a shared admin password
// exchanged for a signed, expiring token carried in the adminToken cookie.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying the moderator token.
const CookieName = "adminToken"

const bearerPrefix = "Bearer "

// ErrUnauthorized is returned when a password or token does not validate.
var ErrUnauthorized = errors.New("unauthorized")

// Config holds auth gate configuration.
type Config struct {
	AdminPassword string        `mapstructure:"admin_password"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
}

type claims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin"`
}

// Gate issues and verifies moderator tokens.
type Gate struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	secure   bool
	now      func() time.Time
}

// NewGate creates a gate. An empty JWT secret is replaced by random bytes,
// which invalidates issued tokens on restart.
func NewGate(cfg Config) (*Gate, error) {
	if cfg.AdminPassword == "" {
		return nil, errors.New("admin password must not be empty")
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Gate{
		password: []byte(cfg.AdminPassword),
		secret:   secret,
		ttl:      ttl,
		secure:   cfg.CookieSecure,
		now:      time.Now,
	}, nil
}

// Login exchanges the admin password for a signed token.
func (g *Gate) Login(password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(password), g.password) != 1 {
		return "", ErrUnauthorized
	}

	now := g.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
		Admin: true,
	})

	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Check reports whether the token was issued by this gate and is unexpired.
func (g *Gate) Check(token string) bool {
	if token == "" {
		return false
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return false
	}
	return c.Admin
}

// TokenFromRequest returns the moderator token from the cookie or an
// Authorization bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimPrefix(h, bearerPrefix)
	}
	return ""
}

// Authorized reports whether the request carries a valid moderator token.
func (g *Gate) Authorized(r *http.Request) bool {
	return g.Check(TokenFromRequest(r))
}

// SetCookie stores the token on the response.
func (g *Gate) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.ttl.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the moderator cookie.
func (g *Gate) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
