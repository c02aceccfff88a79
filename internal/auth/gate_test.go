package auth

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(Config{AdminPassword: "s3cret", JWTSecret: "test-secret", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewGate() error: %v", err)
	}
	return g
}

// TestLoginAndCheck verifies a token from Login passes Check.
func TestLoginAndCheck(t *testing.T) {
	g := newTestGate(t)

	token, err := g.Login("s3cret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if !g.Check(token) {
		t.Error("Check() rejected a freshly issued token")
	}
}

// TestLoginWrongPassword verifies ErrUnauthorized for a bad password.
func TestLoginWrongPassword(t *testing.T) {
	g := newTestGate(t)
	if _, err := g.Login("guess"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Login(guess) error = %v, want ErrUnauthorized", err)
	}
}

// TestCheckRejectsBadTokens covers empty, forged, expired, and non-admin tokens.
func TestCheckRejectsBadTokens(t *testing.T) {
	g := newTestGate(t)

	other, err := NewGate(Config{AdminPassword: "s3cret", JWTSecret: "different"})
	if err != nil {
		t.Fatal(err)
	}
	forged, _ := other.Login("s3cret")

	expiredGate := newTestGate(t)
	expiredGate.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredGate.Login("s3cret")

	notAdmin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"forged":    forged,
		"expired":   expired,
		"not admin": notAdmin,
		"literal":   "true",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if g.Check(token) {
				t.Errorf("Check(%s) = true, want false", name)
			}
		})
	}
}

// TestLoginHandlerSetsCookie exercises the login and check endpoints.
func TestLoginHandlerSetsCookie(t *testing.T) {
	g := newTestGate(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewBufferString(`{"password":"s3cret"}`))
	rr := httptest.NewRecorder()
	g.LoginHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected %s cookie, got %v", CookieName, cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("cookie is not HttpOnly")
	}

	check := httptest.NewRequest(http.MethodGet, "/admin/check", http.NoBody)
	check.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	g.CheckHandler(rr, check)
	if rr.Code != http.StatusOK {
		t.Errorf("check status = %d, want 200", rr.Code)
	}
}

// TestLoginHandlerRejects verifies 401 on a wrong password and no cookie.
func TestLoginHandlerRejects(t *testing.T) {
	g := newTestGate(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewBufferString(`{"password":"nope"}`))
	rr := httptest.NewRecorder()
	g.LoginHandler(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("cookie set on failed login")
	}
}

// TestRequireModerator checks the middleware with and without a bearer token.
func TestRequireModerator(t *testing.T) {
	g := newTestGate(t)
	token, _ := g.Login("s3cret")

	reached := false
	h := g.RequireModerator(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/users", http.NoBody))
	if rr.Code != http.StatusUnauthorized || reached {
		t.Errorf("unauthenticated request: status %d, reached %v", rr.Code, reached)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/users", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent || !reached {
		t.Errorf("authenticated request: status %d, reached %v", rr.Code, reached)
	}
}

// TestNewGateRequiresPassword rejects an empty admin password.
func TestNewGateRequiresPassword(t *testing.T) {
	if _, err := NewGate(Config{}); err == nil {
		t.Error("NewGate() with empty password succeeded")
	}
}
