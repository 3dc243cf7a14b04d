package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
)

// stubValidator accepts exactly one token
type stubValidator struct {
	token   string
	subject string
}

func (s stubValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	if token != s.token {
		return nil, errors.New("bad token")
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: s.subject},
		CustomClaims:     &CustomClaims{Email: "alice@example.com"},
	}, nil
}

// run passes req through mw and returns the recorded response and the
// identity the handler saw
func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	err := mw(func(c echo.Context) error {
		seen = GetIdentity(c)
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return rec, seen
}

func TestAuthenticate_HeaderIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set(IdentityHeader, "user_alice")

	rec, identity := run(t, NewAuthMiddleware().Authenticate(), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if identity != "user_alice" {
		t.Errorf("Expected identity user_alice, got %q", identity)
	}
}

func TestAuthenticate_MissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)

	rec, _ := run(t, NewAuthMiddleware().Authenticate(), req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}

	var body problemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected problem details body: %v", err)
	}
	if body.Type != errorTypeUnauthorized || body.Instance != "/api/v1/session" {
		t.Errorf("Unexpected problem details %+v", body)
	}
}

func TestAuthenticate_JWT(t *testing.T) {
	mw := NewAuthMiddlewareWithValidator(stubValidator{token: "good", subject: "user_alice"}).Authenticate()

	tests := []struct {
		name     string
		header   string
		identity string
		wantCode int
		wantID   string
	}{
		{"valid token", "Bearer good", "", http.StatusOK, "user_alice"},
		{"matching header", "Bearer good", "user_alice", http.StatusOK, "user_alice"},
		{"mismatched header", "Bearer good", "user_bob", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer bad", "", http.StatusUnauthorized, ""},
		{"missing token", "", "user_alice", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.identity != "" {
				req.Header.Set(IdentityHeader, tt.identity)
			}

			rec, identity := run(t, mw, req)
			if rec.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, rec.Code)
			}
			if identity != tt.wantID {
				t.Errorf("Expected identity %q, got %q", tt.wantID, identity)
			}
		})
	}
}

func TestAuthenticateQuery(t *testing.T) {
	t.Run("user id parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ws?user_id=user_alice", nil)
		_, identity := run(t, NewAuthMiddleware().AuthenticateQuery(), req)
		if identity != "user_alice" {
			t.Errorf("Expected user_alice, got %q", identity)
		}
	})

	t.Run("token parameter", func(t *testing.T) {
		mw := NewAuthMiddlewareWithValidator(stubValidator{token: "good", subject: "user_alice"}).AuthenticateQuery()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ws?token=good", nil)
		_, identity := run(t, mw, req)
		if identity != "user_alice" {
			t.Errorf("Expected user_alice, got %q", identity)
		}
	})

	t.Run("plain authenticate ignores query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ws?user_id=user_alice", nil)
		rec, _ := run(t, NewAuthMiddleware().Authenticate(), req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})
}

func TestGetCustomClaims(t *testing.T) {
	mw := NewAuthMiddlewareWithValidator(stubValidator{token: "good", subject: "user_alice"}).Authenticate()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	c := e.NewContext(req, httptest.NewRecorder())

	var custom *CustomClaims
	_ = mw(func(c echo.Context) error {
		custom = GetCustomClaims(c)
		return nil
	})(c)

	if custom == nil || custom.Email != "alice@example.com" {
		t.Errorf("Expected custom claims with email, got %+v", custom)
	}

	if GetCustomClaims(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())) != nil {
		t.Error("Expected nil custom claims without a token")
	}
}
