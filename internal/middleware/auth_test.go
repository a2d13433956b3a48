package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/navafv/digital-thread-tailor-app/pkg/config"
	"github.com/navafv/digital-thread-tailor-app/pkg/jwtutil"
)

func newTokens() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "middleware-test", ExpirationHours: 1})
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	customerID := uint(12)
	clientToken, err := tokens.GenerateToken(jwtutil.TenantClaims{UserID: 5, TenantID: 2, Role: "client", CustomerID: &customerID})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	badRole, err := tokens.GenerateToken(jwtutil.TenantClaims{UserID: 5, TenantID: 2, Role: "admin"})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing", header: "", wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "unknown_role", header: "Bearer " + badRole, wantStatus: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + clientToken, wantStatus: http.StatusOK},
		{name: "lowercase_prefix", header: "bearer " + clientToken, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var got model.Identity
			h := AuthMiddleware(tokens)(func(c echo.Context) error {
				got, _ = IdentityFrom(c)
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusOK {
				if got.Role != model.RoleClient || got.TenantID != 2 || got.CustomerID == nil || *got.CustomerID != 12 {
					t.Errorf("Unexpected identity %+v", got)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	customerID := uint(3)
	tests := []struct {
		name       string
		who        *model.Identity
		role       model.Role
		wantStatus int
	}{
		{name: "no_identity", who: nil, role: model.RoleTailor, wantStatus: http.StatusUnauthorized},
		{name: "tailor_on_tailor", who: &model.Identity{Role: model.RoleTailor, TenantID: 1}, role: model.RoleTailor, wantStatus: http.StatusOK},
		{name: "client_on_tailor", who: &model.Identity{Role: model.RoleClient, TenantID: 1, CustomerID: &customerID}, role: model.RoleTailor, wantStatus: http.StatusForbidden},
		{name: "tailor_on_client", who: &model.Identity{Role: model.RoleTailor, TenantID: 1}, role: model.RoleClient, wantStatus: http.StatusForbidden},
		{name: "client_on_client", who: &model.Identity{Role: model.RoleClient, TenantID: 1, CustomerID: &customerID}, role: model.RoleClient, wantStatus: http.StatusOK},
		{name: "unlinked_client", who: &model.Identity{Role: model.RoleClient, TenantID: 1}, role: model.RoleClient, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if tt.who != nil {
				c.Set(identityKey, *tt.who)
			}

			h := RequireRole(tt.role)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	var seen string
	h := RequestIDMiddleware(func(c echo.Context) error {
		seen, _ = c.Get("request_id").(string)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if seen == "" {
		t.Fatal("Expected request id on context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("Expected response header %s, got %s", seen, got)
	}
}
