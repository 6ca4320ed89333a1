package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRouterHealth(t *testing.T) {
	e := NewRouter([]string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Success string `json:"success"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Success != "ok" {
		t.Fatalf("unexpected health payload %q", rec.Body.String())
	}
}

func TestRouterCORSCredentials(t *testing.T) {
	preflight := func(t *testing.T, e *echo.Echo, origin string) http.Header {
		t.Helper()
		req := httptest.NewRequest(http.MethodOptions, "/health", nil)
		req.Header.Set(echo.HeaderOrigin, origin)
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Header()
	}

	t.Run("wildcard origin disables credentials", func(t *testing.T) {
		headers := preflight(t, NewRouter([]string{"*"}), "https://app.example.com")
		if got := headers.Get(echo.HeaderAccessControlAllowCredentials); got == "true" {
			t.Fatalf("credentials must not be allowed under a wildcard origin")
		}
	})

	t.Run("named origin allows credentials", func(t *testing.T) {
		headers := preflight(t, NewRouter([]string{"https://app.example.com"}), "https://app.example.com")
		if got := headers.Get(echo.HeaderAccessControlAllowCredentials); got != "true" {
			t.Fatalf("expected credentials allowed for a named origin, got %q", got)
		}
		if got := headers.Get(echo.HeaderAccessControlAllowOrigin); got != "https://app.example.com" {
			t.Fatalf("unexpected allow-origin %q", got)
		}
	})
}
