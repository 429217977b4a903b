package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/service"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "could not validate credentials"},
		{"access denied", &domain.AccessDeniedError{Policy: "admin", Reason: "admin only"}, http.StatusForbidden, "admin only"},
		{"wrapped denial", fmt.Errorf("guard: %w", &domain.AccessDeniedError{Policy: "active", Reason: "nope"}), http.StatusForbidden, "nope"},
		{"email taken", domain.ErrEmailTaken, http.StatusBadRequest, domain.ErrEmailTaken.Error()},
		{"not found", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"throttled", domain.ErrTooManyAttempts, http.StatusTooManyRequests, domain.ErrTooManyAttempts.Error()},
		{"invalid input", fmt.Errorf("%w: email is required", service.ErrInvalidInput), http.StatusBadRequest, ""},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantMsg != "" {
				if got := errorBody(t, rec); got != tt.wantMsg {
					t.Fatalf("expected %q, got %q", tt.wantMsg, got)
				}
			}
			hasChallenge := rec.Header().Get(echo.HeaderWWWAuthenticate) != ""
			if hasChallenge != (tt.wantCode == http.StatusUnauthorized) {
				t.Fatalf("WWW-Authenticate presence mismatch for %d", tt.wantCode)
			}
		})
	}
}
