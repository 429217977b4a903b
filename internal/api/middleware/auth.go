package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/workdesk/accounts-api/internal/api/metrics"
	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/ports"
)

const userKey = "user"

var errMalformedHeader = errors.New("malformed authorization header")

// bearerToken extracts the token from "Authorization: Bearer <token>".
// It returns ("", nil) when the header is absent.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errMalformedHeader
	}
	return strings.TrimSpace(parts[1]), nil
}

// OptionalAuthenticate lets requests without an Authorization header through
// anonymously. A header that is present but malformed, or a token that does
// not resolve, is still rejected.
func OptionalAuthenticate(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return domain.ErrInvalidCredentials
			}

			user, err := resolver.ResolveOptionalUser(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) {
					metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				}
				return err
			}

			if user == nil {
				metrics.TokenVerificationsTotal.WithLabelValues("anonymous").Inc()
			} else {
				metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
				c.Set(userKey, user)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by Authorize, or nil for anonymous
// requests.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userKey).(*domain.User)
	return user
}
