package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/workdesk/accounts-api/internal/api/metrics"
	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/service"
)

// Authorize requires a bearer token that guard accepts: the token must
// resolve to a stored user and that user must pass every policy of the chain.
// The resolved user is stored in the context for handlers.
func Authorize(guard *service.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil || token == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return domain.ErrInvalidCredentials
			}

			user, err := guard.Authorize(c.Request().Context(), token)
			if err != nil {
				var denied *domain.AccessDeniedError
				switch {
				case errors.As(err, &denied):
					metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
					metrics.AccessDeniedTotal.WithLabelValues(denied.Policy).Inc()
				case errors.Is(err, domain.ErrInvalidCredentials):
					metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				}
				return err
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			c.Set(userKey, user)
			return next(c)
		}
	}
}
