package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repairshop/pkg/jwtutil"
	"repairshop/pkg/logger"
	"repairshop/prometheus"
)

// AuthMiddleware validates the JWT token from the Authorization header
// and stores the caller's identity in the request context.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)
		prometheus.AuthAttemptsCounter.Inc()

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		prometheus.AuthSuccessCounter.Inc()

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)

		// The tenant selection embedded in the token feeds the tenant
		// resolver as the session signal.
		if claims.TenantID != nil {
			c.Set("token_tenant_id", *claims.TenantID)

			log = log.With(
				zap.Uint("tenant_id", *claims.TenantID),
				zap.String("tenant_slug", claims.TenantSlug),
			)
			c.Set("logger", log)
		}

		return next(c)
	}
}

// UserID extracts the authenticated user's id from the Echo context.
// Zero when the request is unauthenticated.
func UserID(c echo.Context) uint {
	id, _ := c.Get("user_id").(uint)
	return id
}
