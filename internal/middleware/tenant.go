package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repairshop/internal/permission"
	"repairshop/internal/tenant"
	"repairshop/pkg/database"
	"repairshop/pkg/logger"
	"repairshop/prometheus"
)

const tenantContextKey = "tenant_ctx"

// ResolveTenant determines the active tenant for the request and
// stores an explicit tenant.Context in the Echo context. Resolution
// order: path slug, then the token's tenant selection, then the
// advisory X-Tenant-ID header. Routes that need no tenant (auth,
// health, metrics) simply do not mount this middleware.
func ResolveTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		req := tenant.ResolveRequest{
			Slug:           c.Param("slug"),
			HeaderTenantID: c.Request().Header.Get("X-Tenant-ID"),
			UserID:         UserID(c),
		}
		if tokenTenant, ok := c.Get("token_tenant_id").(uint); ok {
			req.TokenTenantID = &tokenTenant
		}

		tc, err := tenant.NewResolver(database.GetDB()).Resolve(req)
		if errors.Is(err, tenant.ErrTenantNotFound) {
			// An explicit slug that resolves to nothing rejects the
			// request; no fallback to the weaker signals.
			log.Warn("Unknown tenant slug", zap.String("slug", req.Slug))
			prometheus.RecordTenantError("unknown_slug")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "organization not found"})
		}
		if err != nil {
			log.Error("Tenant resolution failed", zap.Error(err))
			prometheus.RecordTenantError("resolve_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
		}

		if tc != nil {
			SetTenantContext(c, tc)
			c.Set("logger", log.With(
				zap.Uint("tenant_id", tc.Tenant.ID),
				zap.String("tenant_slug", tc.Tenant.Slug),
			))
			prometheus.RecordTenantOperation("resolve")
		}

		return next(c)
	}
}

// SetTenantContext stores the resolved tenant context on the request.
func SetTenantContext(c echo.Context, tc *tenant.Context) {
	c.Set(tenantContextKey, tc)
}

// TenantContext returns the resolved tenant context for the request,
// or nil when no tenant was resolved.
func TenantContext(c echo.Context) *tenant.Context {
	tc, _ := c.Get(tenantContextKey).(*tenant.Context)
	return tc
}

// RequireTenantContext rejects requests for which no tenant was
// resolved.
func RequireTenantContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if TenantContext(c) == nil {
			logger.FromEcho(c).Warn("Missing tenant context")
			prometheus.TenantContextMissingCounter.Inc()
			return c.JSON(http.StatusForbidden, echo.Map{
				"error":   "tenant context required",
				"message": "Please select an organization before accessing this resource",
			})
		}
		return next(c)
	}
}

// RequireCapability checks the caller's role in the resolved tenant
// against the capability table. Composed after RequireTenantContext.
func RequireCapability(cap permission.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tc := TenantContext(c)
			if tc == nil || !tc.Can(cap) {
				logger.FromEcho(c).Warn("Capability denied",
					zap.String("capability", string(cap)),
					zap.String("role", string(tc.Role())))
				prometheus.RecordPermissionDenied(string(cap))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}

// RequireWritableTenant blocks state-changing operations for suspended
// tenants, regardless of the caller's role. Layered independently of
// the capability check.
func RequireWritableTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tc := TenantContext(c)
		if tc != nil && !tc.Tenant.Writable() {
			logger.FromEcho(c).Warn("Write rejected for suspended tenant",
				zap.Uint("tenant_id", tc.Tenant.ID))
			prometheus.RecordTenantError("tenant_suspended")
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "organization is suspended; contact billing to restore access",
			})
		}
		return next(c)
	}
}
