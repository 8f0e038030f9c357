package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repairshop/internal/middleware"
	"repairshop/internal/model"
	"repairshop/internal/permission"
	"repairshop/internal/tenant"
	"repairshop/pkg/database"
	"repairshop/pkg/jwtutil"
	"repairshop/pkg/logger"
	"repairshop/prometheus"
)

func manager(c echo.Context) *tenant.Manager {
	m := tenant.NewManager(database.GetDB(), logger.FromEcho(c))
	m.Notifier = tenant.LogNotifier{Log: logger.FromEcho(c)}
	return m
}

// CreateTenant provisions a new organization with the caller as owner.
func CreateTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("create")

	userID := middleware.UserID(c)
	if userID == 0 {
		prometheus.RecordAuthError("unauthorized_tenant_creation")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name         string             `json:"name"`
		BusinessType model.BusinessType `json:"business_type"`
		Settings     string             `json:"settings,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	t, err := manager(c).CreateTenant(tenant.CreateTenantInput{
		Name:         req.Name,
		OwnerUserID:  userID,
		BusinessType: req.BusinessType,
		Settings:     req.Settings,
	})
	if err != nil {
		prometheus.RecordTenantError("creation_failed")
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Organization created successfully",
		"tenant":  t,
	})
}

// GetTenant returns the resolved organization along with the caller's
// role and capabilities in it.
func GetTenant(c echo.Context) error {
	prometheus.RecordTenantOperation("access")

	tc := middleware.TenantContext(c)

	response := echo.Map{"tenant": tc.Tenant}
	if tc.Membership != nil {
		response["membership"] = echo.Map{
			"role":         tc.Membership.Role,
			"status":       tc.Membership.Status,
			"is_default":   tc.Membership.IsDefault,
			"capabilities": tenantCapabilities(tc),
		}
	}
	return c.JSON(http.StatusOK, response)
}

func tenantCapabilities(tc *tenant.Context) []string {
	var out []string
	role := tc.Role()
	if role == "" {
		return out
	}
	for _, cap := range permission.Capabilities(role) {
		out = append(out, string(cap))
	}
	return out
}

// ListUserTenants lists the organizations the caller belongs to.
func ListUserTenants(c echo.Context) error {
	prometheus.RecordTenantOperation("list")

	userID := middleware.UserID(c)
	infos, err := manager(c).UserTenants(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, infos)
}

// SwitchTenant issues a fresh token scoped to another organization the
// caller is an active member of.
func SwitchTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("switch")

	userID := middleware.UserID(c)
	email, _ := c.Get("email").(string)

	var req struct {
		TenantID uint `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TenantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var membership model.Membership
	result := database.GetDB().Preload("Tenant").
		Where("user_id = ? AND tenant_id = ? AND status = ?", userID, req.TenantID, model.MembershipActive).
		First(&membership)
	if result.Error != nil {
		log.Warn("Unauthorized tenant switch attempt",
			zap.Uint("user_id", userID),
			zap.Uint("tenant_id", req.TenantID))
		prometheus.RecordTenantError("switch_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to requested organization"})
	}

	tenantID := membership.TenantID
	token, err := jwtutil.GenerateTokenWithTenant(email, userID, &tenantID, membership.Tenant.Slug, membership.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User switched organization",
		zap.Uint("user_id", userID),
		zap.Uint("tenant_id", req.TenantID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"tenant": echo.Map{
			"id":   membership.TenantID,
			"name": membership.Tenant.Name,
			"slug": membership.Tenant.Slug,
			"role": membership.Role,
		},
	})
}

// SetDefaultTenant marks an organization as the caller's default.
func SetDefaultTenant(c echo.Context) error {
	prometheus.RecordTenantOperation("set_default")

	userID := middleware.UserID(c)

	var req struct {
		TenantID uint `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TenantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	if err := manager(c).SetDefaultTenant(userID, req.TenantID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Default organization updated"})
}
