package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repairshop/internal/middleware"
	"repairshop/internal/model"
	"repairshop/internal/tenant"
	"repairshop/pkg/logger"
	"repairshop/prometheus"
)

// BillingWebhook consumes subscription state changes pushed by the
// external billing provider. This service never calls the provider;
// tenant status transitions (trial/active/suspended) are driven from
// here.
func BillingWebhook(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("billing_event")

	var req struct {
		TenantID               uint                     `json:"tenant_id"`
		Plan                   model.SubscriptionPlan   `json:"plan"`
		Status                 model.SubscriptionStatus `json:"status"`
		ExternalCustomerID     string                   `json:"external_customer_id"`
		ExternalSubscriptionID string                   `json:"external_subscription_id"`
		CurrentPeriodStart     *time.Time               `json:"current_period_start"`
		CurrentPeriodEnd       *time.Time               `json:"current_period_end"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse billing event", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if req.TenantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	sub, err := manager(c).ApplyBillingEvent(tenant.BillingEvent{
		TenantID:               req.TenantID,
		Plan:                   req.Plan,
		Status:                 req.Status,
		ExternalCustomerID:     req.ExternalCustomerID,
		ExternalSubscriptionID: req.ExternalSubscriptionID,
		CurrentPeriodStart:     req.CurrentPeriodStart,
		CurrentPeriodEnd:       req.CurrentPeriodEnd,
	})
	if err != nil {
		prometheus.RecordTenantError("billing_event_failed")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"subscription": sub})
}

// GetSubscription returns the resolved tenant's subscription.
func GetSubscription(c echo.Context) error {
	prometheus.RecordTenantOperation("subscription_access")

	tc := middleware.TenantContext(c)
	sub, err := manager(c).Subscription(tc.Tenant.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"subscription": sub,
		"is_active":    sub.IsActive(),
	})
}
