package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"repairshop/internal/middleware"
	"repairshop/internal/model"
	"repairshop/internal/tenant"
	"repairshop/pkg/database"
	"repairshop/pkg/logger"
	"repairshop/prometheus"
)

// ListServices lists the tenant's service catalog.
func ListServices(c echo.Context) error {
	prometheus.RecordEntityOperation("service", "list")

	tc := middleware.TenantContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var services []model.ServiceItem
	err := database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		Order("name").
		Find(&services).Error
	if err != nil {
		logger.FromEcho(c).Error("Failed to list services", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list services"})
	}
	return c.JSON(http.StatusOK, services)
}

// CreateService adds a service to the tenant's catalog.
func CreateService(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("service", "create")

	tc := middleware.TenantContext(c)

	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		PriceCents   int64  `json:"price_cents"`
		DurationMins int    `json:"duration_mins"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	item := model.ServiceItem{
		TenantID:     tc.Tenant.ID,
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		DurationMins: req.DurationMins,
		Active:       true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&item).Error; err != nil {
		log.Error("Failed to create service", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "a service with this name already exists"})
	}
	return c.JSON(http.StatusCreated, item)
}

// ListParts lists the tenant's parts catalog.
func ListParts(c echo.Context) error {
	prometheus.RecordEntityOperation("part", "list")

	tc := middleware.TenantContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var parts []model.Part
	err := database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		Order("sku").
		Find(&parts).Error
	if err != nil {
		logger.FromEcho(c).Error("Failed to list parts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list parts"})
	}
	return c.JSON(http.StatusOK, parts)
}

// CreatePart adds a part to the tenant's catalog. SKU is unique per
// tenant.
func CreatePart(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("part", "create")

	tc := middleware.TenantContext(c)

	var req struct {
		SKU         string `json:"sku"`
		Name        string `json:"name"`
		Description string `json:"description"`
		PriceCents  int64  `json:"price_cents"`
		CostCents   int64  `json:"cost_cents"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.SKU == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku and name are required"})
	}

	// Check for an existing SKU in the same tenant; the composite
	// unique index settles races.
	var count int64
	database.GetDB().Model(&model.Part{}).
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		Where("sku = ?", req.SKU).
		Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "a part with this SKU already exists"})
	}

	part := model.Part{
		TenantID:    tc.Tenant.ID,
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		CostCents:   req.CostCents,
		Active:      true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	// The part and its inventory row commit together; every part has a
	// stock row for adjustments to target.
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&part).Error; err != nil {
			return err
		}
		inv := model.Inventory{TenantID: tc.Tenant.ID, PartID: part.ID, Quantity: 0}
		return tx.Create(&inv).Error
	})
	if err != nil {
		log.Error("Failed to create part", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "a part with this SKU already exists"})
	}

	return c.JSON(http.StatusCreated, part)
}

// UpdatePart updates catalog fields of a part.
func UpdatePart(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("part", "update")

	tc := middleware.TenantContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid part id"})
	}

	var part model.Part
	err = database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		First(&part, uint(id)).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "part not found"})
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		PriceCents  *int64 `json:"price_cents"`
		CostCents   *int64 `json:"cost_cents"`
		Active      *bool  `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name != "" {
		part.Name = req.Name
	}
	if req.Description != "" {
		part.Description = req.Description
	}
	if req.PriceCents != nil {
		part.PriceCents = *req.PriceCents
	}
	if req.CostCents != nil {
		part.CostCents = *req.CostCents
	}
	if req.Active != nil {
		part.Active = *req.Active
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Save(&part).Error; err != nil {
		log.Error("Failed to update part", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update part"})
	}
	return c.JSON(http.StatusOK, part)
}
