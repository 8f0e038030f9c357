package handler

import (
	"errors"
	"net/http"
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

// ListInventory lists stock levels for the tenant's parts.
func ListInventory(c echo.Context) error {
	prometheus.RecordEntityOperation("inventory", "list")

	tc := middleware.TenantContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var rows []model.Inventory
	err := database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		Preload("Part").
		Find(&rows).Error
	if err != nil {
		logger.FromEcho(c).Error("Failed to list inventory", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list inventory"})
	}
	return c.JSON(http.StatusOK, rows)
}

// AdjustInventory applies a stock movement: the inventory quantity and
// the ledger entry commit in one transaction.
func AdjustInventory(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("inventory", "adjust")

	tc := middleware.TenantContext(c)

	var req struct {
		PartID uint                             `json:"part_id"`
		Delta  int                              `json:"delta"`
		Reason model.InventoryTransactionReason `json:"reason"`
		JobID  *uint                            `json:"job_id"`
		Note   string                           `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.PartID == 0 || req.Delta == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "part_id and a non-zero delta are required"})
	}
	switch req.Reason {
	case model.InventoryReceive, model.InventoryConsume, model.InventoryAdjust:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reason"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var inv model.Inventory
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		err := tx.Scopes(tenant.ForTenant(tc.Tenant.ID)).
			Where("part_id = ?", req.PartID).
			First(&inv).Error
		if err != nil {
			return err
		}

		if inv.Quantity+req.Delta < 0 {
			return echo.NewHTTPError(http.StatusConflict, "insufficient stock")
		}
		inv.Quantity += req.Delta
		if err := tx.Save(&inv).Error; err != nil {
			return err
		}

		txn := model.InventoryTransaction{
			TenantID:  tc.Tenant.ID,
			PartID:    req.PartID,
			Delta:     req.Delta,
			Reason:    req.Reason,
			JobID:     req.JobID,
			Note:      req.Note,
			CreatedBy: middleware.UserID(c),
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inventory row not found"})
		}
		log.Error("Failed to adjust inventory", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to adjust inventory"})
	}

	log.Info("Inventory adjusted",
		zap.Uint("part_id", req.PartID),
		zap.Int("delta", req.Delta),
		zap.String("reason", string(req.Reason)))
	return c.JSON(http.StatusOK, inv)
}

// ListInventoryTransactions lists the tenant's stock movement ledger
// for one part or for all parts.
func ListInventoryTransactions(c echo.Context) error {
	prometheus.RecordEntityOperation("inventory", "ledger")

	tc := middleware.TenantContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		Order("created_at DESC")
	if partID := c.QueryParam("part_id"); partID != "" {
		query = query.Where("part_id = ?", partID)
	}

	var txns []model.InventoryTransaction
	if err := query.Find(&txns).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list inventory transactions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list transactions"})
	}
	return c.JSON(http.StatusOK, txns)
}
