package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repairshop/internal/middleware"
	"repairshop/internal/model"
	"repairshop/internal/tenant"
	"repairshop/pkg/database"
	"repairshop/pkg/logger"
	"repairshop/prometheus"
)

// CustomerRequest defines the customer creation/update payload.
type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// CreateCustomer creates a customer record in the resolved tenant.
func CreateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("customer", "create")

	tc := middleware.TenantContext(c)

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	customer := model.Customer{
		TenantID:  tc.Tenant.ID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Notes:     req.Notes,
		CreatedBy: middleware.UserID(c),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&customer).Error; err != nil {
		log.Error("Failed to create customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create customer"})
	}

	log.Info("Customer created",
		zap.Uint("id", customer.ID),
		zap.String("name", customer.Name))
	return c.JSON(http.StatusCreated, customer)
}

// ListCustomers lists the resolved tenant's customers.
func ListCustomers(c echo.Context) error {
	prometheus.RecordEntityOperation("customer", "list")

	tc := middleware.TenantContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var customers []model.Customer
	err := database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		Order("name").
		Find(&customers).Error
	if err != nil {
		logger.FromEcho(c).Error("Failed to list customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list customers"})
	}
	return c.JSON(http.StatusOK, customers)
}

// GetCustomer fetches one customer. The tenant scope means a valid id
// belonging to another tenant reads as not found.
func GetCustomer(c echo.Context) error {
	prometheus.RecordEntityOperation("customer", "get")

	tc := middleware.TenantContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	var customer model.Customer
	err = database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		First(&customer, uint(id)).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	return c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates a customer's contact fields.
func UpdateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("customer", "update")

	tc := middleware.TenantContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	var customer model.Customer
	err = database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		First(&customer, uint(id)).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name != "" {
		customer.Name = req.Name
	}
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.Notes = req.Notes

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Save(&customer).Error; err != nil {
		log.Error("Failed to update customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update customer"})
	}
	return c.JSON(http.StatusOK, customer)
}
