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

// JobRequest defines the work-order creation payload.
type JobRequest struct {
	CustomerID  uint   `json:"customer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Vehicle     string `json:"vehicle"`
	AssignedTo  *uint  `json:"assigned_to"`
}

// CreateJob opens a work order. The plan's job quota is checked first;
// it is a separate gate from the caller's manage_jobs capability.
func CreateJob(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("job", "create")

	tc := middleware.TenantContext(c)

	var req JobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Title == "" || req.CustomerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and customer_id are required"})
	}

	if err := manager(c).CheckJobQuota(tc.Tenant.ID); err != nil {
		prometheus.RecordTenantError("job_quota")
		return respondError(c, err)
	}

	// The customer must belong to the same tenant.
	var customer model.Customer
	err := database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		First(&customer, req.CustomerID).Error
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer not found"})
	}

	job := model.Job{
		TenantID:    tc.Tenant.ID,
		CustomerID:  customer.ID,
		Title:       req.Title,
		Description: req.Description,
		Vehicle:     req.Vehicle,
		Status:      model.JobOpen,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   middleware.UserID(c),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&job).Error; err != nil {
		log.Error("Failed to create job", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create job"})
	}

	log.Info("Job created",
		zap.Uint("id", job.ID),
		zap.Uint("customer_id", job.CustomerID),
		zap.String("title", job.Title))
	return c.JSON(http.StatusCreated, job)
}

// ListJobs lists the tenant's work orders, optionally filtered by
// status.
func ListJobs(c echo.Context) error {
	prometheus.RecordEntityOperation("job", "list")

	tc := middleware.TenantContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		Order("created_at DESC")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var jobs []model.Job
	if err := query.Find(&jobs).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list jobs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list jobs"})
	}
	return c.JSON(http.StatusOK, jobs)
}

// GetJob fetches one work order with its customer.
func GetJob(c echo.Context) error {
	prometheus.RecordEntityOperation("job", "get")

	tc := middleware.TenantContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}

	var job model.Job
	err = database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		Preload("Customer").
		First(&job, uint(id)).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
	}
	return c.JSON(http.StatusOK, job)
}

// UpdateJobStatus moves a work order through its states and records
// assignment changes.
func UpdateJobStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("job", "update")

	tc := middleware.TenantContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}

	var req struct {
		Status     model.JobStatus `json:"status"`
		AssignedTo *uint           `json:"assigned_to"`
		TotalCents *int64          `json:"total_cents"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var job model.Job
	err = database.GetDB().
		Scopes(tenant.ForTenant(tc.Tenant.ID)).
		First(&job, uint(id)).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
	}

	if req.Status != "" {
		switch req.Status {
		case model.JobOpen, model.JobInProgress, model.JobCompleted, model.JobCanceled:
			job.Status = req.Status
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job status"})
		}
	}
	if req.AssignedTo != nil {
		job.AssignedTo = req.AssignedTo
	}
	if req.TotalCents != nil {
		job.TotalCents = *req.TotalCents
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Save(&job).Error; err != nil {
		log.Error("Failed to update job", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update job"})
	}

	log.Info("Job updated",
		zap.Uint("id", job.ID),
		zap.String("status", string(job.Status)))
	return c.JSON(http.StatusOK, job)
}
