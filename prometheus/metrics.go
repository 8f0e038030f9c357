package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"repairshop/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   *prometheus.CounterVec

	// Tenant metrics
	TenantOperationCounter      *prometheus.CounterVec
	TenantErrorCounter          *prometheus.CounterVec
	TenantContextMissingCounter prometheus.Counter
	ActiveTenantsGauge          prometheus.Gauge

	// Membership / invitation metrics
	MembershipOperationCounter *prometheus.CounterVec

	// Domain entity metrics
	EntityOperationCounter *prometheus.CounterVec

	// Permission gate metrics
	PermissionDeniedCounter *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	TenantOperationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"}, // "create", "resolve", "select", "switch", ...
	)

	TenantErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_errors_total",
			Help: "Total number of tenant-related errors",
		},
		[]string{"error_type"},
	)

	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Requests rejected because no tenant context was resolved",
		},
	)

	ActiveTenantsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_active_tenants",
			Help: "Number of currently active tenants",
		},
	)

	MembershipOperationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_membership_operations_total",
			Help: "Total number of membership operations",
		},
		[]string{"operation"}, // "invite", "accept", "decline", ...
	)

	EntityOperationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_entity_operations_total",
			Help: "Total number of tenant entity operations",
		},
		[]string{"entity", "operation"},
	)

	PermissionDeniedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_permission_denied_total",
			Help: "Total number of capability checks that denied access",
		},
		[]string{"capability"},
	)

	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware adds prometheus metrics to track HTTP requests
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			method := c.Request().Method
			path := c.Path()
			status := strconv.Itoa(c.Response().Status)

			HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
			HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration)

			return err
		}
	}
}

// TrackDBOperation measures database operation durations:
// defer prometheus.TrackDBOperation("insert")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		if DbOperationDuration != nil {
			DbOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	if AuthErrorsCounter != nil {
		AuthErrorsCounter.WithLabelValues(errorType).Inc()
	}
}

// RecordTenantOperation records a tenant operation
func RecordTenantOperation(operation string) {
	if TenantOperationCounter != nil {
		TenantOperationCounter.WithLabelValues(operation).Inc()
	}
}

// RecordTenantError records a tenant-related error by type
func RecordTenantError(errorType string) {
	if TenantErrorCounter != nil {
		TenantErrorCounter.WithLabelValues(errorType).Inc()
	}
}

// RecordMembershipOperation records a membership operation
func RecordMembershipOperation(operation string) {
	if MembershipOperationCounter != nil {
		MembershipOperationCounter.WithLabelValues(operation).Inc()
	}
}

// RecordEntityOperation records an operation against a tenant entity
func RecordEntityOperation(entity, operation string) {
	if EntityOperationCounter != nil {
		EntityOperationCounter.WithLabelValues(entity, operation).Inc()
	}
}

// RecordPermissionDenied records a denied capability check
func RecordPermissionDenied(capability string) {
	if PermissionDeniedCounter != nil {
		PermissionDeniedCounter.WithLabelValues(capability).Inc()
	}
}

// UpdateActiveTenants updates the active tenants gauge
func UpdateActiveTenants(count int64) {
	if ActiveTenantsGauge != nil {
		ActiveTenantsGauge.Set(float64(count))
	}
}
