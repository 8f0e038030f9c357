package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"repairshop/internal/handler"
	"repairshop/internal/middleware"
	"repairshop/internal/permission"
	"repairshop/pkg/config"
	"repairshop/pkg/database"
	"repairshop/pkg/jwtutil"
	"repairshop/pkg/logger"
	"repairshop/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting repairshop service...", cfg.LogConfig()...)

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication, no tenant resolution
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Billing provider webhook - external caller, no user session
	e.POST("/webhooks/billing", handler.BillingWebhook)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Organization management - no tenant context required
	api.POST("/tenants", handler.CreateTenant)
	api.GET("/tenants", handler.ListUserTenants)

	// Tenant selection - after login but before tenant-specific work
	tenantAuth := api.Group("/tenant-auth")
	tenantAuth.POST("/switch", handler.SwitchTenant)
	tenantAuth.POST("/default", handler.SetDefaultTenant)

	// Invitations addressed to the caller
	invitations := api.Group("/invitations")
	invitations.GET("", handler.ListPendingInvitations)
	invitations.POST("/:id/accept", handler.AcceptInvitation)
	invitations.POST("/:id/decline", handler.DeclineInvitation)

	// Tenant-scoped routes. Addressable two ways with the same
	// handlers: by org slug in the path, or via the token's tenant
	// selection / X-Tenant-ID header.
	registerTenantRoutes(api.Group("/orgs/:slug", middleware.ResolveTenant, middleware.RequireTenantContext))
	registerTenantRoutes(api.Group("/org", middleware.ResolveTenant, middleware.RequireTenantContext))

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// registerTenantRoutes mounts the tenant-scoped surface on a group that
// already resolved tenant context. Write routes layer the suspended
// tenant gate and the relevant capability; read routes require
// view_reports.
func registerTenantRoutes(g *echo.Group) {
	write := middleware.RequireWritableTenant

	g.GET("", handler.GetTenant)
	g.GET("/subscription", handler.GetSubscription, middleware.RequireCapability(permission.ManageBilling))

	// Team
	g.POST("/members", handler.InviteMember, write, middleware.RequireCapability(permission.ManageUsers))

	// Customers
	g.GET("/customers", handler.ListCustomers, middleware.RequireCapability(permission.ViewReports))
	g.POST("/customers", handler.CreateCustomer, write, middleware.RequireCapability(permission.ManageCustomers))
	g.GET("/customers/:id", handler.GetCustomer, middleware.RequireCapability(permission.ViewReports))
	g.PATCH("/customers/:id", handler.UpdateCustomer, write, middleware.RequireCapability(permission.ManageCustomers))

	// Jobs
	g.GET("/jobs", handler.ListJobs, middleware.RequireCapability(permission.ViewReports))
	g.POST("/jobs", handler.CreateJob, write, middleware.RequireCapability(permission.ManageJobs))
	g.GET("/jobs/:id", handler.GetJob, middleware.RequireCapability(permission.ViewReports))
	g.PATCH("/jobs/:id", handler.UpdateJobStatus, write, middleware.RequireCapability(permission.ManageJobs))

	// Catalog
	g.GET("/services", handler.ListServices, middleware.RequireCapability(permission.ViewReports))
	g.POST("/services", handler.CreateService, write, middleware.RequireCapability(permission.ManageCatalog))
	g.GET("/parts", handler.ListParts, middleware.RequireCapability(permission.ViewReports))
	g.POST("/parts", handler.CreatePart, write, middleware.RequireCapability(permission.ManageCatalog))
	g.PATCH("/parts/:id", handler.UpdatePart, write, middleware.RequireCapability(permission.ManageCatalog))

	// Inventory
	g.GET("/inventory", handler.ListInventory, middleware.RequireCapability(permission.ViewReports))
	g.POST("/inventory/adjust", handler.AdjustInventory, write, middleware.RequireCapability(permission.ManageInventory))
	g.GET("/inventory/transactions", handler.ListInventoryTransactions, middleware.RequireCapability(permission.ViewReports))
}
