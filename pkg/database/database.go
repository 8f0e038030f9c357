package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"repairshop/internal/model"
	"repairshop/pkg/config"
)

var db *gorm.DB

// InitDB opens the PostgreSQL connection, configures the pool and runs
// migrations.
func InitDB(cfg *config.Config) error {
	// PreferSimpleProtocol disables implicit prepared statement usage to
	// prevent "prepared statement already exists" errors behind poolers
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	var err error
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DB.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database connection: %w", err)
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	return Migrate(db)
}

// Migrate creates or updates the table structure for all models. The
// membership (user_id, tenant_id) and tenant slug unique indexes are
// part of the model definitions; invariants that matter under
// concurrency live in the schema, not only in application checks.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.User{},
		&model.Tenant{},
		&model.Membership{},
		&model.Subscription{},
		&model.Customer{},
		&model.Job{},
		&model.ServiceItem{},
		&model.Part{},
		&model.Inventory{},
		&model.InventoryTransaction{},
	)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// SetDB replaces the database instance. Tests use it to point the
// handlers at an in-memory database.
func SetDB(gdb *gorm.DB) {
	db = gdb
}
