package tenant

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"repairshop/internal/model"
	"repairshop/pkg/database"
)

// setupDB opens a fresh in-memory database for one test. The shared
// cache keeps the database alive across gorm's pooled connections.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func setupManager(t *testing.T) (*Manager, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	return NewManager(db, zap.NewNop()), db
}

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := model.User{Email: email, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTenantFor(t *testing.T, m *Manager, db *gorm.DB, name, ownerEmail string) *model.Tenant {
	t.Helper()
	owner := createUser(t, db, ownerEmail)
	tn, err := m.CreateTenant(CreateTenantInput{
		Name:         name,
		OwnerUserID:  owner.ID,
		BusinessType: model.BusinessAutoRepair,
	})
	require.NoError(t, err)
	return tn
}
