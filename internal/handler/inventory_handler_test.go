package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"repairshop/internal/middleware"
	"repairshop/internal/model"
	"repairshop/internal/tenant"
	"repairshop/pkg/database"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
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
	database.SetDB(db)
	return db
}

func seedInventory(t *testing.T, db *gorm.DB) (*model.Tenant, *model.Part) {
	t.Helper()

	tn := model.Tenant{
		Name:         "Joe's Garage",
		Slug:         "joes-garage",
		BusinessType: model.BusinessAutoRepair,
		Status:       model.TenantTrial,
	}
	require.NoError(t, db.Create(&tn).Error)

	part := model.Part{TenantID: tn.ID, SKU: "OF-1001", Name: "Oil Filter", Active: true}
	require.NoError(t, db.Create(&part).Error)
	require.NoError(t, db.Create(&model.Inventory{TenantID: tn.ID, PartID: part.ID, Quantity: 5}).Error)

	return &tn, &part
}

func postAdjust(t *testing.T, tn *model.Tenant, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/inventory/adjust", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetTenantContext(c, &tenant.Context{Tenant: tn})

	require.NoError(t, AdjustInventory(c))
	return rec
}

func TestAdjustInventoryAppliesDelta(t *testing.T) {
	db := setupHandlerDB(t)
	tn, part := seedInventory(t, db)

	rec := postAdjust(t, tn, fmt.Sprintf(`{"part_id":%d,"delta":3,"reason":"receive"}`, part.ID))
	assert.Equal(t, http.StatusOK, rec.Code)

	var inv model.Inventory
	require.NoError(t, db.Where("part_id = ?", part.ID).First(&inv).Error)
	assert.Equal(t, 8, inv.Quantity)

	var ledger int64
	require.NoError(t, db.Model(&model.InventoryTransaction{}).Count(&ledger).Error)
	assert.EqualValues(t, 1, ledger)
}

func TestAdjustInventoryUnknownPart(t *testing.T) {
	db := setupHandlerDB(t)
	tn, _ := seedInventory(t, db)

	rec := postAdjust(t, tn, `{"part_id":9999,"delta":3,"reason":"receive"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "inventory row not found")
}

func TestAdjustInventoryInsufficientStock(t *testing.T) {
	db := setupHandlerDB(t)
	tn, part := seedInventory(t, db)

	rec := postAdjust(t, tn, fmt.Sprintf(`{"part_id":%d,"delta":-6,"reason":"consume"}`, part.ID))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient stock")

	// The quantity and the ledger are untouched.
	var inv model.Inventory
	require.NoError(t, db.Where("part_id = ?", part.ID).First(&inv).Error)
	assert.Equal(t, 5, inv.Quantity)

	var ledger int64
	require.NoError(t, db.Model(&model.InventoryTransaction{}).Count(&ledger).Error)
	assert.Zero(t, ledger)
}

func TestAdjustInventoryStorageFailure(t *testing.T) {
	db := setupHandlerDB(t)
	tn, part := seedInventory(t, db)

	// A broken ledger table makes the transaction fail for a reason
	// that is neither a missing row nor a stock conflict.
	require.NoError(t, db.Migrator().DropTable(&model.InventoryTransaction{}))

	rec := postAdjust(t, tn, fmt.Sprintf(`{"part_id":%d,"delta":3,"reason":"receive"}`, part.ID))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to adjust inventory")

	// The quantity update rolled back with the transaction.
	var inv model.Inventory
	require.NoError(t, db.Where("part_id = ?", part.ID).First(&inv).Error)
	assert.Equal(t, 5, inv.Quantity)
}
