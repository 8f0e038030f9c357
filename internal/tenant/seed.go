package tenant

import (
	"gorm.io/gorm"

	"repairshop/internal/model"
)

// The default catalog seeded into every new tenant. The lists are
// fixed constants: seeded demo data must be reproducible.

type seedService struct {
	Name         string
	Description  string
	PriceCents   int64
	DurationMins int
}

type seedPart struct {
	SKU        string
	Name       string
	PriceCents int64
	CostCents  int64
}

var defaultServices = []seedService{
	{Name: "Oil Change", Description: "Engine oil and filter replacement", PriceCents: 4999, DurationMins: 30},
	{Name: "Tire Rotation", Description: "Rotate all four tires", PriceCents: 2999, DurationMins: 30},
	{Name: "Brake Inspection", Description: "Full brake system inspection", PriceCents: 3999, DurationMins: 45},
	{Name: "Engine Diagnostic", Description: "Computer diagnostic scan", PriceCents: 8999, DurationMins: 60},
	{Name: "Battery Replacement", Description: "Battery test and replacement", PriceCents: 1999, DurationMins: 20},
	{Name: "Wheel Alignment", Description: "Four-wheel alignment", PriceCents: 9999, DurationMins: 60},
}

var defaultParts = []seedPart{
	{SKU: "OF-1001", Name: "Oil Filter", PriceCents: 1299, CostCents: 650},
	{SKU: "AF-2001", Name: "Air Filter", PriceCents: 2499, CostCents: 1200},
	{SKU: "BP-3001", Name: "Brake Pad Set", PriceCents: 5999, CostCents: 3200},
	{SKU: "WB-4001", Name: "Wiper Blade Pair", PriceCents: 1899, CostCents: 900},
	{SKU: "BAT-5001", Name: "Car Battery", PriceCents: 12999, CostCents: 8500},
	{SKU: "SP-6001", Name: "Spark Plug", PriceCents: 899, CostCents: 400},
}

// seedCatalog inserts the default services and parts for a new tenant,
// plus a zero-quantity inventory row per part. Runs inside the tenant
// creation transaction.
func seedCatalog(tx *gorm.DB, tenantID uint) error {
	for _, s := range defaultServices {
		item := model.ServiceItem{
			TenantID:     tenantID,
			Name:         s.Name,
			Description:  s.Description,
			PriceCents:   s.PriceCents,
			DurationMins: s.DurationMins,
			Active:       true,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}

	for _, p := range defaultParts {
		part := model.Part{
			TenantID:   tenantID,
			SKU:        p.SKU,
			Name:       p.Name,
			PriceCents: p.PriceCents,
			CostCents:  p.CostCents,
			Active:     true,
		}
		if err := tx.Create(&part).Error; err != nil {
			return err
		}
		inv := model.Inventory{
			TenantID: tenantID,
			PartID:   part.ID,
			Quantity: 0,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
	}

	return nil
}
