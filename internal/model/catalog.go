package model

import (
	"time"

	"gorm.io/gorm"
)

// ServiceItem is a service the shop offers (oil change, brake
// inspection, ...). Seeded with a default list at tenant creation.
type ServiceItem struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     uint           `json:"tenant_id" gorm:"index;not null;uniqueIndex:idx_tenant_service_name"`
	Name         string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_service_name"`
	Description  string         `json:"description" gorm:"type:text"`
	PriceCents   int64          `json:"price_cents"`
	DurationMins int            `json:"duration_mins"`
	Active       bool           `json:"active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (s *ServiceItem) BeforeCreate(tx *gorm.DB) error {
	return requireTenant(s.TenantID)
}

// Part is a catalog entry for a physical part. SKU is unique per
// tenant, not globally.
type Part struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null;uniqueIndex:idx_tenant_sku"`
	SKU         string         `json:"sku" gorm:"type:varchar(50);not null;uniqueIndex:idx_tenant_sku"`
	Name        string         `json:"name" gorm:"type:varchar(100);index;not null"`
	Description string         `json:"description" gorm:"type:text"`
	PriceCents  int64          `json:"price_cents"`
	CostCents   int64          `json:"cost_cents"`
	Active      bool           `json:"active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (p *Part) BeforeCreate(tx *gorm.DB) error {
	return requireTenant(p.TenantID)
}
