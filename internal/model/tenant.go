package model

import (
	"time"

	"gorm.io/gorm"
)

// BusinessType classifies what a tenant's shop does.
type BusinessType string

const (
	BusinessAutoRepair  BusinessType = "auto_repair"
	BusinessPartsSeller BusinessType = "parts_seller"
	BusinessBoth        BusinessType = "both"
)

// ValidBusinessType reports whether bt is a defined business type.
func ValidBusinessType(bt BusinessType) bool {
	switch bt {
	case BusinessAutoRepair, BusinessPartsSeller, BusinessBoth:
		return true
	}
	return false
}

// TenantStatus is the tenant's lifecycle state. Transitions are driven
// externally (billing webhook or admin action), never by this service
// on its own.
type TenantStatus string

const (
	TenantTrial     TenantStatus = "trial"
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
)

// Tenant represents one shop organization. All customer, job, catalog
// and inventory data hangs off a tenant and is never visible across
// tenant boundaries.
type Tenant struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug         string         `json:"slug" gorm:"type:varchar(120);uniqueIndex;not null"` // immutable once assigned
	BusinessType BusinessType   `json:"business_type" gorm:"type:varchar(20);not null"`
	Status       TenantStatus   `json:"status" gorm:"type:varchar(20);not null;default:'trial'"`
	Settings     string         `json:"settings" gorm:"type:jsonb"` // opaque key-value map, e.g. currency/tax rate
	TrialEndsAt  *time.Time     `json:"trial_ends_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Writable reports whether state-changing operations are allowed for
// the tenant. A suspended tenant blocks all writes regardless of the
// caller's role.
func (t *Tenant) Writable() bool {
	return t.Status != TenantSuspended
}
