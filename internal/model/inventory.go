package model

import (
	"time"

	"gorm.io/gorm"
)

// Inventory tracks stock on hand for one part. One row per
// (tenant, part).
type Inventory struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TenantID     uint      `json:"tenant_id" gorm:"index;not null;uniqueIndex:idx_tenant_part"`
	PartID       uint      `json:"part_id" gorm:"not null;uniqueIndex:idx_tenant_part"`
	Quantity     int       `json:"quantity" gorm:"not null;default:0"`
	ReorderLevel int       `json:"reorder_level" gorm:"default:0"`
	Location     string    `json:"location" gorm:"type:varchar(100)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Part Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (i *Inventory) BeforeCreate(tx *gorm.DB) error {
	return requireTenant(i.TenantID)
}

// InventoryTransactionReason classifies a stock movement.
type InventoryTransactionReason string

const (
	InventoryReceive InventoryTransactionReason = "receive"
	InventoryConsume InventoryTransactionReason = "consume"
	InventoryAdjust  InventoryTransactionReason = "adjust"
)

// InventoryTransaction is the append-only ledger of stock movements.
type InventoryTransaction struct {
	ID        uint                       `json:"id" gorm:"primaryKey"`
	TenantID  uint                       `json:"tenant_id" gorm:"index;not null"`
	PartID    uint                       `json:"part_id" gorm:"index;not null"`
	Delta     int                        `json:"delta" gorm:"not null"` // positive receives, negative consumes
	Reason    InventoryTransactionReason `json:"reason" gorm:"type:varchar(20);not null"`
	JobID     *uint                      `json:"job_id" gorm:"index"` // set when stock was consumed by a job
	Note      string                     `json:"note" gorm:"type:text"`
	CreatedBy uint                       `json:"created_by"`
	CreatedAt time.Time                  `json:"created_at"`
}

func (t *InventoryTransaction) BeforeCreate(tx *gorm.DB) error {
	return requireTenant(t.TenantID)
}
