package model

import (
	"time"

	"repairshop/internal/permission"
)

// MembershipStatus tracks the invitation state machine:
// pending -> active via accept, pending -> deleted via decline.
type MembershipStatus string

const (
	MembershipPending   MembershipStatus = "pending"
	MembershipActive    MembershipStatus = "active"
	MembershipSuspended MembershipStatus = "suspended"
)

// Membership associates a user with a tenant and a role. At most one
// row exists per (user, tenant) pair, enforced by a composite unique
// index so concurrent invitations cannot slip a duplicate past the
// application-level check.
type Membership struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	UserID     uint             `json:"user_id" gorm:"not null;uniqueIndex:idx_user_tenant"`
	TenantID   uint             `json:"tenant_id" gorm:"not null;uniqueIndex:idx_user_tenant"`
	Role       permission.Role  `json:"role" gorm:"type:varchar(20);not null"`
	Status     MembershipStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	IsDefault  bool             `json:"is_default" gorm:"default:false"` // the tenant shown by default for this user
	InvitedBy  *uint            `json:"invited_by"`                      // nil for the initial owner membership
	InvitedAt  time.Time        `json:"invited_at"`
	AcceptedAt *time.Time       `json:"accepted_at"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Relations
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}
