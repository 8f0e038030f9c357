package tenant

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"repairshop/internal/model"
	"repairshop/internal/permission"
)

// InviteMember creates a pending membership for a registered user. The
// invited user must already have an account; this system does not
// create accounts via invitation. Owner can never be granted by
// invitation, only via tenant creation.
func (m *Manager) InviteMember(tenantID uint, email string, role permission.Role, inviterID uint) (*model.Membership, error) {
	if email == "" {
		return nil, validationf("email is required")
	}
	if !permission.ValidRole(role) {
		return nil, validationf("invalid role %q", role)
	}
	if !permission.Assignable(role) {
		return nil, validationf("the owner role cannot be granted by invitation")
	}

	var t model.Tenant
	if err := m.db.First(&t, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("tenant")
		}
		return nil, fmt.Errorf("look up tenant: %w", err)
	}

	var user model.User
	if err := m.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("user not found; they must register first")
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	// Any existing row for this (user, tenant), whatever its status,
	// blocks a new invitation.
	var existing int64
	err := m.db.Model(&model.Membership{}).
		Where("user_id = ? AND tenant_id = ?", user.ID, t.ID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("check existing membership: %w", err)
	}
	if existing > 0 {
		return nil, validationf("user is already a member of this organization or has a pending invitation")
	}

	membership := model.Membership{
		UserID:    user.ID,
		TenantID:  t.ID,
		Role:      role,
		Status:    model.MembershipPending,
		IsDefault: false,
		InvitedBy: &inviterID,
		InvitedAt: time.Now(),
	}
	if err := m.db.Create(&membership).Error; err != nil {
		// The count above races with concurrent invitations for the same
		// user; the (user_id, tenant_id) unique index settles it.
		if isUniqueViolation(err) {
			return nil, validationf("user is already a member of this organization or has a pending invitation")
		}
		return nil, fmt.Errorf("create membership: %w", err)
	}

	if err := m.Notifier.InvitationCreated(user.Email, t.Name, role); err != nil {
		m.log.Warn("invitation notification failed",
			zap.String("email", user.Email), zap.Error(err))
	}

	m.log.Info("member invited",
		zap.Uint("tenant_id", t.ID),
		zap.Uint("user_id", user.ID),
		zap.String("role", string(role)),
		zap.Uint("invited_by", inviterID))
	return &membership, nil
}

// AcceptInvitation moves a pending membership to active. The first
// invitation a user ever accepts becomes their default organization.
func (m *Manager) AcceptInvitation(membershipID, userID uint) (*model.Membership, error) {
	var membership model.Membership
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&membership, membershipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("invitation")
			}
			return err
		}
		if membership.UserID != userID {
			// Belongs to someone else; do not reveal that it exists.
			return notFound("invitation")
		}
		if membership.Status != model.MembershipPending {
			return validationf("invitation is not pending")
		}

		now := time.Now()
		membership.Status = model.MembershipActive
		membership.AcceptedAt = &now

		// First accepted invitation wins the default slot. App-level
		// check: a later default can be chosen explicitly by the user.
		var defaults int64
		err := tx.Model(&model.Membership{}).
			Where("user_id = ? AND is_default = ? AND status = ? AND id <> ?",
				userID, true, model.MembershipActive, membership.ID).
			Count(&defaults).Error
		if err != nil {
			return err
		}
		if defaults == 0 {
			membership.IsDefault = true
		}

		return tx.Save(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("invitation accepted",
		zap.Uint("membership_id", membership.ID),
		zap.Uint("user_id", userID),
		zap.Bool("is_default", membership.IsDefault))
	return &membership, nil
}

// DeclineInvitation deletes a pending membership outright. Declined
// invitations leave no trace, so the same user can be invited again
// later.
func (m *Manager) DeclineInvitation(membershipID, userID uint) error {
	err := m.db.Transaction(func(tx *gorm.DB) error {
		var membership model.Membership
		if err := tx.First(&membership, membershipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("invitation")
			}
			return err
		}
		if membership.UserID != userID {
			return notFound("invitation")
		}
		if membership.Status != model.MembershipPending {
			return validationf("invitation is not pending")
		}
		return tx.Delete(&membership).Error
	})
	if err != nil {
		return err
	}

	m.log.Info("invitation declined",
		zap.Uint("membership_id", membershipID),
		zap.Uint("user_id", userID))
	return nil
}

// SetDefaultTenant marks one of the user's active memberships as their
// default and clears the flag everywhere else.
func (m *Manager) SetDefaultTenant(userID, tenantID uint) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		var membership model.Membership
		err := tx.Where("user_id = ? AND tenant_id = ? AND status = ?",
			userID, tenantID, model.MembershipActive).First(&membership).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("membership")
			}
			return err
		}

		err = tx.Model(&model.Membership{}).
			Where("user_id = ? AND id <> ?", userID, membership.ID).
			Update("is_default", false).Error
		if err != nil {
			return err
		}
		return tx.Model(&membership).Update("is_default", true).Error
	})
}

// MembershipInfo is a membership joined with its tenant's display
// fields, for listing a user's organizations and invitations.
type MembershipInfo struct {
	MembershipID uint                   `json:"membership_id"`
	TenantID     uint                   `json:"tenant_id"`
	TenantName   string                 `json:"tenant_name"`
	TenantSlug   string                 `json:"tenant_slug"`
	Role         permission.Role        `json:"role"`
	Status       model.MembershipStatus `json:"status"`
	IsDefault    bool                   `json:"is_default"`
	InvitedAt    time.Time              `json:"invited_at"`
	AcceptedAt   *time.Time             `json:"accepted_at,omitempty"`
}

// PendingInvitations lists the user's pending invitations.
func (m *Manager) PendingInvitations(userID uint) ([]MembershipInfo, error) {
	return m.listMemberships(userID, model.MembershipPending)
}

// UserTenants lists the organizations the user is an active member of.
func (m *Manager) UserTenants(userID uint) ([]MembershipInfo, error) {
	return m.listMemberships(userID, model.MembershipActive)
}

// listMemberships joins memberships with their tenants. The inner join
// silently drops rows whose tenant was deleted out-of-band.
func (m *Manager) listMemberships(userID uint, status model.MembershipStatus) ([]MembershipInfo, error) {
	var out []MembershipInfo
	err := m.db.Model(&model.Membership{}).
		Select("memberships.id AS membership_id, memberships.tenant_id, tenants.name AS tenant_name, tenants.slug AS tenant_slug, memberships.role, memberships.status, memberships.is_default, memberships.invited_at, memberships.accepted_at").
		Joins("INNER JOIN tenants ON tenants.id = memberships.tenant_id AND tenants.deleted_at IS NULL").
		Where("memberships.user_id = ? AND memberships.status = ?", userID, status).
		Order("memberships.invited_at").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return out, nil
}
