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

// TrialDays is the length of the trial window for a new tenant.
const TrialDays = 14

// slugAttempts bounds retries when concurrent creations race for the
// same slug candidate.
const slugAttempts = 5

// Manager provisions tenants and runs the membership workflow.
type Manager struct {
	db  *gorm.DB
	log *zap.Logger

	// Notifier receives fire-and-forget invitation notifications.
	// Delivery failure never rolls back the invitation.
	Notifier Notifier
}

// NewManager returns a Manager backed by db.
func NewManager(db *gorm.DB, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{db: db, log: log, Notifier: NopNotifier{}}
}

// CreateTenantInput is the input to CreateTenant.
type CreateTenantInput struct {
	Name         string
	OwnerUserID  uint
	BusinessType model.BusinessType
	Settings     string // opaque JSON settings, may be empty
}

// CreateTenant provisions a tenant and its minimum viable state in one
// transaction: the tenant row, the owner's active default membership,
// a free trialing subscription and the default catalog. Concurrent
// readers observe either all of these rows or none of them.
func (m *Manager) CreateTenant(in CreateTenantInput) (*model.Tenant, error) {
	if in.Name == "" {
		return nil, validationf("name is required")
	}
	if !model.ValidBusinessType(in.BusinessType) {
		return nil, validationf("invalid business type %q", in.BusinessType)
	}

	var owner model.User
	if err := m.db.First(&owner, in.OwnerUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("owner user not found")
		}
		return nil, fmt.Errorf("look up owner: %w", err)
	}

	base := Slugify(in.Name)
	now := time.Now()
	trialEnd := now.Add(TrialDays * 24 * time.Hour)

	// The slug check below and the insert race under concurrent creation
	// with identical names. The unique index on tenants.slug is the
	// authority: on a conflicting insert the whole transaction retries
	// with the next candidate.
	for attempt := 0; attempt < slugAttempts; attempt++ {
		slug, err := m.nextFreeSlug(base, attempt)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}

		t := model.Tenant{
			Name:         in.Name,
			Slug:         slug,
			BusinessType: in.BusinessType,
			Status:       model.TenantTrial,
			Settings:     in.Settings,
			TrialEndsAt:  &trialEnd,
		}

		err = m.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&t).Error; err != nil {
				return err
			}

			accepted := now
			membership := model.Membership{
				UserID:     owner.ID,
				TenantID:   t.ID,
				Role:       permission.RoleOwner,
				Status:     model.MembershipActive,
				IsDefault:  true,
				InvitedAt:  now,
				AcceptedAt: &accepted,
			}
			if err := tx.Create(&membership).Error; err != nil {
				return err
			}

			sub := model.Subscription{
				TenantID:    t.ID,
				Plan:        model.PlanFree,
				Status:      model.SubscriptionTrialing,
				TrialEndsAt: &trialEnd,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}

			return seedCatalog(tx, t.ID)
		})
		if err == nil {
			m.log.Info("tenant created",
				zap.Uint("tenant_id", t.ID),
				zap.String("slug", t.Slug),
				zap.Uint("owner_id", owner.ID))
			return &t, nil
		}
		if isUniqueViolation(err) {
			m.log.Warn("slug conflict on create, retrying",
				zap.String("slug", slug), zap.Error(err))
			continue
		}
		return nil, fmt.Errorf("create tenant: %w", err)
	}

	return nil, fmt.Errorf("create tenant: could not allocate a unique slug for %q", base)
}

// nextFreeSlug returns the first slug candidate not currently taken,
// skipping the first `skip` free candidates so a retry after an insert
// conflict moves on instead of recolliding.
func (m *Manager) nextFreeSlug(base string, skip int) (string, error) {
	candidate := base
	skipped := 0
	for n := 2; ; n++ {
		var count int64
		if err := m.db.Model(&model.Tenant{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			if skipped == skip {
				return candidate, nil
			}
			skipped++
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// Subscription returns the tenant's subscription row.
func (m *Manager) Subscription(tenantID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := m.db.Where("tenant_id = ?", tenantID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("subscription")
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CheckJobQuota reports, as a validation error, when the tenant's plan
// does not allow opening another job. A separate gate from the role
// table: the caller's capability check has already passed by the time
// this runs.
func (m *Manager) CheckJobQuota(tenantID uint) error {
	sub, err := m.Subscription(tenantID)
	if err != nil {
		return err
	}

	quota := model.JobQuota(sub.Plan)
	if quota < 0 {
		return nil
	}

	var open int64
	err = m.db.Model(&model.Job{}).
		Scopes(ForTenant(tenantID)).
		Where("status IN ?", model.OpenJobStatuses).
		Count(&open).Error
	if err != nil {
		return err
	}
	if open >= int64(quota) {
		return validationf("job limit reached for the %s plan (%d open jobs); upgrade to create more", sub.Plan, quota)
	}
	return nil
}

// BillingEvent is a subscription state change pushed by the external
// billing provider. This service never calls the provider; it only
// consumes these events.
type BillingEvent struct {
	TenantID               uint
	Plan                   model.SubscriptionPlan
	Status                 model.SubscriptionStatus
	ExternalCustomerID     string
	ExternalSubscriptionID string
	CurrentPeriodStart     *time.Time
	CurrentPeriodEnd       *time.Time
}

// ApplyBillingEvent updates the tenant's subscription from a billing
// event and moves the tenant status accordingly: an active
// subscription activates the tenant, past_due and canceled suspend it,
// trialing keeps it in trial.
func (m *Manager) ApplyBillingEvent(ev BillingEvent) (*model.Subscription, error) {
	if !model.ValidPlan(ev.Plan) {
		return nil, validationf("invalid plan %q", ev.Plan)
	}
	if !model.ValidSubscriptionStatus(ev.Status) {
		return nil, validationf("invalid subscription status %q", ev.Status)
	}

	var sub model.Subscription
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", ev.TenantID).First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("subscription")
			}
			return err
		}

		sub.Plan = ev.Plan
		sub.Status = ev.Status
		if ev.ExternalCustomerID != "" {
			sub.ExternalCustomerID = ev.ExternalCustomerID
		}
		if ev.ExternalSubscriptionID != "" {
			sub.ExternalSubscriptionID = ev.ExternalSubscriptionID
		}
		if ev.CurrentPeriodStart != nil {
			sub.CurrentPeriodStart = ev.CurrentPeriodStart
		}
		if ev.CurrentPeriodEnd != nil {
			sub.CurrentPeriodEnd = ev.CurrentPeriodEnd
		}
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}

		var tenantStatus model.TenantStatus
		switch ev.Status {
		case model.SubscriptionActive:
			tenantStatus = model.TenantActive
		case model.SubscriptionTrialing:
			tenantStatus = model.TenantTrial
		default:
			tenantStatus = model.TenantSuspended
		}
		return tx.Model(&model.Tenant{}).
			Where("id = ?", ev.TenantID).
			Update("status", tenantStatus).Error
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("billing event applied",
		zap.Uint("tenant_id", ev.TenantID),
		zap.String("plan", string(ev.Plan)),
		zap.String("status", string(ev.Status)))
	return &sub, nil
}
