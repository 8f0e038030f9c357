package tenant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"repairshop/internal/model"
	"repairshop/internal/permission"
)

func TestCreateTenantProvisionsEverything(t *testing.T) {
	m, db := setupManager(t)
	owner := createUser(t, db, "joe@example.com")

	tn, err := m.CreateTenant(CreateTenantInput{
		Name:         "Joe's Auto Repair",
		OwnerUserID:  owner.ID,
		BusinessType: model.BusinessAutoRepair,
	})
	require.NoError(t, err)

	assert.Equal(t, "joes-auto-repair", tn.Slug)
	assert.Equal(t, model.TenantTrial, tn.Status)
	require.NotNil(t, tn.TrialEndsAt)
	assert.WithinDuration(t, time.Now().Add(TrialDays*24*time.Hour), *tn.TrialEndsAt, time.Minute)

	// Exactly one owner membership, active and default.
	var memberships []model.Membership
	require.NoError(t, db.Where("tenant_id = ?", tn.ID).Find(&memberships).Error)
	require.Len(t, memberships, 1)
	ms := memberships[0]
	assert.Equal(t, owner.ID, ms.UserID)
	assert.Equal(t, permission.RoleOwner, ms.Role)
	assert.Equal(t, model.MembershipActive, ms.Status)
	assert.True(t, ms.IsDefault)
	assert.NotNil(t, ms.AcceptedAt)
	assert.Nil(t, ms.InvitedBy)

	// Exactly one free, trialing subscription.
	var subs []model.Subscription
	require.NoError(t, db.Where("tenant_id = ?", tn.ID).Find(&subs).Error)
	require.Len(t, subs, 1)
	assert.Equal(t, model.PlanFree, subs[0].Plan)
	assert.Equal(t, model.SubscriptionTrialing, subs[0].Status)
	assert.True(t, subs[0].IsActive())

	// The default catalog is seeded.
	var serviceCount, partCount, invCount int64
	db.Model(&model.ServiceItem{}).Where("tenant_id = ?", tn.ID).Count(&serviceCount)
	db.Model(&model.Part{}).Where("tenant_id = ?", tn.ID).Count(&partCount)
	db.Model(&model.Inventory{}).Where("tenant_id = ?", tn.ID).Count(&invCount)
	assert.Equal(t, int64(len(defaultServices)), serviceCount)
	assert.Equal(t, int64(len(defaultParts)), partCount)
	assert.Equal(t, int64(len(defaultParts)), invCount)
}

func TestCreateTenantSlugCollision(t *testing.T) {
	m, db := setupManager(t)
	a := createUser(t, db, "a@example.com")
	b := createUser(t, db, "b@example.com")

	first, err := m.CreateTenant(CreateTenantInput{
		Name: "Joe's Auto Repair", OwnerUserID: a.ID, BusinessType: model.BusinessAutoRepair,
	})
	require.NoError(t, err)

	// Different display name, same slug base.
	second, err := m.CreateTenant(CreateTenantInput{
		Name: "Joes auto-repair", OwnerUserID: b.ID, BusinessType: model.BusinessBoth,
	})
	require.NoError(t, err)

	assert.Equal(t, "joes-auto-repair", first.Slug)
	assert.Equal(t, "joes-auto-repair-2", second.Slug)
}

func TestCreateTenantSlugRaceRetries(t *testing.T) {
	m, db := setupManager(t)
	owner := createUser(t, db, "owner@example.com")

	// A competing creation lands between the slug availability check
	// and the insert: the first tenant insert is preceded by a rival row
	// taking the same slug, so the insert hits the unique index instead
	// of the count check.
	collided := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("rival_slug_insert", func(tx *gorm.DB) {
		if collided {
			return
		}
		if _, ok := tx.Statement.Dest.(*model.Tenant); !ok {
			return
		}
		collided = true
		rival := model.Tenant{
			Name:         "Rival Garage",
			Slug:         "joes-garage",
			BusinessType: model.BusinessAutoRepair,
			Status:       model.TenantTrial,
		}
		tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).Create(&rival)
	}))
	t.Cleanup(func() { db.Callback().Create().Remove("rival_slug_insert") })

	created, err := m.CreateTenant(CreateTenantInput{
		Name: "Joe's Garage", OwnerUserID: owner.ID, BusinessType: model.BusinessAutoRepair,
	})
	require.NoError(t, err)
	require.True(t, collided)

	// The retry moved on to the next candidate instead of recolliding.
	assert.Equal(t, "joes-garage-2", created.Slug)

	// The failed attempt left nothing behind: the rival rolled back with
	// the aborted transaction, and the retry provisioned exactly one
	// tenant with its full state.
	var tenants, memberships, subs int64
	db.Model(&model.Tenant{}).Count(&tenants)
	db.Model(&model.Membership{}).Count(&memberships)
	db.Model(&model.Subscription{}).Count(&subs)
	assert.EqualValues(t, 1, tenants)
	assert.EqualValues(t, 1, memberships)
	assert.EqualValues(t, 1, subs)
}

func TestCreateTenantValidation(t *testing.T) {
	m, db := setupManager(t)
	owner := createUser(t, db, "owner@example.com")

	_, err := m.CreateTenant(CreateTenantInput{
		Name: "Shop", OwnerUserID: owner.ID, BusinessType: "food_truck",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = m.CreateTenant(CreateTenantInput{
		Name: "", OwnerUserID: owner.ID, BusinessType: model.BusinessAutoRepair,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = m.CreateTenant(CreateTenantInput{
		Name: "Shop", OwnerUserID: 9999, BusinessType: model.BusinessAutoRepair,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// Nothing was written on any failed path.
	var count int64
	db.Model(&model.Tenant{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateTenantAtomicity(t *testing.T) {
	m, db := setupManager(t)
	owner := createUser(t, db, "owner@example.com")

	// Breaking the membership table forces a failure after the tenant
	// row is written inside the transaction.
	require.NoError(t, db.Migrator().DropTable(&model.Membership{}))

	_, err := m.CreateTenant(CreateTenantInput{
		Name: "Doomed Shop", OwnerUserID: owner.ID, BusinessType: model.BusinessAutoRepair,
	})
	require.Error(t, err)

	// No partial state: the tenant row rolled back with everything else.
	var tenants, subs int64
	db.Model(&model.Tenant{}).Count(&tenants)
	db.Model(&model.Subscription{}).Count(&subs)
	assert.Zero(t, tenants)
	assert.Zero(t, subs)
}

func TestCheckJobQuota(t *testing.T) {
	m, db := setupManager(t)
	tn := createTenantFor(t, m, db, "Quota Shop", "q@example.com")

	customer := model.Customer{TenantID: tn.ID, Name: "C"}
	require.NoError(t, db.Create(&customer).Error)

	quota := model.JobQuota(model.PlanFree)
	for i := 0; i < quota; i++ {
		job := model.Job{TenantID: tn.ID, CustomerID: customer.ID, Title: "job", Status: model.JobOpen}
		require.NoError(t, db.Create(&job).Error)
	}

	err := m.CheckJobQuota(tn.ID)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// Completed jobs do not count against the quota.
	require.NoError(t, db.Model(&model.Job{}).
		Where("tenant_id = ?", tn.ID).
		Update("status", model.JobCompleted).Error)
	assert.NoError(t, m.CheckJobQuota(tn.ID))
}

func TestCheckJobQuotaUnlimitedPlans(t *testing.T) {
	m, db := setupManager(t)
	tn := createTenantFor(t, m, db, "Pro Shop", "pro@example.com")

	require.NoError(t, db.Model(&model.Subscription{}).
		Where("tenant_id = ?", tn.ID).
		Update("plan", model.PlanProfessional).Error)

	assert.NoError(t, m.CheckJobQuota(tn.ID))
}

func TestApplyBillingEvent(t *testing.T) {
	m, db := setupManager(t)
	tn := createTenantFor(t, m, db, "Billed Shop", "bill@example.com")

	sub, err := m.ApplyBillingEvent(BillingEvent{
		TenantID:               tn.ID,
		Plan:                   model.PlanStarter,
		Status:                 model.SubscriptionActive,
		ExternalCustomerID:     "cus_123",
		ExternalSubscriptionID: "sub_456",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PlanStarter, sub.Plan)
	assert.True(t, sub.IsActive())

	var fresh model.Tenant
	require.NoError(t, db.First(&fresh, tn.ID).Error)
	assert.Equal(t, model.TenantActive, fresh.Status)

	// Cancellation suspends the tenant.
	_, err = m.ApplyBillingEvent(BillingEvent{
		TenantID: tn.ID, Plan: model.PlanStarter, Status: model.SubscriptionCanceled,
	})
	require.NoError(t, err)
	require.NoError(t, db.First(&fresh, tn.ID).Error)
	assert.Equal(t, model.TenantSuspended, fresh.Status)
	assert.False(t, fresh.Writable())
}

func TestApplyBillingEventValidation(t *testing.T) {
	m, db := setupManager(t)
	tn := createTenantFor(t, m, db, "Shop", "s@example.com")

	_, err := m.ApplyBillingEvent(BillingEvent{TenantID: tn.ID, Plan: "gold", Status: model.SubscriptionActive})
	assert.True(t, IsValidation(err))

	_, err = m.ApplyBillingEvent(BillingEvent{TenantID: tn.ID, Plan: model.PlanFree, Status: "paused"})
	assert.True(t, IsValidation(err))

	_, err = m.ApplyBillingEvent(BillingEvent{TenantID: 9999, Plan: model.PlanFree, Status: model.SubscriptionActive})
	assert.True(t, IsNotFound(err))
}
