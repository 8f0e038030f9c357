package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop/internal/model"
	"repairshop/internal/permission"
)

func TestResolveBySlug(t *testing.T) {
	m, db := setupManager(t)
	tn := createTenantFor(t, m, db, "Joe's Auto Repair", "joe@example.com")

	var owner model.Membership
	require.NoError(t, db.Where("tenant_id = ?", tn.ID).First(&owner).Error)

	tc, err := NewResolver(db).Resolve(ResolveRequest{
		Slug:   "joes-auto-repair",
		UserID: owner.UserID,
	})
	require.NoError(t, err)
	require.NotNil(t, tc)
	assert.Equal(t, tn.ID, tc.Tenant.ID)

	// The caller's membership is attached for later permission checks.
	require.NotNil(t, tc.Membership)
	assert.Equal(t, permission.RoleOwner, tc.Membership.Role)
}

func TestResolveUnknownSlugRejects(t *testing.T) {
	m, db := setupManager(t)
	tn := createTenantFor(t, m, db, "Real Shop", "owner@example.com")

	// An explicit-but-wrong slug rejects even when the weaker signals
	// would resolve: no fallback.
	tc, err := NewResolver(db).Resolve(ResolveRequest{
		Slug:           "no-such-shop",
		TokenTenantID:  &tn.ID,
		HeaderTenantID: "1",
	})
	assert.ErrorIs(t, err, ErrTenantNotFound)
	assert.Nil(t, tc)
}

func TestResolveByTokenSelection(t *testing.T) {
	m, db := setupManager(t)
	tn := createTenantFor(t, m, db, "Shop", "owner@example.com")

	tc, err := NewResolver(db).Resolve(ResolveRequest{TokenTenantID: &tn.ID})
	require.NoError(t, err)
	require.NotNil(t, tc)
	assert.Equal(t, tn.ID, tc.Tenant.ID)
	assert.Nil(t, tc.Membership)
}

func TestResolveStaleTokenFallsThrough(t *testing.T) {
	m, db := setupManager(t)
	tn := createTenantFor(t, m, db, "Shop", "owner@example.com")

	stale := tn.ID + 100
	tc, err := NewResolver(db).Resolve(ResolveRequest{
		TokenTenantID:  &stale,
		HeaderTenantID: "1",
	})
	require.NoError(t, err)
	require.NotNil(t, tc)
	assert.Equal(t, tn.ID, tc.Tenant.ID)
}

func TestResolveHeaderIsAdvisory(t *testing.T) {
	m, db := setupManager(t)
	createTenantFor(t, m, db, "Shop", "owner@example.com")

	// Garbage and unknown header values fall through to "no tenant"
	// silently.
	for _, header := range []string{"not-a-number", "0", "99999", "-1"} {
		tc, err := NewResolver(db).Resolve(ResolveRequest{HeaderTenantID: header})
		require.NoError(t, err, "header %q", header)
		assert.Nil(t, tc, "header %q", header)
	}
}

func TestResolveNoSignals(t *testing.T) {
	_, db := setupManager(t)

	// "No tenant" is a legal terminal state.
	tc, err := NewResolver(db).Resolve(ResolveRequest{})
	require.NoError(t, err)
	assert.Nil(t, tc)
}

func TestResolveWithoutMembership(t *testing.T) {
	m, db := setupManager(t)
	tn := createTenantFor(t, m, db, "Shop", "owner@example.com")
	outsider := createUser(t, db, "outsider@example.com")

	// Resolution succeeds without a membership; authorization is a
	// separate, later check.
	tc, err := NewResolver(db).Resolve(ResolveRequest{
		Slug:   tn.Slug,
		UserID: outsider.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, tc)
	assert.Nil(t, tc.Membership)
	assert.Equal(t, permission.Role(""), tc.Role())
	assert.False(t, tc.Can(permission.ViewReports))
}

func TestContextCan(t *testing.T) {
	m, db := setupManager(t)
	tn := createTenantFor(t, m, db, "Shop", "owner@example.com")
	user := createUser(t, db, "mgr@example.com")

	ms, err := m.InviteMember(tn.ID, "mgr@example.com", permission.RoleManager, 1)
	require.NoError(t, err)

	r := NewResolver(db)

	// A pending membership grants nothing.
	tc, err := r.Resolve(ResolveRequest{Slug: tn.Slug, UserID: user.ID})
	require.NoError(t, err)
	assert.False(t, tc.Can(permission.ManageJobs))

	_, err = m.AcceptInvitation(ms.ID, user.ID)
	require.NoError(t, err)

	tc, err = r.Resolve(ResolveRequest{Slug: tn.Slug, UserID: user.ID})
	require.NoError(t, err)
	assert.True(t, tc.Can(permission.ManageJobs))
	assert.True(t, tc.Can(permission.ManageCustomers))
	assert.False(t, tc.Can(permission.ManageUsers))
	assert.False(t, tc.Can(permission.ManageOrg))
}

func TestForTenantScopeIsolation(t *testing.T) {
	m, db := setupManager(t)
	first := createTenantFor(t, m, db, "First Shop", "a@example.com")
	second := createTenantFor(t, m, db, "Second Shop", "b@example.com")

	require.NoError(t, db.Create(&model.Customer{TenantID: first.ID, Name: "Alice"}).Error)
	require.NoError(t, db.Create(&model.Customer{TenantID: second.ID, Name: "Bob"}).Error)

	var customers []model.Customer
	require.NoError(t, db.Scopes(ForTenant(first.ID)).Find(&customers).Error)
	require.Len(t, customers, 1)
	assert.Equal(t, "Alice", customers[0].Name)

	// A concrete id from another tenant reads as absent under the scope.
	var cross model.Customer
	err := db.Scopes(ForTenant(first.ID)).Where("name = ?", "Bob").First(&cross).Error
	assert.Error(t, err)
}

func TestTenantOwnedCreateRequiresTenant(t *testing.T) {
	_, db := setupManager(t)

	err := db.Create(&model.Customer{Name: "Nobody"}).Error
	assert.ErrorIs(t, err, model.ErrMissingTenant)

	err = db.Create(&model.Job{Title: "Orphan", CustomerID: 1}).Error
	assert.ErrorIs(t, err, model.ErrMissingTenant)
}
