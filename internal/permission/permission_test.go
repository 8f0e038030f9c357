package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasMatrix(t *testing.T) {
	grants := map[Role][]Capability{
		RoleOwner:      {ManageOrg, ManageUsers, ManageCatalog, ManageInventory, ManageJobs, ManageCustomers, ManageBilling, ViewReports},
		RoleAdmin:      {ManageUsers, ManageCatalog, ManageInventory, ManageJobs, ManageCustomers, ManageBilling, ViewReports},
		RoleManager:    {ManageCatalog, ManageInventory, ManageJobs, ManageCustomers, ViewReports},
		RoleTechnician: {ManageJobs, ViewReports},
		RolePartsClerk: {ManageCatalog, ManageInventory, ViewReports},
		RoleViewer:     {ViewReports},
	}

	for _, role := range AllRoles {
		granted := map[Capability]bool{}
		for _, cap := range grants[role] {
			granted[cap] = true
		}
		for _, cap := range AllCapabilities {
			assert.Equal(t, granted[cap], Has(role, cap), "role %s capability %s", role, cap)
		}
	}
}

func TestHasDeniesNotGrants(t *testing.T) {
	assert.False(t, Has(RoleViewer, ManageJobs))
	assert.False(t, Has(RoleTechnician, ManageInventory))
	assert.False(t, Has(RoleAdmin, ManageOrg))
	assert.True(t, Has(RoleOwner, ManageOrg))
}

func TestHasUnknownRole(t *testing.T) {
	for _, cap := range AllCapabilities {
		assert.False(t, Has(Role("superuser"), cap))
		assert.False(t, Has(Role(""), cap))
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range AllRoles {
		assert.True(t, ValidRole(role))
	}
	assert.False(t, ValidRole(Role("superuser")))
	assert.False(t, ValidRole(Role("")))
	assert.False(t, ValidRole(Role("Owner")))
}

func TestAssignable(t *testing.T) {
	assert.False(t, Assignable(RoleOwner))
	assert.False(t, Assignable(Role("superuser")))
	for _, role := range []Role{RoleAdmin, RoleManager, RoleTechnician, RolePartsClerk, RoleViewer} {
		assert.True(t, Assignable(role), "role %s", role)
	}
}

func TestCapabilities(t *testing.T) {
	assert.Len(t, Capabilities(RoleOwner), len(AllCapabilities))
	assert.Equal(t, []Capability{ViewReports}, Capabilities(RoleViewer))
	assert.Empty(t, Capabilities(Role("superuser")))

	// Every capability a role lists must also pass Has.
	for _, role := range AllRoles {
		for _, cap := range Capabilities(role) {
			assert.True(t, Has(role, cap))
		}
	}
}
