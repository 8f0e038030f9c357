// Package permission defines the static role-to-capability table for
// tenant memberships. The table is exhaustive over all roles and is
// verified at init time; an unknown role reaching a check is a
// programming error, not a runtime condition.
package permission

import "fmt"

// Role is a member's role within one tenant.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
	RolePartsClerk Role = "parts_clerk"
	RoleViewer     Role = "viewer"
)

// Capability is a named permission tag checked independently of how
// roles are stored.
type Capability string

const (
	ManageOrg       Capability = "manage_org"
	ManageUsers     Capability = "manage_users"
	ManageCatalog   Capability = "manage_catalog"
	ManageInventory Capability = "manage_inventory"
	ManageJobs      Capability = "manage_jobs"
	ManageCustomers Capability = "manage_customers"
	ManageBilling   Capability = "manage_billing"
	ViewReports     Capability = "view_reports"
)

// AllRoles lists every defined role.
var AllRoles = []Role{
	RoleOwner,
	RoleAdmin,
	RoleManager,
	RoleTechnician,
	RolePartsClerk,
	RoleViewer,
}

// AllCapabilities lists every defined capability tag.
var AllCapabilities = []Capability{
	ManageOrg,
	ManageUsers,
	ManageCatalog,
	ManageInventory,
	ManageJobs,
	ManageCustomers,
	ManageBilling,
	ViewReports,
}

// roleCapabilities maps each role to the set of capabilities it grants.
// Capabilities not listed for a role are denied. manage_org stays
// exclusive to owner.
var roleCapabilities = map[Role]map[Capability]bool{
	RoleOwner: {
		ManageOrg:       true,
		ManageUsers:     true,
		ManageCatalog:   true,
		ManageInventory: true,
		ManageJobs:      true,
		ManageCustomers: true,
		ManageBilling:   true,
		ViewReports:     true,
	},
	RoleAdmin: {
		ManageUsers:     true,
		ManageCatalog:   true,
		ManageInventory: true,
		ManageJobs:      true,
		ManageCustomers: true,
		ManageBilling:   true,
		ViewReports:     true,
	},
	RoleManager: {
		ManageCatalog:   true,
		ManageInventory: true,
		ManageJobs:      true,
		ManageCustomers: true,
		ViewReports:     true,
	},
	RoleTechnician: {
		ManageJobs:  true,
		ViewReports: true,
	},
	RolePartsClerk: {
		ManageCatalog:   true,
		ManageInventory: true,
		ViewReports:     true,
	},
	RoleViewer: {
		ViewReports: true,
	},
}

func init() {
	// Every role must have an entry, even an empty one. Missing entries
	// would silently deny and hide a wiring mistake.
	for _, role := range AllRoles {
		if _, ok := roleCapabilities[role]; !ok {
			panic(fmt.Sprintf("permission: role %q has no capability entry", role))
		}
	}
	for role := range roleCapabilities {
		if !ValidRole(role) {
			panic(fmt.Sprintf("permission: capability entry for undefined role %q", role))
		}
	}
}

// Has reports whether a member with the given role may exercise the
// given capability. Tenant status and subscription gates are layered
// separately; this is purely the role table.
func Has(role Role, cap Capability) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	return caps[cap]
}

// ValidRole reports whether role is one of the defined role values.
func ValidRole(role Role) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Assignable reports whether role may be granted through an
// invitation. Owner is only ever created with the tenant itself.
func Assignable(role Role) bool {
	return ValidRole(role) && role != RoleOwner
}

// Capabilities returns the capability set for a role, for listing in
// membership responses.
func Capabilities(role Role) []Capability {
	var out []Capability
	for _, cap := range AllCapabilities {
		if roleCapabilities[role][cap] {
			out = append(out, cap)
		}
	}
	return out
}
