package tenant

import (
	"gorm.io/gorm"

	"repairshop/internal/model"
	"repairshop/internal/permission"
)

// Context carries the resolved tenant and the caller's membership in it
// for one request. It is an explicit value threaded through handlers,
// never ambient mutable state, so one request's tenant can never leak
// into another.
type Context struct {
	Tenant     *model.Tenant
	Membership *model.Membership // nil when the caller has no membership in the tenant
}

// Role returns the caller's role in the resolved tenant, or "" when
// the caller has no active membership there.
func (c *Context) Role() permission.Role {
	if c == nil || c.Membership == nil || c.Membership.Status != model.MembershipActive {
		return ""
	}
	return c.Membership.Role
}

// Can reports whether the caller's role grants the capability. This is
// purely the role check; tenant status and plan gates are layered on
// top by the middleware and the quota checks.
func (c *Context) Can(cap permission.Capability) bool {
	role := c.Role()
	if role == "" {
		return false
	}
	return permission.Has(role, cap)
}

// ForTenant is a gorm scope restricting a query to one tenant's rows.
// Every read of a tenant-owned entity goes through it:
//
//	db.Scopes(tenant.ForTenant(tc.Tenant.ID)).Find(&jobs)
func ForTenant(tenantID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}
