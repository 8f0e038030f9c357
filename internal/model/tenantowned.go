package model

import (
	"errors"
)

// ErrMissingTenant is returned when a tenant-owned row is written
// without a tenant id. Cross-tenant and tenant-less writes are
// correctness violations, so create hooks make the mistake impossible
// to commit rather than relying on every call site to remember the
// filter.
var ErrMissingTenant = errors.New("model: tenant-owned record has no tenant id")

// requireTenant is called from the BeforeCreate hook of every
// tenant-owned entity. Reads against these entities must go through a
// tenant scope (see tenant.ForTenant).
func requireTenant(tenantID uint) error {
	if tenantID == 0 {
		return ErrMissingTenant
	}
	return nil
}
