package tenant

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"repairshop/internal/model"
)

// ErrTenantNotFound is returned when the request names a tenant slug
// that does not exist. An explicit-but-wrong slug is a stronger signal
// than an absent one, so this rejects the request instead of falling
// through to the weaker resolution strategies.
var ErrTenantNotFound = errors.New("tenant: not found")

// Resolver determines the active tenant for one request.
type Resolver struct {
	db *gorm.DB
}

// NewResolver returns a resolver backed by db.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// ResolveRequest is the per-request input to Resolve. Zero values mean
// the signal is absent.
type ResolveRequest struct {
	// Slug is the organization slug from the URL path, if the route
	// carries one.
	Slug string
	// TokenTenantID is the tenant previously selected by the caller and
	// embedded in their token.
	TokenTenantID *uint
	// HeaderTenantID is the raw X-Tenant-ID header value. Advisory
	// only: parse or lookup failures fall through silently.
	HeaderTenantID string
	// UserID identifies the caller, for attaching their membership.
	// Zero when the request is unauthenticated.
	UserID uint
}

// Resolve determines the tenant for the request, first match wins:
// path slug, then token selection, then the advisory header. A nil
// Context with a nil error is the legal "no tenant" outcome; only an
// unresolvable slug rejects the request.
func (r *Resolver) Resolve(req ResolveRequest) (*Context, error) {
	if req.Slug != "" {
		var t model.Tenant
		err := r.db.Where("slug = ?", req.Slug).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		if err != nil {
			return nil, err
		}
		return r.withMembership(&t, req.UserID)
	}

	if req.TokenTenantID != nil && *req.TokenTenantID != 0 {
		var t model.Tenant
		err := r.db.First(&t, *req.TokenTenantID).Error
		if err == nil {
			return r.withMembership(&t, req.UserID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// Stale selection, fall through.
	}

	if req.HeaderTenantID != "" {
		id, err := strconv.ParseUint(req.HeaderTenantID, 10, 32)
		if err == nil && id != 0 {
			var t model.Tenant
			if lookupErr := r.db.First(&t, uint(id)).Error; lookupErr == nil {
				return r.withMembership(&t, req.UserID)
			} else if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
				return nil, lookupErr
			}
		}
		// Advisory signal: bad values are ignored, not rejected.
	}

	return nil, nil
}

// withMembership attaches the caller's membership in the tenant, if
// any. A missing membership is not an error here; authorization is a
// separate, later check.
func (r *Resolver) withMembership(t *model.Tenant, userID uint) (*Context, error) {
	ctx := &Context{Tenant: t}
	if userID == 0 {
		return ctx, nil
	}

	var m model.Membership
	err := r.db.Where("user_id = ? AND tenant_id = ?", userID, t.ID).First(&m).Error
	if err == nil {
		ctx.Membership = &m
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return ctx, nil
}
