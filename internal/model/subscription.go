package model

import (
	"time"
)

// SubscriptionPlan is the tenant's billing plan.
type SubscriptionPlan string

const (
	PlanFree         SubscriptionPlan = "free"
	PlanStarter      SubscriptionPlan = "starter"
	PlanProfessional SubscriptionPlan = "professional"
	PlanEnterprise   SubscriptionPlan = "enterprise"
)

// ValidPlan reports whether p is a defined subscription plan.
func ValidPlan(p SubscriptionPlan) bool {
	switch p {
	case PlanFree, PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// SubscriptionStatus mirrors the external billing provider's
// subscription states.
type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// ValidSubscriptionStatus reports whether s is a defined status.
func ValidSubscriptionStatus(s SubscriptionStatus) bool {
	switch s {
	case SubscriptionTrialing, SubscriptionActive, SubscriptionPastDue, SubscriptionCanceled:
		return true
	}
	return false
}

// Subscription is the billing record for a tenant. Exactly one row per
// tenant, created in the same transaction as the tenant itself. The
// external references are opaque strings owned by the billing
// provider; this service never calls the provider directly.
type Subscription struct {
	ID                     uint               `json:"id" gorm:"primaryKey"`
	TenantID               uint               `json:"tenant_id" gorm:"uniqueIndex;not null"`
	ExternalCustomerID     string             `json:"external_customer_id" gorm:"type:varchar(100)"`
	ExternalSubscriptionID string             `json:"external_subscription_id" gorm:"type:varchar(100)"`
	Plan                   SubscriptionPlan   `json:"plan" gorm:"type:varchar(20);not null;default:'free'"`
	Status                 SubscriptionStatus `json:"status" gorm:"type:varchar(20);not null;default:'trialing'"`
	CurrentPeriodStart     *time.Time         `json:"current_period_start"`
	CurrentPeriodEnd       *time.Time         `json:"current_period_end"`
	TrialEndsAt            *time.Time         `json:"trial_ends_at"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// IsActive reports whether the subscription currently entitles the
// tenant to service: trialing and active count, past_due and canceled
// do not.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionTrialing || s.Status == SubscriptionActive
}

// JobQuota returns the maximum number of open jobs the plan allows,
// or -1 for unlimited.
func JobQuota(plan SubscriptionPlan) int {
	switch plan {
	case PlanFree:
		return 25
	case PlanStarter:
		return 200
	default:
		return -1
	}
}
