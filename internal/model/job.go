package model

import (
	"time"

	"gorm.io/gorm"
)

// JobStatus is the work-order state.
type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCanceled   JobStatus = "canceled"
)

// openJobStatuses are the states counted against the plan's job quota.
var OpenJobStatuses = []JobStatus{JobOpen, JobInProgress}

// Job represents a work order for a customer's vehicle.
type Job struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null"`
	CustomerID  uint           `json:"customer_id" gorm:"index;not null"`
	Title       string         `json:"title" gorm:"type:varchar(200);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Vehicle     string         `json:"vehicle" gorm:"type:varchar(200)"`
	Status      JobStatus      `json:"status" gorm:"type:varchar(20);not null;default:'open'"`
	AssignedTo  *uint          `json:"assigned_to" gorm:"index"`
	TotalCents  int64          `json:"total_cents"`
	CreatedBy   uint           `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Customer Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	return requireTenant(j.TenantID)
}
