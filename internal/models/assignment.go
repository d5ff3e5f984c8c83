package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "ASSIGNED"
	AssignmentInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentCompleted  AssignmentStatus = "COMPLETED"
	AssignmentCancelled  AssignmentStatus = "CANCELLED"
)

// Active reports whether the assignment still binds the contractor.
func (s AssignmentStatus) Active() bool {
	return s == AssignmentAssigned || s == AssignmentInProgress
}

// Assignment is the binding commitment of a contractor or department to
// resolve a report. At most one active assignment exists per report.
type Assignment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"report_id"`
	ContractorID *uuid.UUID `gorm:"type:uuid;index" json:"contractor_id,omitempty"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index" json:"department_id,omitempty"`
	AssignedByID uuid.UUID  `gorm:"type:uuid;not null" json:"assigned_by_id"`
	BidID        *uuid.UUID `gorm:"type:uuid" json:"bid_id,omitempty"`

	AgreedCost float64          `gorm:"type:decimal(12,2);default:0" json:"agreed_cost"`
	Deadline   *time.Time       `json:"deadline,omitempty"`
	Status     AssignmentStatus `gorm:"size:20;not null;default:'ASSIGNED';index" json:"status"`

	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"size:1000" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (Assignment) TableName() string {
	return "assignments"
}
