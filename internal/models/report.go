package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportStatus is the closed set of lifecycle states a report can be in.
// Illegal values are unrepresentable at the type level; transition policy
// lives in services.LifecycleService.
type ReportStatus string

const (
	StatusOpen                 ReportStatus = "OPEN"
	StatusDuplicate            ReportStatus = "DUPLICATE"
	StatusMerged               ReportStatus = "MERGED"
	StatusValidated            ReportStatus = "VALIDATED"
	StatusInBidding            ReportStatus = "IN_BIDDING"
	StatusAssigned             ReportStatus = "ASSIGNED"
	StatusInProgress           ReportStatus = "IN_PROGRESS"
	StatusPendingCitizenReview ReportStatus = "PENDING_CITIZEN_REVIEW"
	StatusCompleted            ReportStatus = "COMPLETED"
	StatusVerified             ReportStatus = "VERIFIED"
	StatusClosed               ReportStatus = "CLOSED"
	StatusRejected             ReportStatus = "REJECTED"
	StatusAutoClosed           ReportStatus = "AUTO_CLOSED"
)

var reportStatuses = map[ReportStatus]bool{
	StatusOpen: true, StatusDuplicate: true, StatusMerged: true,
	StatusValidated: true, StatusInBidding: true, StatusAssigned: true,
	StatusInProgress: true, StatusPendingCitizenReview: true,
	StatusCompleted: true, StatusVerified: true, StatusClosed: true,
	StatusRejected: true, StatusAutoClosed: true,
}

// Valid reports whether s is one of the recognized lifecycle states.
func (s ReportStatus) Valid() bool {
	return reportStatuses[s]
}

// Terminal reports whether s has no outgoing transitions in ordinary flow.
func (s ReportStatus) Terminal() bool {
	switch s {
	case StatusClosed, StatusRejected, StatusAutoClosed, StatusVerified:
		return true
	}
	return false
}

// Report is a citizen-filed civic issue. Status is mutated exclusively
// through LifecycleService and ModerationService so every change carries a
// justification and lands in both trails.
type Report struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"reporter_id"`
	WardID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"ward_id"`
	Title       string       `gorm:"not null;size:255" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Category    string       `gorm:"size:50;not null;default:'OTHER'" json:"category"`
	Latitude    float64      `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude   float64      `gorm:"type:decimal(11,8)" json:"longitude"`
	Address     string       `gorm:"size:500" json:"address,omitempty"`
	ImageURL    string       `gorm:"type:text" json:"image_url,omitempty"`
	Severity    int          `gorm:"not null;default:3" json:"severity"`
	Status      ReportStatus `gorm:"size:30;not null;default:'OPEN';index" json:"status"`

	UpvoteCount     int `gorm:"not null;default:0" json:"upvote_count"`
	SubscriberCount int `gorm:"not null;default:0" json:"subscriber_count"`
	DuplicateCount  int `gorm:"not null;default:0" json:"duplicate_count"`

	IsDuplicate   bool       `gorm:"not null;default:false" json:"is_duplicate"`
	DuplicateOfID *uuid.UUID `gorm:"type:uuid;index" json:"duplicate_of_id,omitempty"`
	IsSpam        bool       `gorm:"not null;default:false" json:"is_spam"`
	IsSensitive   bool       `gorm:"not null;default:false" json:"is_sensitive"`
	IsHidden      bool       `gorm:"not null;default:false" json:"is_hidden"`

	DepartmentID *uuid.UUID `gorm:"type:uuid;index" json:"department_id,omitempty"`

	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	ClosedAt    *time.Time     `json:"closed_at,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Report) TableName() string {
	return "reports"
}

// Editable reports whether the owning citizen may still change
// title/description/severity. Any status other than OPEN freezes the report.
func (r *Report) Editable() bool {
	return r.Status == StatusOpen
}
