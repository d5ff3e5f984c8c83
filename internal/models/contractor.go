package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contractor is an external service provider eligible to bid on and be
// assigned reports. Blocking a contractor cancels their active assignments.
type Contractor struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CompanyName string     `gorm:"not null;size:255" json:"company_name"`
	Email       string     `gorm:"size:255" json:"email,omitempty"`
	Phone       string     `gorm:"size:20" json:"phone,omitempty"`

	IsBlocked     bool       `gorm:"not null;default:false;index" json:"is_blocked"`
	BlockedReason string     `gorm:"size:1000" json:"blocked_reason,omitempty"`
	BlockedAt     *time.Time `json:"blocked_at,omitempty"`
	BlockedByID   *uuid.UUID `gorm:"type:uuid" json:"blocked_by_id,omitempty"`

	Rating        float64 `gorm:"type:decimal(3,2);default:0" json:"rating"`
	CompletedJobs int     `gorm:"not null;default:0" json:"completed_jobs"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Contractor) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Contractor) TableName() string {
	return "contractors"
}
