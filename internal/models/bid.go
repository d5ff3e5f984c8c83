package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BidStatus string

const (
	BidPending  BidStatus = "PENDING"
	BidAccepted BidStatus = "ACCEPTED"
	BidRejected BidStatus = "REJECTED"
)

// Bid is a contractor's proposal to resolve a specific report. Accepting
// one bid rejects every sibling bid on the same report in the same
// transaction, so no two bids on one report are ever both ACCEPTED.
type Bid struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID     uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	ContractorID uuid.UUID `gorm:"type:uuid;not null;index" json:"contractor_id"`

	ProposedCost  float64   `gorm:"type:decimal(12,2);not null" json:"proposed_cost"`
	EstimatedDays int       `gorm:"not null" json:"estimated_days"`
	Note          string    `gorm:"size:1000" json:"note,omitempty"`
	Preferred     bool      `gorm:"not null;default:false" json:"preferred"`
	Status        BidStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	DecidedByID *uuid.UUID `gorm:"type:uuid" json:"decided_by_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Bid) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (Bid) TableName() string {
	return "bids"
}
