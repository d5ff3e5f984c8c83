package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProofStatus string

const (
	ProofPending  ProofStatus = "PENDING"
	ProofApproved ProofStatus = "APPROVED"
	ProofRejected ProofStatus = "REJECTED"
)

// CompletionProof is contractor-submitted evidence that an assignment's
// work is done. Approval is the only event that moves a report and its
// assignment to COMPLETED.
type CompletionProof struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assignment_id"`
	ContractorID uuid.UUID `gorm:"type:uuid;not null;index" json:"contractor_id"`

	Notes    string `gorm:"size:2000" json:"notes,omitempty"`
	ImageURL string `gorm:"type:text" json:"image_url,omitempty"`

	Status      ProofStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ReviewerID  *uuid.UUID  `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewedAt  *time.Time  `json:"reviewed_at,omitempty"`
	ReviewNotes string      `gorm:"size:2000" json:"review_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *CompletionProof) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (CompletionProof) TableName() string {
	return "completion_proofs"
}
