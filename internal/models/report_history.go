package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// History action tags. The timeline is citizen-facing, so tags describe
// what happened rather than which admin API was called.
const (
	HistoryReportCreated   = "REPORT_CREATED"
	HistoryReportUpdated   = "REPORT_UPDATED"
	HistoryStatusChanged   = "STATUS_CHANGED"
	HistoryAssigned        = "ASSIGNED"
	HistoryBidAssigned     = "BID_ASSIGNED"
	HistoryBidSubmitted    = "BID_SUBMITTED"
	HistoryProofSubmitted  = "PROOF_SUBMITTED"
	HistoryProofReviewed   = "PROOF_REVIEWED"
	HistoryModerated       = "MODERATED"
	HistoryAssignCancelled = "ASSIGNMENT_CANCELLED"
)

// ReportHistoryEntry is one immutable fact on a report's timeline.
// Append-only: rows are never updated or deleted, except by cascade when
// the report itself is purged.
type ReportHistoryEntry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"report_id"`
	ActorID       *uuid.UUID     `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action        string         `gorm:"size:50;not null" json:"action"`
	OldStatus     *ReportStatus  `gorm:"size:30" json:"old_status,omitempty"`
	NewStatus     *ReportStatus  `gorm:"size:30" json:"new_status,omitempty"`
	Description   string         `gorm:"size:1000" json:"description"`
	Justification string         `gorm:"size:2000" json:"justification,omitempty"`
	Metadata      datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsSystem      bool           `gorm:"not null;default:false" json:"is_system"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}

func (e *ReportHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (ReportHistoryEntry) TableName() string {
	return "report_history_entries"
}
