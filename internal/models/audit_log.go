package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit entity types.
const (
	EntityReport     = "REPORT"
	EntityBid        = "BID"
	EntityAssignment = "ASSIGNMENT"
	EntityProof      = "PROOF"
	EntityContractor = "CONTRACTOR"
	EntityUser       = "USER"
	EntityWard       = "WARD"
)

// Audit action types.
const (
	AuditStatusChanged  = "STATUS_CHANGED"
	AuditAssigned       = "ASSIGNED"
	AuditBidAccepted    = "BID_ACCEPTED"
	AuditProofApproved  = "PROOF_APPROVED"
	AuditProofRejected  = "PROOF_REJECTED"
	AuditModerated      = "MODERATED"
	AuditBlocked        = "BLOCKED"
	AuditUnblocked      = "UNBLOCKED"
	AuditReportDeleted  = "REPORT_DELETED"
	AuditRoleChanged    = "ROLE_CHANGED"
)

// AuditLogEntry is one immutable fact about a privileged action, framed by
// entity rather than by report. Justification is mandatory for every
// state-changing privileged action and is validated upstream.
type AuditLogEntry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	ActorRole     string         `gorm:"size:20;not null" json:"actor_role"`
	EntityType    string         `gorm:"size:30;not null;index" json:"entity_type"`
	EntityID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"entity_id"`
	ActionType    string         `gorm:"size:50;not null;index" json:"action_type"`
	Justification string         `gorm:"size:2000;not null" json:"justification"`
	OldValue      datatypes.JSON `gorm:"type:jsonb" json:"old_value,omitempty"`
	NewValue      datatypes.JSON `gorm:"type:jsonb" json:"new_value,omitempty"`
	IPAddress     string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent     string         `gorm:"size:500" json:"user_agent,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}

func (e *AuditLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}
