package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Moderation action tags, orthogonal to the lifecycle state machine.
const (
	ModerationFlagSpam      = "FLAG_SPAM"
	ModerationMarkSensitive = "MARK_SENSITIVE"
	ModerationHide          = "HIDE"
	ModerationApprove       = "APPROVE"
	ModerationMarkDuplicate = "MARK_DUPLICATE"
	ModerationEscalate      = "ESCALATE"
	ModerationReject        = "REJECT"
	ModerationUnflag        = "UNFLAG"
)

var moderationActions = map[string]bool{
	ModerationFlagSpam: true, ModerationMarkSensitive: true,
	ModerationHide: true, ModerationApprove: true,
	ModerationMarkDuplicate: true, ModerationEscalate: true,
	ModerationReject: true, ModerationUnflag: true,
}

// ValidModerationAction reports whether tag is a recognized moderation action.
func ValidModerationAction(tag string) bool {
	return moderationActions[tag]
}

// ModeratorAction records one moderation decision with flag snapshots,
// distinct from (and in addition to) the history/audit trails.
type ModeratorAction struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModeratorID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"moderator_id"`
	ReportID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"report_id"`
	Action        string         `gorm:"size:30;not null" json:"action"`
	Justification string         `gorm:"size:2000;not null" json:"justification"`
	OldFlags      datatypes.JSON `gorm:"type:jsonb" json:"old_flags,omitempty"`
	NewFlags      datatypes.JSON `gorm:"type:jsonb" json:"new_flags,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (m *ModeratorAction) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (ModeratorAction) TableName() string {
	return "moderator_actions"
}
