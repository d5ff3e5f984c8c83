package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/civicworks/civic-backend/internal/dto"
	"github.com/civicworks/civic-backend/internal/identity"
	"github.com/civicworks/civic-backend/internal/models"
	"github.com/civicworks/civic-backend/internal/trail"
)

// ModerationService mutates the flag-state layered on top of the
// lifecycle: spam/sensitive/hidden flags, the duplicate relation, and
// severity escalation. Flag-only actions are allowed on terminal reports
// (the permissive model); MARK_DUPLICATE and REJECT change status and are
// therefore gated like lifecycle transitions.
type ModerationService struct {
	db  *gorm.DB
	rec *trail.Recorder
}

func NewModerationService(db *gorm.DB, rec *trail.Recorder) *ModerationService {
	return &ModerationService{db: db, rec: rec}
}

func (s *ModerationService) Moderate(reportID uuid.UUID, req *dto.ModerateRequest, actor *identity.Actor, meta RequestMeta) (*models.Report, error) {
	if !actor.Role.CanModerate() {
		return nil, ErrRoleNotAllowed
	}
	if err := validateJustification(req.Justification); err != nil {
		return nil, err
	}
	if !models.ValidModerationAction(req.Action) {
		return nil, ErrInvalidModeration
	}

	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("load report: %w", err)
	}

	oldFlags := flagSnapshot(&report)
	oldStatus := report.Status

	updates := map[string]interface{}{}
	var newStatus *models.ReportStatus
	var canonicalID *uuid.UUID

	switch req.Action {
	case models.ModerationFlagSpam:
		updates["is_spam"] = true
	case models.ModerationMarkSensitive:
		updates["is_sensitive"] = true
	case models.ModerationHide:
		updates["is_hidden"] = true
	case models.ModerationApprove:
		updates["is_spam"] = false
		updates["is_hidden"] = false
	case models.ModerationUnflag:
		updates["is_spam"] = false
		updates["is_sensitive"] = false
		updates["is_hidden"] = false
	case models.ModerationEscalate:
		sev := report.Severity + 1
		if sev > 5 {
			sev = 5
		}
		updates["severity"] = sev
	case models.ModerationReject:
		if report.Status.Terminal() {
			return nil, ErrTerminalStatus
		}
		st := models.StatusRejected
		newStatus = &st
		updates["status"] = st
	case models.ModerationMarkDuplicate:
		if req.DuplicateOfID == nil {
			return nil, ErrDuplicateRefRequired
		}
		if *req.DuplicateOfID == reportID {
			return nil, ErrDuplicateSelf
		}
		if report.Status.Terminal() {
			return nil, ErrTerminalStatus
		}

		var canonical models.Report
		if err := s.db.First(&canonical, "id = ?", *req.DuplicateOfID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrReportNotFound
			}
			return nil, fmt.Errorf("load canonical report: %w", err)
		}
		// No duplicate chains: the canonical report must itself be canonical.
		if canonical.IsDuplicate || canonical.Status == models.StatusDuplicate {
			return nil, ErrDuplicateOfDuplicate
		}

		st := models.StatusDuplicate
		newStatus = &st
		canonicalID = req.DuplicateOfID
		updates["status"] = st
		updates["is_duplicate"] = true
		updates["duplicate_of_id"] = *req.DuplicateOfID
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			result := tx.Model(&models.Report{}).
				Where("id = ? AND status = ?", reportID, oldStatus).
				Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrConcurrentUpdate
			}
		}

		if canonicalID != nil {
			if err := tx.Model(&models.Report{}).
				Where("id = ?", *canonicalID).
				Update("duplicate_count", gorm.Expr("duplicate_count + 1")).Error; err != nil {
				return err
			}
		}

		var updated models.Report
		if err := tx.First(&updated, "id = ?", reportID).Error; err != nil {
			return err
		}

		action := models.ModeratorAction{
			ModeratorID:   actor.ID,
			ReportID:      reportID,
			Action:        req.Action,
			Justification: req.Justification,
			OldFlags:      mustFlagsJSON(oldFlags),
			NewFlags:      mustFlagsJSON(flagSnapshot(&updated)),
		}
		return tx.Create(&action).Error
	})
	if err != nil {
		return nil, err
	}

	var updated models.Report
	if err := s.db.First(&updated, "id = ?", reportID).Error; err != nil {
		return nil, fmt.Errorf("reload report: %w", err)
	}

	s.rec.Record(trail.Fact{
		Actor:         actor,
		ReportID:      &reportID,
		HistoryAction: models.HistoryModerated,
		Description:   fmt.Sprintf("Moderation action %s applied", req.Action),
		OldStatus:     &oldStatus,
		NewStatus:     newStatus,
		Metadata:      map[string]any{"action": req.Action},
		EntityType:    models.EntityReport,
		EntityID:      reportID,
		AuditAction:   models.AuditModerated,
		OldValue:      oldFlags,
		NewValue:      flagSnapshot(&updated),
		Justification: req.Justification,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	return &updated, nil
}

func flagSnapshot(r *models.Report) map[string]any {
	snap := map[string]any{
		"is_spam":      r.IsSpam,
		"is_sensitive": r.IsSensitive,
		"is_hidden":    r.IsHidden,
		"is_duplicate": r.IsDuplicate,
		"severity":     r.Severity,
		"status":       r.Status,
	}
	if r.DuplicateOfID != nil {
		snap["duplicate_of_id"] = r.DuplicateOfID.String()
	}
	return snap
}

func mustFlagsJSON(m map[string]any) datatypes.JSON {
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
