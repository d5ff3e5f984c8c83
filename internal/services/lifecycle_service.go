package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicworks/civic-backend/internal/identity"
	"github.com/civicworks/civic-backend/internal/models"
	"github.com/civicworks/civic-backend/internal/trail"
)

// LifecycleService owns Report.Status. Transition policy: any recognized
// status is reachable from any non-terminal status (the permissive model
// this system launched with), with three carve-outs enforced because they
// are invariants rather than graph strictness:
//   - terminal statuses have no outgoing transitions,
//   - COMPLETED is only reachable through proof approval,
//   - ASSIGNED requires an active assignment to exist.
type LifecycleService struct {
	db  *gorm.DB
	rec *trail.Recorder
}

func NewLifecycleService(db *gorm.DB, rec *trail.Recorder) *LifecycleService {
	return &LifecycleService{db: db, rec: rec}
}

// Transition moves a report to target. Fails fast on authorization and
// validation before touching mutable state; the status update is guarded
// by the status read at transition time, so the race loser of two
// simultaneous admin actions gets a conflict instead of the trail
// recording a stale prior state.
func (s *LifecycleService) Transition(reportID uuid.UUID, target models.ReportStatus, justification string, actor *identity.Actor, meta RequestMeta) (*models.Report, error) {
	if !actor.Role.CanModerate() {
		return nil, ErrRoleNotAllowed
	}
	if err := validateJustification(justification); err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, ErrInvalidStatus
	}
	if target == models.StatusCompleted {
		return nil, ErrCompletionViaProofOnly
	}

	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("load report: %w", err)
	}

	if report.Status.Terminal() {
		return nil, ErrTerminalStatus
	}

	if target == models.StatusAssigned {
		var active int64
		s.db.Model(&models.Assignment{}).
			Where("report_id = ? AND status IN ?", reportID,
				[]models.AssignmentStatus{models.AssignmentAssigned, models.AssignmentInProgress}).
			Count(&active)
		if active == 0 {
			return nil, ErrAssignmentRequired
		}
	}

	oldStatus := report.Status
	now := time.Now()

	updates := map[string]interface{}{"status": target}
	if target == models.StatusClosed && report.ClosedAt == nil {
		updates["closed_at"] = now
	}

	result := s.db.Model(&models.Report{}).
		Where("id = ? AND status = ?", reportID, oldStatus).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrConcurrentUpdate
	}

	s.rec.Record(trail.Fact{
		Actor:         actor,
		ReportID:      &reportID,
		HistoryAction: models.HistoryStatusChanged,
		Description:   fmt.Sprintf("Status changed from %s to %s", oldStatus, target),
		OldStatus:     &oldStatus,
		NewStatus:     &target,
		EntityType:    models.EntityReport,
		EntityID:      reportID,
		AuditAction:   models.AuditStatusChanged,
		OldValue:      map[string]any{"status": oldStatus},
		NewValue:      map[string]any{"status": target},
		Justification: justification,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, fmt.Errorf("reload report: %w", err)
	}
	return &report, nil
}
