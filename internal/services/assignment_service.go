package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicworks/civic-backend/internal/dto"
	"github.com/civicworks/civic-backend/internal/identity"
	"github.com/civicworks/civic-backend/internal/models"
	"github.com/civicworks/civic-backend/internal/trail"
)

// AssignmentService manages the two admission paths to an Assignment
// (direct and bid-mediated), the completion-proof path out of it, and
// contractor blocking with its cancellation cascade.
type AssignmentService struct {
	db  *gorm.DB
	rec *trail.Recorder
}

func NewAssignmentService(db *gorm.DB, rec *trail.Recorder) *AssignmentService {
	return &AssignmentService{db: db, rec: rec}
}

var activeAssignmentStatuses = []models.AssignmentStatus{
	models.AssignmentAssigned, models.AssignmentInProgress,
}

// AssignDirect creates an Assignment for a contractor or department chosen
// by the admin and moves the report to ASSIGNED.
func (s *AssignmentService) AssignDirect(reportID uuid.UUID, req *dto.AssignDirectRequest, actor *identity.Actor, meta RequestMeta) (*models.Assignment, error) {
	if !actor.Role.CanModerate() {
		return nil, ErrRoleNotAllowed
	}
	if err := validateJustification(req.Justification); err != nil {
		return nil, err
	}
	if (req.ContractorID == nil) == (req.DepartmentID == nil) {
		return nil, ErrAssigneeRequired
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

	if req.ContractorID != nil {
		var contractor models.Contractor
		if err := s.db.First(&contractor, "id = ?", *req.ContractorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrContractorNotFound
			}
			return nil, fmt.Errorf("load contractor: %w", err)
		}
		if contractor.IsBlocked {
			return nil, ErrContractorBlocked
		}
	}
	if req.DepartmentID != nil {
		var dept models.Department
		if err := s.db.First(&dept, "id = ?", *req.DepartmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, fmt.Errorf("load department: %w", err)
		}
	}

	oldStatus := report.Status
	newStatus := models.StatusAssigned
	assignment := models.Assignment{
		ReportID:     reportID,
		ContractorID: req.ContractorID,
		DepartmentID: req.DepartmentID,
		AssignedByID: actor.ID,
		AgreedCost:   req.AgreedCost,
		Deadline:     req.Deadline,
		Status:       models.AssignmentAssigned,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.Assignment{}).
			Where("report_id = ? AND status IN ?", reportID, activeAssignmentStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveAssignmentExists
		}

		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}

		result := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", reportID, oldStatus).
			Updates(map[string]interface{}{"status": newStatus, "department_id": req.DepartmentID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rec.Record(trail.Fact{
		Actor:         actor,
		ReportID:      &reportID,
		HistoryAction: models.HistoryAssigned,
		Description:   "Report assigned for resolution",
		OldStatus:     &oldStatus,
		NewStatus:     &newStatus,
		EntityType:    models.EntityAssignment,
		EntityID:      assignment.ID,
		AuditAction:   models.AuditAssigned,
		OldValue:      map[string]any{"status": oldStatus},
		NewValue: map[string]any{
			"status":        newStatus,
			"contractor_id": req.ContractorID,
			"department_id": req.DepartmentID,
			"agreed_cost":   req.AgreedCost,
		},
		Justification: req.Justification,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	return &assignment, nil
}

// SubmitBid records a contractor's proposal on a report. Not a privileged
// action: no justification, history entry only.
func (s *AssignmentService) SubmitBid(reportID uuid.UUID, actor *identity.Actor, req *dto.SubmitBidRequest) (*models.Bid, error) {
	if req.ProposedCost <= 0 {
		return nil, ErrInvalidCost
	}
	if req.EstimatedDays <= 0 {
		return nil, ErrInvalidEstimate
	}

	contractor, err := s.contractorForActor(actor)
	if err != nil {
		return nil, err
	}
	if contractor.IsBlocked {
		return nil, ErrContractorBlocked
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

	var existing int64
	s.db.Model(&models.Bid{}).
		Where("report_id = ? AND contractor_id = ? AND status = ?", reportID, contractor.ID, models.BidPending).
		Count(&existing)
	if existing > 0 {
		return nil, ErrDuplicateBid
	}

	bid := models.Bid{
		ReportID:      reportID,
		ContractorID:  contractor.ID,
		ProposedCost:  req.ProposedCost,
		EstimatedDays: req.EstimatedDays,
		Note:          req.Note,
		Status:        models.BidPending,
	}
	if err := s.db.Create(&bid).Error; err != nil {
		return nil, fmt.Errorf("create bid: %w", err)
	}

	s.rec.Record(trail.Fact{
		Actor:         actor,
		ReportID:      &reportID,
		HistoryAction: models.HistoryBidSubmitted,
		Description:   fmt.Sprintf("Bid submitted by %s", contractor.CompanyName),
		Metadata:      map[string]any{"bid_id": bid.ID, "proposed_cost": bid.ProposedCost},
	})

	return &bid, nil
}

// ListBids returns all bids on a report, pending first, cheapest first.
func (s *AssignmentService) ListBids(reportID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	if err := s.db.Where("report_id = ?", reportID).
		Order("status DESC, proposed_cost ASC").
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

// AcceptBid accepts one bid and rejects every sibling in a single
// transaction. The accept itself is guarded on PENDING, so of two
// concurrent accept attempts on the same report exactly one commits an
// ACCEPTED bid; the other gets a conflict.
func (s *AssignmentService) AcceptBid(reportID, bidID uuid.UUID, req *dto.AcceptBidRequest, actor *identity.Actor, meta RequestMeta) (*models.Assignment, error) {
	if !actor.Role.CanModerate() {
		return nil, ErrRoleNotAllowed
	}
	if err := validateJustification(req.Justification); err != nil {
		return nil, err
	}

	var bid models.Bid
	if err := s.db.First(&bid, "id = ?", bidID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("load bid: %w", err)
	}
	if bid.ReportID != reportID {
		return nil, ErrBidReportMismatch
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

	now := time.Now()
	deadline := req.Deadline
	if deadline == nil {
		d := now.Add(time.Duration(bid.EstimatedDays) * 24 * time.Hour)
		deadline = &d
	}

	oldStatus := report.Status
	newStatus := models.StatusAssigned
	contractorID := bid.ContractorID
	assignment := models.Assignment{
		ReportID:     reportID,
		ContractorID: &contractorID,
		AssignedByID: actor.ID,
		BidID:        &bid.ID,
		AgreedCost:   bid.ProposedCost,
		Deadline:     deadline,
		Status:       models.AssignmentAssigned,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		accept := tx.Model(&models.Bid{}).
			Where("id = ? AND status = ?", bidID, models.BidPending).
			Updates(map[string]interface{}{
				"status":        models.BidAccepted,
				"accepted_at":   now,
				"decided_by_id": actor.ID,
			})
		if accept.Error != nil {
			return accept.Error
		}
		if accept.RowsAffected == 0 {
			return ErrBidAlreadyDecided
		}

		if err := tx.Model(&models.Bid{}).
			Where("report_id = ? AND id <> ? AND status = ?", reportID, bidID, models.BidPending).
			Updates(map[string]interface{}{
				"status":        models.BidRejected,
				"rejected_at":   now,
				"decided_by_id": actor.ID,
			}).Error; err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.Assignment{}).
			Where("report_id = ? AND status IN ?", reportID, activeAssignmentStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveAssignmentExists
		}

		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}

		result := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", reportID, oldStatus).
			Update("status", newStatus)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rec.Record(trail.Fact{
		Actor:         actor,
		ReportID:      &reportID,
		HistoryAction: models.HistoryBidAssigned,
		Description:   "Winning bid accepted, report assigned",
		OldStatus:     &oldStatus,
		NewStatus:     &newStatus,
		Metadata:      map[string]any{"bid_id": bid.ID, "agreed_cost": bid.ProposedCost},
		EntityType:    models.EntityBid,
		EntityID:      bid.ID,
		AuditAction:   models.AuditBidAccepted,
		OldValue:      map[string]any{"status": models.BidPending},
		NewValue: map[string]any{
			"status":        models.BidAccepted,
			"assignment_id": assignment.ID,
			"agreed_cost":   bid.ProposedCost,
			"deadline":      deadline,
		},
		Justification: req.Justification,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	return &assignment, nil
}

// SubmitProof records contractor evidence that an assignment's work is done.
func (s *AssignmentService) SubmitProof(actor *identity.Actor, req *dto.SubmitProofRequest) (*models.CompletionProof, error) {
	contractor, err := s.contractorForActor(actor)
	if err != nil {
		return nil, err
	}

	var assignment models.Assignment
	if err := s.db.First(&assignment, "id = ?", req.AssignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	if assignment.ContractorID == nil || *assignment.ContractorID != contractor.ID {
		return nil, ErrNotOwner
	}
	if !assignment.Status.Active() {
		return nil, fmt.Errorf("%w: assignment is not active", ErrConflict)
	}

	proof := models.CompletionProof{
		AssignmentID: assignment.ID,
		ContractorID: contractor.ID,
		Notes:        req.Notes,
		ImageURL:     req.ImageURL,
		Status:       models.ProofPending,
	}
	if err := s.db.Create(&proof).Error; err != nil {
		return nil, fmt.Errorf("create proof: %w", err)
	}

	s.rec.Record(trail.Fact{
		Actor:         actor,
		ReportID:      &assignment.ReportID,
		HistoryAction: models.HistoryProofSubmitted,
		Description:   "Completion proof submitted for review",
		Metadata:      map[string]any{"proof_id": proof.ID, "assignment_id": assignment.ID},
	})

	return &proof, nil
}

// ReviewProof decides a pending proof. Approval is the only path that sets
// a report and its assignment to COMPLETED; rejection leaves both
// untouched so the contractor can resubmit.
func (s *AssignmentService) ReviewProof(proofID uuid.UUID, req *dto.ReviewProofRequest, actor *identity.Actor, meta RequestMeta) (*models.CompletionProof, error) {
	if !actor.Role.CanModerate() {
		return nil, ErrRoleNotAllowed
	}
	if err := validateJustification(req.Justification); err != nil {
		return nil, err
	}

	var proof models.CompletionProof
	if err := s.db.First(&proof, "id = ?", proofID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProofNotFound
		}
		return nil, fmt.Errorf("load proof: %w", err)
	}
	if proof.Status != models.ProofPending {
		return nil, ErrProofAlreadyReviewed
	}

	var assignment models.Assignment
	if err := s.db.First(&assignment, "id = ?", proof.AssignmentID).Error; err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}

	var report models.Report
	if err := s.db.First(&report, "id = ?", assignment.ReportID).Error; err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}

	now := time.Now()
	oldStatus := report.Status

	if !req.Approve {
		updates := map[string]interface{}{
			"status":       models.ProofRejected,
			"reviewer_id":  actor.ID,
			"reviewed_at":  now,
			"review_notes": req.Justification,
		}
		result := s.db.Model(&models.CompletionProof{}).
			Where("id = ? AND status = ?", proofID, models.ProofPending).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrProofAlreadyReviewed
		}

		s.rec.Record(trail.Fact{
			Actor:         actor,
			ReportID:      &assignment.ReportID,
			HistoryAction: models.HistoryProofReviewed,
			Description:   "Completion proof rejected, awaiting resubmission",
			EntityType:    models.EntityProof,
			EntityID:      proofID,
			AuditAction:   models.AuditProofRejected,
			OldValue:      map[string]any{"status": models.ProofPending},
			NewValue:      map[string]any{"status": models.ProofRejected},
			Justification: req.Justification,
			IPAddress:     meta.IPAddress,
			UserAgent:     meta.UserAgent,
		})

		if err := s.db.First(&proof, "id = ?", proofID).Error; err != nil {
			return nil, err
		}
		return &proof, nil
	}

	newStatus := models.StatusCompleted
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CompletionProof{}).
			Where("id = ? AND status = ?", proofID, models.ProofPending).
			Updates(map[string]interface{}{
				"status":       models.ProofApproved,
				"reviewer_id":  actor.ID,
				"reviewed_at":  now,
				"review_notes": req.Justification,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProofAlreadyReviewed
		}

		if err := tx.Model(&models.Assignment{}).
			Where("id = ?", assignment.ID).
			Updates(map[string]interface{}{
				"status":       models.AssignmentCompleted,
				"completed_at": now,
			}).Error; err != nil {
			return err
		}

		reportUpdates := map[string]interface{}{"status": newStatus}
		if report.CompletedAt == nil {
			reportUpdates["completed_at"] = now
		}
		upd := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", report.ID, oldStatus).
			Updates(reportUpdates)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		if assignment.ContractorID != nil {
			if err := tx.Model(&models.Contractor{}).
				Where("id = ?", *assignment.ContractorID).
				Update("completed_jobs", gorm.Expr("completed_jobs + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rec.Record(trail.Fact{
		Actor:         actor,
		ReportID:      &assignment.ReportID,
		HistoryAction: models.HistoryProofReviewed,
		Description:   "Completion proof approved, report completed",
		OldStatus:     &oldStatus,
		NewStatus:     &newStatus,
		EntityType:    models.EntityProof,
		EntityID:      proofID,
		AuditAction:   models.AuditProofApproved,
		OldValue:      map[string]any{"status": models.ProofPending, "report_status": oldStatus},
		NewValue:      map[string]any{"status": models.ProofApproved, "report_status": newStatus},
		Justification: req.Justification,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	if err := s.db.First(&proof, "id = ?", proofID).Error; err != nil {
		return nil, err
	}
	return &proof, nil
}

// SetContractorBlocked toggles a contractor's block flag. Blocking
// cascades: every active assignment is force-cancelled with a system
// reason, and the affected reports return to OPEN so they can be
// reassigned. The justification on the block covers the cascade.
func (s *AssignmentService) SetContractorBlocked(contractorID uuid.UUID, req *dto.BlockContractorRequest, actor *identity.Actor, meta RequestMeta) (*models.Contractor, error) {
	if !actor.Role.CanBlockContractors() {
		return nil, ErrRoleNotAllowed
	}
	if err := validateJustification(req.Justification); err != nil {
		return nil, err
	}

	var contractor models.Contractor
	if err := s.db.First(&contractor, "id = ?", contractorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractorNotFound
		}
		return nil, fmt.Errorf("load contractor: %w", err)
	}
	if contractor.IsBlocked == req.Blocked {
		return nil, ErrBlockStateUnchanged
	}

	now := time.Now()
	var cancelled []models.Assignment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"is_blocked": req.Blocked}
		if req.Blocked {
			updates["blocked_reason"] = req.Justification
			updates["blocked_at"] = now
			updates["blocked_by_id"] = actor.ID
		} else {
			updates["blocked_reason"] = ""
			updates["blocked_at"] = nil
			updates["blocked_by_id"] = nil
		}
		if err := tx.Model(&models.Contractor{}).
			Where("id = ?", contractorID).
			Updates(updates).Error; err != nil {
			return err
		}

		if !req.Blocked {
			return nil
		}

		if err := tx.Where("contractor_id = ? AND status IN ?", contractorID, activeAssignmentStatuses).
			Find(&cancelled).Error; err != nil {
			return err
		}

		reason := "contractor blocked: " + req.Justification
		for _, a := range cancelled {
			if err := tx.Model(&models.Assignment{}).
				Where("id = ?", a.ID).
				Updates(map[string]interface{}{
					"status":              models.AssignmentCancelled,
					"cancelled_at":        now,
					"cancellation_reason": reason,
				}).Error; err != nil {
				return err
			}

			// Reassignment requires the report back in the pool; leaving it
			// ASSIGNED would orphan it with no active assignment.
			if err := tx.Model(&models.Report{}).
				Where("id = ? AND status IN ?", a.ReportID,
					[]models.ReportStatus{models.StatusAssigned, models.StatusInProgress}).
				Update("status", models.StatusOpen).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := models.AuditBlocked
	if !req.Blocked {
		action = models.AuditUnblocked
	}
	s.rec.Record(trail.Fact{
		Actor:         actor,
		EntityType:    models.EntityContractor,
		EntityID:      contractorID,
		AuditAction:   action,
		OldValue:      map[string]any{"is_blocked": contractor.IsBlocked},
		NewValue:      map[string]any{"is_blocked": req.Blocked, "cancelled_assignments": len(cancelled)},
		Justification: req.Justification,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	for _, a := range cancelled {
		reportID := a.ReportID
		s.rec.Record(trail.Fact{
			Actor:         actor,
			IsSystem:      true,
			ReportID:      &reportID,
			HistoryAction: models.HistoryAssignCancelled,
			Description:   "Assignment cancelled: contractor blocked",
			Metadata:      map[string]any{"assignment_id": a.ID, "contractor_id": contractorID},
		})
	}

	if err := s.db.First(&contractor, "id = ?", contractorID).Error; err != nil {
		return nil, err
	}
	return &contractor, nil
}

// MyAssignments lists a contractor's own assignments, newest first.
func (s *AssignmentService) MyAssignments(actor *identity.Actor) ([]models.Assignment, error) {
	contractor, err := s.contractorForActor(actor)
	if err != nil {
		return nil, err
	}
	var assignments []models.Assignment
	if err := s.db.Where("contractor_id = ?", contractor.ID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *AssignmentService) contractorForActor(actor *identity.Actor) (*models.Contractor, error) {
	var contractor models.Contractor
	if err := s.db.First(&contractor, "user_id = ?", actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractorNotFound
		}
		return nil, fmt.Errorf("load contractor: %w", err)
	}
	return &contractor, nil
}
