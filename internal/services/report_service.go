package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicworks/civic-backend/internal/cache"
	"github.com/civicworks/civic-backend/internal/dto"
	"github.com/civicworks/civic-backend/internal/identity"
	"github.com/civicworks/civic-backend/internal/models"
	"github.com/civicworks/civic-backend/internal/scoring"
	"github.com/civicworks/civic-backend/internal/trail"
)

// ReportService handles citizen-facing report operations: create, edit and
// delete (both OPEN-only), engagement, and score-annotated listings.
type ReportService struct {
	db    *gorm.DB
	rec   *trail.Recorder
	cache *cache.ListingCache
}

func NewReportService(db *gorm.DB, rec *trail.Recorder, c *cache.ListingCache) *ReportService {
	return &ReportService{db: db, rec: rec, cache: c}
}

func (s *ReportService) Create(actor *identity.Actor, req *dto.CreateReportRequest) (*models.Report, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrDescriptionRequired
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return nil, ErrInvalidLatitude
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return nil, ErrInvalidLongitude
	}
	severity := req.Severity
	if severity == 0 {
		severity = 3
	}
	if severity < 1 || severity > 5 {
		return nil, ErrInvalidSeverity
	}

	var ward models.Ward
	if err := s.db.First(&ward, "id = ?", req.WardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWardNotFound
		}
		return nil, fmt.Errorf("load ward: %w", err)
	}

	category := strings.ToUpper(strings.TrimSpace(req.Category))
	if category == "" {
		category = "OTHER"
	}

	report := models.Report{
		ReporterID:  actor.ID,
		WardID:      req.WardID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    category,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		ImageURL:    req.ImageURL,
		Severity:    severity,
		Status:      models.StatusOpen,
	}

	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.rec.Record(trail.Fact{
		Actor:         actor,
		ReportID:      &report.ID,
		HistoryAction: models.HistoryReportCreated,
		Description:   "Report filed",
	})

	s.cache.InvalidateWard(context.Background(), req.WardID.String())
	return &report, nil
}

// Update applies citizen edits. Only the owner may edit, and only while
// the report is still OPEN; any other status freezes it.
func (s *ReportService) Update(reportID uuid.UUID, actor *identity.Actor, req *dto.UpdateReportRequest) (*models.Report, error) {
	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("load report: %w", err)
	}
	if report.ReporterID != actor.ID {
		return nil, ErrNotOwner
	}
	if !report.Editable() {
		return nil, ErrReportNotEditable
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return nil, ErrTitleRequired
		}
		updates["title"] = trimmed
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, ErrDescriptionRequired
		}
		updates["description"] = *req.Description
	}
	if req.Severity != nil {
		if *req.Severity < 1 || *req.Severity > 5 {
			return nil, ErrInvalidSeverity
		}
		updates["severity"] = *req.Severity
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	if len(updates) == 0 {
		return &report, nil
	}

	result := s.db.Model(&models.Report{}).
		Where("id = ? AND status = ?", reportID, models.StatusOpen).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrReportNotEditable
	}

	s.rec.Record(trail.Fact{
		Actor:         actor,
		ReportID:      &reportID,
		HistoryAction: models.HistoryReportUpdated,
		Description:   "Report details updated by reporter",
	})

	s.cache.InvalidateWard(context.Background(), report.WardID.String())
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// Delete soft-deletes a report. Owners and moderators alike may only do
// this while the report is OPEN; once it has entered the workflow it is
// part of the public record.
func (s *ReportService) Delete(reportID uuid.UUID, actor *identity.Actor) error {
	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("load report: %w", err)
	}

	isOwner := report.ReporterID == actor.ID
	if !isOwner && !actor.Role.CanModerate() {
		return ErrNotOwner
	}
	if report.Status != models.StatusOpen {
		return ErrReportNotDeletable
	}

	result := s.db.Where("id = ? AND status = ?", reportID, models.StatusOpen).
		Delete(&models.Report{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReportNotDeletable
	}

	if !isOwner {
		s.rec.Record(trail.Fact{
			Actor:       actor,
			EntityType:  models.EntityReport,
			EntityID:    reportID,
			AuditAction: models.AuditReportDeleted,
			OldValue:    map[string]any{"status": report.Status, "title": report.Title},
		})
	}

	s.cache.InvalidateWard(context.Background(), report.WardID.String())
	return nil
}

// Get returns one report with its derived metrics and bid statistics.
func (s *ReportService) Get(reportID uuid.UUID) (*dto.ReportResponse, error) {
	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("load report: %w", err)
	}

	resp := s.annotate(report, time.Now())

	var stats dto.BidStats
	s.db.Model(&models.Bid{}).Where("report_id = ?", reportID).Count(&stats.Total)
	if stats.Total > 0 {
		s.db.Model(&models.Bid{}).
			Where("report_id = ? AND status = ?", reportID, models.BidPending).
			Count(&stats.Pending)
		row := s.db.Model(&models.Bid{}).
			Select("MIN(proposed_cost), MAX(proposed_cost)").
			Where("report_id = ?", reportID).Row()
		_ = row.Scan(&stats.LowestCost, &stats.HighestCost)
	}
	resp.BidStats = &stats

	return &resp, nil
}

// Timeline returns the report's history, newest first.
func (s *ReportService) Timeline(reportID uuid.UUID) ([]models.ReportHistoryEntry, error) {
	var count int64
	s.db.Model(&models.Report{}).Where("id = ?", reportID).Count(&count)
	if count == 0 {
		return nil, ErrReportNotFound
	}

	var entries []models.ReportHistoryEntry
	if err := s.db.Where("report_id = ?", reportID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// List returns filtered reports annotated with derived scores.
func (s *ReportService) List(filter *dto.ReportFilter) (*dto.ReportListResponse, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	query := s.db.Model(&models.Report{}).Where("is_hidden = false")
	if filter.WardID != nil {
		query = query.Where("ward_id = ?", *filter.WardID)
	}
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", strings.ToUpper(filter.Category))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&reports).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	resp := &dto.ReportListResponse{
		Reports: make([]dto.ReportResponse, len(reports)),
		Total:   total,
		Page:    page,
		Limit:   limit,
	}
	for i, r := range reports {
		resp.Reports[i] = s.annotate(r, now)
	}
	return resp, nil
}

// ListByWard is the urgency-ordered ward view, served from the listing
// cache when warm. Scores are derived on read, so the short TTL plus
// invalidation on mutation keeps them honest.
func (s *ReportService) ListByWard(wardID uuid.UUID, page, limit int) (*dto.ReportListResponse, error) {
	page, limit = normalizePage(page, limit)
	ctx := context.Background()
	key := cache.WardKey(wardID.String(), page, limit)

	if b, ok := s.cache.Get(ctx, key); ok {
		var cached dto.ReportListResponse
		if err := json.Unmarshal(b, &cached); err == nil {
			return &cached, nil
		}
	}

	var count int64
	s.db.Model(&models.Ward{}).Where("id = ?", wardID).Count(&count)
	if count == 0 {
		return nil, ErrWardNotFound
	}

	filter := &dto.ReportFilter{WardID: &wardID, Page: page, Limit: limit}
	resp, err := s.List(filter)
	if err != nil {
		return nil, err
	}

	// Urgency ordering is a presentation concern over the current page.
	for i := 0; i < len(resp.Reports); i++ {
		for j := i + 1; j < len(resp.Reports); j++ {
			if resp.Reports[j].Urgency > resp.Reports[i].Urgency {
				resp.Reports[i], resp.Reports[j] = resp.Reports[j], resp.Reports[i]
			}
		}
	}

	if b, err := json.Marshal(resp); err == nil {
		s.cache.Set(ctx, key, b)
	}
	return resp, nil
}

// MyReports lists the actor's own reports, newest first.
func (s *ReportService) MyReports(actor *identity.Actor) ([]dto.ReportResponse, error) {
	var reports []models.Report
	if err := s.db.Where("reporter_id = ?", actor.ID).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]dto.ReportResponse, len(reports))
	for i, r := range reports {
		out[i] = s.annotate(r, now)
	}
	return out, nil
}

// Upvote adds one vote per citizen per report. The unique pair constraint
// plus the pre-check make a second vote a conflict with no double count.
func (s *ReportService) Upvote(reportID uuid.UUID, actor *identity.Actor) error {
	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("load report: %w", err)
	}

	var existing int64
	s.db.Model(&models.Upvote{}).
		Where("report_id = ? AND user_id = ?", reportID, actor.ID).
		Count(&existing)
	if existing > 0 {
		return ErrAlreadyUpvoted
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		vote := models.Upvote{ReportID: reportID, UserID: actor.ID}
		if err := tx.Create(&vote).Error; err != nil {
			return ErrAlreadyUpvoted
		}
		return tx.Model(&models.Report{}).
			Where("id = ?", reportID).
			Update("upvote_count", gorm.Expr("upvote_count + 1")).Error
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateWard(context.Background(), report.WardID.String())
	return nil
}

func (s *ReportService) Subscribe(reportID uuid.UUID, actor *identity.Actor) error {
	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("load report: %w", err)
	}

	var existing int64
	s.db.Model(&models.Subscription{}).
		Where("report_id = ? AND user_id = ?", reportID, actor.ID).
		Count(&existing)
	if existing > 0 {
		return ErrAlreadySubscribed
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		sub := models.Subscription{ReportID: reportID, UserID: actor.ID}
		if err := tx.Create(&sub).Error; err != nil {
			return ErrAlreadySubscribed
		}
		return tx.Model(&models.Report{}).
			Where("id = ?", reportID).
			Update("subscriber_count", gorm.Expr("subscriber_count + 1")).Error
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateWard(context.Background(), report.WardID.String())
	return nil
}

func (s *ReportService) Unsubscribe(reportID uuid.UUID, actor *identity.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("report_id = ? AND user_id = ?", reportID, actor.ID).
			Delete(&models.Subscription{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotSubscribed
		}
		return tx.Model(&models.Report{}).
			Where("id = ? AND subscriber_count > 0", reportID).
			Update("subscriber_count", gorm.Expr("subscriber_count - 1")).Error
	})
}

// AuditLog lists audit ledger entries for admin review, newest first.
func (s *ReportService) AuditLog(filter *dto.AuditLogFilter) (*dto.AuditLogResponse, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	query := s.db.Model(&models.AuditLogEntry{})
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []models.AuditLogEntry
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return &dto.AuditLogResponse{
		Entries: entries,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

func (s *ReportService) annotate(r models.Report, now time.Time) dto.ReportResponse {
	return dto.ReportResponse{
		Report:   r,
		Priority: scoring.Priority(r.Severity, r.UpvoteCount, r.SubscriberCount),
		Urgency:  scoring.Urgency(r.Severity, r.Status, r.UpvoteCount, r.CreatedAt, now),
		DaysOpen: scoring.DaysOpen(r.CreatedAt, now),
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
