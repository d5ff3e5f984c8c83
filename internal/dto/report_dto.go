package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/civicworks/civic-backend/internal/models"
)

type CreateReportRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Address     string    `json:"address"`
	ImageURL    string    `json:"image_url"`
	Severity    int       `json:"severity"`
	WardID      uuid.UUID `json:"ward_id"`
}

type UpdateReportRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Severity    *int    `json:"severity"`
	Address     *string `json:"address"`
	ImageURL    *string `json:"image_url"`
}

// BidStats summarizes the bidding state on a report for admin views.
type BidStats struct {
	Total       int64   `json:"total"`
	Pending     int64   `json:"pending"`
	LowestCost  float64 `json:"lowest_cost,omitempty"`
	HighestCost float64 `json:"highest_cost,omitempty"`
}

// ReportResponse is a report plus its derived, never-persisted metrics.
type ReportResponse struct {
	models.Report
	Priority int       `json:"priority"`
	Urgency  int       `json:"urgency"`
	DaysOpen int       `json:"days_open"`
	BidStats *BidStats `json:"bid_stats,omitempty"`
}

type ReportListResponse struct {
	Reports []ReportResponse `json:"reports"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

type TimelineResponse struct {
	Entries []models.ReportHistoryEntry `json:"entries"`
}

type ReportFilter struct {
	WardID   *uuid.UUID
	Status   models.ReportStatus
	Category string
	Page     int
	Limit    int
}

type AuditLogFilter struct {
	EntityType string
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
	Page       int
	Limit      int
}

type AuditLogResponse struct {
	Entries []models.AuditLogEntry `json:"entries"`
	Total   int64                  `json:"total"`
	Page    int                    `json:"page"`
	Limit   int                    `json:"limit"`
}

type AssignmentResponse struct {
	models.Assignment
	DeadlineMissed bool `json:"deadline_missed"`
}

func NewAssignmentResponse(a models.Assignment, now time.Time) AssignmentResponse {
	missed := a.Deadline != nil && a.Status.Active() && now.After(*a.Deadline)
	return AssignmentResponse{Assignment: a, DeadlineMissed: missed}
}
