// Package trail mirrors every mutating operation into the two append-only
// sinks: the citizen-facing report history timeline and the internal audit
// ledger. One Fact, recorded once, lands in both.
package trail

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/civicworks/civic-backend/internal/identity"
	"github.com/civicworks/civic-backend/internal/models"
)

// Fact is one recordable thing that happened. ReportID drives the history
// sink, EntityType drives the audit sink; a fact may feed either or both.
type Fact struct {
	Actor    *identity.Actor
	IsSystem bool

	// History sink (citizen-facing timeline).
	ReportID      *uuid.UUID
	HistoryAction string
	Description   string
	OldStatus     *models.ReportStatus
	NewStatus     *models.ReportStatus
	Metadata      map[string]any

	// Audit sink (internal ledger).
	EntityType  string
	EntityID    uuid.UUID
	AuditAction string
	OldValue    any
	NewValue    any

	Justification string
	IPAddress     string
	UserAgent     string
}

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record writes both trail entries in one transaction, after the primary
// entity mutation has already committed. A failure here is surfaced to the
// observability channel (slog ERROR, which the Postgres sink persists, plus
// Sentry) and deliberately NOT returned: the user-visible outcome of the
// primary action must not depend on audit-trail availability. Availability
// is weighted over audit completeness here; the gap stays visible in the
// error channel rather than failing the citizen's request.
func (r *Recorder) Record(f Fact) {
	if err := r.RecordIn(r.db, f); err != nil {
		slog.Error("trail write failed",
			"action", f.HistoryAction,
			"audit_action", f.AuditAction,
			"entity_type", f.EntityType,
			"error", err.Error())
		sentry.CaptureException(fmt.Errorf("trail write failed: %w", err))
	}
}

// RecordIn writes the fact inside the given transaction handle. Callers
// that need the trail to commit or roll back with the primary mutation use
// this form directly.
func (r *Recorder) RecordIn(tx *gorm.DB, f Fact) error {
	return tx.Transaction(func(tx *gorm.DB) error {
		if f.ReportID != nil {
			entry := models.ReportHistoryEntry{
				ReportID:      *f.ReportID,
				Action:        f.HistoryAction,
				OldStatus:     f.OldStatus,
				NewStatus:     f.NewStatus,
				Description:   f.Description,
				Justification: f.Justification,
				IsSystem:      f.IsSystem,
			}
			if f.Actor != nil {
				id := f.Actor.ID
				entry.ActorID = &id
			}
			if len(f.Metadata) > 0 {
				entry.Metadata = mustJSON(f.Metadata)
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("history entry: %w", err)
			}
		}

		if f.EntityType != "" {
			if f.Actor == nil {
				return fmt.Errorf("audit entry for %s requires an actor", f.EntityType)
			}
			entry := models.AuditLogEntry{
				ActorID:       f.Actor.ID,
				ActorRole:     string(f.Actor.Role),
				EntityType:    f.EntityType,
				EntityID:      f.EntityID,
				ActionType:    f.AuditAction,
				Justification: f.Justification,
				OldValue:      mustJSON(f.OldValue),
				NewValue:      mustJSON(f.NewValue),
				IPAddress:     f.IPAddress,
				UserAgent:     f.UserAgent,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("audit entry: %w", err)
			}
		}

		return nil
	})
}

func mustJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
