package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicworks/civic-backend/internal/dto"
	"github.com/civicworks/civic-backend/internal/models"
)

func TestModerateFlagActions(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, testRecorder(db))
	ward := createWard(t, db)
	mod := moderatorActor()

	tests := []struct {
		action string
		check  func(t *testing.T, r *models.Report)
	}{
		{models.ModerationFlagSpam, func(t *testing.T, r *models.Report) { assert.True(t, r.IsSpam) }},
		{models.ModerationMarkSensitive, func(t *testing.T, r *models.Report) { assert.True(t, r.IsSensitive) }},
		{models.ModerationHide, func(t *testing.T, r *models.Report) { assert.True(t, r.IsHidden) }},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)
			updated, err := svc.Moderate(report.ID, &dto.ModerateRequest{
				Action:        tt.action,
				Justification: just,
			}, mod, RequestMeta{})
			require.NoError(t, err)
			tt.check(t, updated)

			// Flag actions do not change lifecycle status.
			assert.Equal(t, models.StatusOpen, updated.Status)

			var action models.ModeratorAction
			require.NoError(t, db.First(&action, "report_id = ?", report.ID).Error)
			assert.Equal(t, tt.action, action.Action)
			assert.Equal(t, mod.ID, action.ModeratorID)
		})
	}
}

func TestModerateApproveClearsSpamAndHidden(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)
	require.NoError(t, db.Model(report).Updates(map[string]interface{}{
		"is_spam": true, "is_hidden": true, "is_sensitive": true,
	}).Error)

	updated, err := svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        models.ModerationApprove,
		Justification: just,
	}, moderatorActor(), RequestMeta{})
	require.NoError(t, err)
	assert.False(t, updated.IsSpam)
	assert.False(t, updated.IsHidden)
	// APPROVE does not touch the sensitive flag; that needs UNFLAG.
	assert.True(t, updated.IsSensitive)
}

func TestModerateEscalateCapsSeverity(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)
	mod := moderatorActor()

	updated, err := svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        models.ModerationEscalate,
		Justification: just,
	}, mod, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Severity)

	// Escalating past the ceiling pins at 5.
	for i := 0; i < 3; i++ {
		updated, err = svc.Moderate(report.ID, &dto.ModerateRequest{
			Action:        models.ModerationEscalate,
			Justification: just,
		}, mod, RequestMeta{})
		require.NoError(t, err)
	}
	assert.Equal(t, 5, updated.Severity)
}

func TestModerateReject(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)

	updated, err := svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        models.ModerationReject,
		Justification: just,
	}, moderatorActor(), RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)

	// REJECTED is terminal: a second status-changing action bounces.
	_, err = svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        models.ModerationReject,
		Justification: just,
	}, moderatorActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrTerminalStatus)
}

func TestModerateMarkDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, testRecorder(db))
	ward := createWard(t, db)
	canonical := createReport(t, db, ward.ID, uuid.New(), models.StatusValidated)
	dupe := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)
	mod := moderatorActor()

	updated, err := svc.Moderate(dupe.ID, &dto.ModerateRequest{
		Action:        models.ModerationMarkDuplicate,
		Justification: just,
		DuplicateOfID: &canonical.ID,
	}, mod, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDuplicate, updated.Status)
	assert.True(t, updated.IsDuplicate)
	require.NotNil(t, updated.DuplicateOfID)
	assert.Equal(t, canonical.ID, *updated.DuplicateOfID)

	var reloaded models.Report
	require.NoError(t, db.First(&reloaded, "id = ?", canonical.ID).Error)
	assert.Equal(t, 1, reloaded.DuplicateCount)
}

func TestModerateMarkDuplicateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, testRecorder(db))
	ward := createWard(t, db)
	mod := moderatorActor()

	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)

	_, err := svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        models.ModerationMarkDuplicate,
		Justification: just,
	}, mod, RequestMeta{})
	assert.ErrorIs(t, err, ErrDuplicateRefRequired)

	_, err = svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        models.ModerationMarkDuplicate,
		Justification: just,
		DuplicateOfID: &report.ID,
	}, mod, RequestMeta{})
	assert.ErrorIs(t, err, ErrDuplicateSelf)

	// No chains: the canonical target must itself be canonical.
	canonical := createReport(t, db, ward.ID, uuid.New(), models.StatusValidated)
	middle := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)
	_, err = svc.Moderate(middle.ID, &dto.ModerateRequest{
		Action:        models.ModerationMarkDuplicate,
		Justification: just,
		DuplicateOfID: &canonical.ID,
	}, mod, RequestMeta{})
	require.NoError(t, err)

	_, err = svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        models.ModerationMarkDuplicate,
		Justification: just,
		DuplicateOfID: &middle.ID,
	}, mod, RequestMeta{})
	assert.ErrorIs(t, err, ErrDuplicateOfDuplicate)
}

func TestModerateUnknownAction(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)

	_, err := svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        "BAN_REPORTER",
		Justification: just,
	}, moderatorActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrInvalidModeration)
}

func TestModerateRoleAndJustificationGates(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)

	_, err := svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        models.ModerationFlagSpam,
		Justification: just,
	}, citizenActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        models.ModerationFlagSpam,
		Justification: "short",
	}, moderatorActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrJustificationTooShort)
}

func TestModerateRecordsTrails(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)
	mod := moderatorActor()

	_, err := svc.Moderate(report.ID, &dto.ModerateRequest{
		Action:        models.ModerationHide,
		Justification: just,
	}, mod, RequestMeta{UserAgent: "ops-console/2.1"})
	require.NoError(t, err)

	entries := historyEntries(t, db, report.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.HistoryModerated, entries[0].Action)

	audits := auditEntries(t, db, models.EntityReport, report.ID)
	require.Len(t, audits, 1)
	assert.Equal(t, models.AuditModerated, audits[0].ActionType)
	assert.Equal(t, "ops-console/2.1", audits[0].UserAgent)
	assert.NotEmpty(t, audits[0].OldValue)
	assert.NotEmpty(t, audits[0].NewValue)
}
