package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicworks/civic-backend/internal/models"
)

func TestTransitionHappyPath(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)
	mod := moderatorActor()

	updated, err := svc.Transition(report.ID, models.StatusValidated, just, mod, RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusValidated, updated.Status)

	entries := historyEntries(t, db, report.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.HistoryStatusChanged, entries[0].Action)
	require.NotNil(t, entries[0].OldStatus)
	require.NotNil(t, entries[0].NewStatus)
	assert.Equal(t, models.StatusOpen, *entries[0].OldStatus)
	assert.Equal(t, models.StatusValidated, *entries[0].NewStatus)
	assert.Equal(t, just, entries[0].Justification)

	audits := auditEntries(t, db, models.EntityReport, report.ID)
	require.Len(t, audits, 1)
	assert.Equal(t, models.AuditStatusChanged, audits[0].ActionType)
	assert.Equal(t, mod.ID, audits[0].ActorID)
	assert.Equal(t, "MODERATOR", audits[0].ActorRole)
	assert.Equal(t, "10.0.0.1", audits[0].IPAddress)
}

func TestTransitionRoundTripHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)
	mod := moderatorActor()

	_, err := svc.Transition(report.ID, models.StatusValidated, just, mod, RequestMeta{})
	require.NoError(t, err)
	_, err = svc.Transition(report.ID, models.StatusOpen, just, mod, RequestMeta{})
	require.NoError(t, err)

	// A status round trip leaves two history rows, newest first.
	entries := historyEntries(t, db, report.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, models.StatusOpen, *entries[0].NewStatus)
	assert.Equal(t, models.StatusValidated, *entries[1].NewStatus)
}

func TestTransitionJustificationRequired(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)

	_, err := svc.Transition(report.ID, models.StatusValidated, "too short", moderatorActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrJustificationTooShort)
	assert.ErrorIs(t, err, ErrValidation)

	// Whitespace padding does not satisfy the minimum.
	_, err = svc.Transition(report.ID, models.StatusValidated, "   short      ", moderatorActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrJustificationTooShort)

	// Nothing was written anywhere.
	assert.Empty(t, historyEntries(t, db, report.ID))
	var reloaded models.Report
	require.NoError(t, db.First(&reloaded, "id = ?", report.ID).Error)
	assert.Equal(t, models.StatusOpen, reloaded.Status)

	// Exactly ten characters clears the threshold.
	updated, err := svc.Transition(report.ID, models.StatusValidated, "0123456789", moderatorActor(), RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusValidated, updated.Status)
}

func TestTransitionRoleGate(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)

	_, err := svc.Transition(report.ID, models.StatusValidated, just, citizenActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Transition(report.ID, models.StatusValidated, just, contractorActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTransitionUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusOpen)

	_, err := svc.Transition(report.ID, models.ReportStatus("FIXED"), just, moderatorActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransitionTerminalStatesAreFinal(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, testRecorder(db))
	ward := createWard(t, db)

	for _, terminal := range []models.ReportStatus{
		models.StatusClosed, models.StatusRejected,
		models.StatusAutoClosed, models.StatusVerified,
	} {
		report := createReport(t, db, ward.ID, uuid.New(), terminal)
		_, err := svc.Transition(report.ID, models.StatusOpen, just, adminActor(), RequestMeta{})
		assert.ErrorIs(t, err, ErrTerminalStatus, "status %s", terminal)
		assert.ErrorIs(t, err, ErrConflict)
	}
}

func TestTransitionCompletedOnlyViaProof(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusInProgress)

	_, err := svc.Transition(report.ID, models.StatusCompleted, just, adminActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrCompletionViaProofOnly)
}

func TestTransitionAssignedRequiresActiveAssignment(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusValidated)

	_, err := svc.Transition(report.ID, models.StatusAssigned, just, adminActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrAssignmentRequired)

	// With an active assignment on record the same transition goes through.
	contractor := createContractor(t, db, uuid.New())
	require.NoError(t, db.Create(&models.Assignment{
		ReportID:     report.ID,
		ContractorID: &contractor.ID,
		AssignedByID: uuid.New(),
		Status:       models.AssignmentAssigned,
	}).Error)

	updated, err := svc.Transition(report.ID, models.StatusAssigned, just, adminActor(), RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, updated.Status)
}

func TestTransitionClosedSetsClosedAtOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, testRecorder(db))
	ward := createWard(t, db)
	report := createReport(t, db, ward.ID, uuid.New(), models.StatusPendingCitizenReview)

	updated, err := svc.Transition(report.ID, models.StatusClosed, just, adminActor(), RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, updated.Status)
	assert.NotNil(t, updated.ClosedAt)
}

func TestTransitionReportNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, testRecorder(db))

	_, err := svc.Transition(uuid.New(), models.StatusValidated, just, adminActor(), RequestMeta{})
	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}
