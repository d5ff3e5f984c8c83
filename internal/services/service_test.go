package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/civicworks/civic-backend/internal/database"
	"github.com/civicworks/civic-backend/internal/identity"
	"github.com/civicworks/civic-backend/internal/models"
	"github.com/civicworks/civic-backend/internal/trail"
)

// newTestDB opens a private in-memory database with the production schema.
// The named shared-cache DSN keeps GORM's pooled connections on the same
// database while isolating tests from each other.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

func testRecorder(db *gorm.DB) *trail.Recorder {
	return trail.NewRecorder(db)
}

func citizenActor() *identity.Actor {
	return &identity.Actor{ID: uuid.New(), Role: identity.RoleCitizen, Email: "citizen@example.com"}
}

func moderatorActor() *identity.Actor {
	return &identity.Actor{ID: uuid.New(), Role: identity.RoleModerator, Email: "mod@example.com"}
}

func adminActor() *identity.Actor {
	return &identity.Actor{ID: uuid.New(), Role: identity.RoleAdmin, Email: "admin@example.com"}
}

func contractorActor() *identity.Actor {
	return &identity.Actor{ID: uuid.New(), Role: identity.RoleContractor, Email: "crew@example.com"}
}

func createWard(t *testing.T, db *gorm.DB) *models.Ward {
	t.Helper()
	ward := models.Ward{Name: "Ward 12", City: "Riverton"}
	require.NoError(t, db.Create(&ward).Error)
	return &ward
}

func createReport(t *testing.T, db *gorm.DB, wardID, reporterID uuid.UUID, status models.ReportStatus) *models.Report {
	t.Helper()
	report := models.Report{
		ReporterID:  reporterID,
		WardID:      wardID,
		Title:       "Broken streetlight on Elm",
		Description: "Pole 14 has been dark for a week",
		Category:    "STREETLIGHT",
		Severity:    3,
		Status:      status,
	}
	require.NoError(t, db.Create(&report).Error)
	return &report
}

func createContractor(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Contractor {
	t.Helper()
	contractor := models.Contractor{
		UserID:      &userID,
		CompanyName: "Northside Works",
		Email:       "dispatch@northside.example",
	}
	require.NoError(t, db.Create(&contractor).Error)
	return &contractor
}

func historyEntries(t *testing.T, db *gorm.DB, reportID uuid.UUID) []models.ReportHistoryEntry {
	t.Helper()
	var entries []models.ReportHistoryEntry
	require.NoError(t, db.Where("report_id = ?", reportID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error)
	return entries
}

func auditEntries(t *testing.T, db *gorm.DB, entityType string, entityID uuid.UUID) []models.AuditLogEntry {
	t.Helper()
	var entries []models.AuditLogEntry
	require.NoError(t, db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Find(&entries).Error)
	return entries
}

// just is a justification that clears the minimum length everywhere.
const just = "verified on site by inspection team"
