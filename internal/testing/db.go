// Package testing provides test helpers shared across packages.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/aristath/shiftplan/internal/database"
	"github.com/aristath/shiftplan/internal/modules/input"
)

// NewTestDB creates a temporary file-backed SQLite database with the named
// embedded schema applied (e.g. "roster"). The database is closed and removed
// when the test ends.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(tmpPath + suffix)
		}
	})
	return db
}

// NewTeamDocument returns a small valid document: one Senior, one Junior and a Mid,
// scheduled for January 2024 with one deploy and one recurring deploy.
func NewTeamDocument() *input.Document {
	return &input.Document{
		Developers: []input.DeveloperRecord{
			{DeveloperID: input.IntPtr(1), Name: "Ana", Level: "Senior", CostPerHour: input.FloatPtr(100)},
			{DeveloperID: input.IntPtr(2), Name: "Bruno", Level: "Junior", CostPerHour: input.FloatPtr(50)},
			{DeveloperID: input.IntPtr(3), Name: "Carla", Level: "Mid", CostPerHour: input.FloatPtr(80)},
		},
		WeeklyConstraints: []input.WeeklyConstraintRecord{
			{DeveloperID: input.IntPtr(1), MinimumWeeklyHours: input.IntPtr(0), MaximumWeeklyHours: input.IntPtr(168)},
			{DeveloperID: input.IntPtr(2), MinimumWeeklyHours: input.IntPtr(0), MaximumWeeklyHours: input.IntPtr(40)},
			{DeveloperID: input.IntPtr(3), MinimumWeeklyHours: input.IntPtr(0), MaximumWeeklyHours: input.IntPtr(60)},
		},
		ConstraintsRules: &input.RulesRecord{
			OnCallRateMultiplier:                input.FloatPtr(1.5),
			OvertimeRateMultiplier:              input.FloatPtr(2),
			MinimumMidOrSeniorDuringActiveHours: input.IntPtr(1),
		},
		AdditionalConstraints: &input.AdditionalRecord{WeekendRequiredHeadcount: input.IntPtr(1)},
		Deploys:               []input.DeployRecord{{Date: "2024-01-10", Time: "14:00"}},
		DeploySchedules:       []input.DeployScheduleRecord{{Cron: "0 22 * * FRI", Description: "release train"}},
		SchedulingPeriod:      &input.PeriodRecord{Month: "2024-01"},
	}
}
