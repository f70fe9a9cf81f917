package roster

import (
	"context"
	"testing"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/aristath/shiftplan/internal/modules/input"
	testingpkg "github.com/aristath/shiftplan/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SeedAndLoad(t *testing.T) {
	db := testingpkg.NewTestDB(t, "roster")
	repo := NewRepository(db, zerolog.Nop())
	ctx := context.Background()

	doc := testingpkg.NewTeamDocument()
	require.NoError(t, repo.Seed(ctx, doc))

	loaded, err := repo.LoadDocument(ctx, "2024-01")
	require.NoError(t, err)

	assert.Equal(t, doc, loaded)

	team, err := loaded.ToTeam(zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, team.Developers, 3)
	assert.Len(t, team.Deploys, 2)
}

func TestRepository_SeedNormalizesLevels(t *testing.T) {
	db := testingpkg.NewTestDB(t, "roster")
	repo := NewRepository(db, zerolog.Nop())
	ctx := context.Background()

	doc := testingpkg.NewTeamDocument()
	doc.Developers[0].Level = "Sênior"
	doc.Developers[2].Level = "pleno"
	require.NoError(t, repo.Seed(ctx, doc))

	loaded, err := repo.LoadDocument(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "Senior", loaded.Developers[0].Level)
	assert.Equal(t, "Mid", loaded.Developers[2].Level)
}

func TestRepository_ReseedReplacesMonthData(t *testing.T) {
	db := testingpkg.NewTestDB(t, "roster")
	repo := NewRepository(db, zerolog.Nop())
	ctx := context.Background()

	doc := testingpkg.NewTeamDocument()
	require.NoError(t, repo.Seed(ctx, doc))

	doc.Deploys = nil
	doc.DeploySchedules = nil
	doc.ConstraintsRules.OvertimeRateMultiplier = nil
	*doc.Developers[1].CostPerHour = 55
	require.NoError(t, repo.Seed(ctx, doc))

	loaded, err := repo.LoadDocument(ctx, "2024-01")
	require.NoError(t, err)
	assert.Empty(t, loaded.Deploys)
	assert.Empty(t, loaded.DeploySchedules)
	assert.Nil(t, loaded.ConstraintsRules.OvertimeRateMultiplier)
	assert.Equal(t, 55.0, *loaded.Developers[1].CostPerHour)
}

func TestRepository_MonthsAreIndependent(t *testing.T) {
	db := testingpkg.NewTestDB(t, "roster")
	repo := NewRepository(db, zerolog.Nop())
	ctx := context.Background()

	jan := testingpkg.NewTeamDocument()
	require.NoError(t, repo.Seed(ctx, jan))

	feb := testingpkg.NewTeamDocument()
	feb.SchedulingPeriod.Month = "2024-02"
	feb.Deploys = []input.DeployRecord{{Date: "2024-02-14", Time: "09:00"}}
	feb.DeploySchedules = nil
	require.NoError(t, repo.Seed(ctx, feb))

	loadedJan, err := repo.LoadDocument(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", loadedJan.Deploys[0].Date)
	assert.Len(t, loadedJan.DeploySchedules, 1)

	loadedFeb, err := repo.LoadDocument(ctx, "2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-14", loadedFeb.Deploys[0].Date)
	assert.Empty(t, loadedFeb.DeploySchedules)
}

func TestRepository_LoadErrors(t *testing.T) {
	db := testingpkg.NewTestDB(t, "roster")
	repo := NewRepository(db, zerolog.Nop())
	ctx := context.Background()

	_, err := repo.LoadDocument(ctx, "2024-1")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = repo.LoadDocument(ctx, "2024-03")
	assert.ErrorIs(t, err, ErrNoPolicy)
}

func TestRepository_SeedRejectsInvalidDocument(t *testing.T) {
	db := testingpkg.NewTestDB(t, "roster")
	repo := NewRepository(db, zerolog.Nop())

	doc := testingpkg.NewTeamDocument()
	doc.WeeklyConstraints = doc.WeeklyConstraints[:2]

	err := repo.Seed(context.Background(), doc)
	assert.ErrorIs(t, err, domain.ErrMissingConstraint)
}

func TestRepository_Deactivate(t *testing.T) {
	db := testingpkg.NewTestDB(t, "roster")
	repo := NewRepository(db, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx, testingpkg.NewTeamDocument()))
	require.NoError(t, repo.Deactivate(ctx, 3))

	loaded, err := repo.LoadDocument(ctx, "2024-01")
	require.NoError(t, err)
	assert.Len(t, loaded.Developers, 2)
	assert.Len(t, loaded.WeeklyConstraints, 2)

	assert.ErrorIs(t, repo.Deactivate(ctx, 42), domain.ErrUnknownDeveloper)
}
