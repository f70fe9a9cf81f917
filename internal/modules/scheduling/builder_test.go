package scheduling

import (
	"errors"
	"testing"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/aristath/shiftplan/internal/modules/optimization"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, team *domain.Team) *Model {
	t.Helper()
	model, err := NewModelBuilder(zerolog.Nop()).Build(team.Developers, team.WeeklyConstraints, team.Rates, team.Deploys)
	require.NoError(t, err)
	return model
}

func termNames(r optimization.Row) []string {
	names := make([]string, 0, len(r.Terms))
	for _, term := range r.Terms {
		names = append(names, term.Var)
	}
	return names
}

func TestBuild_VariablesFollowEligibility(t *testing.T) {
	model := build(t, twoPersonTeam())

	assert.Equal(t, optimization.Minimize, model.Program.Direction)
	assert.Equal(t, ProgramName, model.Program.Name)
	assert.Len(t, model.Program.Variables, 168+40)
	assert.Len(t, model.Keys, len(model.Program.Variables))

	for i, key := range model.Keys {
		v := model.Program.Variables[i]
		assert.Equal(t, key.Name(), v.Name)
		assert.True(t, v.Binary)
	}

	assert.True(t, model.Has(VarKey{DeveloperID: junior.ID, Day: domain.Monday, Hour: 8}))
	assert.False(t, model.Has(VarKey{DeveloperID: junior.ID, Day: domain.Monday, Hour: 12}))
	assert.False(t, model.Has(VarKey{DeveloperID: junior.ID, Day: domain.Saturday, Hour: 10}))
	assert.True(t, model.Has(VarKey{DeveloperID: senior.ID, Day: domain.Sunday, Hour: 3}))
}

func TestBuild_ObjectiveCoefficientsMatchTierRate(t *testing.T) {
	team := twoPersonTeam()
	team.Developers = append(team.Developers, mid)
	team.WeeklyConstraints = append(team.WeeklyConstraints, domain.WeeklyConstraint{DeveloperID: mid.ID, MaximumWeeklyHours: 60})
	model := build(t, team)

	devs := map[int]domain.Developer{senior.ID: senior, junior.ID: junior, mid.ID: mid}
	for _, key := range model.Keys {
		coef, ok := model.Coefficient(key)
		require.True(t, ok)
		assert.Equal(t, TierRate(devs[key.DeveloperID], team.Rates, key.Day, key.Hour), coef, key.Name())
	}

	_, ok := model.Coefficient(VarKey{DeveloperID: junior.ID, Day: domain.Sunday, Hour: 0})
	assert.False(t, ok)
}

func TestBuild_Rows(t *testing.T) {
	model := build(t, twoPersonTeam())
	p := model.Program

	// coverage 168 + active mix 45 + weekly 2 + weekend 48
	assert.Len(t, p.Rows, 168+45+2+48)

	coverage, ok := p.Row("coverage_D1_H10")
	require.True(t, ok)
	assert.Equal(t, optimization.AtLeast(1), coverage.Bound)
	assert.ElementsMatch(t, []string{"x_1_D1_H10", "x_2_D1_H10"}, termNames(coverage))

	night, ok := p.Row("coverage_D1_H3")
	require.True(t, ok)
	assert.Equal(t, []string{"x_1_D1_H3"}, termNames(night))

	mix, ok := p.Row("active_mix_D2_H9")
	require.True(t, ok)
	assert.Equal(t, optimization.AtLeast(1), mix.Bound)
	assert.Equal(t, []string{"x_1_D2_H9"}, termNames(mix))

	_, ok = p.Row("active_mix_D6_H9")
	assert.False(t, ok)

	weekly, ok := p.Row("weekly_hours_dev_2")
	require.True(t, ok)
	assert.Equal(t, optimization.Between(0, 40), weekly.Bound)
	assert.Len(t, weekly.Terms, 40)

	weekend, ok := p.Row("weekend_D6_H10")
	require.True(t, ok)
	assert.Equal(t, optimization.Exactly(1), weekend.Bound)
	assert.Equal(t, []string{"x_1_D6_H10"}, termNames(weekend))

	require.NoError(t, p.Validate())
}

func TestBuild_WeekendRowsExcludeJuniorsButCountMids(t *testing.T) {
	team := twoPersonTeam()
	team.Developers = append(team.Developers, mid)
	team.WeeklyConstraints = append(team.WeeklyConstraints, domain.WeeklyConstraint{DeveloperID: mid.ID, MaximumWeeklyHours: 60})
	team.Rates.WeekendRequiredHeadcount = 2
	model := build(t, team)

	weekend, ok := model.Program.Row("weekend_D7_H23")
	require.True(t, ok)
	assert.Equal(t, optimization.Exactly(2), weekend.Bound)
	assert.ElementsMatch(t, []string{"x_1_D7_H23", "x_3_D7_H23"}, termNames(weekend))
}

func TestBuild_DeployRows(t *testing.T) {
	team := twoPersonTeam()
	team.Deploys = []domain.DeployEvent{deployAt(1, 10)} // Monday 10:00
	model := build(t, team)
	p := model.Program

	owner, ok := p.Row("deploy_0_D1_H10_senior")
	require.True(t, ok)
	assert.Equal(t, optimization.Exactly(1), owner.Bound)
	assert.Equal(t, []string{"x_1_D1_H10"}, termNames(owner))

	excluded, ok := p.Row("deploy_0_D1_H10_dev_2")
	require.True(t, ok)
	assert.Equal(t, optimization.Exactly(0), excluded.Bound)
	assert.Equal(t, []string{"x_2_D1_H10"}, termNames(excluded))

	assert.Len(t, p.Rows, 168+45+2+48+2)
}

func TestBuild_WeekendDeployHasNoJuniorRow(t *testing.T) {
	team := twoPersonTeam()
	team.Deploys = []domain.DeployEvent{deployAt(6, 3)} // Saturday 03:00
	model := build(t, team)

	_, ok := model.Program.Row("deploy_0_D6_H3_senior")
	assert.True(t, ok)
	_, ok = model.Program.Row("deploy_0_D6_H3_dev_2")
	assert.False(t, ok)
}

func TestBuild_DeploysSharingASlotStayConsistent(t *testing.T) {
	team := twoPersonTeam()
	team.Deploys = []domain.DeployEvent{deployAt(1, 10), deployAt(8, 10)} // both Monday 10:00
	model := build(t, team)

	first, ok := model.Program.Row("deploy_0_D1_H10_senior")
	require.True(t, ok)
	second, ok := model.Program.Row("deploy_1_D1_H10_senior")
	require.True(t, ok)
	assert.Equal(t, first.Bound, second.Bound)
	assert.Equal(t, termNames(first), termNames(second))
}

func TestBuild_MissingConstraint(t *testing.T) {
	team := twoPersonTeam()
	team.WeeklyConstraints = team.WeeklyConstraints[:1]

	_, err := NewModelBuilder(zerolog.Nop()).Build(team.Developers, team.WeeklyConstraints, team.Rates, nil)
	require.Error(t, err)

	var mce *domain.MissingConstraintError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, junior.ID, mce.DeveloperID)
	assert.ErrorIs(t, err, domain.ErrMissingConstraint)
	assert.True(t, domain.IsConfiguration(err))
}

func TestBuild_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Team)
		want   error
	}{
		{
			name: "constraint for unknown developer",
			mutate: func(tm *domain.Team) {
				tm.WeeklyConstraints = append(tm.WeeklyConstraints, domain.WeeklyConstraint{DeveloperID: 99, MaximumWeeklyHours: 10})
			},
			want: domain.ErrUnknownDeveloper,
		},
		{
			name: "duplicate constraint",
			mutate: func(tm *domain.Team) {
				tm.WeeklyConstraints = append(tm.WeeklyConstraints, tm.WeeklyConstraints[0])
			},
			want: domain.ErrDuplicateConstraint,
		},
		{
			name: "duplicate developer",
			mutate: func(tm *domain.Team) {
				tm.Developers = append(tm.Developers, senior)
			},
			want: domain.ErrDuplicateDeveloper,
		},
		{
			name: "min above max",
			mutate: func(tm *domain.Team) {
				tm.WeeklyConstraints[1] = domain.WeeklyConstraint{DeveloperID: junior.ID, MinimumWeeklyHours: 30, MaximumWeeklyHours: 20}
			},
			want: domain.ErrInvalidHours,
		},
		{
			name: "max above a week",
			mutate: func(tm *domain.Team) {
				tm.WeeklyConstraints[0] = domain.WeeklyConstraint{DeveloperID: senior.ID, MaximumWeeklyHours: 169}
			},
			want: domain.ErrInvalidHours,
		},
		{
			name: "deploy without senior",
			mutate: func(tm *domain.Team) {
				tm.Developers = []domain.Developer{junior}
				tm.WeeklyConstraints = tm.WeeklyConstraints[1:]
				tm.Deploys = []domain.DeployEvent{deployAt(1, 10)}
			},
			want: domain.ErrNoSeniorForDeploy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team := twoPersonTeam()
			tt.mutate(team)

			_, err := NewModelBuilder(zerolog.Nop()).Build(team.Developers, team.WeeklyConstraints, team.Rates, team.Deploys)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, domain.IsConfiguration(err))
		})
	}
}
