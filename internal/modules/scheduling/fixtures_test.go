package scheduling

import (
	"time"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/aristath/shiftplan/internal/modules/optimization"
)

var (
	senior = domain.Developer{ID: 1, Name: "Ana", Level: domain.LevelSenior, CostPerHour: 100}
	junior = domain.Developer{ID: 2, Name: "Bruno", Level: domain.LevelJunior, CostPerHour: 50}
	mid    = domain.Developer{ID: 3, Name: "Carla", Level: domain.LevelMid, CostPerHour: 80}
)

var testRates = domain.PolicyRates{
	OnCallRateMultiplier:                1.5,
	OvertimeRateMultiplier:              2,
	MinimumMidOrSeniorDuringActiveHours: 1,
	WeekendRequiredHeadcount:            1,
}

// 2024-01-01 is a Monday
func deployAt(day, hour int) domain.DeployEvent {
	return domain.DeployEvent{
		At:     time.Date(2024, time.January, day, hour, 0, 0, 0, time.UTC),
		Source: "test",
	}
}

func twoPersonTeam() *domain.Team {
	return &domain.Team{
		Period:     domain.Period{Year: 2024, Month: time.January},
		Developers: []domain.Developer{senior, junior},
		WeeklyConstraints: []domain.WeeklyConstraint{
			{DeveloperID: senior.ID, MinimumWeeklyHours: 0, MaximumWeeklyHours: 168},
			{DeveloperID: junior.ID, MinimumWeeklyHours: 0, MaximumWeeklyHours: 40},
		},
		Rates: testRates,
	}
}

// greedySolver sets every variable to 1 unless a single-term row pins it to 0.
// On twoPersonTeam this yields a feasible schedule.
func greedySolver() optimization.Solver {
	return optimization.SolverFunc(func(p *optimization.Program) (*optimization.Solution, error) {
		values := make(map[string]float64, len(p.Variables))
		for _, v := range p.Variables {
			values[v.Name] = 1
		}
		for _, r := range p.Rows {
			if len(r.Terms) == 1 && r.Bound.Kind == optimization.BoundFixed && r.Bound.Lower == 0 {
				values[r.Terms[0].Var] = 0
			}
		}
		return &optimization.Solution{
			Status:    optimization.StatusOptimal,
			Values:    values,
			Objective: p.ObjectiveValue(values),
		}, nil
	})
}
