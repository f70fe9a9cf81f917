package input

import (
	"fmt"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/rs/zerolog"
)

const defaultOvertimeMultiplier = 1.0

// ToTeam validates the document and converts it into the domain model.
// Deploys outside the scheduling month are kept and logged.
func (d *Document) ToTeam(log zerolog.Logger) (*domain.Team, error) {
	log = log.With().Str("component", "input").Logger()

	if err := d.Validate(); err != nil {
		return nil, err
	}

	period, _ := domain.ParsePeriod(d.SchedulingPeriod.Month)
	team := &domain.Team{Period: period}

	for _, rec := range d.Developers {
		level, _ := domain.ParseLevel(rec.Level)
		team.Developers = append(team.Developers, domain.Developer{
			ID:          *rec.DeveloperID,
			Name:        rec.Name,
			Level:       level,
			CostPerHour: *rec.CostPerHour,
		})
	}
	for _, rec := range d.WeeklyConstraints {
		team.WeeklyConstraints = append(team.WeeklyConstraints, domain.WeeklyConstraint{
			DeveloperID:        *rec.DeveloperID,
			MinimumWeeklyHours: *rec.MinimumWeeklyHours,
			MaximumWeeklyHours: *rec.MaximumWeeklyHours,
		})
	}

	overtime := defaultOvertimeMultiplier
	if d.ConstraintsRules.OvertimeRateMultiplier != nil {
		overtime = *d.ConstraintsRules.OvertimeRateMultiplier
	}
	team.Rates = domain.PolicyRates{
		OnCallRateMultiplier:                *d.ConstraintsRules.OnCallRateMultiplier,
		OvertimeRateMultiplier:              overtime,
		MinimumMidOrSeniorDuringActiveHours: *d.ConstraintsRules.MinimumMidOrSeniorDuringActiveHours,
		WeekendRequiredHeadcount:            *d.AdditionalConstraints.WeekendRequiredHeadcount,
	}

	taken := make(map[domain.Slot]bool)
	for i, rec := range d.Deploys {
		at, _ := parseDeploy(rec)
		ev := domain.DeployEvent{At: at, Source: fmt.Sprintf("deploys[%d]", i)}
		if !period.Contains(at) {
			log.Warn().
				Str("source", ev.Source).
				Time("at", at).
				Str("period", period.String()).
				Msg("Deploy falls outside the scheduling month")
		}
		taken[ev.Slot()] = true
		team.Deploys = append(team.Deploys, ev)
	}

	recurring, err := expandDeploySchedules(d.DeploySchedules, period, taken)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "deploy_schedules", Err: err}
	}
	team.Deploys = append(team.Deploys, recurring...)

	log.Debug().
		Int("developers", len(team.Developers)).
		Int("deploys", len(team.Deploys)).
		Int("recurring_deploys", len(recurring)).
		Str("period", period.String()).
		Msg("Team loaded")

	return team, nil
}
