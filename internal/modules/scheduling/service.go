package scheduling

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/aristath/shiftplan/internal/modules/optimization"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const costTolerance = 1e-6

// Outcome is the result of one pipeline run. Schedule, Summary and Monthly are
// only set when the solver proved optimality.
type Outcome struct {
	RunID     string
	Status    optimization.Status
	Detail    string
	Objective float64
	Model     *Model
	Schedule  *Schedule
	Anomalies []DecodeAnomaly
	Summary   *Summary
	Monthly   *MonthlySummary
	Duration  time.Duration
}

// Produced reports whether the run ended with an optimal schedule
func (o *Outcome) Produced() bool {
	return o.Status == optimization.StatusOptimal && o.Schedule != nil
}

// Service runs build -> solve -> decode -> summarize for one team
type Service struct {
	builder *ModelBuilder
	solver  optimization.Solver
	log     zerolog.Logger
}

// NewService creates a scheduling service around a solver
func NewService(solver optimization.Solver, log zerolog.Logger) *Service {
	return &Service{
		builder: NewModelBuilder(log),
		solver:  solver,
		log:     log.With().Str("component", "scheduling_service").Logger(),
	}
}

// Compile builds the program without solving it
func (s *Service) Compile(team *domain.Team) (*Model, error) {
	return s.builder.Build(team.Developers, team.WeeklyConstraints, team.Rates, team.Deploys)
}

// Run executes one full scheduling pass. A non-optimal solver status is not an
// error: the outcome carries the status and no schedule.
func (s *Service) Run(team *domain.Team) (*Outcome, error) {
	model, err := s.Compile(team)
	if err != nil {
		return nil, err
	}
	return s.RunModel(team, model)
}

// RunModel is Run for a model already compiled from team
func (s *Service) RunModel(team *domain.Team, model *Model) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{RunID: uuid.New().String(), Model: model}
	log := s.log.With().Str("run_id", out.RunID).Logger()

	log.Info().
		Int("developers", len(team.Developers)).
		Int("variables", len(model.Program.Variables)).
		Int("rows", len(model.Program.Rows)).
		Msg("Starting solve")

	sol, err := s.solver.Solve(model.Program)
	if err != nil {
		log.Error().Err(err).Msg("Solver failed")
		return nil, &domain.SolverError{Err: err}
	}
	out.Status = sol.Status
	out.Detail = sol.Detail
	out.Duration = time.Since(start)

	if sol.Status != optimization.StatusOptimal {
		log.Warn().
			Str("status", sol.Status.String()).
			Str("detail", sol.Detail).
			Msg("No optimal schedule produced")
		return out, nil
	}
	out.Objective = sol.Objective

	schedule, anomalies := Decode(sol.Values, log)
	out.Schedule = schedule
	out.Anomalies = anomalies

	summary, err := Summarize(schedule, team.Developers, team.Rates)
	if err != nil {
		return nil, err
	}
	out.Summary = summary

	if !costsAgree(sol.Objective, summary.TotalCost) {
		return nil, fmt.Errorf("%w: objective %.6f, accounted %.6f", domain.ErrCostMismatch, sol.Objective, summary.TotalCost)
	}

	if violations := Verify(team, schedule); len(violations) > 0 {
		details := make([]string, 0, len(violations))
		for _, v := range violations {
			log.Error().Str("rule", v.Rule).Msg(v.Detail)
			details = append(details, v.String())
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrScheduleViolation, strings.Join(details, "; "))
	}

	if team.Period.Year != 0 {
		monthly, err := SummarizeMonth(schedule, team.Developers, team.Rates, team.Period)
		if err != nil {
			return nil, err
		}
		out.Monthly = monthly
	}

	out.Duration = time.Since(start)
	log.Info().
		Float64("objective", out.Objective).
		Int("hours", summary.TotalHours).
		Int("anomalies", len(anomalies)).
		Dur("duration", out.Duration).
		Msg("Schedule produced")

	return out, nil
}

func costsAgree(objective, accounted float64) bool {
	scale := math.Max(1, math.Abs(objective))
	return math.Abs(objective-accounted) <= costTolerance*scale
}
