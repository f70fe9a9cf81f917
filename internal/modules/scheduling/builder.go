package scheduling

import (
	"fmt"

	"github.com/aristath/shiftplan/internal/domain"
	"github.com/aristath/shiftplan/internal/modules/optimization"
	"github.com/rs/zerolog"
)

// ProgramName is the name given to every compiled schedule program
const ProgramName = "developer_schedule"

// Model is a compiled program together with the typed identity of each column
type Model struct {
	Program *optimization.Program
	Keys    []VarKey // aligned with Program.Variables

	index map[VarKey]int
}

// Has reports whether a decision variable exists for the triple
func (m *Model) Has(key VarKey) bool {
	_, ok := m.index[key]
	return ok
}

// Coefficient returns the objective coefficient of a triple
func (m *Model) Coefficient(key VarKey) (float64, bool) {
	i, ok := m.index[key]
	if !ok {
		return 0, false
	}
	return m.Program.Variables[i].Objective, true
}

// ModelBuilder translates business rules into an integer program.
type ModelBuilder struct {
	log zerolog.Logger
}

// NewModelBuilder creates a new model builder
func NewModelBuilder(log zerolog.Logger) *ModelBuilder {
	return &ModelBuilder{
		log: log.With().Str("component", "model_builder").Logger(),
	}
}

// Build enumerates the eligible (developer, day, hour) triples and emits the
// coverage, staffing-mix, weekly-bound, weekend and deploy rows.
func (b *ModelBuilder) Build(
	developers []domain.Developer,
	weekly []domain.WeeklyConstraint,
	rates domain.PolicyRates,
	deploys []domain.DeployEvent,
) (*Model, error) {
	bounds, err := indexWeeklyConstraints(developers, weekly)
	if err != nil {
		return nil, err
	}
	if len(deploys) > 0 && !hasSenior(developers) {
		return nil, &domain.ConfigurationError{Field: "deploys", Err: domain.ErrNoSeniorForDeploy}
	}

	c := &compiler{
		program: optimization.NewProgram(ProgramName, optimization.Minimize),
		model:   &Model{index: make(map[VarKey]int)},
		levels:  make(map[int]domain.Level, len(developers)),
		bySlot:  make(map[domain.Slot][]int),
		byDev:   make(map[int][]int),
	}
	c.model.Program = c.program

	for _, dev := range developers {
		c.levels[dev.ID] = dev.Level
		for day := domain.Monday; day <= domain.Sunday; day++ {
			for hour := 0; hour < domain.HoursPerDay; hour++ {
				if !Eligible(dev, day, hour) {
					continue
				}
				if err := c.addVariable(VarKey{DeveloperID: dev.ID, Day: day, Hour: hour}, TierRate(dev, rates, day, hour)); err != nil {
					return nil, err
				}
			}
		}
	}

	c.coverageRows()
	c.activeMixRows(rates.MinimumMidOrSeniorDuringActiveHours)
	c.weeklyRows(developers, bounds)
	c.weekendRows(rates.WeekendRequiredHeadcount)
	c.deployRows(deploys)

	b.log.Debug().
		Int("developers", len(developers)).
		Int("variables", len(c.program.Variables)).
		Int("rows", len(c.program.Rows)).
		Int("deploys", len(deploys)).
		Msg("Program compiled")

	return c.model, nil
}

// indexWeeklyConstraints checks that every developer has exactly one valid
// weekly record and that every record references a known developer.
func indexWeeklyConstraints(developers []domain.Developer, weekly []domain.WeeklyConstraint) (map[int]domain.WeeklyConstraint, error) {
	known := make(map[int]struct{}, len(developers))
	for _, dev := range developers {
		if _, dup := known[dev.ID]; dup {
			return nil, &domain.ConfigurationError{
				Field: "developers",
				Err:   fmt.Errorf("%w: %d", domain.ErrDuplicateDeveloper, dev.ID),
			}
		}
		known[dev.ID] = struct{}{}
	}

	bounds := make(map[int]domain.WeeklyConstraint, len(weekly))
	for _, wc := range weekly {
		if _, ok := known[wc.DeveloperID]; !ok {
			return nil, &domain.ConfigurationError{
				Field: "weekly_constraints",
				Err:   fmt.Errorf("%w: %d", domain.ErrUnknownDeveloper, wc.DeveloperID),
			}
		}
		if _, dup := bounds[wc.DeveloperID]; dup {
			return nil, &domain.ConfigurationError{
				Field: "weekly_constraints",
				Err:   fmt.Errorf("%w: developer %d", domain.ErrDuplicateConstraint, wc.DeveloperID),
			}
		}
		if wc.MinimumWeeklyHours < 0 || wc.MinimumWeeklyHours > wc.MaximumWeeklyHours || wc.MaximumWeeklyHours > domain.MaxWeeklyHours {
			return nil, &domain.ConfigurationError{
				Field: "weekly_constraints",
				Err: fmt.Errorf("%w: developer %d has [%d, %d]",
					domain.ErrInvalidHours, wc.DeveloperID, wc.MinimumWeeklyHours, wc.MaximumWeeklyHours),
			}
		}
		bounds[wc.DeveloperID] = wc
	}

	for _, dev := range developers {
		if _, ok := bounds[dev.ID]; !ok {
			return nil, &domain.MissingConstraintError{DeveloperID: dev.ID}
		}
	}
	return bounds, nil
}

func hasSenior(developers []domain.Developer) bool {
	for _, dev := range developers {
		if dev.Level == domain.LevelSenior {
			return true
		}
	}
	return false
}

type compiler struct {
	program *optimization.Program
	model   *Model
	levels  map[int]domain.Level
	bySlot  map[domain.Slot][]int
	byDev   map[int][]int
}

func (c *compiler) addVariable(key VarKey, coef float64) error {
	col, err := c.program.AddVariable(optimization.Variable{
		Name:      key.Name(),
		Objective: coef,
		Binary:    true,
	})
	if err != nil {
		return err
	}
	c.model.Keys = append(c.model.Keys, key)
	c.model.index[key] = col
	c.bySlot[key.Slot()] = append(c.bySlot[key.Slot()], col)
	c.byDev[key.DeveloperID] = append(c.byDev[key.DeveloperID], col)
	return nil
}

// terms collects unit coefficients for the columns whose developer level passes keep
func (c *compiler) terms(cols []int, keep func(domain.Level) bool) []optimization.Term {
	terms := make([]optimization.Term, 0, len(cols))
	for _, col := range cols {
		key := c.model.Keys[col]
		if keep != nil && !keep(c.levels[key.DeveloperID]) {
			continue
		}
		terms = append(terms, optimization.Term{Var: key.Name(), Coef: 1})
	}
	return terms
}

func isMidOrSenior(l domain.Level) bool { return l == domain.LevelMid || l == domain.LevelSenior }
func isNonJunior(l domain.Level) bool   { return l != domain.LevelJunior }
func isSenior(l domain.Level) bool      { return l == domain.LevelSenior }

// coverageRows: every hour of the week has at least one developer
func (c *compiler) coverageRows() {
	for day := domain.Monday; day <= domain.Sunday; day++ {
		for hour := 0; hour < domain.HoursPerDay; hour++ {
			slot := domain.Slot{Day: day, Hour: hour}
			c.program.AddRow(optimization.Row{
				Name:  fmt.Sprintf("coverage_D%d_H%d", day, hour),
				Terms: c.terms(c.bySlot[slot], nil),
				Bound: optimization.AtLeast(1),
			})
		}
	}
}

// activeMixRows: a Mid/Senior floor during weekday business hours
func (c *compiler) activeMixRows(minimum int) {
	for day := domain.Monday; day <= domain.Friday; day++ {
		for hour := domain.BusinessStartHour; hour < domain.BusinessEndHour; hour++ {
			slot := domain.Slot{Day: day, Hour: hour}
			c.program.AddRow(optimization.Row{
				Name:  fmt.Sprintf("active_mix_D%d_H%d", day, hour),
				Terms: c.terms(c.bySlot[slot], isMidOrSenior),
				Bound: optimization.AtLeast(float64(minimum)),
			})
		}
	}
}

// weeklyRows: each developer's week stays within [min, max]
func (c *compiler) weeklyRows(developers []domain.Developer, bounds map[int]domain.WeeklyConstraint) {
	for _, dev := range developers {
		wc := bounds[dev.ID]
		c.program.AddRow(optimization.Row{
			Name:  fmt.Sprintf("weekly_hours_dev_%d", dev.ID),
			Terms: c.terms(c.byDev[dev.ID], nil),
			Bound: optimization.Between(float64(wc.MinimumWeeklyHours), float64(wc.MaximumWeeklyHours)),
		})
	}
}

// weekendRows: an exact non-Junior headcount for every weekend hour
func (c *compiler) weekendRows(headcount int) {
	for day := domain.Saturday; day <= domain.Sunday; day++ {
		for hour := 0; hour < domain.HoursPerDay; hour++ {
			slot := domain.Slot{Day: day, Hour: hour}
			c.program.AddRow(optimization.Row{
				Name:  fmt.Sprintf("weekend_D%d_H%d", day, hour),
				Terms: c.terms(c.bySlot[slot], isNonJunior),
				Bound: optimization.Exactly(float64(headcount)),
			})
		}
	}
}

// deployRows: exactly one Senior owns the deploy slot and nobody else works it.
// Deploys sharing a slot emit the same rows again under their own index.
func (c *compiler) deployRows(deploys []domain.DeployEvent) {
	for i, deploy := range deploys {
		slot := deploy.Slot()
		cols := c.bySlot[slot]
		c.program.AddRow(optimization.Row{
			Name:  fmt.Sprintf("deploy_%d_D%d_H%d_senior", i, slot.Day, slot.Hour),
			Terms: c.terms(cols, isSenior),
			Bound: optimization.Exactly(1),
		})
		for _, col := range cols {
			key := c.model.Keys[col]
			if c.levels[key.DeveloperID] == domain.LevelSenior {
				continue
			}
			c.program.AddRow(optimization.Row{
				Name:  fmt.Sprintf("deploy_%d_D%d_H%d_dev_%d", i, slot.Day, slot.Hour, key.DeveloperID),
				Terms: []optimization.Term{{Var: key.Name(), Coef: 1}},
				Bound: optimization.Exactly(0),
			})
		}
	}
}
