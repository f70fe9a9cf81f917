package optimization

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binaryProgram(t *testing.T, dir Direction, objective map[string]float64, order []string) *Program {
	t.Helper()
	p := NewProgram("test", dir)
	for _, name := range order {
		_, err := p.AddVariable(Variable{Name: name, Objective: objective[name], Binary: true})
		require.NoError(t, err)
	}
	return p
}

func TestSimplexSolver_CoverAtMinimumCost(t *testing.T) {
	p := sampleProgram(t)

	sol, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(p)
	require.NoError(t, err)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 5.0, sol.Objective, 1e-6)
	assert.InDelta(t, 1.0, sol.Values["a"], 1e-9)
	assert.InDelta(t, 1.0, sol.Values["b"], 1e-9)
	assert.InDelta(t, 0.0, sol.Values["c"], 1e-9)
}

func TestSimplexSolver_RoundingClosesFractionalRoot(t *testing.T) {
	// LP relaxation reaches 1.5; rounding down finds 1 and integral costs prune the rest
	p := binaryProgram(t, Maximize, map[string]float64{"a": 1, "b": 1}, []string{"a", "b"})
	p.AddRow(Row{
		Name:  "capacity",
		Terms: []Term{{Var: "a", Coef: 2}, {Var: "b", Coef: 2}},
		Bound: AtMost(3),
	})

	sol, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(p)
	require.NoError(t, err)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 1.0, sol.Objective, 1e-6)
	assert.InDelta(t, 1.0, sol.Values["a"]+sol.Values["b"], 1e-9)
	assert.Equal(t, 1, sol.Nodes)
}

// triangle cover: every pair must be covered, the relaxation sits at one half everywhere
func triangleCover(t *testing.T, costs map[string]float64) *Program {
	t.Helper()
	p := binaryProgram(t, Minimize, costs, []string{"a", "b", "c"})
	for _, pair := range [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}} {
		p.AddRow(Row{
			Name:  pair[0] + pair[1],
			Terms: []Term{{Var: pair[0], Coef: 1}, {Var: pair[1], Coef: 1}},
			Bound: AtLeast(1),
		})
	}
	return p
}

func TestSimplexSolver_BranchesWhenBoundLeavesAGap(t *testing.T) {
	// costs that are not whole cents give no objective step, so the 1.5 bound must be branched away
	p := triangleCover(t, map[string]float64{"a": 1, "b": 1, "c": 1.000001})

	sol, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(p)
	require.NoError(t, err)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 2.0, sol.Objective, 1e-6)
	assert.InDelta(t, 1.0, sol.Values["a"], 1e-9)
	assert.InDelta(t, 1.0, sol.Values["b"], 1e-9)
	assert.InDelta(t, 0.0, sol.Values["c"], 1e-9)
	assert.Greater(t, sol.Nodes, 1)
}

func TestSimplexSolver_IntegralCostsProveOptimumQuickly(t *testing.T) {
	p := triangleCover(t, map[string]float64{"a": 150, "b": 100, "c": 75})

	sol, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(p)
	require.NoError(t, err)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 175.0, sol.Objective, 1e-6)
	assert.InDelta(t, 0.0, sol.Values["a"], 1e-9)
	assert.Empty(t, p.Violations(sol.Values, 1e-9))
}

// 2a + 2b + 2c = 3 has fractional relaxations but no binary point
func parityProgram(t *testing.T) *Program {
	t.Helper()
	p := binaryProgram(t, Minimize, map[string]float64{"a": 1, "b": 1, "c": 1}, []string{"a", "b", "c"})
	p.AddRow(Row{
		Name:  "odd",
		Terms: []Term{{Var: "a", Coef: 2}, {Var: "b", Coef: 2}, {Var: "c", Coef: 2}},
		Bound: Exactly(3),
	})
	return p
}

func TestSimplexSolver_NodeLimitIsSolverFailure(t *testing.T) {
	sol, err := NewSimplexSolver(SolverLimits{MaxNodes: 1}, zerolog.Nop()).Solve(parityProgram(t))
	require.NoError(t, err)
	assert.Equal(t, StatusSolverFailure, sol.Status)
	assert.Contains(t, sol.Detail, "node limit 1")
	assert.Nil(t, sol.Values)
	assert.Equal(t, 1, sol.Nodes)
}

func TestSimplexSolver_TimeLimitIsSolverFailure(t *testing.T) {
	sol, err := NewSimplexSolver(SolverLimits{TimeLimit: time.Nanosecond}, zerolog.Nop()).Solve(parityProgram(t))
	require.NoError(t, err)
	assert.Equal(t, StatusSolverFailure, sol.Status)
	assert.Contains(t, sol.Detail, "time limit")
}

func TestSimplexSolver_BranchingProvesInfeasibility(t *testing.T) {
	sol, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(parityProgram(t))
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.Greater(t, sol.Nodes, 1)
}

func TestSimplexSolver_Infeasible(t *testing.T) {
	p := binaryProgram(t, Minimize, map[string]float64{"a": 1, "b": 1}, []string{"a", "b"})
	p.AddRow(Row{
		Name:  "impossible",
		Terms: []Term{{Var: "a", Coef: 1}, {Var: "b", Coef: 1}},
		Bound: AtLeast(3),
	})

	sol, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(p)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.Nil(t, sol.Values)
}

func TestSimplexSolver_EmptyRowWithPositiveDemandIsInfeasible(t *testing.T) {
	p := binaryProgram(t, Minimize, map[string]float64{"a": 1}, []string{"a"})
	p.AddRow(Row{Name: "nobody", Bound: AtLeast(1)})

	sol, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(p)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
}

func TestSimplexSolver_DuplicateEqualityRows(t *testing.T) {
	p := binaryProgram(t, Minimize, map[string]float64{"a": 2, "b": 3}, []string{"a", "b"})
	for _, name := range []string{"pick_one", "pick_one_again"} {
		p.AddRow(Row{
			Name:  name,
			Terms: []Term{{Var: "a", Coef: 1}, {Var: "b", Coef: 1}},
			Bound: Exactly(1),
		})
	}

	sol, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(p)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 2.0, sol.Objective, 1e-6)
	assert.InDelta(t, 1.0, sol.Values["a"], 1e-9)
}

func TestSimplexSolver_FixedSingleVariableRow(t *testing.T) {
	p := binaryProgram(t, Minimize, map[string]float64{"a": 1, "b": 5}, []string{"a", "b"})
	p.AddRow(Row{Name: "force_b", Terms: []Term{{Var: "b", Coef: 1}}, Bound: Exactly(1)})
	p.AddRow(Row{Name: "ban_a", Terms: []Term{{Var: "a", Coef: 1}}, Bound: Exactly(0)})

	sol, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(p)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 5.0, sol.Objective, 1e-6)
}

func TestSimplexSolver_UnboundedContinuous(t *testing.T) {
	p := NewProgram("unbounded", Maximize)
	_, err := p.AddVariable(Variable{Name: "y", Objective: 1})
	require.NoError(t, err)
	p.AddRow(Row{Name: "floor", Terms: []Term{{Var: "y", Coef: 1}}, Bound: AtLeast(1)})

	sol, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(p)
	require.NoError(t, err)
	assert.Equal(t, StatusUnbounded, sol.Status)
}

func TestSimplexSolver_RejectsInvalidProgram(t *testing.T) {
	p := sampleProgram(t)
	p.AddRow(Row{Name: "ghost", Terms: []Term{{Var: "z", Coef: 1}}, Bound: AtLeast(0)})

	_, err := NewSimplexSolver(SolverLimits{}, zerolog.Nop()).Solve(p)
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "unbounded", StatusUnbounded.String())
	assert.Equal(t, "solver_failure", StatusSolverFailure.String())
}

func TestSimplexSolver_EstimateMemory(t *testing.T) {
	// rows: cover + two sides of limit + a cap for b; limit already caps a and c
	assert.Equal(t, uint64(2*8*4*7), NewSimplexSolver(SolverLimits{}, zerolog.Nop()).EstimateMemory(sampleProgram(t)))
}

func TestStandardForm_PropagatesSingletonRows(t *testing.T) {
	p := binaryProgram(t, Minimize, map[string]float64{"a": 1, "b": 1, "c": 1}, []string{"a", "b", "c"})
	p.AddRow(Row{Name: "need_a", Terms: []Term{{Var: "a", Coef: 1}}, Bound: AtLeast(1)})
	p.AddRow(Row{Name: "a_excludes_b", Terms: []Term{{Var: "a", Coef: 1}, {Var: "b", Coef: 1}}, Bound: AtMost(1)})
	p.AddRow(Row{Name: "b_or_c", Terms: []Term{{Var: "b", Coef: 1}, {Var: "c", Coef: 1}}, Bound: AtLeast(1)})

	form := newStandardForm(p, 1)
	fixed := []int8{unfixed, unfixed, unfixed}
	require.True(t, form.propagate(fixed))
	assert.Equal(t, []int8{1, 0, 1}, fixed)

	fixed = []int8{unfixed, 1, 0}
	assert.False(t, form.propagate(fixed))
}

func TestObjectiveStep(t *testing.T) {
	bin := []bool{true, true, true}
	assert.Equal(t, 25.0, objectiveStep(bin, []float64{150, 100, 75}))
	assert.Equal(t, 0.25, objectiveStep(bin, []float64{1.5, 0.25, 0}))
	assert.Zero(t, objectiveStep(bin, []float64{1, 1, 1.000001}))
	assert.Zero(t, objectiveStep([]bool{true, false, true}, []float64{1, 2, 3}))
	assert.Zero(t, objectiveStep(bin, []float64{0, 0, 0}))
}

func TestStandardForm_RoundingSwitchesOffExpensiveColumns(t *testing.T) {
	p := triangleCover(t, map[string]float64{"a": 3, "b": 2, "c": 1})
	form := newStandardForm(p, 1)

	found := form.roundings([]float64{0.5, 0.5, 0.5})
	require.NotEmpty(t, found)
	// rounding half up switches on all three; a is the most expensive and goes first
	assert.Equal(t, []float64{0, 1, 1}, found[0])
}
