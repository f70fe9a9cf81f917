package optimization

import "fmt"

// Status is the outcome reported by a solver
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusSolverFailure
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusSolverFailure:
		return "solver_failure"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Solution is the result of one solve. Values is only meaningful when Status is optimal.
type Solution struct {
	Values    map[string]float64
	Detail    string // solver-specific explanation for non-optimal statuses
	Status    Status
	Objective float64
	Nodes     int
}

// Solver consumes a program and returns a status plus a variable assignment.
// Statuses other than optimal are reported through Solution; a returned error
// means the solver itself failed and must not be retried.
type Solver interface {
	Solve(p *Program) (*Solution, error)
}

// SolverFunc adapts a function to the Solver interface
type SolverFunc func(p *Program) (*Solution, error)

// Solve calls f(p)
func (f SolverFunc) Solve(p *Program) (*Solution, error) {
	return f(p)
}
