package optimization

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

const (
	simplexTolerance   = 1e-10
	integralityEpsilon = 1e-6
	pruneEpsilon       = 1e-9
)

var (
	errNodeLimit = errors.New("branch node limit reached")
	errTimeLimit = errors.New("solver time limit reached")
)

// SolverLimits bound one branch-and-bound run. Zero means unlimited.
type SolverLimits struct {
	MaxNodes  int
	TimeLimit time.Duration
}

// SimplexSolver solves binary programs with gonum's simplex engine. Open nodes
// are explored best bound first; rounding the relaxation at every node supplies
// incumbents that prune the rest of the tree.
type SimplexSolver struct {
	limits SolverLimits
	log    zerolog.Logger
}

// NewSimplexSolver creates a solver adapter backed by gonum/optimize/convex/lp
func NewSimplexSolver(limits SolverLimits, log zerolog.Logger) *SimplexSolver {
	return &SimplexSolver{
		limits: limits,
		log:    log.With().Str("component", "simplex_solver").Logger(),
	}
}

// Solve implements Solver
func (s *SimplexSolver) Solve(p *Program) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}

	start := time.Now()
	form := newStandardForm(p, directionSign(p.Direction))

	s.log.Debug().
		Str("program", p.Name).
		Int("variables", len(p.Variables)).
		Int("rows", len(p.Rows)).
		Int("relaxation_rows", len(form.rows)).
		Float64("objective_step", form.step).
		Msg("Solving program")

	search := newBranchSearch(form, s.limits, start, s.log)
	err := search.run()
	sol := &Solution{Nodes: search.nodes}

	switch {
	case errors.Is(err, errNodeLimit):
		sol.Status = StatusSolverFailure
		sol.Detail = fmt.Sprintf("node limit %d reached before optimality was proven", s.limits.MaxNodes)
	case errors.Is(err, errTimeLimit):
		sol.Status = StatusSolverFailure
		sol.Detail = fmt.Sprintf("time limit %s reached before optimality was proven", s.limits.TimeLimit)
	case err != nil:
		return nil, err
	case search.unbounded:
		sol.Status = StatusUnbounded
	case search.incumbent == nil:
		sol.Status = StatusInfeasible
	default:
		sol.Status = StatusOptimal
		sol.Values = make(map[string]float64, len(p.Variables))
		for j, v := range p.Variables {
			sol.Values[v.Name] = search.incumbent[j]
		}
		sol.Objective = p.ObjectiveValue(sol.Values)
	}
	if sol.Status == StatusSolverFailure && search.incumbent != nil {
		sol.Detail += fmt.Sprintf(" (best objective found %g)", directionSign(p.Direction)*search.best)
	}

	s.log.Info().
		Str("program", p.Name).
		Str("status", sol.Status.String()).
		Float64("objective", sol.Objective).
		Int("nodes", sol.Nodes).
		Dur("duration_ms", time.Since(start)).
		Msg("Solve finished")

	return sol, nil
}

// EstimateMemory approximates the bytes held by the root relaxation: the dense
// standard-form matrix plus the working copy the simplex engine keeps.
func (s *SimplexSolver) EstimateMemory(p *Program) uint64 {
	m := len(newStandardForm(p, directionSign(p.Direction)).rows)
	n := len(p.Variables) + m
	return 2 * 8 * uint64(m) * uint64(n)
}

func directionSign(d Direction) float64 {
	if d == Maximize {
		return -1
	}
	return 1
}

type openNode struct {
	fixed []int8
	bound float64 // parent relaxation objective
	depth int
	seq   int
}

// nodeQueue orders open nodes by bound, then deepest first
type nodeQueue []*openNode

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound < q[j].bound
	}
	if q[i].depth != q[j].depth {
		return q[i].depth > q[j].depth
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*openNode)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return node
}

type branchSearch struct {
	form      *standardForm
	limits    SolverLimits
	deadline  time.Time
	log       zerolog.Logger
	queue     nodeQueue
	seq       int
	nodes     int
	incumbent []float64
	best      float64 // minimize sense
	unbounded bool
}

func newBranchSearch(form *standardForm, limits SolverLimits, start time.Time, log zerolog.Logger) *branchSearch {
	b := &branchSearch{
		form:   form,
		limits: limits,
		log:    log,
		best:   math.Inf(1),
	}
	if limits.TimeLimit > 0 {
		b.deadline = start.Add(limits.TimeLimit)
	}
	return b
}

func (b *branchSearch) run() error {
	root := make([]int8, b.form.n)
	for j := range root {
		root[j] = unfixed
	}
	b.push(root, math.Inf(-1), 0)

	for b.queue.Len() > 0 {
		nd := heap.Pop(&b.queue).(*openNode)
		if !b.canImprove(nd.bound) {
			continue
		}
		if b.limits.MaxNodes > 0 && b.nodes >= b.limits.MaxNodes {
			return errNodeLimit
		}
		if !b.deadline.IsZero() && time.Now().After(b.deadline) {
			return errTimeLimit
		}
		b.nodes++

		if !b.form.propagate(nd.fixed) {
			continue
		}
		res, err := b.form.relax(nd.fixed)
		if err != nil {
			return err
		}
		switch res.outcome {
		case relaxInfeasible:
			continue
		case relaxUnbounded:
			b.unbounded = true
			return nil
		}
		if !b.canImprove(res.objective) {
			continue
		}

		branch := b.form.mostFractional(res.x, nd.fixed)
		if branch < 0 {
			b.offer(integral(res.x, b.form.binary), "relaxation")
			continue
		}
		for _, cand := range b.form.roundings(res.x) {
			b.offer(cand, "rounding")
		}
		if !b.canImprove(res.objective) {
			continue
		}

		first := int8(0)
		if res.x[branch] >= 0.5 {
			first = 1
		}
		for _, value := range []int8{first, 1 - first} {
			child := append([]int8(nil), nd.fixed...)
			child[branch] = value
			b.push(child, res.objective, nd.depth+1)
		}
	}
	return nil
}

func (b *branchSearch) push(fixed []int8, bound float64, depth int) {
	b.seq++
	heap.Push(&b.queue, &openNode{fixed: fixed, bound: bound, depth: depth, seq: b.seq})
}

// canImprove reports whether a node with this relaxation bound may still hold
// a binary point strictly better than the incumbent.
func (b *branchSearch) canImprove(bound float64) bool {
	if b.incumbent == nil {
		return true
	}
	if b.form.step > 0 {
		return bound <= b.best-b.form.step+integralityEpsilon*math.Max(1, math.Abs(b.best))
	}
	return bound < b.best-pruneEpsilon
}

func (b *branchSearch) offer(x []float64, source string) {
	obj := b.form.objective(x)
	if b.incumbent != nil && obj >= b.best-pruneEpsilon {
		return
	}
	b.incumbent = x
	b.best = obj
	b.log.Debug().
		Str("source", source).
		Float64("objective", obj).
		Int("nodes", b.nodes).
		Int("open", b.queue.Len()).
		Msg("New incumbent")
}

func integral(x []float64, binary []bool) []float64 {
	out := append([]float64(nil), x...)
	for j, bin := range binary {
		if bin {
			out[j] = math.Round(x[j])
		}
	}
	return out
}
