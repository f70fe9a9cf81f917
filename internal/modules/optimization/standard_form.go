package optimization

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const feasibilityTolerance = 1e-9

const unfixed = -1

type colTerm struct {
	col  int
	coef float64
}

// stdRow is one inequality of the relaxation: terms + slack*s = rhs, s >= 0
type stdRow struct {
	terms []colTerm
	slack float64 // +1 for <=, -1 for >=
	rhs   float64
}

// checkRow is a program row kept in its original form for feasibility checks
type checkRow struct {
	terms []colTerm
	bound Bound
}

type rowRef struct {
	row  int
	coef float64
}

// standardForm is the program translated once per solve. Branch nodes only
// differ in which binaries they fix, so every node reuses these rows.
type standardForm struct {
	n       int
	binary  []bool
	cost    []float64 // minimize sense
	rows    []stdRow
	checks  []checkRow
	touches [][]rowRef // column -> check rows it appears in
	step    float64    // every integral objective is a multiple of step; 0 = unknown
}

func newStandardForm(p *Program, sign float64) *standardForm {
	n := len(p.Variables)
	f := &standardForm{
		n:       n,
		binary:  make([]bool, n),
		cost:    make([]float64, n),
		touches: make([][]rowRef, n),
	}
	for j, v := range p.Variables {
		f.binary[j] = v.Binary
		f.cost[j] = sign * v.Objective
	}

	needsCap := append([]bool(nil), f.binary...)
	for _, r := range p.Rows {
		terms := mergeTerms(p, r)
		f.checks = append(f.checks, checkRow{terms: terms, bound: r.Bound})
		for _, t := range terms {
			f.touches[t.col] = append(f.touches[t.col], rowRef{row: len(f.checks) - 1, coef: t.coef})
		}

		switch r.Bound.Kind {
		case BoundLower:
			f.rows = append(f.rows, stdRow{terms: terms, slack: -1, rhs: r.Bound.Lower})
		case BoundUpper:
			f.rows = append(f.rows, stdRow{terms: terms, slack: 1, rhs: r.Bound.Upper})
		case BoundDouble, BoundFixed:
			f.rows = append(f.rows,
				stdRow{terms: terms, slack: -1, rhs: r.Bound.Lower},
				stdRow{terms: terms, slack: 1, rhs: r.Bound.Upper},
			)
		}

		if r.Bound.Kind != BoundLower {
			markImpliedCaps(terms, r.Bound.Upper, needsCap)
		}
	}

	for j, need := range needsCap {
		if need {
			f.rows = append(f.rows, stdRow{terms: []colTerm{{col: j, coef: 1}}, slack: 1, rhs: 1})
		}
	}

	f.step = objectiveStep(f.binary, f.cost)
	return f
}

// mergeTerms resolves variable names and folds repeated variables into one coefficient
func mergeTerms(p *Program, r Row) []colTerm {
	coefs := make(map[int]float64, len(r.Terms))
	for _, t := range r.Terms {
		j, ok := p.VariableIndex(t.Var)
		if !ok {
			continue
		}
		coefs[j] += t.Coef
	}
	terms := make([]colTerm, 0, len(coefs))
	for j, c := range coefs {
		if c != 0 {
			terms = append(terms, colTerm{col: j, coef: c})
		}
	}
	sort.Slice(terms, func(a, b int) bool { return terms[a].col < terms[b].col })
	return terms
}

// markImpliedCaps clears the x <= 1 row of binaries a nonnegative <= row already caps
func markImpliedCaps(terms []colTerm, upper float64, needsCap []bool) {
	for _, t := range terms {
		if t.coef < 0 {
			return
		}
	}
	for _, t := range terms {
		if upper/t.coef <= 1+feasibilityTolerance {
			needsCap[t.col] = false
		}
	}
}

// objectiveStep finds the granularity of the objective over binary points, trying
// whole units and then cents. Continuous columns with a cost make it unknown.
func objectiveStep(binary []bool, cost []float64) float64 {
	for _, scale := range []float64{1, 100} {
		var g int64
		integral := true
		for j, c := range cost {
			if c == 0 {
				continue
			}
			if !binary[j] {
				return 0
			}
			v := c * scale
			r := math.Round(v)
			if math.Abs(v-r) > feasibilityTolerance*math.Max(1, math.Abs(v)) {
				integral = false
				break
			}
			g = gcd(g, int64(math.Abs(r)))
		}
		if integral {
			if g == 0 {
				return 0
			}
			return float64(g) / scale
		}
	}
	return 0
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// propagate fixes binaries that are the last free column of a row and can take
// only one value there. It reports false when some row can no longer be met.
func (f *standardForm) propagate(fixed []int8) bool {
	for changed := true; changed; {
		changed = false
		for _, r := range f.checks {
			free := -1
			count := 0
			settled := 0.0
			for _, t := range r.terms {
				if f.binary[t.col] && fixed[t.col] != unfixed {
					settled += t.coef * float64(fixed[t.col])
					continue
				}
				count++
				free = t.col
				if count > 1 {
					break
				}
			}

			switch {
			case count == 0:
				if !r.bound.Admits(settled, feasibilityTolerance) {
					return false
				}
			case count == 1 && f.binary[free]:
				coef := coefOf(r.terms, free)
				zeroOK := r.bound.Admits(settled, feasibilityTolerance)
				oneOK := r.bound.Admits(settled+coef, feasibilityTolerance)
				switch {
				case !zeroOK && !oneOK:
					return false
				case !oneOK:
					fixed[free] = 0
					changed = true
				case !zeroOK:
					fixed[free] = 1
					changed = true
				}
			}
		}
	}
	return true
}

func coefOf(terms []colTerm, col int) float64 {
	for _, t := range terms {
		if t.col == col {
			return t.coef
		}
	}
	return 0
}

type relaxOutcome int

const (
	relaxSolved relaxOutcome = iota
	relaxInfeasible
	relaxUnbounded
)

type relaxation struct {
	x         []float64 // value per program column
	objective float64   // in minimize sense
	outcome   relaxOutcome
}

// relax solves the LP relaxation with some binaries fixed. Rows whose columns
// are all fixed are checked and left out; every remaining inequality keeps its
// own slack, so the matrix has full row rank and no empty rows or columns.
func (f *standardForm) relax(fixed []int8) (*relaxation, error) {
	x := make([]float64, f.n)
	constObj := 0.0
	for j := range x {
		if fixed[j] != unfixed {
			x[j] = float64(fixed[j])
			constObj += f.cost[j] * x[j]
		}
	}

	type activeRow struct {
		row *stdRow
		rhs float64
	}
	var active []activeRow
	lpCol := make([]int, f.n)
	for j := range lpCol {
		lpCol[j] = -1
	}
	width := 0

	for i := range f.rows {
		r := &f.rows[i]
		rhs := r.rhs
		free := 0
		for _, t := range r.terms {
			if fixed[t.col] != unfixed {
				rhs -= t.coef * x[t.col]
				continue
			}
			free++
		}
		if free == 0 {
			if r.slack*rhs < -feasibilityTolerance {
				return &relaxation{outcome: relaxInfeasible}, nil
			}
			continue
		}
		active = append(active, activeRow{row: r, rhs: rhs})
		for _, t := range r.terms {
			if fixed[t.col] == unfixed && lpCol[t.col] < 0 {
				lpCol[t.col] = width
				width++
			}
		}
	}

	// free columns outside every active row sit at their cheapest value
	for j := range x {
		if fixed[j] != unfixed || lpCol[j] >= 0 || f.cost[j] >= 0 {
			continue
		}
		if !f.binary[j] {
			return &relaxation{outcome: relaxUnbounded}, nil
		}
		x[j] = 1
		constObj += f.cost[j]
	}

	if len(active) == 0 {
		return &relaxation{x: x, objective: constObj, outcome: relaxSolved}, nil
	}

	m := len(active)
	a := mat.NewDense(m, width+m, nil)
	b := make([]float64, m)
	c := make([]float64, width+m)
	for j, col := range lpCol {
		if col >= 0 {
			c[col] = f.cost[j]
		}
	}
	for i, ar := range active {
		flip := 1.0
		if ar.rhs < 0 {
			flip = -1.0
		}
		for _, t := range ar.row.terms {
			if col := lpCol[t.col]; col >= 0 {
				a.Set(i, col, flip*t.coef)
			}
		}
		a.Set(i, width+i, flip*ar.row.slack)
		b[i] = flip * ar.rhs
	}

	optF, optX, err := lp.Simplex(c, a, b, simplexTolerance, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return &relaxation{outcome: relaxInfeasible}, nil
	case errors.Is(err, lp.ErrUnbounded):
		return &relaxation{outcome: relaxUnbounded}, nil
	case err != nil:
		return nil, fmt.Errorf("lp relaxation failed: %w", err)
	}

	for j, col := range lpCol {
		if col >= 0 {
			x[j] = optX[col]
		}
	}
	return &relaxation{x: x, objective: optF + constObj, outcome: relaxSolved}, nil
}

// mostFractional returns the free binary furthest from integral, or -1
func (f *standardForm) mostFractional(x []float64, fixed []int8) int {
	branch := -1
	worst := integralityEpsilon
	for j, bin := range f.binary {
		if !bin || fixed[j] != unfixed {
			continue
		}
		if frac := math.Abs(x[j] - math.Round(x[j])); frac > worst {
			worst = frac
			branch = j
		}
	}
	return branch
}

func (f *standardForm) objective(x []float64) float64 {
	total := 0.0
	for j, c := range f.cost {
		total += c * x[j]
	}
	return total
}

func (f *standardForm) activities(x []float64) []float64 {
	act := make([]float64, len(f.checks))
	for i, r := range f.checks {
		for _, t := range r.terms {
			act[i] += t.coef * x[t.col]
		}
	}
	return act
}

func (f *standardForm) feasible(act []float64) bool {
	for i, r := range f.checks {
		if !r.bound.Admits(act[i], feasibilityTolerance) {
			return false
		}
	}
	return true
}

type roundingRule func(v float64) float64

var roundingRules = []roundingRule{
	math.Round,
	func(v float64) float64 {
		if v > integralityEpsilon {
			return 1
		}
		return 0
	},
	func(v float64) float64 {
		if v < 1-integralityEpsilon {
			return 0
		}
		return 1
	},
}

// roundings turns an LP point into feasible binary points: each rule rounds the
// binaries, then binaries with a positive cost are switched off most expensive
// first while every row stays satisfied.
func (f *standardForm) roundings(x []float64) [][]float64 {
	var found [][]float64
	for _, rule := range roundingRules {
		cand := append([]float64(nil), x...)
		for j, bin := range f.binary {
			if bin {
				cand[j] = rule(x[j])
			}
		}
		act := f.activities(cand)
		if !f.feasible(act) {
			continue
		}
		f.switchOff(cand, act)
		found = append(found, cand)
	}
	return found
}

func (f *standardForm) switchOff(x, act []float64) {
	var on []int
	for j, bin := range f.binary {
		if bin && x[j] == 1 && f.cost[j] > 0 {
			on = append(on, j)
		}
	}
	sort.SliceStable(on, func(a, b int) bool { return f.cost[on[a]] > f.cost[on[b]] })

	for _, j := range on {
		ok := true
		for _, ref := range f.touches[j] {
			if !f.checks[ref.row].bound.Admits(act[ref.row]-ref.coef, feasibilityTolerance) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		x[j] = 0
		for _, ref := range f.touches[j] {
			act[ref.row] -= ref.coef
		}
	}
}
