// Package optimization provides the solver boundary: a generic integer program,
// its snapshot codec and the solver adapters that consume it.
package optimization

import (
	"errors"
	"fmt"
	"math"
)

// Direction is the sense of the objective
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "max"
	}
	return "min"
}

// BoundKind is the comparison type of a constraint row
type BoundKind int

const (
	BoundLower  BoundKind = iota // row >= Lower
	BoundUpper                   // row <= Upper
	BoundDouble                  // Lower <= row <= Upper
	BoundFixed                   // row == Lower
)

func (k BoundKind) String() string {
	switch k {
	case BoundLower:
		return ">="
	case BoundUpper:
		return "<="
	case BoundDouble:
		return "range"
	case BoundFixed:
		return "=="
	default:
		return fmt.Sprintf("BoundKind(%d)", int(k))
	}
}

// Bound is the right-hand side of a constraint row
type Bound struct {
	Kind  BoundKind `msgpack:"kind"`
	Lower float64   `msgpack:"lb"`
	Upper float64   `msgpack:"ub"`
}

// AtLeast builds a row >= v bound
func AtLeast(v float64) Bound { return Bound{Kind: BoundLower, Lower: v} }

// AtMost builds a row <= v bound
func AtMost(v float64) Bound { return Bound{Kind: BoundUpper, Upper: v} }

// Between builds a lo <= row <= hi bound
func Between(lo, hi float64) Bound { return Bound{Kind: BoundDouble, Lower: lo, Upper: hi} }

// Exactly builds a row == v bound
func Exactly(v float64) Bound { return Bound{Kind: BoundFixed, Lower: v, Upper: v} }

// Admits reports whether a row activity satisfies the bound within tol
func (b Bound) Admits(activity, tol float64) bool {
	switch b.Kind {
	case BoundLower:
		return activity >= b.Lower-tol
	case BoundUpper:
		return activity <= b.Upper+tol
	case BoundDouble:
		return activity >= b.Lower-tol && activity <= b.Upper+tol
	case BoundFixed:
		return math.Abs(activity-b.Lower) <= tol
	default:
		return false
	}
}

func (b Bound) String() string {
	switch b.Kind {
	case BoundLower:
		return fmt.Sprintf(">= %g", b.Lower)
	case BoundUpper:
		return fmt.Sprintf("<= %g", b.Upper)
	case BoundDouble:
		return fmt.Sprintf("in [%g, %g]", b.Lower, b.Upper)
	case BoundFixed:
		return fmt.Sprintf("== %g", b.Lower)
	default:
		return b.Kind.String()
	}
}

// Term is one coefficient of a constraint row
type Term struct {
	Var  string  `msgpack:"var"`
	Coef float64 `msgpack:"coef"`
}

// Row is one constraint of the program
type Row struct {
	Name  string `msgpack:"name"`
	Terms []Term `msgpack:"terms"`
	Bound Bound  `msgpack:"bound"`
}

// Variable is one decision variable with its objective coefficient.
// Binary variables take 0 or 1; the rest are continuous and non-negative.
type Variable struct {
	Name      string  `msgpack:"name"`
	Objective float64 `msgpack:"obj"`
	Binary    bool    `msgpack:"bin"`
}

// Program is the full objective + constraint set handed to a solver
type Program struct {
	Name      string     `msgpack:"name"`
	Direction Direction  `msgpack:"dir"`
	Variables []Variable `msgpack:"vars"`
	Rows      []Row      `msgpack:"rows"`

	varIndex map[string]int
}

var (
	ErrDuplicateVariable = errors.New("duplicate variable")
	ErrDuplicateRow      = errors.New("duplicate row")
	ErrUnknownVariable   = errors.New("unknown variable")
	ErrInvalidBound      = errors.New("invalid bound")
)

// NewProgram creates an empty program
func NewProgram(name string, direction Direction) *Program {
	return &Program{
		Name:      name,
		Direction: direction,
		varIndex:  make(map[string]int),
	}
}

// AddVariable appends a decision variable and returns its column index
func (p *Program) AddVariable(v Variable) (int, error) {
	idx := p.index()
	if _, exists := idx[v.Name]; exists {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateVariable, v.Name)
	}
	p.Variables = append(p.Variables, v)
	idx[v.Name] = len(p.Variables) - 1
	return len(p.Variables) - 1, nil
}

// AddRow appends a constraint row
func (p *Program) AddRow(row Row) {
	p.Rows = append(p.Rows, row)
}

// VariableIndex returns the column of a variable
func (p *Program) VariableIndex(name string) (int, bool) {
	i, ok := p.index()[name]
	return i, ok
}

// Binaries lists the variables declared binary, in column order
func (p *Program) Binaries() []string {
	var names []string
	for _, v := range p.Variables {
		if v.Binary {
			names = append(names, v.Name)
		}
	}
	return names
}

// Row looks up a constraint row by name
func (p *Program) Row(name string) (Row, bool) {
	for _, r := range p.Rows {
		if r.Name == name {
			return r, true
		}
	}
	return Row{}, false
}

// Activity evaluates a row against an assignment. Missing variables count as zero.
func (r Row) Activity(values map[string]float64) float64 {
	var sum float64
	for _, t := range r.Terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

// ObjectiveValue evaluates the objective against an assignment
func (p *Program) ObjectiveValue(values map[string]float64) float64 {
	var sum float64
	for _, v := range p.Variables {
		sum += v.Objective * values[v.Name]
	}
	return sum
}

// Violations lists the rows an assignment does not satisfy
func (p *Program) Violations(values map[string]float64, tol float64) []string {
	var names []string
	for _, r := range p.Rows {
		if !r.Bound.Admits(r.Activity(values), tol) {
			names = append(names, r.Name)
		}
	}
	return names
}

// Validate checks the structural integrity of the program
func (p *Program) Validate() error {
	seen := make(map[string]struct{}, len(p.Variables))
	for _, v := range p.Variables {
		if v.Name == "" {
			return fmt.Errorf("%w: empty name", ErrUnknownVariable)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateVariable, v.Name)
		}
		seen[v.Name] = struct{}{}
	}

	rows := make(map[string]struct{}, len(p.Rows))
	for _, r := range p.Rows {
		if _, dup := rows[r.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateRow, r.Name)
		}
		rows[r.Name] = struct{}{}

		if r.Bound.Kind == BoundDouble && r.Bound.Lower > r.Bound.Upper {
			return fmt.Errorf("%w: row %s has lower %g > upper %g", ErrInvalidBound, r.Name, r.Bound.Lower, r.Bound.Upper)
		}
		if r.Bound.Kind < BoundLower || r.Bound.Kind > BoundFixed {
			return fmt.Errorf("%w: row %s has kind %d", ErrInvalidBound, r.Name, r.Bound.Kind)
		}
		for _, t := range r.Terms {
			if _, ok := seen[t.Var]; !ok {
				return fmt.Errorf("%w: row %s references %s", ErrUnknownVariable, r.Name, t.Var)
			}
		}
	}
	return nil
}

// index rebuilds the name lookup when the program was decoded or built by hand
func (p *Program) index() map[string]int {
	if p.varIndex == nil || len(p.varIndex) != len(p.Variables) {
		p.varIndex = make(map[string]int, len(p.Variables))
		for i, v := range p.Variables {
			p.varIndex[v.Name] = i
		}
	}
	return p.varIndex
}
