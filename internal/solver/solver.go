// Package solver provides a small integer-programming layer: binary and
// bounded-integer variables, linear constraints, a linear objective to
// maximize, and a Solver that reports one of four terminal statuses.
// Callers treat the solver as a black box and must only act on Optimal.
package solver

import "fmt"

// Sense is the comparison direction of a linear constraint.
type Sense int

const (
	LE Sense = iota // sum <= rhs
	GE              // sum >= rhs
	EQ              // sum == rhs
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "=="
	}
	return "?"
}

// Status is the terminal outcome of a solve.
type Status int

const (
	NotSolved Status = iota
	Optimal
	Infeasible
	Unbounded
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "Optimal"
	case Infeasible:
		return "Infeasible"
	case Unbounded:
		return "Unbounded"
	}
	return "NotSolved"
}

// NoBound marks a variable with no finite upper bound.
const NoBound = int(1) << 30

// Variable is a handle to one integer decision variable.
type Variable struct {
	id   int
	name string
	lo   int
	hi   int
}

// Name returns the variable's diagnostic name.
func (v *Variable) Name() string { return v.name }

// Term is one coefficient-variable pair of a linear expression.
type Term struct {
	Var   *Variable
	Coeff float64
}

// Constraint is a named linear constraint over problem variables.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Problem accumulates variables, constraints and the objective.
type Problem struct {
	vars      []*Variable
	cons      []Constraint
	objective []Term
}

// NewProblem returns an empty problem.
func NewProblem() *Problem {
	return &Problem{}
}

// Binary adds a 0/1 variable.
func (p *Problem) Binary(name string) *Variable {
	return p.Int(name, 0, 1)
}

// Int adds an integer variable with inclusive bounds. Pass NoBound as hi
// for an unbounded-above variable.
func (p *Problem) Int(name string, lo, hi int) *Variable {
	v := &Variable{id: len(p.vars), name: name, lo: lo, hi: hi}
	p.vars = append(p.vars, v)
	return v
}

// Add appends a constraint.
func (p *Problem) Add(name string, terms []Term, sense Sense, rhs float64) {
	p.cons = append(p.cons, Constraint{Name: name, Terms: terms, Sense: sense, RHS: rhs})
}

// SetObjective installs the linear expression to maximize.
func (p *Problem) SetObjective(terms []Term) {
	p.objective = terms
}

// NumVariables returns the variable count.
func (p *Problem) NumVariables() int { return len(p.vars) }

// NumConstraints returns the constraint count.
func (p *Problem) NumConstraints() int { return len(p.cons) }

// Solution carries the outcome of a solve. Values are meaningful only
// when Status is Optimal.
type Solution struct {
	Status    Status
	Objective float64
	Nodes     int
	values    []int
}

// Value returns the solved value of a variable.
func (s *Solution) Value(v *Variable) int {
	if s.Status != Optimal || v == nil || v.id >= len(s.values) {
		return 0
	}
	return s.values[v.id]
}

// Solver is the adapter contract: one blocking call, one terminal status.
type Solver interface {
	Solve(p *Problem) Solution
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s: %d terms %s %g", c.Name, len(c.Terms), c.Sense, c.RHS)
}
