package ilp

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

var (
	ErrSearchLimit = errors.New("ilp: branch and bound node limit reached")
	ErrNoSolution  = errors.New("ilp: no integral solution")
)

const (
	simplexTol  = 1e-10
	integralTol = 1e-6
)

// row is one constraint coefs·v <= rhs.
type row struct {
	coefs []float64
	rhs   float64
}

// program is a 0/1 program: minimize cost·v subject to rows, with every
// variable binary.
type program struct {
	cost []float64
	rows []row
}

func (p *program) le(coefs []float64, rhs float64) {
	p.rows = append(p.rows, row{coefs: coefs, rhs: rhs})
}

func (p *program) ge(coefs []float64, rhs float64) {
	neg := make([]float64, len(coefs))
	for i, c := range coefs {
		neg[i] = -c
	}
	p.le(neg, -rhs)
}

func (p *program) eq(coefs []float64, rhs float64) {
	p.le(coefs, rhs)
	p.ge(coefs, rhs)
}

func unit(n, i int, v float64) []float64 {
	ret := make([]float64, n)
	ret[i] = v
	return ret
}

// relax solves the LP relaxation with the extra fixings. Every inequality
// gets its own slack column, which keeps the equality system at full row
// rank as lp.Simplex requires.
func (p *program) relax(fixed map[int]float64) (float64, []float64, error) {
	n := len(p.cost)
	rows := make([]row, 0, len(p.rows)+n+len(fixed))
	rows = append(rows, p.rows...)
	for i := 0; i < n; i++ {
		rows = append(rows, row{coefs: unit(n, i, 1), rhs: 1})
	}
	for i, v := range fixed {
		if v == 0 {
			rows = append(rows, row{coefs: unit(n, i, 1), rhs: 0})
		} else {
			rows = append(rows, row{coefs: unit(n, i, -1), rhs: -1})
		}
	}
	m := len(rows)
	cols := n + m
	a := mat.NewDense(m, cols, nil)
	b := make([]float64, m)
	for r, rw := range rows {
		sign := 1.0
		if rw.rhs < 0 {
			sign = -1
		}
		for j, c := range rw.coefs {
			if c != 0 {
				a.Set(r, j, sign*c)
			}
		}
		a.Set(r, n+r, sign)
		b[r] = sign * rw.rhs
	}
	c := make([]float64, cols)
	copy(c, p.cost)
	f, x, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		return 0, nil, err
	}
	return f, x[:n], nil
}

type search struct {
	ctx      context.Context
	p        *program
	maxNodes int
	nodes    int
	best     float64
	bestX    []float64
}

func (s *search) branch(fixed map[int]float64) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	s.nodes++
	if s.maxNodes > 0 && s.nodes > s.maxNodes {
		return ErrSearchLimit
	}
	f, x, err := s.p.relax(fixed)
	if err != nil {
		// infeasible, or numerically unusable: prune the node
		return nil
	}
	if s.bestX != nil && f >= s.best-integralTol {
		return nil
	}
	frac := -1
	for i, v := range x {
		if math.Abs(v-math.Round(v)) > integralTol {
			frac = i
			break
		}
	}
	if frac < 0 {
		s.best = f
		s.bestX = make([]float64, len(x))
		for i, v := range x {
			s.bestX[i] = math.Round(v)
		}
		return nil
	}
	first, second := 1.0, 0.0
	if x[frac] < 0.5 {
		first, second = 0, 1
	}
	for _, v := range []float64{first, second} {
		next := make(map[int]float64, len(fixed)+1)
		for k, fv := range fixed {
			next[k] = fv
		}
		next[frac] = v
		if err := s.branch(next); err != nil {
			return err
		}
	}
	return nil
}

// solve runs a depth-first branch and bound. When the node limit is hit the
// best integral solution found so far is returned together with
// ErrSearchLimit.
func (p *program) solve(ctx context.Context, maxNodes int) ([]float64, error) {
	s := &search{ctx: ctx, p: p, maxNodes: maxNodes, best: math.Inf(1)}
	err := s.branch(map[int]float64{})
	if err != nil && !errors.Is(err, ErrSearchLimit) {
		return nil, err
	}
	if s.bestX == nil {
		if err != nil {
			return nil, err
		}
		return nil, ErrNoSolution
	}
	return s.bestX, err
}
