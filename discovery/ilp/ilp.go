// Package ilp implements an ILP miner based on language-based regions. Each
// place is the optimal solution of a 0/1 program that keeps the place's
// token count non-negative on every prefix of the log.
package ilp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/eventlog"
	"go.uber.org/zap"
)

const (
	Name = "ilp"

	startActivity = "▶"
	endActivity   = "■"
)

var ErrEmptyLog = errors.New("ilp: log has no events")

type Miner struct {
	// MaxNodes bounds the branch and bound per place. Zero means no bound.
	MaxNodes int
	Logger   *zap.Logger
}

func New() *Miner {
	return &Miner{MaxNodes: 20000, Logger: zap.NewNop()}
}

func (m *Miner) Name() string { return Name }

// language is the prefix-closed, extended log in Parikh vector form.
type language struct {
	alphabet []string
	index    map[string]int
	// prefixes maps a (parikh, next transition) key to its constraint
	prefixes map[string]prefix
	finals   map[string][]float64
	// weight of each transition in the objective
	weight []float64
}

type prefix struct {
	parikh []float64
	next   int
}

func parikhKey(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(int(x))
	}
	return strings.Join(parts, ",")
}

func newLanguage(vs []eventlog.Variant, activities []string) *language {
	l := &language{
		alphabet: append(append([]string{startActivity}, activities...), endActivity),
		index:    make(map[string]int),
		prefixes: make(map[string]prefix),
		finals:   make(map[string][]float64),
	}
	for i, a := range l.alphabet {
		l.index[a] = i
	}
	n := len(l.alphabet)
	l.weight = make([]float64, n)
	for _, v := range vs {
		ext := append(append([]string{startActivity}, v.Activities...), endActivity)
		parikh := make([]float64, n)
		for _, a := range ext {
			t := l.index[a]
			key := parikhKey(parikh) + "|" + strconv.Itoa(t)
			if _, ok := l.prefixes[key]; !ok {
				l.prefixes[key] = prefix{parikh: append([]float64(nil), parikh...), next: t}
			}
			parikh[t]++
			for i, c := range parikh {
				l.weight[i] += c * float64(v.Count)
			}
		}
		l.finals[parikhKey(parikh)] = append([]float64(nil), parikh...)
	}
	return l
}

// causalPairs returns the causal relation of the extended log.
func (l *language) causalPairs(d *eventlog.DFG) [][2]int {
	follows := func(a, b string) bool {
		switch {
		case a == startActivity:
			return d.Start[b] > 0
		case b == endActivity:
			return d.End[a] > 0
		case a == endActivity || b == startActivity:
			return false
		}
		return d.Follows(a, b)
	}
	var ret [][2]int
	for _, a := range l.alphabet {
		for _, b := range l.alphabet {
			if a != b && follows(a, b) && !follows(b, a) {
				ret = append(ret, [2]int{l.index[a], l.index[b]})
			}
		}
	}
	return ret
}

// program builds the region program for one causal pair. Variables are
// x_0..x_{n-1} (arcs into the place) then y_0..y_{n-1} (arcs out of it).
func (l *language) program(from, to int) *program {
	n := len(l.alphabet)
	p := &program{cost: make([]float64, 2*n)}
	for i, w := range l.weight {
		p.cost[i] = w
		p.cost[n+i] = -w
	}
	keys := make([]string, 0, len(l.prefixes))
	for k := range l.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pre := l.prefixes[k]
		coefs := make([]float64, 2*n)
		for i, c := range pre.parikh {
			coefs[i] = c
			coefs[n+i] = -c
		}
		coefs[n+pre.next]--
		p.ge(coefs, 0)
	}
	finals := make([]string, 0, len(l.finals))
	for k := range l.finals {
		finals = append(finals, k)
	}
	sort.Strings(finals)
	for _, k := range finals {
		parikh := l.finals[k]
		coefs := make([]float64, 2*n)
		for i, c := range parikh {
			coefs[i] = c
			coefs[n+i] = -c
		}
		p.eq(coefs, 0)
	}
	p.ge(unit(2*n, from, 1), 1)
	p.ge(unit(2*n, n+to, 1), 1)
	return p
}

var solveProgram = (*program).solve

type region struct {
	in  []int
	out []int
}

func (r region) key() string {
	return fmt.Sprint(r.in, r.out)
}

// Discover mines one place per causal pair of the extended log.
func (m *Miner) Discover(ctx context.Context, log *eventlog.Log) (*petri.AcceptingNet, error) {
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	vs := log.Variants()
	d := eventlog.DFGOf(vs)
	if len(d.Activities) == 0 {
		return nil, ErrEmptyLog
	}
	lang := newLanguage(vs, d.Activities)
	n := len(lang.alphabet)
	seen := make(map[string]bool)
	var regions []region
	for _, pair := range lang.causalPairs(d) {
		from, to := lang.alphabet[pair[0]], lang.alphabet[pair[1]]
		x, err := solveProgram(lang.program(pair[0], pair[1]), ctx, m.MaxNodes)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, ErrSearchLimit) && x == nil:
			return nil, fmt.Errorf("%s→%s: %w", from, to, err)
		case errors.Is(err, ErrSearchLimit):
			logger.Warn("node limit reached, keeping best place found",
				zap.String("from", from),
				zap.String("to", to),
				zap.Int("max_nodes", m.MaxNodes),
			)
		case errors.Is(err, ErrNoSolution):
			logger.Warn("no place for causal pair",
				zap.String("from", from),
				zap.String("to", to),
			)
			continue
		default:
			return nil, fmt.Errorf("%s→%s: %w", from, to, err)
		}
		var r region
		for i := 0; i < n; i++ {
			if x[i] > 0.5 {
				r.in = append(r.in, i)
			}
			if x[n+i] > 0.5 {
				r.out = append(r.out, i)
			}
		}
		if seen[r.key()] {
			continue
		}
		seen[r.key()] = true
		regions = append(regions, r)
	}

	net := petri.NewNet(Name)
	transitions := make([]*petri.Transition, n)
	for i, a := range lang.alphabet {
		label := a
		if a == startActivity || a == endActivity {
			label = ""
		}
		transitions[i] = net.AddTransition(a, label)
	}
	source := net.AddPlace("source")
	sink := net.AddPlace("sink")
	net.MustArc(source, transitions[0])
	net.MustArc(transitions[n-1], sink)
	for i, r := range regions {
		pl := net.AddPlace(fmt.Sprintf("c%d", i+1))
		for _, t := range r.in {
			net.MustArc(transitions[t], pl)
		}
		for _, t := range r.out {
			net.MustArc(pl, transitions[t])
		}
	}
	return petri.NewAcceptingNet(net,
		petri.Marking{source: 1},
		petri.Marking{sink: 1},
	), nil
}
