// Package alpha implements the alpha algorithm of van der Aalst, Weijters
// and Maruster.
package alpha

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/eventlog"
)

const Name = "alpha"

var ErrEmptyLog = errors.New("alpha: log has no events")

// pair is a candidate place: every activity of A causally precedes every
// activity of B.
type pair struct {
	A []string
	B []string
}

func (p pair) key() string {
	return strings.Join(p.A, ",") + "|" + strings.Join(p.B, ",")
}

func (p pair) String() string {
	return fmt.Sprintf("({%s},{%s})", strings.Join(p.A, ","), strings.Join(p.B, ","))
}

func subset(a, b []string) bool {
	in := make(map[string]bool, len(b))
	for _, x := range b {
		in[x] = true
	}
	for _, x := range a {
		if !in[x] {
			return false
		}
	}
	return true
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	ret := make([]string, 0, len(a)+len(b))
	for _, x := range append(append([]string{}, a...), b...) {
		if !seen[x] {
			seen[x] = true
			ret = append(ret, x)
		}
	}
	sort.Strings(ret)
	return ret
}

type Miner struct{}

func New() *Miner { return &Miner{} }

func (m *Miner) Name() string { return Name }

func choiceClosed(d *eventlog.DFG, set []string) bool {
	for _, a := range set {
		for _, b := range set {
			if !d.Choice(a, b) {
				return false
			}
		}
	}
	return true
}

func causalAll(d *eventlog.DFG, from, to []string) bool {
	for _, a := range from {
		for _, b := range to {
			if !d.Causal(a, b) {
				return false
			}
		}
	}
	return true
}

// maximalPairs computes Y_L: the maximal elements of X_L.
func maximalPairs(ctx context.Context, d *eventlog.DFG) ([]pair, error) {
	var pairs []pair
	seen := make(map[string]bool)
	add := func(p pair) bool {
		k := p.key()
		if seen[k] {
			return false
		}
		seen[k] = true
		pairs = append(pairs, p)
		return true
	}
	for _, a := range d.Activities {
		for _, b := range d.Activities {
			if d.Causal(a, b) && d.Choice(a, a) && d.Choice(b, b) {
				add(pair{A: []string{a}, B: []string{b}})
			}
		}
	}
	for changed := true; changed; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		changed = false
		n := len(pairs)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				p, q := pairs[i], pairs[j]
				a, b := union(p.A, q.A), union(p.B, q.B)
				if !choiceClosed(d, a) || !choiceClosed(d, b) || !causalAll(d, a, b) {
					continue
				}
				if add(pair{A: a, B: b}) {
					changed = true
				}
			}
		}
	}
	var ret []pair
	for i, p := range pairs {
		maximal := true
		for j, q := range pairs {
			if i == j {
				continue
			}
			if subset(p.A, q.A) && subset(p.B, q.B) && p.key() != q.key() {
				maximal = false
				break
			}
		}
		if maximal {
			ret = append(ret, p)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].key() < ret[j].key() })
	return ret, nil
}

// Discover runs the alpha algorithm on the log.
func (m *Miner) Discover(ctx context.Context, log *eventlog.Log) (*petri.AcceptingNet, error) {
	d := log.DFG()
	if len(d.Activities) == 0 {
		return nil, ErrEmptyLog
	}
	places, err := maximalPairs(ctx, d)
	if err != nil {
		return nil, err
	}
	net := petri.NewNet(Name)
	transitions := make(map[string]*petri.Transition, len(d.Activities))
	for _, a := range d.Activities {
		transitions[a] = net.AddTransition(a, a)
	}
	source := net.AddPlace("start")
	sink := net.AddPlace("end")
	for _, a := range d.StartActivities() {
		net.MustArc(source, transitions[a])
	}
	for _, a := range d.EndActivities() {
		net.MustArc(transitions[a], sink)
	}
	for _, p := range places {
		pl := net.AddPlace(p.String())
		for _, a := range p.A {
			net.MustArc(transitions[a], pl)
		}
		for _, b := range p.B {
			net.MustArc(pl, transitions[b])
		}
	}
	return petri.NewAcceptingNet(net,
		petri.Marking{source: 1},
		petri.Marking{sink: 1},
	), nil
}
