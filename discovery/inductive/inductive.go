// Package inductive implements the basic inductive miner (IM): the log is
// recursively split along xor, sequence, parallel and loop cuts of its
// directly-follows graph until base cases remain.
package inductive

import (
	"context"
	"errors"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/processtree"
)

const Name = "inductive"

var ErrEmptyLog = errors.New("inductive: log has no traces")

type Miner struct{}

func New() *Miner { return &Miner{} }

func (m *Miner) Name() string { return Name }

// Discover mines a process tree and translates it into a Petri net.
func (m *Miner) Discover(ctx context.Context, log *eventlog.Log) (*petri.AcceptingNet, error) {
	tree, err := m.Tree(ctx, log)
	if err != nil {
		return nil, err
	}
	return processtree.ToPetriNet(tree)
}

// Tree mines the process tree of the log.
func (m *Miner) Tree(ctx context.Context, log *eventlog.Log) (*processtree.Tree, error) {
	if log.Len() == 0 {
		return nil, ErrEmptyLog
	}
	return m.mine(ctx, log.Variants())
}

func (m *Miner) mine(ctx context.Context, vs []eventlog.Variant) (*processtree.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var nonEmpty []eventlog.Variant
	for _, v := range vs {
		if len(v.Activities) > 0 {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) == 0 {
		return processtree.NewTau(), nil
	}
	if len(nonEmpty) < len(vs) {
		child, err := m.mine(ctx, nonEmpty)
		if err != nil {
			return nil, err
		}
		return processtree.New(processtree.Xor, processtree.NewTau(), child), nil
	}

	d := eventlog.DFGOf(nonEmpty)
	if len(d.Activities) == 1 {
		a := d.Activities[0]
		for _, v := range nonEmpty {
			if len(v.Activities) != 1 {
				return processtree.New(processtree.Loop, processtree.NewLeaf(a), processtree.NewTau()), nil
			}
		}
		return processtree.NewLeaf(a), nil
	}

	if groups := xorCut(d); groups != nil {
		return m.recurse(ctx, processtree.Xor, splitXor(nonEmpty, groups))
	}
	if groups := sequenceCut(d); groups != nil {
		return m.recurse(ctx, processtree.Sequence, splitProject(nonEmpty, groups))
	}
	if groups := parallelCut(d); groups != nil {
		return m.recurse(ctx, processtree.Parallel, splitProject(nonEmpty, groups))
	}
	if groups := loopCut(d); groups != nil {
		return m.recurse(ctx, processtree.Loop, splitLoop(nonEmpty, groups))
	}
	return m.fallThrough(ctx, nonEmpty, d)
}

func (m *Miner) recurse(ctx context.Context, op processtree.Operator, logs [][]eventlog.Variant) (*processtree.Tree, error) {
	children := make([]*processtree.Tree, len(logs))
	for i, l := range logs {
		child, err := m.mine(ctx, l)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return processtree.New(op, children...), nil
}

func onceInEveryTrace(vs []eventlog.Variant, a string) bool {
	for _, v := range vs {
		n := 0
		for _, x := range v.Activities {
			if x == a {
				n++
			}
		}
		if n != 1 {
			return false
		}
	}
	return true
}

// splitAt cuts every trace before each position where at holds. It returns
// nil when no trace was cut.
func splitAt(vs []eventlog.Variant, at func(prev, next string) bool) []eventlog.Variant {
	s := newSublog()
	cut := false
	for _, v := range vs {
		start := 0
		for i := 1; i < len(v.Activities); i++ {
			if at(v.Activities[i-1], v.Activities[i]) {
				s.add(v.Activities[start:i], v.Count)
				start = i
				cut = true
			}
		}
		s.add(v.Activities[start:], v.Count)
	}
	if !cut {
		return nil
	}
	return s.variants
}

// fallThrough handles logs without a cut. In order it tries an activity
// that occurs once per trace, put in parallel with the rest, then a strict
// tau loop that splits traces where an end activity is followed by a start
// activity, then a tau loop that splits before every start activity, and
// finally the flower model.
func (m *Miner) fallThrough(ctx context.Context, vs []eventlog.Variant, d *eventlog.DFG) (*processtree.Tree, error) {
	for _, a := range d.Activities {
		if !onceInEveryTrace(vs, a) {
			continue
		}
		rest, err := m.mine(ctx, removeActivity(vs, a))
		if err != nil {
			return nil, err
		}
		return processtree.New(processtree.Parallel, processtree.NewLeaf(a), rest), nil
	}
	strict := splitAt(vs, func(prev, next string) bool {
		return d.End[prev] > 0 && d.Start[next] > 0
	})
	loose := splitAt(vs, func(_, next string) bool { return d.Start[next] > 0 })
	for _, split := range [][]eventlog.Variant{strict, loose} {
		if split == nil {
			continue
		}
		body, err := m.mine(ctx, split)
		if err != nil {
			return nil, err
		}
		return processtree.New(processtree.Loop, body, processtree.NewTau()), nil
	}
	children := []*processtree.Tree{processtree.NewTau()}
	for _, a := range d.Activities {
		children = append(children, processtree.NewLeaf(a))
	}
	return processtree.New(processtree.Loop, children...), nil
}
