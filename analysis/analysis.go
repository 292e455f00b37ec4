// Package analysis computes structural facts about discovered nets: the
// incidence matrix, the workflow-net shape and boundedness from a
// coverability tree.
package analysis

import (
	"fmt"
	"strconv"
	"strings"

	petri "github.com/jt05610/pmeval"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
	"gonum.org/v1/gonum/mat"
)

// omega stands for an unbounded place count in the coverability tree.
const omega = 1e6

type Net struct {
	*petri.AcceptingNet
}

func New(model *petri.AcceptingNet) *Net {
	return &Net{AcceptingNet: model}
}

type State []float64

func (net *Net) arcNet(t *petri.Transition, p *petri.Place) float64 {
	ret := float64(0)
	if a := net.Arc(t, p); a != nil {
		ret += float64(a.Weight)
	}
	if a := net.Arc(p, t); a != nil {
		ret -= float64(a.Weight)
	}
	return ret
}

// Incidence is the transitions × places matrix of net token changes.
func (net *Net) Incidence() *mat.Dense {
	m := len(net.Places)
	n := len(net.Transitions)
	if m == 0 || n == 0 {
		return &mat.Dense{}
	}
	d := make([]float64, m*n)
	for i, trans := range net.Transitions {
		for j, place := range net.Places {
			d[i*m+j] = net.arcNet(trans, place)
		}
	}
	return mat.NewDense(n, m, d)
}

// Incidence is a shorthand for New(model).Incidence().
func Incidence(model *petri.AcceptingNet) *mat.Dense {
	return New(model).Incidence()
}

func (net *Net) InitialState() State {
	ret := make(State, len(net.Places))
	for i, p := range net.Places {
		ret[i] = float64(net.Initial[p])
	}
	return ret
}

func (net *Net) enabled(state State, t *petri.Transition) bool {
	for _, arc := range net.Inputs(t) {
		pl := arc.Src.(*petri.Place)
		for i, p := range net.Places {
			if p == pl && state[i] < float64(arc.Weight) {
				return false
			}
		}
	}
	return true
}

// NextState fires transition t of the incidence matrix on state.
func (net *Net) NextState(inc *mat.Dense, state State, t int) (State, bool) {
	if !net.enabled(state, net.Transitions[t]) {
		return nil, false
	}
	delta := mat.NewVecDense(len(state), mat.Row(nil, t, inc))
	var out mat.VecDense
	out.AddVec(mat.NewVecDense(len(state), state), delta)
	ret := make(State, len(state))
	for i := range ret {
		ret[i] = out.AtVec(i)
		if state[i] >= omega {
			ret[i] = omega
		}
	}
	return ret, true
}

func (s State) Dominates(b State) bool {
	oneGt := false
	for i := range s {
		if s[i] < b[i] {
			return false
		}
		if s[i] > b[i] {
			oneGt = true
		}
	}
	return oneGt
}

func (s State) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		if v >= omega {
			parts[i] = "ω"
			continue
		}
		parts[i] = strconv.Itoa(int(v))
	}
	return "(" + strings.Join(parts, ",") + ")"
}

type TreeNode struct {
	State    State
	Parent   *TreeNode
	Children []*TreeNode
}

// accelerate raises to ω every place in which s strictly exceeds an
// ancestor it dominates.
func (t *TreeNode) accelerate(s State) {
	for par := t; par != nil; par = par.Parent {
		if !s.Dominates(par.State) {
			continue
		}
		for i := range s {
			if s[i] > par.State[i] {
				s[i] = omega
			}
		}
	}
}

type Tree struct {
	Root *TreeNode
	// Size is the number of distinct states in the tree.
	Size int
	// Truncated is set when the state limit stopped the construction.
	Truncated bool
}

// CTree builds the coverability tree breadth first, up to limit states.
func (net *Net) CTree(limit int) *Tree {
	inc := net.Incidence()
	root := &TreeNode{State: net.InitialState()}
	tree := &Tree{Root: root}
	if len(net.Places) == 0 || len(net.Transitions) == 0 {
		tree.Size = 1
		return tree
	}
	seen := map[string]bool{root.State.String(): true}
	queue := []*TreeNode{root}
	for len(queue) > 0 {
		if limit > 0 && len(seen) >= limit {
			tree.Truncated = true
			break
		}
		node := queue[0]
		queue = queue[1:]
		for t := range net.Transitions {
			next, ok := net.NextState(inc, node.State, t)
			if !ok {
				continue
			}
			node.accelerate(next)
			child := &TreeNode{State: next, Parent: node}
			node.Children = append(node.Children, child)
			id := next.String()
			if seen[id] {
				continue
			}
			seen[id] = true
			queue = append(queue, child)
		}
	}
	tree.Size = len(seen)
	return tree
}

// Unbounded returns the indices of places that reach ω.
func (t *Tree) Unbounded() []int {
	found := make(map[int]bool)
	var walk func(n *TreeNode)
	walk = func(n *TreeNode) {
		for i, v := range n.State {
			if v >= omega {
				found[i] = true
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	var ret []int
	for i := range t.Root.State {
		if found[i] {
			ret = append(ret, i)
		}
	}
	return ret
}

// Report summarises the structure of a model.
type Report struct {
	Places      int
	Transitions int
	Silent      int
	Arcs        int
	// WorkflowNet holds when there is one source place, one sink place and
	// every node lies on a path between them.
	WorkflowNet bool
	Source      string
	Sink        string
	// Bounded is false when the coverability tree found an unbounded
	// place. It is only meaningful when BoundednessKnown is set.
	Bounded          bool
	BoundednessKnown bool
	Problems         []string
}

// DefaultStateLimit bounds the coverability tree built by Check.
const DefaultStateLimit = 5000

func (net *Net) graphs() (fwd, rev *simple.DirectedGraph, ids map[petri.Node]int64) {
	fwd, rev = simple.NewDirectedGraph(), simple.NewDirectedGraph()
	ids = make(map[petri.Node]int64)
	add := func(n petri.Node) {
		id := int64(len(ids))
		ids[n] = id
		fwd.AddNode(simple.Node(id))
		rev.AddNode(simple.Node(id))
	}
	for _, p := range net.Places {
		add(p)
	}
	for _, t := range net.Transitions {
		add(t)
	}
	for _, a := range net.Arcs {
		from, to := simple.Node(ids[a.Src]), simple.Node(ids[a.Dest])
		fwd.SetEdge(simple.Edge{F: from, T: to})
		rev.SetEdge(simple.Edge{F: to, T: from})
	}
	return fwd, rev, ids
}

func reached(g *simple.DirectedGraph, from int64) map[int64]bool {
	ret := make(map[int64]bool)
	bf := traverse.BreadthFirst{Visit: func(n graph.Node) { ret[n.ID()] = true }}
	bf.Walk(g, simple.Node(from), nil)
	return ret
}

// Check inspects the model's shape and boundedness.
func Check(model *petri.AcceptingNet) *Report {
	net := New(model)
	r := &Report{
		Places:      len(net.Places),
		Transitions: len(net.Transitions),
		Arcs:        len(net.Arcs),
	}
	for _, t := range net.Transitions {
		if t.Silent() {
			r.Silent++
		}
	}
	var sources, sinks []*petri.Place
	for _, p := range net.Places {
		if len(net.Inputs(p)) == 0 {
			sources = append(sources, p)
		}
		if len(net.Outputs(p)) == 0 {
			sinks = append(sinks, p)
		}
	}
	if len(sources) != 1 {
		r.Problems = append(r.Problems, fmt.Sprintf("%d source places", len(sources)))
	}
	if len(sinks) != 1 {
		r.Problems = append(r.Problems, fmt.Sprintf("%d sink places", len(sinks)))
	}
	if len(sources) == 1 && len(sinks) == 1 {
		r.Source, r.Sink = sources[0].ID, sinks[0].ID
		fwd, rev, ids := net.graphs()
		fromSource := reached(fwd, ids[sources[0]])
		toSink := reached(rev, ids[sinks[0]])
		nodes := make([]petri.Node, 0, len(ids))
		for _, p := range net.Places {
			nodes = append(nodes, p)
		}
		for _, t := range net.Transitions {
			nodes = append(nodes, t)
		}
		for _, n := range nodes {
			if id := ids[n]; !fromSource[id] || !toSink[id] {
				r.Problems = append(r.Problems, fmt.Sprintf("%s is not on a source to sink path", n.Identifier()))
			}
		}
	}
	r.WorkflowNet = len(r.Problems) == 0
	tree := net.CTree(DefaultStateLimit)
	unbounded := tree.Unbounded()
	r.BoundednessKnown = !tree.Truncated || len(unbounded) > 0
	r.Bounded = len(unbounded) == 0
	for _, i := range unbounded {
		r.Problems = append(r.Problems, fmt.Sprintf("place %s is unbounded", net.Places[i].ID))
	}
	return r
}
