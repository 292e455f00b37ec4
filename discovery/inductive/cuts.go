package inductive

import (
	"sort"

	"github.com/jt05610/pmeval/eventlog"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// alphabet indexes the activities of a DFG as gonum node ids.
type alphabet struct {
	names []string
	ids   map[string]int64
}

func newAlphabet(names []string) *alphabet {
	a := &alphabet{names: names, ids: make(map[string]int64, len(names))}
	for i, n := range names {
		a.ids[n] = int64(i)
	}
	return a
}

func (a *alphabet) group(nodes []graph.Node) []string {
	ret := make([]string, len(nodes))
	for i, n := range nodes {
		ret[i] = a.names[n.ID()]
	}
	sort.Strings(ret)
	return ret
}

func (a *alphabet) undirected(connected func(x, y string) bool) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := range a.names {
		g.AddNode(simple.Node(i))
	}
	for i, x := range a.names {
		for j := i + 1; j < len(a.names); j++ {
			y := a.names[j]
			if connected(x, y) {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	return g
}

func (a *alphabet) directed(d *eventlog.DFG) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for i := range a.names {
		g.AddNode(simple.Node(i))
	}
	for p := range d.Edges {
		if p.From == p.To {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(a.ids[p.From]), T: simple.Node(a.ids[p.To])})
	}
	return g
}

func (a *alphabet) components(g *simple.UndirectedGraph) [][]string {
	cc := topo.ConnectedComponents(g)
	ret := make([][]string, len(cc))
	for i, c := range cc {
		ret[i] = a.group(c)
	}
	sortGroups(ret)
	return ret
}

func sortGroups(gg [][]string) {
	sort.Slice(gg, func(i, j int) bool { return gg[i][0] < gg[j][0] })
}

// xorCut splits the alphabet into the connected components of the DFG.
func xorCut(d *eventlog.DFG) [][]string {
	a := newAlphabet(d.Activities)
	g := a.undirected(func(x, y string) bool { return d.Follows(x, y) || d.Follows(y, x) })
	groups := a.components(g)
	if len(groups) < 2 {
		return nil
	}
	return groups
}

type reachability map[string]map[string]bool

func reach(a *alphabet, d *eventlog.DFG) reachability {
	g := a.directed(d)
	r := make(reachability, len(a.names))
	for i, x := range a.names {
		r[x] = make(map[string]bool)
		for j, y := range a.names {
			if i != j && topo.PathExistsIn(g, simple.Node(i), simple.Node(j)) {
				r[x][y] = true
			}
		}
	}
	return r
}

func (r reachability) all(from, to []string) bool {
	for _, x := range from {
		for _, y := range to {
			if !r[x][y] {
				return false
			}
		}
	}
	return true
}

func (r reachability) any(from, to []string) bool {
	for _, x := range from {
		for _, y := range to {
			if r[x][y] {
				return true
			}
		}
	}
	return false
}

// sequenceCut orders the strongly connected components of the DFG, merging
// components that cannot reach each other.
func sequenceCut(d *eventlog.DFG) [][]string {
	a := newAlphabet(d.Activities)
	r := reach(a, d)
	var groups [][]string
	for _, scc := range topo.TarjanSCC(a.directed(d)) {
		groups = append(groups, a.group(scc))
	}
	for merged := true; merged; {
		merged = false
	outer:
		for i := range groups {
			for j := i + 1; j < len(groups); j++ {
				if !r.any(groups[i], groups[j]) && !r.any(groups[j], groups[i]) {
					groups[i] = append(groups[i], groups[j]...)
					sort.Strings(groups[i])
					groups = append(groups[:j], groups[j+1:]...)
					merged = true
					break outer
				}
			}
		}
	}
	if len(groups) < 2 {
		return nil
	}
	reached := make(map[string]int, len(groups))
	for i, g := range groups {
		for j, h := range groups {
			if i != j && r.any(g, h) {
				reached[g[0]]++
			}
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return reached[groups[i][0]] > reached[groups[j][0]]
	})
	for i := range groups {
		for j := i + 1; j < len(groups); j++ {
			if !r.all(groups[i], groups[j]) || r.any(groups[j], groups[i]) {
				return nil
			}
		}
	}
	return groups
}

func containsAny(group []string, set map[string]int) bool {
	for _, x := range group {
		if _, ok := set[x]; ok {
			return true
		}
	}
	return false
}

// parallelCut splits the alphabet into components of the negated DFG. Every
// component must contain a start and an end activity; components that do
// not are merged into the first one that does.
func parallelCut(d *eventlog.DFG) [][]string {
	a := newAlphabet(d.Activities)
	g := a.undirected(func(x, y string) bool { return !d.Parallel(x, y) })
	var valid, invalid [][]string
	for _, c := range a.components(g) {
		if containsAny(c, d.Start) && containsAny(c, d.End) {
			valid = append(valid, c)
		} else {
			invalid = append(invalid, c)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	for _, c := range invalid {
		valid[0] = append(valid[0], c...)
	}
	sort.Strings(valid[0])
	if len(valid) < 2 {
		return nil
	}
	sortGroups(valid)
	return valid
}

// loopCut puts start and end activities in the body and every other
// component in a redo part, as long as it is only entered from end
// activities and only left towards start activities.
func loopCut(d *eventlog.DFG) [][]string {
	body := make(map[string]bool)
	for a := range d.Start {
		body[a] = true
	}
	for a := range d.End {
		body[a] = true
	}
	var rest []string
	for _, a := range d.Activities {
		if !body[a] {
			rest = append(rest, a)
		}
	}
	if len(rest) == 0 {
		return nil
	}
	ra := newAlphabet(rest)
	g := ra.undirected(func(x, y string) bool { return d.Follows(x, y) || d.Follows(y, x) })
	var redos [][]string
	for _, c := range ra.components(g) {
		if isRedo(d, c, body) {
			redos = append(redos, c)
			continue
		}
		for _, x := range c {
			body[x] = true
		}
	}
	if len(redos) == 0 {
		return nil
	}
	var do []string
	for _, a := range d.Activities {
		if body[a] {
			do = append(do, a)
		}
	}
	return append([][]string{do}, redos...)
}

func isRedo(d *eventlog.DFG, c []string, body map[string]bool) bool {
	in := make(map[string]bool, len(c))
	for _, x := range c {
		in[x] = true
	}
	enteredFrom := make(map[string]bool)
	leftTo := make(map[string]bool)
	for p := range d.Edges {
		switch {
		case body[p.From] && in[p.To]:
			if _, end := d.End[p.From]; !end {
				return false
			}
			enteredFrom[p.From] = true
		case in[p.From] && body[p.To]:
			if _, start := d.Start[p.To]; !start {
				return false
			}
			leftTo[p.To] = true
		}
	}
	if len(enteredFrom) == 0 || len(leftTo) == 0 {
		return false
	}
	return len(enteredFrom) == len(d.End) && len(leftTo) == len(d.Start)
}
