// Package heuristics implements a heuristics miner: a dependency graph
// filtered by frequency based measures, turned into a Petri net with
// AND/XOR splits and joins derived from the AND measure.
package heuristics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/eventlog"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

const (
	Name = "heuristics"

	startNode = "▶"
	endNode   = "■"
)

var ErrEmptyLog = errors.New("heuristics: log has no events")

type Config struct {
	DependencyThreshold float64
	AndThreshold        float64
	MinDFGOccurrences   int
}

func DefaultConfig() Config {
	return Config{
		DependencyThreshold: 0.5,
		AndThreshold:        0.65,
		MinDFGOccurrences:   1,
	}
}

type Miner struct {
	Config
}

func New() *Miner { return &Miner{Config: DefaultConfig()} }

func (m *Miner) Name() string { return Name }

// Graph is the dependency graph after filtering, extended with artificial
// start and end nodes.
type Graph struct {
	dfg   *eventlog.DFG
	Edges map[eventlog.Pair]bool
	out   map[string][]string
	in    map[string][]string
}

func (g *Graph) count(a, b string) int {
	switch {
	case a == startNode:
		return g.dfg.Start[b]
	case b == endNode:
		return g.dfg.End[a]
	case a == endNode || b == startNode:
		return 0
	}
	return g.dfg.Count(a, b)
}

// Dependency is the a=>b measure.
func (g *Graph) Dependency(a, b string) float64 {
	ab := float64(g.count(a, b))
	if a == b {
		return ab / (ab + 1)
	}
	ba := float64(g.count(b, a))
	return (ab - ba) / (ab + ba + 1)
}

func (g *Graph) add(a, b string) {
	p := eventlog.Pair{From: a, To: b}
	if g.Edges[p] {
		return
	}
	g.Edges[p] = true
	g.out[a] = append(g.out[a], b)
	g.in[b] = append(g.in[b], a)
}

// DependencyGraph filters the directly-follows relation of the log.
func (m *Miner) DependencyGraph(d *eventlog.DFG) *Graph {
	g := &Graph{
		dfg:   d,
		Edges: make(map[eventlog.Pair]bool),
		out:   make(map[string][]string),
		in:    make(map[string][]string),
	}
	for _, s := range d.StartActivities() {
		g.add(startNode, s)
	}
	for _, e := range d.EndActivities() {
		g.add(e, endNode)
	}
	for _, a := range d.Activities {
		for _, b := range d.Activities {
			if d.Count(a, b) < m.MinDFGOccurrences {
				continue
			}
			if g.Dependency(a, b) >= m.DependencyThreshold {
				g.add(a, b)
			}
		}
	}
	// every activity keeps its strongest connections
	for _, a := range d.Activities {
		if len(g.out[a]) == 0 {
			if b, ok := g.best(a, d.Successors(a), true); ok {
				g.add(a, b)
			}
		}
		if len(g.in[a]) == 0 {
			if b, ok := g.best(a, d.Predecessors(a), false); ok {
				g.add(b, a)
			}
		}
	}
	for _, a := range append([]string{startNode, endNode}, d.Activities...) {
		sort.Strings(g.out[a])
		sort.Strings(g.in[a])
	}
	return g
}

func (g *Graph) best(a string, candidates []string, forward bool) (string, bool) {
	bestScore := 0.0
	best := ""
	for _, c := range candidates {
		if c == a {
			continue
		}
		score := g.Dependency(c, a)
		if forward {
			score = g.Dependency(a, c)
		}
		if best == "" || score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, best != ""
}

// andOut is the a=>(b AND c) measure.
func (g *Graph) andOut(a, b, c string) float64 {
	bc := float64(g.count(b, c) + g.count(c, b))
	return bc / (float64(g.count(a, b)+g.count(a, c)) + 1)
}

// andIn is the (b AND c)=>a measure.
func (g *Graph) andIn(a, b, c string) float64 {
	bc := float64(g.count(b, c) + g.count(c, b))
	return bc / (float64(g.count(b, a)+g.count(c, a)) + 1)
}

func artificial(a string) bool { return a == startNode || a == endNode }

// groups returns the bindings of a node's neighbours: the maximal cliques
// of the exclusive relation. Each clique gets one place; a neighbour in two
// cliques consumes from (or produces into) both, so concurrent neighbours
// never share a place.
func groups(self string, neighbours []string, parallel func(b, c string) bool) [][]string {
	g := simple.NewUndirectedGraph()
	for i := range neighbours {
		g.AddNode(simple.Node(i))
	}
	for i, b := range neighbours {
		for j := i + 1; j < len(neighbours); j++ {
			c := neighbours[j]
			exclusive := artificial(self) || artificial(b) || artificial(c) || b == self || c == self
			if exclusive || !parallel(b, c) {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	cliques := topo.BronKerbosch(g)
	ret := make([][]string, len(cliques))
	for i, clique := range cliques {
		ids := make([]int, len(clique))
		for k, n := range clique {
			ids[k] = int(n.ID())
		}
		sort.Ints(ids)
		ret[i] = make([]string, len(ids))
		for k, id := range ids {
			ret[i][k] = neighbours[id]
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		return strings.Join(ret[i], "\x00") < strings.Join(ret[j], "\x00")
	})
	return ret
}

// containing returns the indices of the groups x belongs to.
func containing(gg [][]string, x string) []int {
	var ret []int
	for i, g := range gg {
		for _, y := range g {
			if y == x {
				ret = append(ret, i)
				break
			}
		}
	}
	return ret
}

type builder struct {
	net    *petri.Net
	trans  map[string]*petri.Transition
	places map[string]*petri.Place
	silent int
}

func (b *builder) place(key, name string) *petri.Place {
	if p, ok := b.places[key]; ok {
		return p
	}
	p := b.net.AddPlace(name)
	b.places[key] = p
	return p
}

// Discover runs the heuristics miner on the log.
func (m *Miner) Discover(ctx context.Context, log *eventlog.Log) (*petri.AcceptingNet, error) {
	d := log.DFG()
	if len(d.Activities) == 0 {
		return nil, ErrEmptyLog
	}
	g := m.DependencyGraph(d)
	outGroups := make(map[string][][]string)
	inGroups := make(map[string][][]string)
	nodes := append([]string{startNode, endNode}, d.Activities...)
	for _, a := range nodes {
		a := a
		outGroups[a] = groups(a, g.out[a], func(b, c string) bool { return g.andOut(a, b, c) >= m.AndThreshold })
		inGroups[a] = groups(a, g.in[a], func(b, c string) bool { return g.andIn(a, b, c) >= m.AndThreshold })
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &builder{
		net:    petri.NewNet(Name),
		trans:  make(map[string]*petri.Transition),
		places: make(map[string]*petri.Place),
	}
	source := b.place("source", "source")
	sink := b.place("sink", "sink")
	for _, a := range d.Activities {
		b.trans[a] = b.net.AddTransition(a, a)
	}
	outPlace := func(a string, gi int) (*petri.Place, error) {
		if a == startNode {
			return source, nil
		}
		key := fmt.Sprintf("out|%s|%d", a, gi)
		if p, ok := b.places[key]; ok {
			return p, nil
		}
		p := b.place(key, fmt.Sprintf("out_%s_%d", a, gi))
		return p, b.connect(b.trans[a], p)
	}
	inPlace := func(a string, hi int) (*petri.Place, error) {
		if a == endNode {
			return sink, nil
		}
		key := fmt.Sprintf("in|%s|%d", a, hi)
		if p, ok := b.places[key]; ok {
			return p, nil
		}
		p := b.place(key, fmt.Sprintf("in_%s_%d", a, hi))
		return p, b.connect(p, b.trans[a])
	}

	edges := make([]eventlog.Pair, 0, len(g.Edges))
	for e := range g.Edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		outs := containing(outGroups[e.From], e.To)
		ins := containing(inGroups[e.To], e.From)
		// a side is private when the edge is the only member of its binding
		privateOut := e.From != startNode && len(outs) == 1 && len(outGroups[e.From][outs[0]]) == 1
		privateIn := e.To != endNode && len(ins) == 1 && len(inGroups[e.To][ins[0]]) == 1
		switch {
		case privateOut && privateIn:
			p := b.place("edge|"+e.From+"|"+e.To, fmt.Sprintf("(%s,%s)", e.From, e.To))
			if err := b.connect(b.trans[e.From], p); err != nil {
				return nil, err
			}
			if err := b.connect(p, b.trans[e.To]); err != nil {
				return nil, err
			}
		case privateOut:
			for _, hi := range ins {
				p, err := inPlace(e.To, hi)
				if err != nil {
					return nil, err
				}
				if err := b.connect(b.trans[e.From], p); err != nil {
					return nil, err
				}
			}
		case privateIn:
			for _, gi := range outs {
				p, err := outPlace(e.From, gi)
				if err != nil {
					return nil, err
				}
				if err := b.connect(p, b.trans[e.To]); err != nil {
					return nil, err
				}
			}
		default:
			b.silent++
			t := b.net.AddTransition(fmt.Sprintf("hid_%d", b.silent), "")
			for _, gi := range outs {
				p, err := outPlace(e.From, gi)
				if err != nil {
					return nil, err
				}
				if err := b.connect(p, t); err != nil {
					return nil, err
				}
			}
			for _, hi := range ins {
				p, err := inPlace(e.To, hi)
				if err != nil {
					return nil, err
				}
				if err := b.connect(t, p); err != nil {
					return nil, err
				}
			}
		}
	}
	return petri.NewAcceptingNet(b.net,
		petri.Marking{source: 1},
		petri.Marking{sink: 1},
	), nil
}

func (b *builder) connect(from, to petri.Node) error {
	if _, err := b.net.AddArc(from, to); err != nil && !errors.Is(err, petri.ErrArcExists) {
		return err
	}
	return nil
}
