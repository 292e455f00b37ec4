package heuristics_test

import (
	"context"
	"testing"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/discovery/heuristics"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/examples"
	"github.com/jt05610/pmeval/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiner(t *testing.T) {
	for _, tc := range []*fixtures.MinerTestCase{
		{Name: "two-traces", Miner: heuristics.New(), Log: examples.TwoTraces(), Fits: true},
		{Name: "sequential", Miner: heuristics.New(), Log: examples.Sequential(), Fits: true},
		{Name: "choice", Miner: heuristics.New(), Log: examples.Choice(), Fits: true},
		{Name: "running", Miner: heuristics.New(), Log: examples.Running(), Fits: true},
		{Name: "loop", Miner: heuristics.New(), Log: examples.Loop()},
	} {
		fixtures.RunMinerTest(t, tc)
	}
}

func TestDependencyGraph(t *testing.T) {
	d := examples.Running().DFG()
	g := heuristics.New().DependencyGraph(d)
	assert.InDelta(t, 0.75, g.Dependency("a", "b"), 1e-9)
	assert.InDelta(t, 2.0/3, g.Dependency("a", "c"), 1e-9)
	assert.InDelta(t, 1.0/6, g.Dependency("b", "c"), 1e-9)
	assert.InDelta(t, -1.0/6, g.Dependency("c", "b"), 1e-9)
	assert.True(t, g.Edges[eventlog.Pair{From: "a", To: "b"}])
	assert.False(t, g.Edges[eventlog.Pair{From: "b", To: "c"}])
}

func consumers(model *petri.AcceptingNet, p *petri.Place) []string {
	var ret []string
	for _, a := range model.Outputs(p) {
		ret = append(ret, a.Dest.(*petri.Transition).Label)
	}
	return ret
}

func TestMiner_AndSplit(t *testing.T) {
	model, err := heuristics.New().Discover(context.Background(), examples.Running())
	require.NoError(t, err)
	a := model.Transition("a")
	require.NotNil(t, a)
	var bindings [][]string
	for _, arc := range model.Outputs(a) {
		bindings = append(bindings, consumers(model, arc.Dest.(*petri.Place)))
	}
	// b and c run concurrently after a, e excludes both
	assert.ElementsMatch(t, [][]string{{"b", "e"}, {"c", "e"}}, bindings)
	d := model.Transition("d")
	require.NotNil(t, d)
	assert.Len(t, model.Inputs(d), 2)
	for _, tr := range model.Transitions {
		assert.False(t, tr.Silent(), "unexpected silent transition %s", tr.ID)
	}
}

func TestMiner_Threshold(t *testing.T) {
	m := heuristics.New()
	m.DependencyThreshold = 0.9
	d := examples.Choice().DFG()
	g := m.DependencyGraph(d)
	// a keeps its best successor even when no edge passes the threshold
	assert.NotEmpty(t, g.Edges)
	model, err := m.Discover(context.Background(), examples.Choice())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, model.Labels())
}

func TestMiner_Empty(t *testing.T) {
	_, err := heuristics.New().Discover(context.Background(), eventlog.FromSequences("empty", []string{}))
	assert.ErrorIs(t, err, heuristics.ErrEmptyLog)
}
