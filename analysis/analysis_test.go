package analysis_test

import (
	"fmt"
	"strings"
	"testing"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/analysis"
	"github.com/jt05610/pmeval/examples"
	"github.com/stretchr/testify/assert"
)

func net() *analysis.Net {
	n := petri.NewNet("cycle")
	pp := make([]*petri.Place, 4)
	for i := range pp {
		pp[i] = n.AddPlace(fmt.Sprintf("p%d", i+1))
	}
	tt := make([]*petri.Transition, 3)
	for i := range tt {
		name := fmt.Sprintf("t%d", i+1)
		tt[i] = n.AddTransition(name, name)
	}
	n.MustArc(pp[0], tt[0])
	n.MustArc(tt[0], pp[1])
	n.MustArc(pp[1], tt[1])
	n.MustArc(tt[1], pp[2])
	n.MustArc(pp[2], tt[0])
	n.MustArc(tt[1], pp[3])
	n.MustArc(pp[3], tt[2])
	n.MustArc(tt[2], pp[0])
	return analysis.New(petri.NewAcceptingNet(n, petri.Marking{pp[0]: 1, pp[2]: 1}, petri.Marking{pp[0]: 1}))
}

func ExampleNet_Incidence() {
	aNet := net()
	inc := aNet.Incidence()
	fmt.Printf("┌%s┐\n", strings.Repeat(" ", 3*len(aNet.Places)-1))
	for i := range aNet.Transitions {
		fmt.Print("│")
		s := " "
		for j := range aNet.Places {
			if j == len(aNet.Places)-1 {
				s = ""
			}
			fmt.Printf("%2d%s", int(inc.At(i, j)), s)
		}
		fmt.Print("│\n")
	}
	fmt.Printf("└%s┘", strings.Repeat(" ", 3*len(aNet.Places)-1))
	// Output:
	// ┌           ┐
	// │-1  1 -1  0│
	// │ 0 -1  1  1│
	// │ 1  0  0 -1│
	// └           ┘
}

func TestNet_CTree(t *testing.T) {
	tree := net().CTree(0)
	// (1,0,1,0) -> (0,1,0,0) -> (0,0,1,1) -> (1,0,1,0)
	assert.Equal(t, 3, tree.Size)
	assert.False(t, tree.Truncated)
	assert.Empty(t, tree.Unbounded())
	assert.Equal(t, "(1,0,1,0)", tree.Root.State.String())

	truncated := net().CTree(2)
	assert.True(t, truncated.Truncated)
}

func TestNet_NextState(t *testing.T) {
	aNet := net()
	inc := aNet.Incidence()
	_, ok := aNet.NextState(inc, aNet.InitialState(), 1)
	assert.False(t, ok)
	next, ok := aNet.NextState(inc, aNet.InitialState(), 0)
	assert.True(t, ok)
	assert.Equal(t, analysis.State{0, 1, 0, 0}, next)
	assert.True(t, analysis.State{1, 1}.Dominates(analysis.State{1, 0}))
	assert.False(t, analysis.State{1, 1}.Dominates(analysis.State{1, 1}))
}

func TestCheck(t *testing.T) {
	r := analysis.Check(examples.SkipNet())
	assert.Equal(t, 3, r.Places)
	assert.Equal(t, 3, r.Transitions)
	assert.Equal(t, 1, r.Silent)
	assert.Equal(t, 6, r.Arcs)
	assert.True(t, r.WorkflowNet)
	assert.Equal(t, "source", r.Source)
	assert.Equal(t, "sink", r.Sink)
	assert.True(t, r.Bounded)
	assert.True(t, r.BoundednessKnown)
	assert.Empty(t, r.Problems)

	assert.True(t, analysis.Check(examples.FlowerNet("a", "b")).WorkflowNet)
}

func TestCheck_Unbounded(t *testing.T) {
	n := petri.NewNet("pump")
	source := n.AddPlace("source")
	p := n.AddPlace("p")
	tr := n.AddTransition("t", "t")
	n.MustArc(source, tr)
	n.MustArc(tr, source)
	n.MustArc(tr, p)
	r := analysis.Check(petri.NewAcceptingNet(n, petri.Marking{source: 1}, petri.Marking{p: 1}))
	assert.False(t, r.WorkflowNet)
	assert.False(t, r.Bounded)
	assert.True(t, r.BoundednessKnown)
	assert.Equal(t, []string{"0 source places", "place p is unbounded"}, r.Problems)
}

func TestCheck_Dangling(t *testing.T) {
	model := examples.SequenceNet()
	extra := model.AddTransition("x", "x")
	model.MustArc(model.Place("p1"), extra)
	model.MustArc(extra, model.Place("p1"))
	orphan := model.AddTransition("y", "y")
	r := analysis.Check(model)
	assert.False(t, r.WorkflowNet)
	assert.Contains(t, r.Problems, orphan.Identifier()+" is not on a source to sink path")
}
