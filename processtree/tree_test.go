package processtree_test

import (
	"fmt"
	"testing"

	"github.com/jt05610/pmeval/marked"
	"github.com/jt05610/pmeval/processtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func running() *processtree.Tree {
	return processtree.New(processtree.Sequence,
		processtree.NewLeaf("a"),
		processtree.New(processtree.Xor,
			processtree.New(processtree.Parallel, processtree.NewLeaf("b"), processtree.NewLeaf("c")),
			processtree.NewLeaf("e"),
		),
		processtree.NewLeaf("d"),
	)
}

func ExampleTree_String() {
	fmt.Println(running())
	fmt.Println(running().Leaves())
	// Output:
	// ->( 'a', X( +( 'b', 'c' ), 'e' ), 'd' )
	// [a b c e d]
}

// accepts plays acts on the net, firing silent transitions when needed, and
// reports whether the final marking is reached.
func accepts(t *testing.T, net *marked.Net, acts ...string) bool {
	t.Helper()
	m := net.InitialMarking()
	for _, a := range acts {
		var hit *marked.Path
		for _, tr := range net.WithLabel(a) {
			if p, ok := net.SilentSearch(m, 1000, func(x marked.Marking) bool { return net.Enabled(x, tr) }); ok {
				hit = &marked.Path{Marking: net.FireUnchecked(p.Marking, tr)}
				break
			}
		}
		if hit == nil {
			return false
		}
		m = hit.Marking
	}
	final := net.FinalMarking()
	_, ok := net.SilentSearch(m, 1000, func(x marked.Marking) bool { return x.Equal(final) })
	return ok
}

func TestToPetriNet(t *testing.T) {
	model, err := processtree.ToPetriNet(running())
	require.NoError(t, err)
	assert.Equal(t, "inductive", model.Name)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, model.Labels())
	require.NotNil(t, model.Place("source"))
	require.NotNil(t, model.Place("sink"))
	assert.Equal(t, 1, model.Initial[model.Place("source")])
	assert.Equal(t, 1, model.Final[model.Place("sink")])
	require.NotNil(t, model.Transition("tauSplit_1"))
	assert.True(t, model.Transition("tauSplit_1").Silent())

	net := marked.New(model)
	assert.True(t, accepts(t, net, "a", "b", "c", "d"))
	assert.True(t, accepts(t, net, "a", "c", "b", "d"))
	assert.True(t, accepts(t, net, "a", "e", "d"))
	assert.False(t, accepts(t, net, "a", "b", "d"))
	assert.False(t, accepts(t, net, "a", "e", "b", "d"))
}

func TestToPetriNet_Loop(t *testing.T) {
	tree := processtree.New(processtree.Sequence,
		processtree.NewLeaf("a"),
		processtree.New(processtree.Loop,
			processtree.New(processtree.Sequence, processtree.NewLeaf("b"), processtree.NewLeaf("c")),
			processtree.NewTau(),
		),
		processtree.NewLeaf("d"),
	)
	assert.Equal(t, "->( 'a', *( ->( 'b', 'c' ), tau ), 'd' )", tree.String())
	model, err := processtree.ToPetriNet(tree)
	require.NoError(t, err)
	net := marked.New(model)
	assert.True(t, accepts(t, net, "a", "b", "c", "d"))
	assert.True(t, accepts(t, net, "a", "b", "c", "b", "c", "b", "c", "d"))
	assert.False(t, accepts(t, net, "a", "d"))
	assert.False(t, accepts(t, net, "a", "b", "d"))
}

func TestToPetriNet_Tau(t *testing.T) {
	tree := processtree.New(processtree.Xor, processtree.NewLeaf("a"), processtree.NewTau())
	model, err := processtree.ToPetriNet(tree)
	require.NoError(t, err)
	net := marked.New(model)
	assert.True(t, accepts(t, net))
	assert.True(t, accepts(t, net, "a"))
	assert.False(t, accepts(t, net, "a", "a"))
}

func TestToPetriNet_Malformed(t *testing.T) {
	cases := map[string]*processtree.Tree{
		"unlabelled leaf": processtree.NewLeaf(""),
		"empty choice":    processtree.New(processtree.Xor),
		"empty parallel":  processtree.New(processtree.Parallel),
		"empty loop":      processtree.New(processtree.Loop),
		"unknown":         {Operator: processtree.Operator(42)},
		"nested":          processtree.New(processtree.Sequence, processtree.NewLeaf("a"), processtree.New(processtree.Xor)),
	}
	for name, tree := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := processtree.ToPetriNet(tree)
			assert.ErrorIs(t, err, processtree.ErrMalformed)
		})
	}
}
