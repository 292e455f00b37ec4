package marked_test

import (
	"testing"

	"github.com/jt05610/pmeval/examples"
	"github.com/jt05610/pmeval/marked"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNet_Fire(t *testing.T) {
	model := examples.SequenceNet()
	net := marked.New(model)
	m := net.InitialMarking()
	assert.Equal(t, 1, m.Total())

	a := net.Index(model.Transition("a"))
	b := net.Index(model.Transition("b"))
	assert.Equal(t, []int{a}, net.Available(m))
	assert.False(t, net.Enabled(m, b))
	assert.Equal(t, map[int]int{1: 1}, net.Missing(m, b))

	_, err := net.Fire(m, b)
	assert.ErrorIs(t, err, marked.ErrNotEnabled)

	m, err = net.Fire(m, a)
	require.NoError(t, err)
	m, err = net.Fire(m, b)
	require.NoError(t, err)
	assert.True(t, m.Equal(net.FinalMarking()))
	assert.Equal(t, 1, net.Consumed(a))
	assert.Equal(t, 1, net.Produced(a))
}

func TestNet_FireUnchecked(t *testing.T) {
	model := examples.SequenceNet()
	net := marked.New(model)
	m := net.FireUnchecked(net.InitialMarking(), net.Index(model.Transition("b")))
	assert.Equal(t, marked.Marking{1, -1, 1}, m)
}

func TestMarking(t *testing.T) {
	m := marked.Marking{0, 2, 1}
	c := m.Clone()
	c[0] = 5
	assert.Equal(t, 0, m[0])
	assert.True(t, m.Equal(marked.Marking{0, 2, 1}))
	assert.False(t, m.Equal(c))
	assert.NotEqual(t, m.Key(), c.Key())
	assert.Equal(t, m.Key(), marked.Marking{0, 2, 1}.Key())
	assert.Equal(t, 3, m.Total())
}

func TestNet_Silent(t *testing.T) {
	model := examples.SkipNet()
	net := marked.New(model)
	skip := net.Index(model.Transition("skip_1"))
	assert.Equal(t, []int{skip}, net.Silent())
	assert.True(t, net.IsSilent(skip))
	assert.Equal(t, "b", net.Label(net.Index(model.Transition("b"))))
	assert.Len(t, net.WithLabel("b"), 1)
	assert.Empty(t, net.WithLabel("skip_1"))

	m, err := net.Fire(net.InitialMarking(), net.Index(model.Transition("a")))
	require.NoError(t, err)
	final := net.FinalMarking()
	p, ok := net.SilentSearch(m, 100, func(x marked.Marking) bool { return x.Equal(final) })
	require.True(t, ok)
	assert.Equal(t, []int{skip}, p.Fired)

	_, ok = net.SilentSearch(net.InitialMarking(), 100, func(x marked.Marking) bool { return x.Equal(final) })
	assert.False(t, ok)

	assert.Len(t, net.SilentClosure(m, 100), 2)
	assert.Equal(t, []string{"b"}, net.EnabledLabels(m, 100))
	assert.Equal(t, []string{"a"}, net.EnabledLabels(net.InitialMarking(), 100))
}

func TestNet_EnabledLabelsFlower(t *testing.T) {
	net := marked.New(examples.FlowerNet("x", "y", "z"))
	assert.Equal(t, []string{"x", "y", "z"}, net.EnabledLabels(net.InitialMarking(), 100))
}
