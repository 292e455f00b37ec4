package petri_test

import (
	"errors"
	"fmt"
	"testing"

	petri "github.com/jt05610/pmeval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ExampleNet builds the net of a two step process and its markings.
func ExampleNet() {
	net := petri.NewNet("order")
	source := net.AddPlace("source")
	paid := net.AddPlace("paid")
	sink := net.AddPlace("sink")
	pay := net.AddTransition("pay", "pay")
	ship := net.AddTransition("ship", "ship")
	net.MustArc(source, pay)
	net.MustArc(pay, paid)
	net.MustArc(paid, ship)
	net.MustArc(ship, sink)
	model := petri.NewAcceptingNet(net, petri.Marking{source: 1}, petri.Marking{sink: 1})
	for _, a := range model.Arcs {
		fmt.Println(a)
	}
	fmt.Println(model.Initial, model.Final)
	// Output:
	// source -> pay
	// pay -> paid
	// paid -> ship
	// ship -> sink
	// [source:1] [sink:1]
}

func TestNet_AddArc(t *testing.T) {
	net := petri.NewNet("n")
	p := net.AddPlace("p")
	q := net.AddPlace("q")
	a := net.AddTransition("a", "a")
	stranger := petri.NewPlace("x", "x")

	cases := []struct {
		name     string
		from, to petri.Node
		weight   int
		err      error
	}{
		{"place to transition", p, a, 1, nil},
		{"transition to place", a, q, 2, nil},
		{"duplicate", p, a, 1, petri.ErrArcExists},
		{"two places", p, q, 1, petri.ErrSameKind},
		{"zero weight", q, a, 0, petri.ErrInvalidWeight},
		{"foreign node", stranger, a, 1, petri.ErrUnknownNode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := net.AddWeightedArc(tc.from, tc.to, tc.weight)
			if tc.err == nil {
				require.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.err), "got %v", err)
		})
	}
	assert.Len(t, net.Outputs(p), 1)
	assert.Len(t, net.Inputs(q), 1)
	assert.Equal(t, 2, net.Arc(a, q).Weight)
	assert.Nil(t, net.Arc(q, a))
}

func TestNet_IDs(t *testing.T) {
	net := petri.NewNet("n")
	first := net.AddTransition("a", "a")
	second := net.AddTransition("a", "a")
	silent := net.AddTransition("", "")
	assert.Equal(t, "a", first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEmpty(t, silent.ID)
	assert.True(t, silent.Silent())
	assert.Same(t, second, net.Transition(second.ID))
	assert.Nil(t, net.Place(first.ID))
	assert.Equal(t, []string{"a"}, net.Labels())
	assert.Len(t, net.Visible(), 2)

	err := net.Add(petri.NewPlace("a", "clash"))
	assert.ErrorIs(t, err, petri.ErrDuplicateID)
	require.NoError(t, net.Add(petri.NewPlace("p9", "kept")))
	assert.Equal(t, "kept", net.Place("p9").Name)
}

func TestMarking(t *testing.T) {
	p := petri.NewPlace("p", "p")
	q := petri.NewPlace("q", "q")
	m := petri.Marking{p: 1}
	c := m.Clone()
	c[q] = 2
	assert.Equal(t, 1, len(m))
	assert.False(t, m.Equal(c))
	assert.True(t, m.Equal(petri.Marking{p: 1, q: 0}))
	assert.Equal(t, "[p:1 q:2]", c.String())
}
