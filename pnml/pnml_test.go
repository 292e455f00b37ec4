package pnml_test

import (
	"bytes"
	"strings"
	"testing"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/examples"
	"github.com/jt05610/pmeval/pnml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	model := examples.SkipNet()
	buf := new(bytes.Buffer)
	w := &pnml.Writer{NodeID: func() string { return "node-1" }}
	require.NoError(t, w.Flush(buf, model))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, pnml.CoreModel)
	assert.Contains(t, out, `activity="$invisible$"`)
	assert.Contains(t, out, `localNodeID="node-1"`)
	assert.Contains(t, out, `<finalmarkings>`)

	got, err := pnml.NewReader().Load(buf)
	require.NoError(t, err)
	assert.Equal(t, "skip", got.Name)
	assert.Len(t, got.Places, 3)
	assert.Len(t, got.Arcs, 6)
	assert.Equal(t, model.Labels(), got.Labels())
	require.NotNil(t, got.Transition("skip_1"))
	assert.True(t, got.Transition("skip_1").Silent())
	assert.Equal(t, petri.Marking{got.Place("source"): 1}, got.Initial)
	assert.Equal(t, petri.Marking{got.Place("sink"): 1}, got.Final)
}

func TestRoundTrip_Weights(t *testing.T) {
	n := petri.NewNet("weighted")
	source := n.AddPlace("source")
	sink := n.AddPlace("sink")
	a := n.AddTransition("a", "a")
	_, err := n.AddWeightedArc(source, a, 2)
	require.NoError(t, err)
	n.MustArc(a, sink)
	model := petri.NewAcceptingNet(n, petri.Marking{source: 2}, petri.Marking{sink: 1})

	buf := new(bytes.Buffer)
	require.NoError(t, pnml.NewWriter().Flush(buf, model))
	assert.Contains(t, buf.String(), "<inscription>")

	got, err := pnml.NewReader().Load(buf)
	require.NoError(t, err)
	arc := got.Arc(got.Place("source"), got.Transition("a"))
	require.NotNil(t, arc)
	assert.Equal(t, 2, arc.Weight)
	assert.Equal(t, 2, got.Initial[got.Place("source")])
}

func TestReader_Errors(t *testing.T) {
	var tests = []struct {
		name string
		doc  string
		want error
	}{
		{"no net", `<pnml></pnml>`, pnml.ErrNoNet},
		{"unknown node", `<pnml><net id="n"><page id="n0">
			<place id="p"><name><text>p</text></name></place>
			<arc id="a1" source="p" target="t"/>
		</page></net></pnml>`, pnml.ErrUnknownNode},
		{"duplicate id", `<pnml><net id="n"><page id="n0">
			<place id="p"><name><text>p</text></name></place>
			<place id="p"><name><text>p</text></name></place>
		</page></net></pnml>`, petri.ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pnml.NewReader().Load(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
