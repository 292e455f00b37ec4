package graphviz_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/jt05610/pmeval/examples"
	"github.com/jt05610/pmeval/graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_PNG(t *testing.T) {
	buf := new(bytes.Buffer)
	w := graphviz.New(&graphviz.Config{Format: graphviz.PNG})
	require.NoError(t, w.Flush(context.Background(), buf, examples.SkipNet()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestWriter_SVG(t *testing.T) {
	buf := new(bytes.Buffer)
	w := graphviz.New(&graphviz.Config{Format: graphviz.SVG, Font: graphviz.Arial.Or(graphviz.SansSerif)})
	require.NoError(t, w.Flush(context.Background(), buf, examples.SequenceNet()))
	assert.Contains(t, buf.String(), "<svg")
}

func TestWriter_UnknownFormat(t *testing.T) {
	w := graphviz.New(&graphviz.Config{Format: "bmp"})
	err := w.Flush(context.Background(), new(bytes.Buffer), examples.SequenceNet())
	assert.ErrorIs(t, err, graphviz.ErrUnknownFormat)
}

func TestRoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	w := graphviz.New(&graphviz.Config{Name: "skip", Format: graphviz.DOT})
	require.NoError(t, w.Flush(context.Background(), buf, examples.SkipNet()))

	model, err := graphviz.Loader().Load(buf)
	require.NoError(t, err)
	assert.Len(t, model.Places, 3)
	assert.Len(t, model.Transitions, 3)
	assert.Len(t, model.Arcs, 6)
	assert.Equal(t, []string{"a", "b"}, model.Labels())
	require.NotNil(t, model.Transition("skip_1"))
	assert.True(t, model.Transition("skip_1").Silent())
	assert.Equal(t, 1, model.Initial[model.Place("source")])
	assert.Equal(t, 1, model.Final[model.Place("sink")])
	assert.Len(t, model.Initial, 1)
	assert.Len(t, model.Final, 1)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]graphviz.Format{
		"png": graphviz.PNG,
		"svg": graphviz.SVG,
		"dot": graphviz.DOT,
		"gv":  graphviz.DOT,
	} {
		got, err := graphviz.ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := graphviz.ParseFormat("jpeg")
	assert.ErrorIs(t, err, graphviz.ErrUnknownFormat)
}
