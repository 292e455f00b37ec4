package alignment_test

import (
	"context"
	"testing"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/conformance/alignment"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/examples"
	"github.com/jt05610/pmeval/marked"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moves(al *alignment.Alignment) []string {
	ret := make([]string, len(al.Moves))
	for i, m := range al.Moves {
		ret[i] = m.String()
	}
	return ret
}

func TestAlign(t *testing.T) {
	net := marked.New(examples.SequenceNet())
	var tests = []struct {
		name  string
		acts  []string
		moves []string
		dev   int
	}{
		{"sync", []string{"a", "b"}, []string{"(a,a)", "(b,b)"}, 0},
		{"model move", []string{"a"}, []string{"(a,a)", "(>>,b)"}, 1},
		{"log move", []string{"a", "c", "b"}, []string{"(a,a)", "(c,>>)", "(b,b)"}, 1},
		{"empty", nil, []string{"(>>,a)", "(>>,b)"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			al, err := alignment.New().Align(context.Background(), net, tt.acts)
			require.NoError(t, err)
			assert.Equal(t, tt.moves, moves(al))
			assert.Equal(t, tt.dev, al.Deviations())
		})
	}
}

func TestAlign_Silent(t *testing.T) {
	net := marked.New(examples.SkipNet())
	al, err := alignment.New().Align(context.Background(), net, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"(a,a)", "(>>,skip_1)"}, moves(al))
	assert.Equal(t, alignment.SilentCost, al.Cost)
	assert.Equal(t, 0, al.Deviations())
	assert.True(t, al.Moves[0].IsSync())
	assert.False(t, al.Moves[1].IsSync())
}

func TestAlignLog(t *testing.T) {
	log := eventlog.FromSequences("mixed", []string{"a", "b"}, []string{"a"})
	res, err := alignment.New().AlignLog(context.Background(), log, examples.SequenceNet())
	require.NoError(t, err)
	assert.Equal(t, 2, res.BestWorstCost)
	assert.InDelta(t, 1-1.0/7, res.Fitness, 1e-9)
	assert.InDelta(t, (1+(1-1.0/3))/2, res.AverageFitness, 1e-9)
	assert.Equal(t, 50.0, res.FittingTraces)

	v, err := alignment.NewFitness().Compute(context.Background(), log, examples.SequenceNet())
	require.NoError(t, err)
	assert.InDelta(t, res.Fitness, v, 1e-9)
}

func TestAlign_Errors(t *testing.T) {
	n := petri.NewNet("stuck")
	source := n.AddPlace("source")
	p := n.AddPlace("p")
	sink := n.AddPlace("sink")
	a := n.AddTransition("a", "a")
	n.MustArc(source, a)
	n.MustArc(a, p)
	stuck := petri.NewAcceptingNet(n, petri.Marking{source: 1}, petri.Marking{sink: 1})
	_, err := alignment.New().Align(context.Background(), marked.New(stuck), []string{"a"})
	assert.ErrorIs(t, err, alignment.ErrNoAlignment)

	_, err = alignment.New().AlignLog(context.Background(), examples.Sequential(), stuck)
	assert.ErrorIs(t, err, alignment.ErrNoAlignment)

	limited := &alignment.Aligner{MaxStates: 1}
	_, err = limited.Align(context.Background(), marked.New(examples.SequenceNet()), []string{"a", "b"})
	assert.ErrorIs(t, err, alignment.ErrSearchLimit)

	_, err = alignment.New().AlignLog(context.Background(), eventlog.FromSequences("empty"), examples.SequenceNet())
	assert.ErrorIs(t, err, alignment.ErrEmptyLog)
}
