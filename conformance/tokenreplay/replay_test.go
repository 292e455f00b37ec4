package tokenreplay_test

import (
	"context"
	"testing"

	"github.com/jt05610/pmeval/conformance/tokenreplay"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/examples"
	"github.com/jt05610/pmeval/marked"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replay(t *testing.T, acts ...string) tokenreplay.TraceResult {
	t.Helper()
	res, err := tokenreplay.New().Replay(context.Background(), eventlog.FromSequences("t", acts), examples.SequenceNet())
	require.NoError(t, err)
	require.Len(t, res.Traces, 1)
	return res.Traces[0]
}

func TestReplay_Trace(t *testing.T) {
	var tests = []struct {
		name string
		acts []string
		want tokenreplay.Counts
		fit  bool
	}{
		{"fitting", []string{"a", "b"}, tokenreplay.Counts{Produced: 3, Consumed: 3}, true},
		{"missing end", []string{"a"}, tokenreplay.Counts{Produced: 2, Consumed: 2, Missing: 1, Remaining: 1}, false},
		{"skipped start", []string{"b"}, tokenreplay.Counts{Produced: 2, Consumed: 2, Missing: 1, Remaining: 1}, false},
		{"empty", []string{}, tokenreplay.Counts{Produced: 1, Consumed: 1, Missing: 1, Remaining: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := replay(t, tt.acts...)
			assert.Equal(t, tt.want, tr.Counts)
			assert.Equal(t, tt.fit, tr.Fit)
		})
	}
}

func TestReplay_Unknown(t *testing.T) {
	tr := replay(t, "a", "x", "b")
	assert.Equal(t, []string{"x"}, tr.Unknown)
	assert.Equal(t, tokenreplay.Counts{Produced: 3, Consumed: 3}, tr.Counts)
	assert.False(t, tr.Fit)
}

func TestReplay_Silent(t *testing.T) {
	log := eventlog.FromSequences("skip", []string{"a"}, []string{"a", "b"})
	res, err := tokenreplay.New().Replay(context.Background(), log, examples.SkipNet())
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Fitness())
	assert.Equal(t, 100.0, res.FittingTraces)
	// a twice, b once, skip_1 once
	assert.Equal(t, []int{2, 1, 1}, res.Firings)
}

func TestReplay_Log(t *testing.T) {
	log := eventlog.FromSequences("mixed", []string{"a", "b"}, []string{"a"})
	res, err := tokenreplay.New().Replay(context.Background(), log, examples.SequenceNet())
	require.NoError(t, err)
	assert.Equal(t, tokenreplay.Counts{Produced: 5, Consumed: 5, Missing: 1, Remaining: 1}, res.Counts)
	assert.InDelta(t, 0.8, res.Fitness(), 1e-9)
	assert.Equal(t, 50.0, res.FittingTraces)

	v, err := tokenreplay.NewFitness().Compute(context.Background(), log, examples.SequenceNet())
	require.NoError(t, err)
	assert.InDelta(t, 0.8, v, 1e-9)
}

func TestReplay_Errors(t *testing.T) {
	_, err := tokenreplay.New().Replay(context.Background(), eventlog.FromSequences("empty"), examples.SequenceNet())
	assert.ErrorIs(t, err, tokenreplay.ErrEmptyLog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tokenreplay.New().Replay(ctx, examples.Sequential(), examples.SequenceNet())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCounts_Fitness(t *testing.T) {
	assert.Equal(t, 1.0, tokenreplay.Counts{}.Fitness())
	assert.InDelta(t, 0.75, tokenreplay.Counts{Produced: 2, Consumed: 2, Missing: 1}.Fitness(), 1e-9)
}

func TestWalk(t *testing.T) {
	net := marked.New(examples.SkipNet())
	var seen []int
	ok := tokenreplay.New().Walk(net, []string{"a", "b"}, func(i int, m marked.Marking) {
		seen = append(seen, m.Total())
	})
	assert.True(t, ok)
	assert.Equal(t, []int{1, 1}, seen)

	ok = tokenreplay.New().Walk(net, []string{"b"}, func(int, marked.Marking) {})
	assert.False(t, ok)
}
