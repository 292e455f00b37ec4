package alpha_test

import (
	"context"
	"testing"

	"github.com/jt05610/pmeval/conformance/tokenreplay"
	"github.com/jt05610/pmeval/discovery/alpha"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/examples"
	"github.com/jt05610/pmeval/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiner(t *testing.T) {
	for _, tc := range []*fixtures.MinerTestCase{
		{Name: "running", Miner: alpha.New(), Log: examples.Running(), Fits: true},
		// check can be skipped, which alpha cannot express
		{Name: "two-traces", Miner: alpha.New(), Log: examples.TwoTraces()},
		{Name: "sequential", Miner: alpha.New(), Log: examples.Sequential(), Fits: true},
		{Name: "choice", Miner: alpha.New(), Log: examples.Choice(), Fits: true},
		// short loops are outside what alpha can express
		{Name: "loop", Miner: alpha.New(), Log: examples.Loop()},
	} {
		fixtures.RunMinerTest(t, tc)
	}
}

func TestMiner_Skip(t *testing.T) {
	model, err := alpha.New().Discover(context.Background(), examples.TwoTraces())
	require.NoError(t, err)
	res, err := tokenreplay.New().Replay(context.Background(), examples.TwoTraces(), model)
	require.NoError(t, err)
	require.Len(t, res.Traces, 2)
	skip := res.Traces[0]
	if len(skip.Variant.Activities) != 2 {
		skip = res.Traces[1]
	}
	assert.False(t, skip.Fit)
	assert.Equal(t, 1, skip.Counts.Missing)
	assert.Equal(t, 1, skip.Counts.Remaining)
	assert.InDelta(t, 8.0/9, res.Fitness(), 1e-9)
}

func TestMiner_Places(t *testing.T) {
	model, err := alpha.New().Discover(context.Background(), examples.Running())
	require.NoError(t, err)
	var ids []string
	for _, p := range model.Places {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{
		"start", "end",
		"({a},{b,e})", "({a},{c,e})", "({b,e},{d})", "({c,e},{d})",
	}, ids)
}

func TestMiner_Empty(t *testing.T) {
	_, err := alpha.New().Discover(context.Background(), eventlog.FromSequences("empty"))
	assert.ErrorIs(t, err, alpha.ErrEmptyLog)
}
