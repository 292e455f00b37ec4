package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jt05610/pmeval/pipeline"
	"github.com/jt05610/pmeval/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summary() *pipeline.Summary {
	half := 0.5
	return &pipeline.Summary{
		RunID: "run-1",
		Files: []string{"a.xes", "b.xes"},
		Processed: []*pipeline.Result{{
			File:    "in/a.xes",
			Times:   []pipeline.Timing{{Miner: "alpha", Elapsed: 250 * time.Millisecond}},
			Metrics: []string{"fitness", "precision"},
			Rows:    []pipeline.Row{{Algorithm: "alpha", Values: []*float64{&half, nil}}},
		}},
		Failed: []*pipeline.FileError{{File: "b.xes"}},
	}
}

func TestStore(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() {
		_ = s.Close()
	}()
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, started, summary()))

	run, err := s.Run(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, run.Files)
	assert.Equal(t, 1, run.Failed)

	timings, err := s.Timings(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, timings, 1)
	assert.Equal(t, "a.xes", timings[0].File)
	assert.InDelta(t, 0.25, timings[0].Seconds, 1e-9)

	scores, err := s.Scores(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "fitness", scores[0].Metric)
	require.NotNil(t, scores[0].Value)
	assert.Equal(t, 0.5, *scores[0].Value)
	assert.Nil(t, scores[1].Value)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = s.Run(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNoRun)

	// run ids are unique
	assert.Error(t, s.Save(ctx, started, summary()))
}
