// Package fixtures holds the test routines shared across the module's
// tests. The logs and nets they run on live in package examples.
package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/conformance/tokenreplay"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/eventlog/xes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// WriteXES stores the log as name inside dir and returns the path.
func WriteXES(t testing.TB, dir, name string, log *eventlog.Log) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	require.NoError(t, xes.NewWriter().Flush(f, log))
	return path
}

type Miner interface {
	Name() string
	Discover(ctx context.Context, log *eventlog.Log) (*petri.AcceptingNet, error)
}

type MinerTestCase struct {
	Name  string
	Miner Miner
	Log   *eventlog.Log
	// Fits asks for every trace of the log to replay perfectly.
	Fits bool
}

// RunMinerTest discovers a net and checks the properties every miner
// shares: markings are set, every activity has a transition, and the net
// replays the log when Fits is set.
func RunMinerTest(t *testing.T, tc *MinerTestCase) *petri.AcceptingNet {
	t.Helper()
	var model *petri.AcceptingNet
	t.Run(tc.Name+".Discover", func(t *testing.T) {
		var err error
		model, err = tc.Miner.Discover(context.Background(), tc.Log)
		require.NoError(t, err)
		require.NotNil(t, model)
		assert.NotEmpty(t, model.Initial)
		assert.NotEmpty(t, model.Final)
	})
	if model == nil {
		return nil
	}
	t.Run(tc.Name+".Labels", func(t *testing.T) {
		assert.Equal(t, tc.Log.Activities(), model.Labels())
	})
	if tc.Fits {
		t.Run(tc.Name+".Replay", func(t *testing.T) {
			res, err := tokenreplay.New().Replay(context.Background(), tc.Log, model)
			require.NoError(t, err)
			for _, tr := range res.Traces {
				assert.True(t, tr.Fit, "trace %v: %+v", tr.Variant.Activities, tr.Counts)
			}
			assert.InDelta(t, 1.0, res.Fitness(), 1e-9)
		})
	}
	return model
}
