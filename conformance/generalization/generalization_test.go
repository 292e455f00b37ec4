package generalization_test

import (
	"context"
	"testing"

	"github.com/jt05610/pmeval/conformance/generalization"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/examples"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFirings(t *testing.T) {
	assert.Equal(t, 0.0, generalization.FromFirings(nil))
	assert.Equal(t, 0.0, generalization.FromFirings([]int{0, 0}))
	assert.InDelta(t, 0.25, generalization.FromFirings([]int{1, 4}), 1e-9)
	assert.InDelta(t, 0.9, generalization.FromFirings([]int{100}), 1e-9)
}

func TestMetric(t *testing.T) {
	log := eventlog.FromVariants("ab", eventlog.Variant{Activities: []string{"a", "b"}, Count: 4})
	v, err := generalization.New().Compute(context.Background(), log, examples.SequenceNet())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-9)

	// the silent skip never fires and pulls the score down
	v, err = generalization.New().Compute(context.Background(), log, examples.SkipNet())
	require.NoError(t, err)
	assert.InDelta(t, 1-(0.5+0.5+1)/3, v, 1e-9)
}
