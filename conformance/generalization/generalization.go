// Package generalization scores how well a model generalizes the log from
// how often token replay fires each of its transitions.
package generalization

import (
	"context"
	"math"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/conformance/tokenreplay"
	"github.com/jt05610/pmeval/eventlog"
)

const Name = "generalization"

// FromFirings is 1 − (Σ_t 1/√n_t)/|T|. A transition that never fired
// counts 1.
func FromFirings(firings []int) float64 {
	if len(firings) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range firings {
		if n == 0 {
			sum++
			continue
		}
		sum += 1 / math.Sqrt(float64(n))
	}
	return 1 - sum/float64(len(firings))
}

type Metric struct {
	Replayer *tokenreplay.Replayer
}

func New() *Metric { return &Metric{Replayer: tokenreplay.New()} }

func (g *Metric) Name() string { return Name }

func (g *Metric) Compute(ctx context.Context, log *eventlog.Log, model *petri.AcceptingNet) (float64, error) {
	res, err := g.Replayer.Replay(ctx, log, model)
	if err != nil {
		return 0, err
	}
	return FromFirings(res.Firings), nil
}
