// Package conformance lists the quality metrics computed for every
// discovered model.
package conformance

import (
	"context"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/conformance/alignment"
	"github.com/jt05610/pmeval/conformance/generalization"
	"github.com/jt05610/pmeval/conformance/precision"
	"github.com/jt05610/pmeval/conformance/tokenreplay"
	"github.com/jt05610/pmeval/eventlog"
)

// Metric scores a model against a log.
type Metric interface {
	Name() string
	Compute(ctx context.Context, log *eventlog.Log, model *petri.AcceptingNet) (float64, error)
}

type Options struct {
	// AlignmentMaxStates bounds each alignment search. Zero keeps the
	// default.
	AlignmentMaxStates int
}

// Default returns the metrics in report column order.
func Default() []Metric {
	return WithOptions(Options{})
}

func WithOptions(opts Options) []Metric {
	fa := alignment.NewFitness()
	pa := precision.NewAlignment()
	if opts.AlignmentMaxStates > 0 {
		fa.Aligner.MaxStates = opts.AlignmentMaxStates
		pa.Aligner.MaxStates = opts.AlignmentMaxStates
	}
	return []Metric{
		fa,
		tokenreplay.NewFitness(),
		pa,
		precision.NewToken(),
		generalization.New(),
	}
}

// Names returns the metric names in order.
func Names(metrics []Metric) []string {
	ret := make([]string, len(metrics))
	for i, m := range metrics {
		ret[i] = m.Name()
	}
	return ret
}
