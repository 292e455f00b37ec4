// Package discovery lists the process discovery algorithms the pipeline
// runs.
package discovery

import (
	"context"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/discovery/alpha"
	"github.com/jt05610/pmeval/discovery/heuristics"
	"github.com/jt05610/pmeval/discovery/ilp"
	"github.com/jt05610/pmeval/discovery/inductive"
	"github.com/jt05610/pmeval/eventlog"
	"go.uber.org/zap"
)

// Miner discovers an accepting Petri net from an event log.
type Miner interface {
	Name() string
	Discover(ctx context.Context, log *eventlog.Log) (*petri.AcceptingNet, error)
}

type Options struct {
	ILPMaxNodes int
	Logger      *zap.Logger
}

// Default returns the miners in report order: alpha, inductive, heuristics
// and ilp.
func Default() []Miner {
	return WithOptions(Options{})
}

func WithOptions(opts Options) []Miner {
	lp := ilp.New()
	if opts.ILPMaxNodes > 0 {
		lp.MaxNodes = opts.ILPMaxNodes
	}
	if opts.Logger != nil {
		lp.Logger = opts.Logger
	}
	return []Miner{
		alpha.New(),
		inductive.New(),
		heuristics.New(),
		lp,
	}
}

// ByName returns the default miner called name.
func ByName(name string, opts Options) (Miner, bool) {
	for _, m := range WithOptions(opts) {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}
