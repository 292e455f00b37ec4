// Package tokenreplay replays a log on an accepting Petri net, counting the
// produced, consumed, missing and remaining tokens of every trace.
package tokenreplay

import (
	"context"
	"errors"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/marked"
)

const (
	FitnessName = "fitness_token_based"

	DefaultSilentLimit = 10000
)

var ErrEmptyLog = errors.New("tokenreplay: log has no traces")

// Counts are the four token counters of a replay.
type Counts struct {
	Produced  int
	Consumed  int
	Missing   int
	Remaining int
}

func (c *Counts) add(o Counts, times int) {
	c.Produced += o.Produced * times
	c.Consumed += o.Consumed * times
	c.Missing += o.Missing * times
	c.Remaining += o.Remaining * times
}

// Fitness is ½(1−m/c)+½(1−r/p). Empty counters count as fitting.
func (c Counts) Fitness() float64 {
	f := 0.0
	if c.Consumed > 0 {
		f += 0.5 * (1 - float64(c.Missing)/float64(c.Consumed))
	} else {
		f += 0.5
	}
	if c.Produced > 0 {
		f += 0.5 * (1 - float64(c.Remaining)/float64(c.Produced))
	} else {
		f += 0.5
	}
	return f
}

// TraceResult is the replay of one variant.
type TraceResult struct {
	Variant eventlog.Variant
	Counts
	Fit bool
	// Unknown lists activities with no transition in the model.
	Unknown []string
	// Fired holds the transitions in firing order, silent ones included.
	Fired []int
}

type Result struct {
	Counts
	Traces []TraceResult
	// Firings counts how often each transition fired over the whole log,
	// indexed like the net's transitions.
	Firings []int
	// FittingTraces is the percentage of traces that replayed without
	// missing or remaining tokens.
	FittingTraces float64
}

func (r *Result) Fitness() float64 { return r.Counts.Fitness() }

type Replayer struct {
	// SilentLimit bounds the markings visited when looking for silent
	// firings that enable the next transition.
	SilentLimit int
}

func New() *Replayer {
	return &Replayer{SilentLimit: DefaultSilentLimit}
}

func (r *Replayer) limit() int {
	if r.SilentLimit <= 0 {
		return DefaultSilentLimit
	}
	return r.SilentLimit
}

// Replay replays every variant of the log.
func (r *Replayer) Replay(ctx context.Context, log *eventlog.Log, model *petri.AcceptingNet) (*Result, error) {
	if log.Len() == 0 {
		return nil, ErrEmptyLog
	}
	net := marked.New(model)
	res := &Result{Firings: make([]int, len(net.Transitions))}
	fitting := 0
	for _, v := range log.Variants() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tr := r.replay(net, v)
		res.Counts.add(tr.Counts, v.Count)
		for _, t := range tr.Fired {
			res.Firings[t] += v.Count
		}
		if tr.Fit {
			fitting += v.Count
		}
		res.Traces = append(res.Traces, tr)
	}
	res.FittingTraces = 100 * float64(fitting) / float64(log.Len())
	return res, nil
}

func (r *Replayer) fire(net *marked.Net, m marked.Marking, t int, tr *TraceResult) marked.Marking {
	tr.Consumed += net.Consumed(t)
	tr.Produced += net.Produced(t)
	tr.Fired = append(tr.Fired, t)
	return net.FireUnchecked(m, t)
}

// step fires the transition for one activity. It returns false when the
// activity has no transition.
func (r *Replayer) step(net *marked.Net, m marked.Marking, activity string, tr *TraceResult) (marked.Marking, bool) {
	candidates := net.WithLabel(activity)
	if len(candidates) == 0 {
		return m, false
	}
	for _, t := range candidates {
		if net.Enabled(m, t) {
			return r.fire(net, m, t, tr), true
		}
	}
	enables := func(mk marked.Marking) bool {
		for _, t := range candidates {
			if net.Enabled(mk, t) {
				return true
			}
		}
		return false
	}
	if path, ok := net.SilentSearch(m, r.limit(), enables); ok {
		for _, s := range path.Fired {
			m = r.fire(net, m, s, tr)
		}
		for _, t := range candidates {
			if net.Enabled(m, t) {
				return r.fire(net, m, t, tr), true
			}
		}
	}
	best, bestMissing := candidates[0], -1
	for _, t := range candidates {
		n := 0
		for _, k := range net.Missing(m, t) {
			n += k
		}
		if bestMissing < 0 || n < bestMissing {
			best, bestMissing = t, n
		}
	}
	m = m.Clone()
	for p, k := range net.Missing(m, best) {
		m[p] += k
		tr.Missing += k
	}
	return r.fire(net, m, best, tr), true
}

func covers(m, final marked.Marking) bool {
	for i, n := range final {
		if m[i] < n {
			return false
		}
	}
	return true
}

func (r *Replayer) replay(net *marked.Net, v eventlog.Variant) TraceResult {
	tr := TraceResult{Variant: v}
	m := net.InitialMarking()
	tr.Produced += m.Total()
	for _, a := range v.Activities {
		var known bool
		m, known = r.step(net, m, a, &tr)
		if !known {
			tr.Unknown = append(tr.Unknown, a)
		}
	}
	final := net.FinalMarking()
	if !covers(m, final) {
		if path, ok := net.SilentSearch(m, r.limit(), func(mk marked.Marking) bool { return covers(mk, final) }); ok {
			for _, s := range path.Fired {
				m = r.fire(net, m, s, &tr)
			}
		}
	}
	m = m.Clone()
	for i, n := range final {
		if m[i] < n {
			tr.Missing += n - m[i]
			m[i] = n
		}
		tr.Consumed += n
		m[i] -= n
	}
	tr.Remaining = m.Total()
	tr.Fit = tr.Missing == 0 && tr.Remaining == 0 && len(tr.Unknown) == 0
	return tr
}

// Walk replays acts without forcing any firing and calls visit with the
// marking reached before each activity. It stops and returns false at the
// first activity that cannot fire, possibly after silent firings.
func (r *Replayer) Walk(net *marked.Net, acts []string, visit func(i int, m marked.Marking)) bool {
	m := net.InitialMarking()
	for i, a := range acts {
		visit(i, m)
		candidates := net.WithLabel(a)
		fired := false
		for _, t := range candidates {
			if net.Enabled(m, t) {
				m, fired = net.FireUnchecked(m, t), true
				break
			}
		}
		if fired {
			continue
		}
		path, ok := net.SilentSearch(m, r.limit(), func(mk marked.Marking) bool {
			for _, t := range candidates {
				if net.Enabled(mk, t) {
					return true
				}
			}
			return false
		})
		if !ok {
			return false
		}
		m = path.Marking
		for _, t := range candidates {
			if net.Enabled(m, t) {
				m = net.FireUnchecked(m, t)
				break
			}
		}
	}
	return true
}

// Fitness is the token-based log fitness metric.
type Fitness struct {
	Replayer *Replayer
}

func NewFitness() *Fitness { return &Fitness{Replayer: New()} }

func (f *Fitness) Name() string { return FitnessName }

func (f *Fitness) Compute(ctx context.Context, log *eventlog.Log, model *petri.AcceptingNet) (float64, error) {
	res, err := f.Replayer.Replay(ctx, log, model)
	if err != nil {
		return 0, err
	}
	return res.Fitness(), nil
}
