// Package alignment computes optimal alignments between traces and an
// accepting Petri net with a Dijkstra search over their synchronous
// product.
package alignment

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"strconv"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/marked"
)

const (
	FitnessName = "fitness_alignments"

	SyncCost   = 0
	MoveCost   = 10000
	SilentCost = 1

	DefaultMaxStates = 2000000
)

var (
	ErrSearchLimit = errors.New("alignment: state limit reached")
	ErrNoAlignment = errors.New("alignment: final marking is unreachable")
	ErrEmptyLog    = errors.New("alignment: log has no traces")
)

// Skip marks the absent side of a log or model move.
const Skip = ">>"

// Move is one step of an alignment. Transition is -1 for log moves.
type Move struct {
	Log        string
	Model      string
	Transition int
}

func (m Move) IsLogMove() bool { return m.Transition < 0 }

func (m Move) IsSync() bool { return m.Transition >= 0 && m.Log != Skip }

func (m Move) String() string {
	return fmt.Sprintf("(%s,%s)", m.Log, m.Model)
}

type Alignment struct {
	Moves []Move
	Cost  int
	// Visited is the number of states the search expanded.
	Visited int
}

// Deviations is the number of log and visible model moves.
func (a *Alignment) Deviations() int { return a.Cost / MoveCost }

type node struct {
	pos     int
	marking marked.Marking
	cost    int
	parent  *node
	move    Move
	index   int
}

type queue []*node

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].pos > q[j].pos
}

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *queue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

type Aligner struct {
	MaxStates int
}

func New() *Aligner {
	return &Aligner{MaxStates: DefaultMaxStates}
}

func key(pos int, m marked.Marking) string {
	return strconv.Itoa(pos) + "|" + m.Key()
}

// Align returns an optimal alignment of acts on net.
func (a *Aligner) Align(ctx context.Context, net *marked.Net, acts []string) (*Alignment, error) {
	final := net.FinalMarking()
	start := &node{marking: net.InitialMarking()}
	best := map[string]int{key(0, start.marking): 0}
	closed := make(map[string]bool)
	q := &queue{start}
	visited := 0
	for q.Len() > 0 {
		cur := heap.Pop(q).(*node)
		k := key(cur.pos, cur.marking)
		if closed[k] {
			continue
		}
		closed[k] = true
		visited++
		if visited%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if a.MaxStates > 0 && visited > a.MaxStates {
			return nil, ErrSearchLimit
		}
		if cur.pos == len(acts) && cur.marking.Equal(final) {
			return unwind(cur, visited), nil
		}
		push := func(pos int, m marked.Marking, cost int, mv Move) {
			k := key(pos, m)
			if closed[k] {
				return
			}
			if c, ok := best[k]; ok && c <= cost {
				return
			}
			best[k] = cost
			heap.Push(q, &node{pos: pos, marking: m, cost: cost, parent: cur, move: mv})
		}
		if cur.pos < len(acts) {
			push(cur.pos+1, cur.marking, cur.cost+MoveCost, Move{Log: acts[cur.pos], Model: Skip, Transition: -1})
		}
		for _, t := range net.Available(cur.marking) {
			next := net.FireUnchecked(cur.marking, t)
			if net.IsSilent(t) {
				push(cur.pos, next, cur.cost+SilentCost, Move{Log: Skip, Model: net.Transitions[t].Name, Transition: t})
				continue
			}
			label := net.Label(t)
			if cur.pos < len(acts) && acts[cur.pos] == label {
				push(cur.pos+1, next, cur.cost+SyncCost, Move{Log: label, Model: label, Transition: t})
			}
			push(cur.pos, next, cur.cost+MoveCost, Move{Log: Skip, Model: label, Transition: t})
		}
	}
	return nil, ErrNoAlignment
}

func unwind(n *node, visited int) *Alignment {
	ret := &Alignment{Cost: n.cost, Visited: visited}
	for ; n.parent != nil; n = n.parent {
		ret.Moves = append(ret.Moves, n.move)
	}
	for i, j := 0, len(ret.Moves)-1; i < j; i, j = i+1, j-1 {
		ret.Moves[i], ret.Moves[j] = ret.Moves[j], ret.Moves[i]
	}
	return ret
}

// TraceResult is the alignment of one variant.
type TraceResult struct {
	Variant   eventlog.Variant
	Alignment *Alignment
	Fitness   float64
}

type Result struct {
	Traces []TraceResult
	// BestWorstCost is the number of visible moves of the shortest model
	// run, the deviations of aligning the empty trace.
	BestWorstCost int
	// Fitness is 1 − Σdev/Σ(len+bwc) over all traces.
	Fitness float64
	// AverageFitness is the trace-weighted mean of the trace fitness.
	AverageFitness float64
	FittingTraces  float64
}

func traceFitness(dev, length, bwc int) float64 {
	if dev == 0 {
		return 1
	}
	if length+bwc == 0 {
		return 0
	}
	return 1 - float64(dev)/float64(length+bwc)
}

// AlignLog aligns every variant of the log.
func (a *Aligner) AlignLog(ctx context.Context, log *eventlog.Log, model *petri.AcceptingNet) (*Result, error) {
	if log.Len() == 0 {
		return nil, ErrEmptyLog
	}
	net := marked.New(model)
	empty, err := a.Align(ctx, net, nil)
	if err != nil {
		return nil, fmt.Errorf("aligning empty trace: %w", err)
	}
	res := &Result{BestWorstCost: empty.Deviations()}
	var dev, denom, fitSum float64
	fitting := 0
	for _, v := range log.Variants() {
		al, err := a.Align(ctx, net, v.Activities)
		if err != nil {
			return nil, err
		}
		f := traceFitness(al.Deviations(), len(v.Activities), res.BestWorstCost)
		res.Traces = append(res.Traces, TraceResult{Variant: v, Alignment: al, Fitness: f})
		dev += float64(al.Deviations() * v.Count)
		denom += float64((len(v.Activities) + res.BestWorstCost) * v.Count)
		fitSum += f * float64(v.Count)
		if al.Deviations() == 0 {
			fitting += v.Count
		}
	}
	res.Fitness = 1
	if denom > 0 {
		res.Fitness = 1 - dev/denom
	}
	res.AverageFitness = fitSum / float64(log.Len())
	res.FittingTraces = 100 * float64(fitting) / float64(log.Len())
	return res, nil
}

// Fitness is the alignment-based log fitness metric.
type Fitness struct {
	Aligner *Aligner
}

func NewFitness() *Fitness { return &Fitness{Aligner: New()} }

func (f *Fitness) Name() string { return FitnessName }

func (f *Fitness) Compute(ctx context.Context, log *eventlog.Log, model *petri.AcceptingNet) (float64, error) {
	res, err := f.Aligner.AlignLog(ctx, log, model)
	if err != nil {
		return 0, err
	}
	return res.Fitness, nil
}
