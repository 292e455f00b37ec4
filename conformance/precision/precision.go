// Package precision implements ETConformance precision: for every prefix
// of the log, the labels the model enables that the log never continues
// the prefix with are escaping edges.
package precision

import (
	"context"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/conformance/alignment"
	"github.com/jt05610/pmeval/conformance/tokenreplay"
	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/marked"
)

const (
	TokenName     = "precision_token_based"
	AlignmentName = "precision_alignments"

	DefaultSilentLimit = 10000
)

// state is one distinct prefix with the marking the model reaches on it.
type state struct {
	marking marked.Marking
	weight  int
	next    map[string]bool
}

// states collects the log prefixes, the empty one included.
type states struct {
	byPrefix map[string]*state
	order    []string
}

func newStates() *states {
	return &states{byPrefix: make(map[string]*state)}
}

// observe records that weight traces continue prefix with next. The
// marking is only kept for the first observation of a prefix.
func (s *states) observe(prefix []string, next string, m marked.Marking, weight int) {
	k := eventlog.VariantKey(prefix)
	st, ok := s.byPrefix[k]
	if !ok {
		st = &state{marking: m, next: make(map[string]bool)}
		s.byPrefix[k] = st
		s.order = append(s.order, k)
	}
	st.weight += weight
	st.next[next] = true
}

// Precision is 1 − Σ w·|escaping| / Σ w·|enabled|. Without enabled labels
// it is 1.
func (s *states) precision(net *marked.Net, limit int) float64 {
	var escaping, enabled float64
	for _, k := range s.order {
		st := s.byPrefix[k]
		labels := net.EnabledLabels(st.marking, limit)
		esc := 0
		for _, l := range labels {
			if !st.next[l] {
				esc++
			}
		}
		escaping += float64(st.weight * esc)
		enabled += float64(st.weight * len(labels))
	}
	if enabled == 0 {
		return 1
	}
	return 1 - escaping/enabled
}

// Token is precision over the markings that token replay reaches on the
// log prefixes. Prefixes that do not replay are skipped.
type Token struct {
	Replayer    *tokenreplay.Replayer
	SilentLimit int
}

func NewToken() *Token {
	return &Token{Replayer: tokenreplay.New(), SilentLimit: DefaultSilentLimit}
}

func (p *Token) Name() string { return TokenName }

func (p *Token) Compute(ctx context.Context, log *eventlog.Log, model *petri.AcceptingNet) (float64, error) {
	if log.Len() == 0 {
		return 0, tokenreplay.ErrEmptyLog
	}
	net := marked.New(model)
	s := newStates()
	for _, v := range log.Variants() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		acts := v.Activities
		p.Replayer.Walk(net, acts, func(i int, m marked.Marking) {
			s.observe(acts[:i], acts[i], m, v.Count)
		})
	}
	return s.precision(net, limitOr(p.SilentLimit)), nil
}

// Alignment is precision over the model projections of the optimal
// alignments. The marking of a prefix is the one reached by the aligned
// firing sequence just before its next visible transition.
type Alignment struct {
	Aligner     *alignment.Aligner
	SilentLimit int
}

func NewAlignment() *Alignment {
	return &Alignment{Aligner: alignment.New(), SilentLimit: DefaultSilentLimit}
}

func (p *Alignment) Name() string { return AlignmentName }

func (p *Alignment) Compute(ctx context.Context, log *eventlog.Log, model *petri.AcceptingNet) (float64, error) {
	res, err := p.Aligner.AlignLog(ctx, log, model)
	if err != nil {
		return 0, err
	}
	net := marked.New(model)
	s := newStates()
	for _, tr := range res.Traces {
		m := net.InitialMarking()
		atVisible := m
		var prefix []string
		for _, mv := range tr.Alignment.Moves {
			if mv.IsLogMove() {
				continue
			}
			if !net.IsSilent(mv.Transition) {
				label := net.Label(mv.Transition)
				s.observe(prefix, label, atVisible, tr.Variant.Count)
				prefix = append(prefix, label)
			}
			m = net.FireUnchecked(m, mv.Transition)
			if !net.IsSilent(mv.Transition) {
				atVisible = m
			}
		}
	}
	return s.precision(net, limitOr(p.SilentLimit)), nil
}

func limitOr(n int) int {
	if n <= 0 {
		return DefaultSilentLimit
	}
	return n
}
