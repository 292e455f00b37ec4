package marked

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	petri "github.com/jt05610/pmeval"
)

var ErrNotEnabled = errors.New("transition is not enabled")

// Marking is a dense token vector indexed like Net.Places.
type Marking []int

func (m Marking) Clone() Marking {
	ret := make(Marking, len(m))
	copy(ret, m)
	return ret
}

// Key is a compact string usable as a map key.
func (m Marking) Key() string {
	var sb strings.Builder
	for i, n := range m {
		if n == 0 {
			continue
		}
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(n))
		sb.WriteByte(',')
	}
	return sb.String()
}

func (m Marking) Equal(o Marking) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i] != o[i] {
			return false
		}
	}
	return true
}

// Total is the number of tokens in the marking.
func (m Marking) Total() int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

type entry struct {
	place  int
	weight int
}

// Net is a petri.Net compiled into index form for the token game.
type Net struct {
	*petri.AcceptingNet
	index  map[*petri.Place]int
	tindex map[*petri.Transition]int
	pre    [][]entry
	post   [][]entry
	labels map[string][]int
	silent []int
}

func New(n *petri.AcceptingNet) *Net {
	net := &Net{
		AcceptingNet: n,
		index:        make(map[*petri.Place]int, len(n.Places)),
		tindex:       make(map[*petri.Transition]int, len(n.Transitions)),
		pre:          make([][]entry, len(n.Transitions)),
		post:         make([][]entry, len(n.Transitions)),
		labels:       make(map[string][]int),
	}
	for i, p := range n.Places {
		net.index[p] = i
	}
	for i, t := range n.Transitions {
		net.tindex[t] = i
		for _, arc := range n.Inputs(t) {
			net.pre[i] = append(net.pre[i], entry{place: net.index[arc.Src.(*petri.Place)], weight: arc.Weight})
		}
		for _, arc := range n.Outputs(t) {
			net.post[i] = append(net.post[i], entry{place: net.index[arc.Dest.(*petri.Place)], weight: arc.Weight})
		}
		if t.Silent() {
			net.silent = append(net.silent, i)
		} else {
			net.labels[t.Label] = append(net.labels[t.Label], i)
		}
	}
	return net
}

// Marking converts a sparse marking to its dense form.
func (net *Net) Marking(m petri.Marking) Marking {
	ret := make(Marking, len(net.Places))
	for p, n := range m {
		if i, ok := net.index[p]; ok {
			ret[i] = n
		}
	}
	return ret
}

func (net *Net) InitialMarking() Marking { return net.Marking(net.Initial) }

func (net *Net) FinalMarking() Marking { return net.Marking(net.Final) }

func (net *Net) Index(t *petri.Transition) int { return net.tindex[t] }

// WithLabel returns the transitions carrying the label.
func (net *Net) WithLabel(label string) []int { return net.labels[label] }

func (net *Net) Silent() []int { return net.silent }

func (net *Net) IsSilent(t int) bool { return net.Transitions[t].Silent() }

func (net *Net) Label(t int) string { return net.Transitions[t].Label }

// Consumed is the number of tokens firing t takes.
func (net *Net) Consumed(t int) int {
	n := 0
	for _, e := range net.pre[t] {
		n += e.weight
	}
	return n
}

// Produced is the number of tokens firing t puts.
func (net *Net) Produced(t int) int {
	n := 0
	for _, e := range net.post[t] {
		n += e.weight
	}
	return n
}

// Enabled returns true if the transition is enabled
func (net *Net) Enabled(m Marking, t int) bool {
	for _, e := range net.pre[t] {
		if m[e.place] < e.weight {
			return false
		}
	}
	return true
}

// Missing returns how many tokens are lacking per place for t to fire.
func (net *Net) Missing(m Marking, t int) map[int]int {
	ret := make(map[int]int)
	for _, e := range net.pre[t] {
		if m[e.place] < e.weight {
			ret[e.place] = e.weight - m[e.place]
		}
	}
	return ret
}

// Fire returns the marking reached by firing t.
func (net *Net) Fire(m Marking, t int) (Marking, error) {
	if !net.Enabled(m, t) {
		return nil, fmt.Errorf("%w: %s", ErrNotEnabled, net.Transitions[t])
	}
	return net.FireUnchecked(m, t), nil
}

// FireUnchecked fires t without checking enabledness. Places may go
// negative; callers that force firings add missing tokens first.
func (net *Net) FireUnchecked(m Marking, t int) Marking {
	next := m.Clone()
	for _, e := range net.pre[t] {
		next[e.place] -= e.weight
	}
	for _, e := range net.post[t] {
		next[e.place] += e.weight
	}
	return next
}

func (net *Net) Available(m Marking) []int {
	ret := make([]int, 0)
	for i := range net.Transitions {
		if net.Enabled(m, i) {
			ret = append(ret, i)
		}
	}
	return ret
}

// Path is a sequence of silent firings and the marking it reaches.
type Path struct {
	Marking Marking
	Fired   []int
}

// SilentSearch explores markings reachable from m by firing silent
// transitions only, breadth first, visiting at most limit markings. It
// returns the first path whose marking satisfies goal.
func (net *Net) SilentSearch(m Marking, limit int, goal func(Marking) bool) (*Path, bool) {
	start := &Path{Marking: m}
	if goal(m) {
		return start, true
	}
	seen := map[string]bool{m.Key(): true}
	queue := []*Path{start}
	for len(queue) > 0 && len(seen) < limit {
		cur := queue[0]
		queue = queue[1:]
		for _, t := range net.silent {
			if !net.Enabled(cur.Marking, t) {
				continue
			}
			next := net.FireUnchecked(cur.Marking, t)
			k := next.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			fired := make([]int, len(cur.Fired), len(cur.Fired)+1)
			copy(fired, cur.Fired)
			p := &Path{Marking: next, Fired: append(fired, t)}
			if goal(next) {
				return p, true
			}
			queue = append(queue, p)
		}
	}
	return nil, false
}

// SilentClosure returns the markings reachable from m through silent
// transitions, m included, up to limit markings.
func (net *Net) SilentClosure(m Marking, limit int) []Marking {
	seen := map[string]bool{m.Key(): true}
	ret := []Marking{m}
	for i := 0; i < len(ret) && len(ret) < limit; i++ {
		for _, t := range net.silent {
			if !net.Enabled(ret[i], t) {
				continue
			}
			next := net.FireUnchecked(ret[i], t)
			k := next.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			ret = append(ret, next)
		}
	}
	return ret
}

// EnabledLabels returns the sorted labels of the visible transitions enabled
// in m or in a marking silently reachable from m.
func (net *Net) EnabledLabels(m Marking, limit int) []string {
	seen := make(map[string]bool)
	for _, reach := range net.SilentClosure(m, limit) {
		for label, tt := range net.labels {
			if seen[label] {
				continue
			}
			for _, t := range tt {
				if net.Enabled(reach, t) {
					seen[label] = true
					break
				}
			}
		}
	}
	ret := make([]string, 0, len(seen))
	for l := range seen {
		ret = append(ret, l)
	}
	sort.Strings(ret)
	return ret
}
