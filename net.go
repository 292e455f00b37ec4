package petri

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var (
	ErrSameKind      = errors.New("cannot connect two places or two transitions")
	ErrArcExists     = errors.New("arc already exists")
	ErrUnknownNode   = errors.New("node does not belong to the net")
	ErrInvalidWeight = errors.New("invalid arc weight")
	ErrDuplicateID   = errors.New("node id already in use")
)

// Net struct
type Net struct {
	ID          string
	Name        string
	Places      []*Place
	Transitions []*Transition
	Arcs        []*Arc
	inputs      map[string][]*Arc
	outputs     map[string][]*Arc
	nodes       map[string]Node
}

func NewNet(name string) *Net {
	return &Net{
		ID:      name,
		Name:    name,
		inputs:  make(map[string][]*Arc),
		outputs: make(map[string][]*Arc),
		nodes:   make(map[string]Node),
	}
}

// AddPlace creates a place with a generated id. The name doubles as the id
// when it is not already taken.
func (p *Net) AddPlace(name string) *Place {
	id := p.freeID(name, "p")
	pl := NewPlace(id, name)
	p.Places = append(p.Places, pl)
	p.nodes[id] = pl
	return pl
}

// AddTransition creates a transition. An empty label makes it silent.
func (p *Net) AddTransition(name, label string) *Transition {
	id := p.freeID(name, "t")
	t := NewTransition(id, name, label)
	p.Transitions = append(p.Transitions, t)
	p.nodes[id] = t
	return t
}

// Add inserts a place or transition built elsewhere, keeping its id.
func (p *Net) Add(n Node) error {
	if _, taken := p.nodes[n.Identifier()]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.Identifier())
	}
	switch v := n.(type) {
	case *Place:
		p.Places = append(p.Places, v)
	case *Transition:
		p.Transitions = append(p.Transitions, v)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownNode, n)
	}
	p.nodes[n.Identifier()] = n
	return nil
}

func (p *Net) freeID(name, prefix string) string {
	if name != "" {
		if _, taken := p.nodes[name]; !taken {
			return name
		}
	}
	for i := len(p.nodes); ; i++ {
		id := fmt.Sprintf("%s%d", prefix, i)
		if _, taken := p.nodes[id]; !taken {
			return id
		}
	}
}

func (p *Net) Arc(head, tail Node) *Arc {
	for _, arc := range p.outputs[head.Identifier()] {
		if arc.Dest.Identifier() == tail.Identifier() {
			return arc
		}
	}
	return nil
}

func (p *Net) Inputs(n Node) []*Arc {
	return p.inputs[n.Identifier()]
}

func (p *Net) Outputs(n Node) []*Arc {
	return p.outputs[n.Identifier()]
}

// AddArc connects two nodes of the net with a unit weight arc.
func (p *Net) AddArc(from, to Node) (*Arc, error) {
	return p.AddWeightedArc(from, to, 1)
}

func (p *Net) AddWeightedArc(from, to Node, weight int) (*Arc, error) {
	if from.Kind() == to.Kind() {
		return nil, ErrSameKind
	}
	if weight < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeight, weight)
	}
	for _, n := range []Node{from, to} {
		if p.nodes[n.Identifier()] != n {
			return nil, fmt.Errorf("%w: %s", ErrUnknownNode, n.Identifier())
		}
	}
	if arc := p.Arc(from, to); arc != nil {
		return nil, ErrArcExists
	}
	a := NewArc(from, to)
	a.Weight = weight
	p.Arcs = append(p.Arcs, a)
	p.outputs[from.Identifier()] = append(p.outputs[from.Identifier()], a)
	p.inputs[to.Identifier()] = append(p.inputs[to.Identifier()], a)
	return a, nil
}

// MustArc is AddArc for construction code where both nodes are known to be
// valid.
func (p *Net) MustArc(from, to Node) *Arc {
	a, err := p.AddArc(from, to)
	if err != nil {
		panic(err)
	}
	return a
}

func (p *Net) Place(id string) *Place {
	if pl, ok := p.nodes[id].(*Place); ok {
		return pl
	}
	return nil
}

func (p *Net) Transition(id string) *Transition {
	if t, ok := p.nodes[id].(*Transition); ok {
		return t
	}
	return nil
}

// Visible returns the labelled transitions.
func (p *Net) Visible() []*Transition {
	ret := make([]*Transition, 0, len(p.Transitions))
	for _, t := range p.Transitions {
		if !t.Silent() {
			ret = append(ret, t)
		}
	}
	return ret
}

// Labels returns the sorted set of transition labels.
func (p *Net) Labels() []string {
	seen := make(map[string]bool)
	for _, t := range p.Visible() {
		seen[t.Label] = true
	}
	ret := make([]string, 0, len(seen))
	for l := range seen {
		ret = append(ret, l)
	}
	sort.Strings(ret)
	return ret
}

// Marking maps places to their token count.
type Marking map[*Place]int

func (m Marking) Clone() Marking {
	ret := make(Marking, len(m))
	for p, n := range m {
		ret[p] = n
	}
	return ret
}

func (m Marking) Equal(o Marking) bool {
	count := 0
	for p, n := range m {
		if n == 0 {
			continue
		}
		if o[p] != n {
			return false
		}
		count++
	}
	for _, n := range o {
		if n != 0 {
			count--
		}
	}
	return count == 0
}

func (m Marking) String() string {
	parts := make([]string, 0, len(m))
	for p, n := range m {
		if n == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d", p.ID, n))
	}
	sort.Strings(parts)
	return "[" + strings.Join(parts, " ") + "]"
}

// AcceptingNet is a net together with the markings a run starts and ends in.
type AcceptingNet struct {
	*Net
	Initial Marking
	Final   Marking
}

func NewAcceptingNet(n *Net, initial, final Marking) *AcceptingNet {
	return &AcceptingNet{
		Net:     n,
		Initial: initial,
		Final:   final,
	}
}

type Loader[T any] interface {
	Load(io.Reader) (T, error)
}

type Flusher[T any] interface {
	Flush(io.Writer, T) error
}
