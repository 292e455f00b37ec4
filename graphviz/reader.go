package graphviz

import (
	"io"
	"strconv"

	"github.com/goccy/go-graphviz/cgraph"
	petri "github.com/jt05610/pmeval"
)

var _ petri.Loader[*petri.AcceptingNet] = (*Reader)(nil)

// Reader loads nets back from the DOT documents Writer produces. Circles
// are places, boxes are transitions and filled boxes are silent.
type Reader struct {
	g       *cgraph.Graph
	net     *petri.Net
	mapping map[string]petri.Node
	initial petri.Marking
	final   petri.Marking
}

func (r *Reader) readNode(node *cgraph.Node) error {
	name, err := node.Name()
	if err != nil {
		return err
	}
	label := node.GetStr("label")
	switch cgraph.Shape(node.GetStr("shape")) {
	case cgraph.CircleShape, cgraph.DoubleCircleShape:
		p := r.net.AddPlace(name)
		r.mapping[name] = p
		switch label {
		case initialLabel:
			r.initial[p] = 1
		case finalLabel, "", name, `\N`:
		default:
			if n, err := strconv.Atoi(label); err == nil {
				r.initial[p] = n
			}
		}
		if cgraph.Shape(node.GetStr("shape")) == cgraph.DoubleCircleShape {
			r.final[p] = 1
		}
	case cgraph.BoxShape:
		if cgraph.NodeStyle(node.GetStr("style")) == cgraph.FilledNodeStyle {
			label = ""
		}
		r.mapping[name] = r.net.AddTransition(name, label)
	}
	return nil
}

func (r *Reader) readEdges(node *cgraph.Node) error {
	name, err := node.Name()
	if err != nil {
		return err
	}
	src, ok := r.mapping[name]
	if !ok {
		return nil
	}
	edge, err := r.g.FirstOut(node)
	for ; edge != nil && err == nil; edge, err = r.g.NextOut(edge) {
		head, err := edge.Head()
		if err != nil {
			return err
		}
		hname, err := head.Name()
		if err != nil {
			return err
		}
		dst, ok := r.mapping[hname]
		if !ok {
			continue
		}
		weight := 1
		if w, err := strconv.Atoi(edge.GetStr("label")); err == nil && w > 1 {
			weight = w
		}
		if _, err := r.net.AddWeightedArc(src, dst, weight); err != nil {
			return err
		}
	}
	return err
}

func (r *Reader) Load(reader io.Reader) (*petri.AcceptingNet, error) {
	bytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	r.g, err = cgraph.ParseBytes(bytes)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.g.Close()
	}()
	r.net = petri.NewNet("net")
	r.mapping = make(map[string]petri.Node)
	r.initial = make(petri.Marking)
	r.final = make(petri.Marking)
	var nodes []*cgraph.Node
	node, err := r.g.FirstNode()
	for ; node != nil && err == nil; node, err = r.g.NextNode(node) {
		nodes = append(nodes, node)
	}
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if err := r.readNode(n); err != nil {
			return nil, err
		}
	}
	for _, n := range nodes {
		if err := r.readEdges(n); err != nil {
			return nil, err
		}
	}
	return petri.NewAcceptingNet(r.net, r.initial, r.final), nil
}

func Loader() *Reader {
	return &Reader{}
}
