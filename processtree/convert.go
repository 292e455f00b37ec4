package processtree

import (
	"errors"
	"fmt"

	petri "github.com/jt05610/pmeval"
)

var ErrMalformed = errors.New("malformed process tree")

type converter struct {
	net    *petri.Net
	silent int
	places int
}

func (c *converter) place() *petri.Place {
	c.places++
	return c.net.AddPlace(fmt.Sprintf("p_%d", c.places))
}

func (c *converter) tau(kind string) *petri.Transition {
	c.silent++
	return c.net.AddTransition(fmt.Sprintf("%s_%d", kind, c.silent), "")
}

func (c *converter) chain(in *petri.Place, t *petri.Transition, out *petri.Place) {
	c.net.MustArc(in, t)
	c.net.MustArc(t, out)
}

func (c *converter) convert(t *Tree, in, out *petri.Place) error {
	switch t.Operator {
	case Leaf:
		if len(t.Children) > 0 || t.Label == "" {
			return fmt.Errorf("%w: leaf %q", ErrMalformed, t.Label)
		}
		c.chain(in, c.net.AddTransition(t.Label, t.Label), out)
	case Tau:
		c.chain(in, c.tau("skip"), out)
	case Sequence:
		if len(t.Children) == 0 {
			c.chain(in, c.tau("skip"), out)
			return nil
		}
		src := in
		for i, child := range t.Children {
			dst := out
			if i < len(t.Children)-1 {
				dst = c.place()
			}
			if err := c.convert(child, src, dst); err != nil {
				return err
			}
			src = dst
		}
	case Xor:
		if len(t.Children) == 0 {
			return fmt.Errorf("%w: empty choice", ErrMalformed)
		}
		for _, child := range t.Children {
			if err := c.convert(child, in, out); err != nil {
				return err
			}
		}
	case Parallel:
		if len(t.Children) == 0 {
			return fmt.Errorf("%w: empty parallel block", ErrMalformed)
		}
		split := c.tau("tauSplit")
		join := c.tau("tauJoin")
		c.net.MustArc(in, split)
		c.net.MustArc(join, out)
		for _, child := range t.Children {
			cin, cout := c.place(), c.place()
			c.net.MustArc(split, cin)
			c.net.MustArc(cout, join)
			if err := c.convert(child, cin, cout); err != nil {
				return err
			}
		}
	case Loop:
		if len(t.Children) == 0 {
			return fmt.Errorf("%w: loop without body", ErrMalformed)
		}
		entry, exit := c.place(), c.place()
		c.chain(in, c.tau("init_loop"), entry)
		c.chain(exit, c.tau("exit_loop"), out)
		if err := c.convert(t.Children[0], entry, exit); err != nil {
			return err
		}
		for _, redo := range t.Children[1:] {
			if err := c.convert(redo, exit, entry); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown operator %d", ErrMalformed, t.Operator)
	}
	return nil
}

// ToPetriNet translates the tree block by block into a workflow net with a
// single source and sink place.
func ToPetriNet(t *Tree) (*petri.AcceptingNet, error) {
	c := &converter{net: petri.NewNet("inductive")}
	source := c.net.AddPlace("source")
	sink := c.net.AddPlace("sink")
	if err := c.convert(t, source, sink); err != nil {
		return nil, err
	}
	return petri.NewAcceptingNet(c.net,
		petri.Marking{source: 1},
		petri.Marking{sink: 1},
	), nil
}
