package processtree

import (
	"fmt"
	"strings"
)

type Operator int

const (
	Leaf Operator = iota
	Tau
	Sequence
	Xor
	Parallel
	Loop
)

var operatorSymbols = map[Operator]string{
	Sequence: "->",
	Xor:      "X",
	Parallel: "+",
	Loop:     "*",
}

func (o Operator) String() string {
	switch o {
	case Leaf:
		return "leaf"
	case Tau:
		return "tau"
	}
	return operatorSymbols[o]
}

// Tree is a block-structured process model. Leaves carry an activity label;
// Tau leaves are silent.
type Tree struct {
	Operator Operator
	Label    string
	Children []*Tree
}

func NewLeaf(label string) *Tree {
	return &Tree{Operator: Leaf, Label: label}
}

func NewTau() *Tree {
	return &Tree{Operator: Tau}
}

func New(op Operator, children ...*Tree) *Tree {
	return &Tree{Operator: op, Children: children}
}

func (t *Tree) String() string {
	switch t.Operator {
	case Leaf:
		return fmt.Sprintf("'%s'", t.Label)
	case Tau:
		return "tau"
	}
	parts := make([]string, len(t.Children))
	for i, c := range t.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s( %s )", operatorSymbols[t.Operator], strings.Join(parts, ", "))
}

// Leaves returns the activity labels in the tree in depth-first order.
func (t *Tree) Leaves() []string {
	if t.Operator == Leaf {
		return []string{t.Label}
	}
	var ret []string
	for _, c := range t.Children {
		ret = append(ret, c.Leaves()...)
	}
	return ret
}
