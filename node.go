package petri

type NodeKind int

const (
	PlaceNode NodeKind = iota
	TransitionNode
)

// Node is either a *Place or a *Transition.
type Node interface {
	Kind() NodeKind
	Identifier() string
	String() string
}
