package petri

// Arc is a connection from a place to a transition or a transition to a place.
type Arc struct {
	// Src is the place or transition that is the source of the arc.
	Src Node
	// Dest is the place or transition that is the destination of the arc.
	Dest Node
	// Weight is the number of tokens moved along the arc.
	Weight int
}

func NewArc(from, to Node) *Arc {
	return &Arc{
		Src:    from,
		Dest:   to,
		Weight: 1,
	}
}

func (a *Arc) String() string {
	return a.Src.Identifier() + " -> " + a.Dest.Identifier()
}
