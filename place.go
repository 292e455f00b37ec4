package petri

var _ Node = (*Place)(nil)

// Place represents a place.
type Place struct {
	ID string
	// Name is the display name of the place
	Name string
}

// NewPlace creates a new place.
func NewPlace(id, name string) *Place {
	return &Place{
		ID:   id,
		Name: name,
	}
}

func (p *Place) Kind() NodeKind { return PlaceNode }

func (p *Place) Identifier() string { return p.ID }

func (p *Place) String() string {
	if p.Name == "" {
		return p.ID
	}
	return p.Name
}
