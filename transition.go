package petri

var _ Node = (*Transition)(nil)

// Transition represents a transition. A transition without a label is silent.
type Transition struct {
	ID   string
	Name string
	// Label is the activity the transition stands for
	Label string
}

func NewTransition(id, name, label string) *Transition {
	return &Transition{
		ID:    id,
		Name:  name,
		Label: label,
	}
}

// Silent reports whether the transition is invisible in the log.
func (t *Transition) Silent() bool { return t.Label == "" }

func (t *Transition) Kind() NodeKind { return TransitionNode }

func (t *Transition) Identifier() string { return t.ID }

func (t *Transition) String() string {
	if t.Name == "" {
		return t.ID
	}
	return t.Name
}
