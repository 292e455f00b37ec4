// Package pnml reads and writes accepting Petri nets in the PNML core model,
// laid out the way ProM and pm4py exchange them.
package pnml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	petri "github.com/jt05610/pmeval"
)

const (
	CoreModel = "http://www.pnml.org/version-2009/grammar/pnmlcoremodel"

	invisible = "$invisible$"
)

var (
	ErrNoNet       = errors.New("pnml: document has no net")
	ErrUnknownNode = errors.New("pnml: arc references unknown node")
)

var (
	_ petri.Flusher[*petri.AcceptingNet] = (*Writer)(nil)
	_ petri.Loader[*petri.AcceptingNet]  = (*Reader)(nil)
)

type text struct {
	Text string `xml:"text"`
}

type toolSpecific struct {
	Tool        string `xml:"tool,attr"`
	Version     string `xml:"version,attr"`
	Activity    string `xml:"activity,attr,omitempty"`
	LocalNodeID string `xml:"localNodeID,attr,omitempty"`
}

type place struct {
	ID             string `xml:"id,attr"`
	Name           text   `xml:"name"`
	InitialMarking *text  `xml:"initialMarking,omitempty"`
}

type transition struct {
	ID           string        `xml:"id,attr"`
	Name         text          `xml:"name"`
	ToolSpecific *toolSpecific `xml:"toolspecific,omitempty"`
}

type arc struct {
	ID          string `xml:"id,attr"`
	Source      string `xml:"source,attr"`
	Target      string `xml:"target,attr"`
	Inscription *text  `xml:"inscription,omitempty"`
}

type page struct {
	ID          string       `xml:"id,attr"`
	Places      []place      `xml:"place"`
	Transitions []transition `xml:"transition"`
	Arcs        []arc        `xml:"arc"`
}

type markedPlace struct {
	IDRef string `xml:"idref,attr"`
	Text  string `xml:"text"`
}

type marking struct {
	Places []markedPlace `xml:"place"`
}

type net struct {
	ID            string    `xml:"id,attr"`
	Type          string    `xml:"type,attr"`
	Name          text      `xml:"name"`
	Pages         []page    `xml:"page"`
	FinalMarkings []marking `xml:"finalmarkings>marking"`
}

type document struct {
	XMLName xml.Name `xml:"pnml"`
	Nets    []net    `xml:"net"`
}

type Writer struct {
	// NodeID generates the localNodeID of silent transitions.
	NodeID func() string
}

func NewWriter() *Writer {
	return &Writer{NodeID: uuid.NewString}
}

func (w *Writer) Flush(out io.Writer, model *petri.AcceptingNet) error {
	nodeID := w.NodeID
	if nodeID == nil {
		nodeID = uuid.NewString
	}
	name := model.Name
	if name == "" {
		name = "net1"
	}
	pg := page{ID: "n0"}
	for _, p := range model.Places {
		pl := place{ID: p.ID, Name: text{Text: p.Name}}
		if n := model.Initial[p]; n > 0 {
			pl.InitialMarking = &text{Text: strconv.Itoa(n)}
		}
		pg.Places = append(pg.Places, pl)
	}
	for _, t := range model.Transitions {
		tr := transition{ID: t.ID, Name: text{Text: t.Label}}
		if t.Silent() {
			tr.Name.Text = t.Name
			tr.ToolSpecific = &toolSpecific{
				Tool:        "ProM",
				Version:     "6.4",
				Activity:    invisible,
				LocalNodeID: nodeID(),
			}
		}
		pg.Transitions = append(pg.Transitions, tr)
	}
	for i, a := range model.Arcs {
		ar := arc{
			ID:     fmt.Sprintf("arc%d", i),
			Source: a.Src.Identifier(),
			Target: a.Dest.Identifier(),
		}
		if a.Weight > 1 {
			ar.Inscription = &text{Text: strconv.Itoa(a.Weight)}
		}
		pg.Arcs = append(pg.Arcs, ar)
	}
	var final marking
	for _, p := range model.Places {
		if n := model.Final[p]; n > 0 {
			final.Places = append(final.Places, markedPlace{IDRef: p.ID, Text: strconv.Itoa(n)})
		}
	}
	doc := document{Nets: []net{{
		ID:            name,
		Type:          CoreModel,
		Name:          text{Text: name},
		Pages:         []page{pg},
		FinalMarkings: []marking{final},
	}}}
	if _, err := io.WriteString(out, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(out)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(out, "\n")
	return err
}

type Reader struct{}

func NewReader() *Reader { return &Reader{} }

func count(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// Load reads the first net of the document. All pages are merged.
func (r *Reader) Load(in io.Reader) (*petri.AcceptingNet, error) {
	var doc document
	if err := xml.NewDecoder(in).Decode(&doc); err != nil {
		return nil, fmt.Errorf("pnml: %w", err)
	}
	if len(doc.Nets) == 0 {
		return nil, ErrNoNet
	}
	src := doc.Nets[0]
	n := petri.NewNet(src.Name.Text)
	if src.ID != "" {
		n.ID = src.ID
	}
	initial := make(petri.Marking)
	final := make(petri.Marking)
	nodes := make(map[string]petri.Node)
	for _, pg := range src.Pages {
		for _, p := range pg.Places {
			pl := petri.NewPlace(p.ID, p.Name.Text)
			if err := n.Add(pl); err != nil {
				return nil, err
			}
			nodes[p.ID] = pl
			if p.InitialMarking != nil {
				k, err := count(p.InitialMarking.Text)
				if err != nil {
					return nil, fmt.Errorf("pnml: initial marking of %s: %w", p.ID, err)
				}
				if k > 0 {
					initial[pl] = k
				}
			}
		}
		for _, t := range pg.Transitions {
			label := t.Name.Text
			if t.ToolSpecific != nil && t.ToolSpecific.Activity == invisible {
				label = ""
			}
			name := t.Name.Text
			if name == "" {
				name = t.ID
			}
			tr := petri.NewTransition(t.ID, name, label)
			if err := n.Add(tr); err != nil {
				return nil, err
			}
			nodes[t.ID] = tr
		}
	}
	for _, pg := range src.Pages {
		for _, a := range pg.Arcs {
			from, ok := nodes[a.Source]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownNode, a.Source)
			}
			to, ok := nodes[a.Target]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownNode, a.Target)
			}
			weight := 1
			if a.Inscription != nil {
				k, err := count(a.Inscription.Text)
				if err != nil {
					return nil, fmt.Errorf("pnml: inscription of %s: %w", a.ID, err)
				}
				weight = k
			}
			if _, err := n.AddWeightedArc(from, to, weight); err != nil {
				return nil, fmt.Errorf("pnml: arc %s: %w", a.ID, err)
			}
		}
	}
	for _, m := range src.FinalMarkings {
		for _, mp := range m.Places {
			pl := n.Place(mp.IDRef)
			if pl == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownNode, mp.IDRef)
			}
			k, err := count(mp.Text)
			if err != nil {
				return nil, fmt.Errorf("pnml: final marking of %s: %w", mp.IDRef, err)
			}
			if k > 0 {
				final[pl] = k
			}
		}
	}
	return petri.NewAcceptingNet(n, initial, final), nil
}
