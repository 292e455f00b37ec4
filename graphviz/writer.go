package graphviz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	petri "github.com/jt05610/pmeval"
)

var ErrUnknownFormat = errors.New("unknown image format")

const (
	initialLabel = "●"
	finalLabel   = "■"
)

type Writer struct {
	*Config
	g       *cgraph.Graph
	model   *petri.AcceptingNet
	mapping map[petri.Node]*cgraph.Node
}

func (w *Writer) writePlace(p *petri.Place) error {
	node, err := w.g.CreateNodeByName(p.ID)
	if err != nil {
		return err
	}
	node.SetShape(cgraph.CircleShape)
	node.SetFontName(string(w.Font))
	node.SetFixedSize(true)
	node.SetWidth(0.5)
	label := ""
	if n := w.model.Initial[p]; n > 0 {
		label = initialLabel
		if n > 1 {
			label = strconv.Itoa(n)
		}
	}
	if w.model.Final[p] > 0 {
		node.SetShape(cgraph.DoubleCircleShape)
		if label == "" {
			label = finalLabel
		}
	}
	node.SetLabel(label)
	w.mapping[p] = node
	return nil
}

func (w *Writer) writeTransition(t *petri.Transition) error {
	node, err := w.g.CreateNodeByName(t.ID)
	if err != nil {
		return err
	}
	w.mapping[t] = node
	node.SetShape(cgraph.BoxShape)
	node.SetFontName(string(w.Font))
	if t.Silent() {
		node.SetLabel("")
		node.SetStyle(cgraph.FilledNodeStyle)
		node.SetFillColor("black")
		node.SetWidth(0.2)
		node.SetHeight(0.4)
		return nil
	}
	node.SetLabel(t.Label)
	return nil
}

func (w *Writer) writeArc(i int, a *petri.Arc) error {
	src := w.mapping[a.Src]
	dst := w.mapping[a.Dest]
	if src == nil || dst == nil {
		return fmt.Errorf("%w: %s", petri.ErrUnknownNode, a)
	}
	e, err := w.g.CreateEdgeByName(fmt.Sprintf("a%d", i), src, dst)
	if err != nil {
		return err
	}
	if a.Weight > 1 {
		e.SetLabel(strconv.Itoa(a.Weight))
	}
	return nil
}

func (w *Writer) format() (graphviz.Format, error) {
	switch w.Format {
	case "", PNG:
		return graphviz.PNG, nil
	case SVG:
		return graphviz.SVG, nil
	case DOT:
		return graphviz.XDOT, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, w.Format)
}

// Flush lays the net out left to right and renders it in the configured
// format.
func (w *Writer) Flush(ctx context.Context, out io.Writer, model *petri.AcceptingNet) error {
	format, err := w.format()
	if err != nil {
		return err
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = gv.Close()
	}()
	g, err := gv.Graph(graphviz.WithName(w.Name))
	if err != nil {
		return err
	}
	defer func() {
		_ = g.Close()
	}()
	g.SetRankDir(cgraph.RankDir(w.RankDir))
	g.SetFontName(string(w.Font))
	// graph state is per flush; w itself is only read
	b := &Writer{
		Config:  w.Config,
		g:       g,
		model:   model,
		mapping: make(map[petri.Node]*cgraph.Node),
	}
	for _, p := range model.Places {
		if err := b.writePlace(p); err != nil {
			return err
		}
	}
	for _, t := range model.Transitions {
		if err := b.writeTransition(t); err != nil {
			return err
		}
	}
	for i, a := range model.Arcs {
		if err := b.writeArc(i, a); err != nil {
			return err
		}
	}
	return gv.Render(ctx, g, format, out)
}

type Font string

func (f Font) Or(other Font) Font {
	return f + "," + other
}

const (
	Helvetica Font = "Helvetica"
	Arial     Font = "Arial"
	SansSerif Font = "sans-serif"
	Times     Font = "Times"
)

type RankDir string

const (
	LeftToRight RankDir = "LR"
	TopToBottom RankDir = "TB"
)

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
	DOT Format = "dot"
)

// ParseFormat maps a file extension or format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case PNG, SVG, DOT:
		return f, nil
	case "gv":
		return DOT, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

type Config struct {
	Name string
	Font
	RankDir
	Format
}

func New(config *Config) *Writer {
	if config.Name == "" {
		config.Name = "petri"
	}
	if config.Font == "" {
		config.Font = Helvetica
	}
	if config.RankDir == "" {
		config.RankDir = LeftToRight
	}
	return &Writer{Config: config}
}
