package xes

import (
	"encoding/xml"
	"io"
	"sort"
	"time"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/eventlog"
)

var _ petri.Flusher[*eventlog.Log] = (*Writer)(nil)

type outAttr struct {
	XMLName xml.Name
	Key     string `xml:"key,attr"`
	Value   string `xml:"value,attr"`
}

type outEvent struct {
	Attributes []outAttr
}

type outTrace struct {
	Attributes []outAttr
	Events     []outEvent `xml:"event"`
}

type outLog struct {
	XMLName    xml.Name   `xml:"log"`
	Version    string     `xml:"xes.version,attr"`
	Features   string     `xml:"xes.features,attr"`
	Attributes []outAttr
	Traces     []outTrace `xml:"trace"`
}

func stringAttr(key, value string) outAttr {
	return outAttr{XMLName: xml.Name{Local: "string"}, Key: key, Value: value}
}

func otherAttrs(attrs map[string]string, skip ...string) []outAttr {
	keys := make([]string, 0, len(attrs))
outer:
	for k := range attrs {
		for _, s := range skip {
			if k == s {
				continue outer
			}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ret := make([]outAttr, len(keys))
	for i, k := range keys {
		ret[i] = stringAttr(k, attrs[k])
	}
	return ret
}

// Writer writes a minimal XES document: names, timestamps and the remaining
// attributes as strings.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Flush(out io.Writer, l *eventlog.Log) error {
	doc := outLog{
		Version:  "1.0",
		Features: "nested-attributes",
	}
	if l.Name != "" {
		doc.Attributes = append(doc.Attributes, stringAttr(ConceptName, l.Name))
	}
	for _, t := range l.Traces {
		ot := outTrace{Attributes: []outAttr{stringAttr(ConceptName, t.Name)}}
		ot.Attributes = append(ot.Attributes, otherAttrs(t.Attributes, ConceptName)...)
		for _, e := range t.Events {
			oe := outEvent{Attributes: []outAttr{stringAttr(ConceptName, e.Activity)}}
			if !e.Timestamp.IsZero() {
				oe.Attributes = append(oe.Attributes, outAttr{
					XMLName: xml.Name{Local: "date"},
					Key:     TimeTimestamp,
					Value:   e.Timestamp.Format(time.RFC3339Nano),
				})
			}
			oe.Attributes = append(oe.Attributes, otherAttrs(e.Attributes, ConceptName, TimeTimestamp)...)
			ot.Events = append(ot.Events, oe)
		}
		doc.Traces = append(doc.Traces, ot)
	}
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
