package xes

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"

	petri "github.com/jt05610/pmeval"
	"github.com/jt05610/pmeval/eventlog"
)

const (
	ConceptName   = "concept:name"
	TimeTimestamp = "time:timestamp"
)

var ErrNoActivity = errors.New("event has no concept:name")

var _ petri.Loader[*eventlog.Log] = (*Reader)(nil)

type attribute struct {
	XMLName xml.Name
	Key     string `xml:"key,attr"`
	Value   string `xml:"value,attr"`
}

type event struct {
	Attributes []attribute `xml:",any"`
}

type trace struct {
	Events     []event     `xml:"event"`
	Attributes []attribute `xml:",any"`
}

type document struct {
	XMLName    xml.Name    `xml:"log"`
	Traces     []trace     `xml:"trace"`
	Attributes []attribute `xml:",any"`
}

var scalar = map[string]bool{
	"string":  true,
	"date":    true,
	"int":     true,
	"float":   true,
	"boolean": true,
	"id":      true,
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
}

func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func attributeMap(attrs []attribute) map[string]string {
	ret := make(map[string]string)
	for _, a := range attrs {
		if !scalar[a.XMLName.Local] {
			continue
		}
		ret[a.Key] = a.Value
	}
	return ret
}

// Reader loads event logs in the XES format.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) Load(in io.Reader) (*eventlog.Log, error) {
	var doc document
	if err := xml.NewDecoder(in).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode xes: %w", err)
	}
	attrs := attributeMap(doc.Attributes)
	l := &eventlog.Log{
		Name:   attrs[ConceptName],
		Traces: make([]eventlog.Trace, 0, len(doc.Traces)),
	}
	for i, tr := range doc.Traces {
		t := eventlog.Trace{
			Attributes: attributeMap(tr.Attributes),
			Events:     make([]eventlog.Event, 0, len(tr.Events)),
		}
		t.Name = t.Attributes[ConceptName]
		for j, ev := range tr.Events {
			e := eventlog.Event{Attributes: attributeMap(ev.Attributes)}
			// an empty name would turn the activity into a silent transition
			act := e.Attributes[ConceptName]
			if act == "" {
				return nil, fmt.Errorf("trace %d event %d: %w", i, j, ErrNoActivity)
			}
			e.Activity = act
			if ts, ok := e.Attributes[TimeTimestamp]; ok {
				parsed, err := parseTime(ts)
				if err != nil {
					return nil, fmt.Errorf("trace %d event %d: parse timestamp: %w", i, j, err)
				}
				e.Timestamp = parsed
			}
			t.Events = append(t.Events, e)
		}
		l.Traces = append(l.Traces, t)
	}
	return l, nil
}
