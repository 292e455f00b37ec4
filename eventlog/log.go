package eventlog

import (
	"sort"
	"strings"
	"time"
)

// Event is a single occurrence of an activity.
type Event struct {
	Activity   string
	Timestamp  time.Time
	Attributes map[string]string
}

// Trace is the ordered sequence of events of one case.
type Trace struct {
	Name       string
	Events     []Event
	Attributes map[string]string
}

// Activities returns the activity sequence of the trace.
func (t *Trace) Activities() []string {
	ret := make([]string, len(t.Events))
	for i, e := range t.Events {
		ret[i] = e.Activity
	}
	return ret
}

type Log struct {
	Name   string
	Traces []Trace
}

func (l *Log) Len() int { return len(l.Traces) }

func (l *Log) NumEvents() int {
	n := 0
	for _, t := range l.Traces {
		n += len(t.Events)
	}
	return n
}

// Activities returns the sorted activity alphabet of the log.
func (l *Log) Activities() []string {
	seen := make(map[string]bool)
	for _, t := range l.Traces {
		for _, e := range t.Events {
			seen[e.Activity] = true
		}
	}
	ret := make([]string, 0, len(seen))
	for a := range seen {
		ret = append(ret, a)
	}
	sort.Strings(ret)
	return ret
}

// Variant is a distinct activity sequence and the number of traces that
// follow it.
type Variant struct {
	Activities []string
	Count      int
}

func (v Variant) Key() string { return VariantKey(v.Activities) }

// VariantKey joins activities with a separator that cannot appear in XES
// attribute values.
func VariantKey(acts []string) string {
	return strings.Join(acts, "\x00")
}

// Variants groups traces by activity sequence. The result is sorted by
// descending count, then by key.
func (l *Log) Variants() []Variant {
	index := make(map[string]int)
	var ret []Variant
	for _, t := range l.Traces {
		acts := t.Activities()
		k := VariantKey(acts)
		if i, ok := index[k]; ok {
			ret[i].Count++
			continue
		}
		index[k] = len(ret)
		ret = append(ret, Variant{Activities: acts, Count: 1})
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Count != ret[j].Count {
			return ret[i].Count > ret[j].Count
		}
		return ret[i].Key() < ret[j].Key()
	})
	return ret
}

// FromVariants builds a log holding count copies of each sequence. It is
// mostly useful in tests and for the recursive steps of discovery.
func FromVariants(name string, variants ...Variant) *Log {
	l := &Log{Name: name}
	for _, v := range variants {
		for i := 0; i < v.Count; i++ {
			t := Trace{Events: make([]Event, len(v.Activities))}
			for j, a := range v.Activities {
				t.Events[j] = Event{Activity: a}
			}
			l.Traces = append(l.Traces, t)
		}
	}
	return l
}

// FromSequences builds a log with one trace per sequence.
func FromSequences(name string, seqs ...[]string) *Log {
	vv := make([]Variant, len(seqs))
	for i, s := range seqs {
		vv[i] = Variant{Activities: s, Count: 1}
	}
	return FromVariants(name, vv...)
}
