package eventlog

import "sort"

// Pair is an ordered pair of activities.
type Pair struct {
	From string
	To   string
}

// DFG is the directly-follows graph of a log together with the start and
// end activity counts.
type DFG struct {
	Activities []string
	Edges      map[Pair]int
	Start      map[string]int
	End        map[string]int
	Counts     map[string]int
}

func NewDFG() *DFG {
	return &DFG{
		Edges:  make(map[Pair]int),
		Start:  make(map[string]int),
		End:    make(map[string]int),
		Counts: make(map[string]int),
	}
}

// DFG computes the directly-follows graph of the log.
func (l *Log) DFG() *DFG {
	return DFGOf(l.Variants())
}

// DFGOf computes the directly-follows graph of a set of variants.
func DFGOf(variants []Variant) *DFG {
	d := NewDFG()
	for _, v := range variants {
		d.Add(v.Activities, v.Count)
	}
	d.finish()
	return d
}

// Add records count occurrences of the sequence.
func (d *DFG) Add(acts []string, count int) {
	if len(acts) == 0 {
		return
	}
	d.Start[acts[0]] += count
	d.End[acts[len(acts)-1]] += count
	for i, a := range acts {
		d.Counts[a] += count
		if i > 0 {
			d.Edges[Pair{From: acts[i-1], To: a}] += count
		}
	}
}

func (d *DFG) finish() {
	d.Activities = d.Activities[:0]
	for a := range d.Counts {
		d.Activities = append(d.Activities, a)
	}
	sort.Strings(d.Activities)
}

func (d *DFG) Count(a, b string) int { return d.Edges[Pair{From: a, To: b}] }

// Follows reports a > b: b directly follows a at least once.
func (d *DFG) Follows(a, b string) bool { return d.Count(a, b) > 0 }

// Causal reports a -> b in the footprint.
func (d *DFG) Causal(a, b string) bool { return d.Follows(a, b) && !d.Follows(b, a) }

// Parallel reports a || b in the footprint.
func (d *DFG) Parallel(a, b string) bool { return d.Follows(a, b) && d.Follows(b, a) }

// Choice reports a # b in the footprint.
func (d *DFG) Choice(a, b string) bool { return !d.Follows(a, b) && !d.Follows(b, a) }

// StartActivities returns the sorted start activities.
func (d *DFG) StartActivities() []string { return sortedKeys(d.Start) }

// EndActivities returns the sorted end activities.
func (d *DFG) EndActivities() []string { return sortedKeys(d.End) }

// Successors returns the sorted activities that directly follow a.
func (d *DFG) Successors(a string) []string {
	seen := make(map[string]int)
	for p, n := range d.Edges {
		if p.From == a {
			seen[p.To] = n
		}
	}
	return sortedKeys(seen)
}

// Predecessors returns the sorted activities that a directly follows.
func (d *DFG) Predecessors(a string) []string {
	seen := make(map[string]int)
	for p, n := range d.Edges {
		if p.To == a {
			seen[p.From] = n
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]int) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
