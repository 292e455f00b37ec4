package inductive

import "github.com/jt05610/pmeval/eventlog"

// sublog accumulates variants, merging identical sequences.
type sublog struct {
	index    map[string]int
	variants []eventlog.Variant
}

func newSublog() *sublog {
	return &sublog{index: make(map[string]int)}
}

func (s *sublog) add(acts []string, count int) {
	k := eventlog.VariantKey(acts)
	if i, ok := s.index[k]; ok {
		s.variants[i].Count += count
		return
	}
	s.index[k] = len(s.variants)
	s.variants = append(s.variants, eventlog.Variant{Activities: acts, Count: count})
}

func membership(groups [][]string) map[string]int {
	ret := make(map[string]int)
	for i, g := range groups {
		for _, a := range g {
			ret[a] = i
		}
	}
	return ret
}

func project(acts []string, keep func(string) bool) []string {
	ret := make([]string, 0, len(acts))
	for _, a := range acts {
		if keep(a) {
			ret = append(ret, a)
		}
	}
	return ret
}

// splitXor sends each trace to the group of its first activity.
func splitXor(vs []eventlog.Variant, groups [][]string) [][]eventlog.Variant {
	member := membership(groups)
	logs := make([]*sublog, len(groups))
	for i := range logs {
		logs[i] = newSublog()
	}
	for _, v := range vs {
		gi := member[v.Activities[0]]
		logs[gi].add(project(v.Activities, func(a string) bool { return member[a] == gi }), v.Count)
	}
	return collect(logs)
}

// splitProject projects every trace onto each group.
func splitProject(vs []eventlog.Variant, groups [][]string) [][]eventlog.Variant {
	member := membership(groups)
	logs := make([]*sublog, len(groups))
	for i := range logs {
		logs[i] = newSublog()
	}
	for _, v := range vs {
		for gi := range groups {
			gi := gi
			logs[gi].add(project(v.Activities, func(a string) bool { return member[a] == gi }), v.Count)
		}
	}
	return collect(logs)
}

// splitLoop cuts each trace into alternating body and redo segments. A trace
// that starts or ends in a redo part gets an empty body segment there.
func splitLoop(vs []eventlog.Variant, groups [][]string) [][]eventlog.Variant {
	member := membership(groups)
	logs := make([]*sublog, len(groups))
	for i := range logs {
		logs[i] = newSublog()
	}
	for _, v := range vs {
		cur := 0
		var seg []string
		flush := func() {
			logs[cur].add(seg, v.Count)
			seg = nil
		}
		for i, a := range v.Activities {
			gi := member[a]
			if i == 0 && gi != 0 {
				flush()
				cur = gi
			}
			if gi != cur && (gi == 0 || cur == 0) {
				flush()
				cur = gi
			} else if gi != cur {
				// consecutive redo segments from different groups
				flush()
				logs[0].add(nil, v.Count)
				cur = gi
			}
			seg = append(seg, a)
		}
		flush()
		if cur != 0 {
			logs[0].add(nil, v.Count)
		}
	}
	return collect(logs)
}

func collect(logs []*sublog) [][]eventlog.Variant {
	ret := make([][]eventlog.Variant, len(logs))
	for i, l := range logs {
		ret[i] = l.variants
	}
	return ret
}

// removeActivity drops every occurrence of a.
func removeActivity(vs []eventlog.Variant, a string) []eventlog.Variant {
	s := newSublog()
	for _, v := range vs {
		s.add(project(v.Activities, func(x string) bool { return x != a }), v.Count)
	}
	return s.variants
}
