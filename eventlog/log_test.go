package eventlog_test

import (
	"fmt"
	"testing"

	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/examples"
	"github.com/stretchr/testify/assert"
)

func ExampleLog_Variants() {
	log := examples.Running()
	for _, v := range log.Variants() {
		fmt.Println(v.Count, v.Activities)
	}
	// Output:
	// 3 [a b c d]
	// 2 [a c b d]
	// 1 [a e d]
}

func TestLog_Counts(t *testing.T) {
	log := examples.Running()
	assert.Equal(t, 6, log.Len())
	assert.Equal(t, 23, log.NumEvents())
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, log.Activities())
}

func TestLog_VariantsTieBreak(t *testing.T) {
	log := eventlog.FromSequences("ties", []string{"b"}, []string{"a"}, []string{"b"}, []string{"c"})
	vs := log.Variants()
	keys := make([]string, len(vs))
	for i, v := range vs {
		keys[i] = v.Key()
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys)
}

func TestDFG_Relations(t *testing.T) {
	d := examples.Running().DFG()
	cases := []struct {
		a, b                      string
		causal, parallel, choice bool
	}{
		{"a", "b", true, false, false},
		{"b", "c", false, true, false},
		{"b", "e", false, false, true},
		{"e", "d", true, false, false},
		{"d", "a", false, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.a+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.causal, d.Causal(tc.a, tc.b))
			assert.Equal(t, tc.parallel, d.Parallel(tc.a, tc.b))
			assert.Equal(t, tc.choice, d.Choice(tc.a, tc.b))
		})
	}
	assert.Equal(t, 3, d.Count("a", "b"))
	assert.Equal(t, []string{"a"}, d.StartActivities())
	assert.Equal(t, []string{"d"}, d.EndActivities())
	assert.Equal(t, []string{"b", "c", "e"}, d.Successors("a"))
	assert.Equal(t, []string{"b", "c", "e"}, d.Predecessors("d"))
	assert.Equal(t, 6, d.Counts["a"])
}

func TestDFG_EmptyTrace(t *testing.T) {
	d := eventlog.FromSequences("empty", nil, []string{"a"}).DFG()
	assert.Equal(t, []string{"a"}, d.Activities)
	assert.Equal(t, 1, d.Start["a"])
}
