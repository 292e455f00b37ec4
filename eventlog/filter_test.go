package eventlog_test

import (
	"testing"

	"github.com/jt05610/pmeval/eventlog"
	"github.com/jt05610/pmeval/examples"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	cases := []struct {
		name string
		expr string
		want int
	}{
		{"empty keeps all", "", 6},
		{"length", "length > 3", 5},
		{"membership", `"e" in activities`, 1},
		{"first activity", `activities[0] == "a" && length == 4`, 5},
		{"nothing", "false", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := eventlog.NewFilter(tc.expr)
			require.NoError(t, err)
			out, err := f.Apply(examples.Running())
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Len())
		})
	}
}

func TestFilter_Attributes(t *testing.T) {
	log := examples.TwoTraces()
	log.Traces[0].Attributes = map[string]string{"channel": "web"}
	f, err := eventlog.NewFilter(`attributes["channel"] == "web"`)
	require.NoError(t, err)
	out, err := f.Apply(log)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, []string{"register", "check", "decide"}, out.Traces[0].Activities())
}

func TestFilter_Invalid(t *testing.T) {
	_, err := eventlog.NewFilter("length +")
	assert.Error(t, err)
	_, err = eventlog.NewFilter(`name`)
	assert.Error(t, err, "non boolean expressions are rejected")
}
