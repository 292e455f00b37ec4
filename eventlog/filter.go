package eventlog

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter keeps the traces for which a boolean expression holds. The
// expression sees the variables name, length, activities and attributes.
type Filter struct {
	Expression string
	program    *vm.Program
}

func traceEnv(t *Trace) map[string]interface{} {
	attrs := t.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return map[string]interface{}{
		"name":       t.Name,
		"length":     len(t.Events),
		"activities": t.Activities(),
		"attributes": attrs,
	}
}

// NewFilter compiles the expression. An empty expression yields a nil
// filter, which keeps every trace.
func NewFilter(expression string) (*Filter, error) {
	if expression == "" {
		return nil, nil
	}
	program, err := expr.Compile(expression, expr.Env(traceEnv(&Trace{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expression, err)
	}
	return &Filter{
		Expression: expression,
		program:    program,
	}, nil
}

// Keep reports whether the trace passes the filter.
func (f *Filter) Keep(t *Trace) (bool, error) {
	if f == nil {
		return true, nil
	}
	ret, err := expr.Run(f.program, traceEnv(t))
	if err != nil {
		return false, fmt.Errorf("filter trace %q: %w", t.Name, err)
	}
	return ret.(bool), nil
}

// Apply returns a new log with the traces that pass the filter.
func (f *Filter) Apply(l *Log) (*Log, error) {
	if f == nil {
		return l, nil
	}
	out := &Log{Name: l.Name, Traces: make([]Trace, 0, len(l.Traces))}
	for i := range l.Traces {
		ok, err := f.Keep(&l.Traces[i])
		if err != nil {
			return nil, err
		}
		if ok {
			out.Traces = append(out.Traces, l.Traces[i])
		}
	}
	return out, nil
}
