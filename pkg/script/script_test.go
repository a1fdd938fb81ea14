package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eraseDemo = `
name: erase-demo
lists:
  a: [1, 2, 3, 4, 5]
steps:
  - op: erase_after
    list: a
    pos: 1
  - op: assert
    expr: "size(a) == 4 && front(a) == 1 && at(a, 2) == 4"
  - op: print
    list: a
`

func newTestRunner(t *testing.T) (*Runner, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	r, err := NewRunner(nil, reg)
	require.NoError(t, err)
	return r, reg
}

func mustParse(t *testing.T, src string) *Script {
	t.Helper()
	s, err := Parse("test", []byte(src))
	require.NoError(t, err)
	return s
}

func TestParse(t *testing.T) {
	s := mustParse(t, eraseDemo)
	assert.Equal(t, "erase-demo", s.Name)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, s.Lists["a"])
	require.Len(t, s.Steps, 3)
	assert.Equal(t, "erase_after", s.Steps[0].Op)
	assert.Equal(t, 1, s.Steps[0].Args["pos"])

	s = mustParse(t, "steps: [{op: clear, list: x}]")
	assert.Equal(t, "test", s.Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad yaml", "steps: [:"},
		{"no steps", "name: x"},
		{"unknown op", "steps: [{op: reverse, list: a}]"},
		{"unused arg", "steps: [{op: clear, list: a, pos: 1}]"},
		{"missing list", "steps: [{op: push_front, value: 1}]"},
		{"bad value", "steps: [{op: push_front, list: a, value: abc}]"},
		{"bad pos", "steps: [{op: erase_after, list: a, pos: -2}]"},
		{"missing erase pos", "lists: {a: [1, 2, 3]}\nsteps: [{op: erase_after, list: a}]"},
		{"missing insert pos", "steps: [{op: insert_after, list: a, value: 1}]"},
		{"missing other", "steps: [{op: swap, list: a}]"},
		{"missing expr", "steps: [{op: assert}]"},
		{"bad expr", "steps: [{op: assert, expr: 'size(a) =='}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test", []byte(tt.src))
			require.Error(t, err)
		})
	}

	_, err := Parse("test", []byte("lists: {a: [1, 2, 3]}\nsteps: [{op: erase_after, list: a}]"))
	require.ErrorContains(t, err, "missing pos")

	_, err = Parse("test", []byte("steps: [{op: clear}, {op: bogus}]"))
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Step)
	assert.Equal(t, "clear", se.Op)
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(p, []byte("steps: [{op: push_front, list: a, value: 1}]"), 0o644))

	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRunner_EraseDemo(t *testing.T) {
	r, _ := newTestRunner(t)
	res, err := r.Run(context.Background(), mustParse(t, eraseDemo))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4, 5}, res.Lists["a"])
	require.Len(t, res.Events, 3)
	assert.Equal(t, "a = [1 2 4 5] (size 4)", res.Events[2].Detail)
}

func TestRunner_Ops(t *testing.T) {
	const src = `
lists:
  a: [3]
steps:
  - {op: push_front, list: a, value: 1}
  - {op: insert_after, list: a, pos: 0, value: 2}
  - {op: insert_after, list: a, pos: 2, value: 4}
  - {op: insert_after, list: a, pos: -1, value: 0}
  - {op: assert, expr: "size(a) == 5 && at(a, 4) == 4"}
  - {op: pop_front, list: a}
  - {op: copy, list: b, from: a}
  - {op: push_front, list: b, value: 9}
  - {op: assert, expr: "size(a) == 4 && front(b) == 9"}
  - {op: compare, list: a, other: b}
  - {op: swap, list: a, other: spare}
  - {op: assert, expr: "empty(a) && size(spare) == 4"}
  - {op: new, list: c, values: [1, 2, 3]}
  - {op: new, list: d, values: [1, 2, 4]}
  - {op: assert, expr: "less(c, d) && equal(c, d) == false && compare(d, c) == 1"}
  - {op: clear, list: d}
  - {op: assert, expr: "less(d, c)"}
`
	r, reg := newTestRunner(t)
	res, err := r.Run(context.Background(), mustParse(t, src))
	require.NoError(t, err)

	assert.Empty(t, res.Lists["a"])
	assert.Equal(t, []int64{1, 2, 3, 4}, res.Lists["spare"])
	assert.Equal(t, []int64{9, 1, 2, 3, 4}, res.Lists["b"])
	assert.Empty(t, res.Lists["d"])
	assert.Equal(t, "a < b", res.Events[9].Detail)
	assert.Equal(t, "popped 0, a = [1 2 3 4]", res.Events[5].Detail)

	assert.Equal(t, float64(5), testutil.ToFloat64(r.metrics.ops.WithLabelValues("assert")))
	assert.Equal(t, float64(3), testutil.ToFloat64(r.metrics.ops.WithLabelValues("insert_after")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.metrics.duration))
	n, err := testutil.GatherAndCount(reg, "script_failures_total")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunner_StepErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		step int
	}{
		{"pop empty", "steps: [{op: pop_front, list: a}]", 0},
		{"pos out of range", "lists: {a: [1]}\nsteps: [{op: insert_after, list: a, pos: 1, value: 2}]", 0},
		{"erase last", "lists: {a: [1]}\nsteps: [{op: erase_after, list: a, pos: 0}]", 0},
		{"erase empty", "steps: [{op: erase_after, list: a, pos: -1}]", 0},
		{"undefined copy source", "steps: [{op: copy, list: a, from: b}]", 0},
		{"undefined print", "steps: [{op: print, list: a}]", 0},
		{"assertion failed", "lists: {a: [1]}\nsteps: [{op: clear, list: a}, {op: assert, expr: 'size(a) == 1'}]", 1},
		{"not bool", "lists: {a: [1]}\nsteps: [{op: assert, expr: 'size(a)'}]", 0},
		{"front of empty", "lists: {a: []}\nsteps: [{op: assert, expr: 'front(a) == 1'}]", 0},
		{"undefined param", "steps: [{op: assert, expr: 'size(zz) == 0'}]", 0},
		{"bad index", "lists: {a: [1]}\nsteps: [{op: assert, expr: 'at(a, 3) == 1'}]", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRunner(t)
			s := mustParse(t, tt.src)
			_, err := r.Run(context.Background(), s)
			var se *StepError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.step, se.Step)
			assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.failures.WithLabelValues("test")))
		})
	}
}

func TestRunner_FreshStatePerRun(t *testing.T) {
	r, _ := newTestRunner(t)
	s := mustParse(t, "lists: {a: [1]}\nsteps: [{op: push_front, list: a, value: 0}]")
	for i := 0; i < 3; i++ {
		res, err := r.Run(context.Background(), s)
		require.NoError(t, err)
		require.Equal(t, []int64{0, 1}, res.Lists["a"])
	}
}

func TestRunner_Canceled(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, mustParse(t, eraseDemo))
	require.True(t, errors.Is(err, context.Canceled))
}

func TestRunner_CompilesManualScript(t *testing.T) {
	r, _ := newTestRunner(t)
	s := &Script{
		Name: "manual",
		Steps: []Step{
			{Op: "push_front", Args: map[string]any{"list": "a", "value": 5}},
			{Op: "assert", Args: map[string]any{"expr": "front(a) == 5"}},
		},
	}
	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, []int64{5}, res.Lists["a"])
}

func TestNewRunner_DuplicateRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRunner(nil, reg)
	require.NoError(t, err)
	_, err = NewRunner(nil, reg)
	require.Error(t, err)

	_, err = NewRunner(nil, nil)
	require.NoError(t, err)
}
