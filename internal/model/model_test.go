package model

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPath(t *testing.T) {
	testCases := []struct {
		name     string
		parts    []string
		expected string
	}{
		{name: "empty", parts: nil, expected: ""},
		{name: "single", parts: []string{"jobs"}, expected: "jobs"},
		{name: "dotted", parts: []string{"jobs", "nightly", "actions"}, expected: "jobs.nightly.actions"},
		{name: "index", parts: []string{"jobs", Index(2), "node"}, expected: "jobs[2].node"},
		{name: "skips empty", parts: []string{"", "jobs", "", "node"}, expected: "jobs.node"},
		{name: "leading index", parts: []string{Index(0), "name"}, expected: "[0].name"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, JoinPath(tc.parts...))
		})
	}
}

func TestConfigError(t *testing.T) {
	err := Errorf("jobs.j.node", "unknown node %q", "x")
	assert.Equal(t, `jobs.j.node: unknown node "x"`, err.Error())
	assert.True(t, IsConfigError(err))

	wrapped := Wrap("", fs.ErrNotExist, "failed to read config file")
	assert.Equal(t, "failed to read config file: file does not exist", wrapped.Error())
	assert.ErrorIs(t, wrapped, fs.ErrNotExist)

	nested := WithinPath("jobs.j.schedule", Errorf("", "schedule is empty"))
	assert.Equal(t, "jobs.j.schedule: schedule is empty", nested.Error())

	plain := WithinPath("jobs", errors.New("boom"))
	assert.True(t, IsConfigError(plain))
	assert.Equal(t, "jobs: boom", plain.Error())

	assert.NoError(t, WithinPath("jobs", nil))
	assert.False(t, IsConfigError(errors.New("boom")))
}

func TestPoolName(t *testing.T) {
	assert.Equal(t, "node0_node1", PoolName([]string{"node1", "node0"}))
	assert.Equal(t, "batch0_batch1", PoolName([]string{"batch0", "batch1"}))
	assert.Equal(t, "solo", PoolName([]string{"solo"}))
}

func TestMap(t *testing.T) {
	src := map[string]int{"b": 2, "a": 1, "c": 3}
	m := NewMap(src)
	src["a"] = 100

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)
	assert.Equal(t, []string{"a", "b", "c"}, m.Names())
	assert.Equal(t, 3, m.Len())
	assert.False(t, m.Has("z"))

	var order []string
	for name := range m.All() {
		order = append(order, name)
		if name == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, order)

	clone := m.Clone()
	clone["a"] = 50
	got, _ = m.Get("a")
	assert.Equal(t, 1, got)

	var empty Map[int]
	assert.Equal(t, map[string]int{}, empty.Clone())
	assert.Empty(t, empty.Names())
}

func TestWeekdays(t *testing.T) {
	w := NewWeekdays(time.Friday, time.Monday, time.Wednesday)
	assert.Equal(t, "MWF", w.String())
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, w.List())
	assert.True(t, w.Has(time.Monday))
	assert.False(t, w.Has(time.Sunday))
	assert.False(t, w.Unrestricted())

	var every Weekdays
	assert.True(t, every.Unrestricted())
	assert.True(t, every.Has(time.Sunday))
	assert.Empty(t, every.List())

	for i, r := range WeekdayLetters {
		d, ok := WeekdayForLetter(r)
		require.True(t, ok)
		assert.Equal(t, letterDays[i], d)
	}
	_, ok := WeekdayForLetter('X')
	assert.False(t, ok)
}

func TestIntervalString(t *testing.T) {
	testCases := []struct {
		period   time.Duration
		expected string
	}{
		{period: 20 * time.Second, expected: "interval 20s"},
		{period: 90 * time.Second, expected: "interval 90s"},
		{period: 5 * time.Minute, expected: "interval 5m"},
		{period: 2 * time.Hour, expected: "interval 2h"},
		{period: 48 * time.Hour, expected: "interval 2d"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, IntervalSchedule{Period: tc.period}.String())
		})
	}
}

func TestJobAccessorsReturnCopies(t *testing.T) {
	a := NewAction("b", "c", "", []string{"a"})
	job := NewJob(JobSpec{
		Name:     "j",
		Node:     "n",
		Schedule: ConstantSchedule{},
		Actions:  []Action{NewAction("a", "c", "", nil), a},
		RunLimit: DefaultRunLimit,
	})

	names := job.ActionNames()
	names[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, job.ActionNames())

	got, ok := job.Actions().Get("b")
	require.True(t, ok)
	reqs := got.Requires()
	reqs[0] = "changed"
	assert.Equal(t, []string{"a"}, got.Requires())

	_, ok = job.CleanupAction()
	assert.False(t, ok)
}

func TestPoolMembers(t *testing.T) {
	cfg := &Config{
		Nodes: NewMap(map[string]Node{
			"node0": {Name: "node0", Hostname: "h0"},
			"node1": {Name: "node1", Hostname: "h1"},
		}),
		NodePools: NewMap(map[string]NodePool{
			"node0_node1": NewNodePool("node0_node1", []string{"node0", "node1"}),
		}),
	}

	assert.True(t, cfg.Target("node0"))
	assert.True(t, cfg.Target("node0_node1"))
	assert.False(t, cfg.Target("node2"))
	assert.Equal(t, []Node{{Name: "node0", Hostname: "h0"}}, cfg.PoolMembers("node0"))
	assert.Len(t, cfg.PoolMembers("node0_node1"), 2)
	assert.Nil(t, cfg.PoolMembers("node2"))
}
