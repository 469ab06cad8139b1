package graph

import (
	"testing"

	"github.com/sourceplane/jobconf/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// action is shorthand for an action with only requires set.
func action(name string, requires ...string) model.Action {
	return model.NewAction(name, "echo "+name, "", requires)
}

func newJob(cleanup bool, actions ...model.Action) model.Job {
	spec := model.JobSpec{
		Name:     "job0",
		Node:     "node0",
		Schedule: model.ConstantSchedule{},
		Actions:  actions,
		Queueing: true,
		RunLimit: 50,
	}
	if cleanup {
		c := model.NewCleanupAction("rm -rf /tmp/job0", "")
		spec.Cleanup = &c
	}
	return model.NewJob(spec)
}

func TestTopologicalSort(t *testing.T) {
	testCases := []struct {
		name     string
		job      model.Job
		expected []string
	}{
		{
			name:     "independent actions keep declaration order",
			job:      newJob(false, action("c"), action("a"), action("b")),
			expected: []string{"c", "a", "b"},
		},
		{
			name:     "chain declared backwards",
			job:      newJob(false, action("load", "transform"), action("transform", "extract"), action("extract")),
			expected: []string{"extract", "transform", "load"},
		},
		{
			name: "diamond",
			job: newJob(false,
				action("report", "left", "right"),
				action("left", "start"),
				action("right", "start"),
				action("start"),
			),
			expected: []string{"start", "left", "right", "report"},
		},
		{
			name:     "cleanup comes last",
			job:      newJob(true, action("b", "a"), action("a")),
			expected: []string{"a", "b", model.CleanupActionName},
		},
		{
			name:     "requires outside the job are ignored",
			job:      newJob(false, action("a", "elsewhere")),
			expected: []string{"a"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := New(tc.job).TopologicalSort()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, order)
		})
	}
}

func TestTopologicalSortIsStable(t *testing.T) {
	job := newJob(true, action("d", "a"), action("c", "a"), action("b"), action("a"))
	first, err := New(job).TopologicalSort()
	require.NoError(t, err)
	for range 10 {
		again, err := New(job).TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []string{"b", "a", "d", "c", model.CleanupActionName}, first)
}

func TestDetectCycles(t *testing.T) {
	testCases := []struct {
		name      string
		job       model.Job
		expectErr string
	}{
		{
			name: "acyclic",
			job:  newJob(false, action("a"), action("b", "a")),
		},
		{
			name:      "self reference",
			job:       newJob(false, action("a", "a")),
			expectErr: "a.requires: dependency cycle: a -> a",
		},
		{
			name:      "two actions",
			job:       newJob(false, action("a", "b"), action("b", "a")),
			expectErr: "a.requires: dependency cycle: a -> b -> a",
		},
		{
			name:      "cycle behind an acyclic prefix",
			job:       newJob(false, action("start"), action("x", "start", "z"), action("y", "x"), action("z", "y")),
			expectErr: "x.requires: dependency cycle: x -> z -> y -> x",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New(tc.job)
			err := g.DetectCycles()

			if tc.expectErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, model.IsConfigError(err))
			assert.Equal(t, tc.expectErr, err.Error())

			_, sortErr := g.TopologicalSort()
			assert.Equal(t, err, sortErr)
		})
	}
}

func TestNeighbours(t *testing.T) {
	g := New(newJob(true,
		action("report", "left", "right"),
		action("left", "start"),
		action("right", "start"),
		action("start"),
	))

	assert.Equal(t, []string{"left", "right"}, g.Requires("report"))
	assert.Empty(t, g.Requires("start"))
	assert.Equal(t, []string{"left", "right"}, g.Dependents("start"))
	assert.Equal(t, []string{"report"}, g.Dependents("left"))
	assert.Empty(t, g.Dependents("report"))
	assert.Equal(t, []string{"start"}, g.Roots())
}
