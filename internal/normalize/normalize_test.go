package normalize

import (
	"testing"

	"github.com/sourceplane/jobconf/internal/loader"
	"github.com/sourceplane/jobconf/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyDoc = `--- !TronConfiguration
working_dir: /tmp
nodes:
  - &n0 !Node
    hostname: batch0
  - &n1 !Node
    hostname: batch1
  - &pool !NodePool
    nodes: [*n0, *n1]
jobs:
  - !Job
    name: job0
    node: *pool
    schedule: interval 20s
    actions:
      - &a0 !Action
        name: a0
        command: echo 0
      - !Action
        name: a1
        command: echo 1
        node: *n1
        requires: *a0
`

const canonicalDoc = `
working_dir: /tmp
nodes:
  - name: batch0
    hostname: batch0
  - name: batch1
    hostname: batch1
node_pools:
  - nodes: [batch0, batch1]
jobs:
  - name: job0
    node: batch0_batch1
    schedule: interval 20s
    actions:
      - name: a0
        command: echo 0
      - name: a1
        command: echo 1
        node: batch1
        requires: [a0]
`

func normalizeString(t *testing.T, doc string) (*Result, error) {
	t.Helper()
	root, err := loader.Decode([]byte(doc))
	require.NoError(t, err)
	return Normalize(root)
}

func TestNormalizeDialects(t *testing.T) {
	expected := Document{
		"working_dir": "/tmp",
		"nodes": []any{
			map[string]any{"name": "batch0", "hostname": "batch0"},
			map[string]any{"name": "batch1", "hostname": "batch1"},
		},
		"node_pools": []any{
			map[string]any{"nodes": []any{"batch0", "batch1"}},
		},
		"jobs": []any{
			map[string]any{
				"name":     "job0",
				"node":     "batch0_batch1",
				"schedule": "interval 20s",
				"actions": []any{
					map[string]any{"name": "a0", "command": "echo 0"},
					map[string]any{"name": "a1", "command": "echo 1", "node": "batch1", "requires": []any{"a0"}},
				},
			},
		},
	}

	testCases := []struct {
		name    string
		doc     string
		dialect Dialect
	}{
		{name: "legacy", doc: legacyDoc, dialect: Legacy},
		{name: "canonical", doc: canonicalDoc, dialect: Canonical},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := normalizeString(t, tc.doc)
			require.NoError(t, err)
			assert.Equal(t, tc.dialect, res.Dialect)
			assert.Equal(t, expected, res.Document)
		})
	}
}

func TestNormalizeLegacyDetails(t *testing.T) {
	testCases := []struct {
		name     string
		doc      string
		key      string
		expected any
	}{
		{
			name: "explicit node name wins over hostname",
			doc: `
nodes:
  - !Node
    name: first
    hostname: host1
`,
			key:      "nodes",
			expected: []any{map[string]any{"name": "first", "hostname": "host1"}},
		},
		{
			name:     "short root tag",
			doc:      "--- !Configuration\nworking_dir: /srv\n",
			key:      "working_dir",
			expected: "/srv",
		},
		{
			name: "anchor alone makes a document legacy",
			doc: `
nodes:
  - &n
    hostname: host1
`,
			key:      "nodes",
			expected: []any{map[string]any{"name": "host1", "hostname": "host1"}},
		},
		{
			name: "untagged inline pool is lifted",
			doc: `
nodes:
  - &a !Node {hostname: a}
  - {name: p, nodes: [*a]}
`,
			key:      "node_pools",
			expected: []any{map[string]any{"name": "p", "nodes": []any{"a"}}},
		},
		{
			name: "aliased scalar is copied",
			doc: `
command_context:
  python: &py /usr/bin/python
  interpreter: *py
`,
			key:      "command_context",
			expected: map[string]any{"python": "/usr/bin/python", "interpreter": "/usr/bin/python"},
		},
		{
			name: "merge key with explicit override",
			doc: `
ssh_options: !SSHOptions
  <<: &ssh {agent: true, user: batch}
  user: admin
`,
			key:      "ssh_options",
			expected: map[string]any{"agent": true, "user": "admin"},
		},
		{
			name: "aliased pool keeps an explicit name",
			doc: `
nodes:
  - &a !Node {hostname: a}
node_pools:
  - &p !NodePool {name: workers, nodes: [*a]}
services:
  - !Service {name: s, node: *p}
`,
			key:      "services",
			expected: []any{map[string]any{"name": "s", "node": "workers"}},
		},
		{
			name: "single requires alias becomes a list",
			doc: `
jobs:
  - !Job
    name: j
    actions:
      - &first !Action {name: one, command: c}
      - !Action {name: two, command: c, requires: *first}
`,
			key: "jobs",
			expected: []any{map[string]any{
				"name": "j",
				"actions": []any{
					map[string]any{"name": "one", "command": "c"},
					map[string]any{"name": "two", "command": "c", "requires": []any{"one"}},
				},
			}},
		},
		{
			name: "aliased list of requires",
			doc: `
jobs:
  - !Job
    name: j
    actions:
      - &first !Action {name: one, command: c}
      - !Action {name: two, command: c, requires: &reqs [*first]}
      - !Action {name: three, command: c, requires: *reqs}
`,
			key: "jobs",
			expected: []any{map[string]any{
				"name": "j",
				"actions": []any{
					map[string]any{"name": "one", "command": "c"},
					map[string]any{"name": "two", "command": "c", "requires": []any{"one"}},
					map[string]any{"name": "three", "command": "c", "requires": []any{"one"}},
				},
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := normalizeString(t, tc.doc)
			require.NoError(t, err)
			assert.Equal(t, Legacy, res.Dialect)
			assert.Equal(t, tc.expected, res.Document[tc.key])
		})
	}
}

func TestNormalizeCopiesAliasTargets(t *testing.T) {
	res, err := normalizeString(t, `
command_context: &ctx
  a: "1"
ssh_options:
  identities: &ids [one, two]
jobs:
  - !Job
    name: j
    actions: &acts
      - !Action {name: x, command: c}
  - !Job
    name: k
    actions: *acts
`)
	require.NoError(t, err)

	jobs := res.Document["jobs"].([]any)
	first := jobs[0].(map[string]any)["actions"].([]any)
	second := jobs[1].(map[string]any)["actions"].([]any)
	require.Equal(t, first, second)

	// Mutating one copy must not affect the other.
	first[0].(map[string]any)["command"] = "changed"
	assert.Equal(t, "c", second[0].(map[string]any)["command"])
}

func TestNormalizeErrors(t *testing.T) {
	testCases := []struct {
		name      string
		doc       string
		expectErr string
	}{
		{
			name:      "root is not a mapping",
			doc:       "- a\n- b\n",
			expectErr: "configuration must be a mapping",
		},
		{
			name:      "unknown legacy tag",
			doc:       "nodes:\n  - !Bogus {hostname: a}\n",
			expectErr: "nodes[0]: unsupported legacy tag !Bogus",
		},
		{
			name:      "tag at the wrong position",
			doc:       "nodes:\n  - !Job {hostname: a}\n",
			expectErr: "nodes[0]: legacy tag !Job is not supported at this position",
		},
		{
			name:      "root tag on a section",
			doc:       "ssh_options: !TronConfiguration {agent: true}\n",
			expectErr: "ssh_options: legacy tag !TronConfiguration is not supported",
		},
		{
			name:      "tag on a scalar",
			doc:       "working_dir: !Node /tmp\n",
			expectErr: "legacy tag !Node is not supported at this position",
		},
		{
			name:      "node tag on a pool",
			doc:       "nodes:\n  - &a !Node {hostname: a}\n  - !Node {nodes: [*a]}\n",
			expectErr: "nodes[1]: entry tagged !Node declares pool members",
		},
		{
			name: "pools declared in both places",
			doc: `
nodes:
  - &a !Node {hostname: a}
  - !NodePool {nodes: [*a]}
node_pools:
  - !NodePool {nodes: [*a]}
`,
			expectErr: "node pools are declared both inline under nodes and in node_pools",
		},
		{
			name: "alias to a node used as requires",
			doc: `
nodes:
  - &a !Node {hostname: a}
jobs:
  - !Job
    name: j
    actions:
      - !Action {name: x, command: c, requires: [*a]}
`,
			expectErr: "jobs[0].actions[0].requires[0]: alias *a does not refer to an action",
		},
		{
			name: "alias to an action used as node",
			doc: `
jobs:
  - !Job
    name: j
    actions:
      - &act !Action {name: x, command: c}
      - !Action {name: y, command: c, node: *act}
`,
			expectErr: "jobs[0].actions[1].node: alias *act does not refer to a node or node pool",
		},
		{
			name:      "duplicate key",
			doc:       "working_dir: /a\nworking_dir: /b\n",
			expectErr: `duplicate key "working_dir"`,
		},
		{
			name:      "merge of a scalar",
			doc:       "ssh_options:\n  <<: &x 5\n",
			expectErr: "merge key value must be a mapping",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root, err := loader.Decode([]byte(tc.doc))
			if err != nil {
				// Some malformed alias graphs are already rejected by the decoder.
				assert.True(t, model.IsConfigError(err))
				return
			}
			_, err = Normalize(root)
			require.Error(t, err)
			assert.True(t, model.IsConfigError(err))
			assert.Contains(t, err.Error(), tc.expectErr)
		})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	_, err := Normalize(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is empty")
}
