package weights

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
subjects:
  1:
    name: Backend
    weight: 0.6
    modules:
      10:
        name: Python
        weight: 0.5
        exercises:
          100:
            name: Variables
            weight: 0.7
          101:
            name: Loops
      11:
        name: SQL
  2:
    name: Frontend
    weight: 0.4
`

func TestParseTree(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, cfg.Subjects, 2)

	backend := cfg.Subjects[1]
	assert.Equal(t, "Backend", backend.Name)
	assert.Equal(t, 0.6, backend.Value())

	python := backend.Modules[10]
	assert.Equal(t, 0.5, python.Value())
	assert.Equal(t, 0.7, python.Exercises[100].Value())
	assert.Equal(t, DefaultWeight, python.Exercises[101].Value())
	assert.Equal(t, DefaultWeight, backend.Modules[11].Value())
	assert.Empty(t, cfg.Subjects[2].Modules)
}

func TestParseRejectsNegativeWeight(t *testing.T) {
	_, err := Parse([]byte("subjects:\n  1:\n    name: Backend\n    weight: -0.1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject 1")
}

func TestParseRejectsNonFiniteWeight(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want string
	}{
		"nan subject": {
			doc:  "subjects:\n  1:\n    name: Backend\n    weight: .nan\n",
			want: "subject 1",
		},
		"inf module": {
			doc:  "subjects:\n  1:\n    name: Backend\n    modules:\n      10:\n        name: Python\n        weight: .inf\n",
			want: "module 10",
		},
		"negative inf exercise": {
			doc:  "subjects:\n  1:\n    name: Backend\n    modules:\n      10:\n        name: Python\n        exercises:\n          100:\n            name: Loops\n            weight: -.inf\n",
			want: "exercise 100",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseDoesNotRequireWeightsToSumToOne(t *testing.T) {
	cfg, err := Parse([]byte("subjects:\n  1:\n    name: A\n    weight: 3\n  2:\n    name: B\n    weight: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Subjects[1].Value())
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("subjects: [unterminated"))
	require.Error(t, err)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "weights.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Subjects)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Subjects, 2)
}
