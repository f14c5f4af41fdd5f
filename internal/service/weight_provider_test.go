package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evaluer-api/internal/models"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
	"github.com/noah-isme/evaluer-api/pkg/weights"
)

const providerYAML = `
subjects:
  1:
    name: Programming
    weight: 0.6
    modules:
      10:
        name: Basics
        weight: 0.25
        exercises:
          100: {name: Variables, weight: 0.7}
          101: {name: Loops, weight: 0.3}
      11:
        name: Functions
        exercises:
          110: {name: Closures}
  2:
    name: Databases
    weight: 0.4
    modules:
      10:
        name: Basics (shared)
        weight: 0.9
        exercises:
          100: {name: Duplicate, weight: 0.1}
`

func newTestProvider(t *testing.T) *WeightProvider {
	t.Helper()
	cfg, err := weights.Parse([]byte(providerYAML))
	require.NoError(t, err)
	return NewWeightProvider(cfg)
}

func TestWeightsForItemsPerLevel(t *testing.T) {
	p := newTestProvider(t)

	exercises, err := p.WeightsForItems(models.WeightLevelExercise, []int64{100, 101, 110, 999})
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{100: 0.7, 101: 0.3, 110: 1.0}, exercises)

	modules, err := p.WeightsForItems(models.WeightLevelModule, []int64{10, 11})
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{10: 0.25, 11: 1.0}, modules)

	subjects, err := p.WeightsForItems(models.WeightLevelSubject, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{1: 0.6, 2: 0.4}, subjects)
}

func TestWeightsForItemsUnknownLevel(t *testing.T) {
	p := newTestProvider(t)
	_, err := p.WeightsForItems(models.WeightLevel("course"), []int64{1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidLevel.Code, appErrors.FromError(err).Code)
}

func TestScopedWeightLookups(t *testing.T) {
	p := newTestProvider(t)

	assert.Equal(t, map[int64]float64{100: 0.7, 101: 0.3}, p.ExerciseWeightsForModule(10))
	assert.Equal(t, map[int64]float64{10: 0.9}, p.ModuleWeightsForSubject(2))
	assert.Equal(t, map[int64]float64{1: 0.6, 2: 0.4}, p.SubjectWeights())
	assert.Empty(t, p.ExerciseWeightsForModule(42))

	scoped := p.SubjectWeights()
	scoped[1] = 99
	assert.Equal(t, 0.6, p.SubjectWeights()[1])
}

func TestWeightProviderEmptyConfiguration(t *testing.T) {
	p := NewWeightProvider(nil)
	got, err := p.WeightsForItems(models.WeightLevelSubject, []int64{1, 2})
	require.NoError(t, err)
	assert.Empty(t, got)
}
