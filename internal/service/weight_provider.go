package service

import (
	"sort"

	"github.com/noah-isme/evaluer-api/internal/models"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
	"github.com/noah-isme/evaluer-api/pkg/weights"
)

// WeightProvider answers weight lookups over an immutable, pre-indexed weights tree.
// Reloading means building a new provider.
type WeightProvider struct {
	subjects  map[int64]float64
	modules   map[int64]float64
	exercises map[int64]float64

	modulesBySubject  map[int64]map[int64]float64
	exercisesByModule map[int64]map[int64]float64
}

// NewWeightProvider indexes cfg. When an id is listed under several parents the one reached first
// in ascending subject then module order wins.
func NewWeightProvider(cfg *weights.Configuration) *WeightProvider {
	p := &WeightProvider{
		subjects:          make(map[int64]float64),
		modules:           make(map[int64]float64),
		exercises:         make(map[int64]float64),
		modulesBySubject:  make(map[int64]map[int64]float64),
		exercisesByModule: make(map[int64]map[int64]float64),
	}
	if cfg == nil {
		return p
	}

	for _, subjectID := range sortedKeys(cfg.Subjects) {
		subject := cfg.Subjects[subjectID]
		p.subjects[subjectID] = subject.Value()

		scoped := make(map[int64]float64, len(subject.Modules))
		for _, moduleID := range sortedKeys(subject.Modules) {
			module := subject.Modules[moduleID]
			scoped[moduleID] = module.Value()
			if _, seen := p.modules[moduleID]; !seen {
				p.modules[moduleID] = module.Value()
			}

			exercises := make(map[int64]float64, len(module.Exercises))
			for exerciseID, exercise := range module.Exercises {
				exercises[exerciseID] = exercise.Value()
				if _, seen := p.exercises[exerciseID]; !seen {
					p.exercises[exerciseID] = exercise.Value()
				}
			}
			if _, seen := p.exercisesByModule[moduleID]; !seen {
				p.exercisesByModule[moduleID] = exercises
			}
		}
		p.modulesBySubject[subjectID] = scoped
	}
	return p
}

// WeightsForItems returns the configured weights of ids at level. Unconfigured ids are omitted so the
// calculator applies its default.
func (p *WeightProvider) WeightsForItems(level models.WeightLevel, ids []int64) (map[int64]float64, error) {
	var index map[int64]float64
	switch level {
	case models.WeightLevelExercise:
		index = p.exercises
	case models.WeightLevelModule:
		index = p.modules
	case models.WeightLevelSubject:
		index = p.subjects
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidLevel, "unknown weight level: "+string(level))
	}

	result := make(map[int64]float64, len(ids))
	for _, id := range ids {
		if w, ok := index[id]; ok {
			result[id] = w
		}
	}
	return result, nil
}

// ExerciseWeightsForModule returns the exercise weights configured under one module.
func (p *WeightProvider) ExerciseWeightsForModule(moduleID int64) map[int64]float64 {
	return copyWeights(p.exercisesByModule[moduleID])
}

// ModuleWeightsForSubject returns the module weights configured under one subject.
func (p *WeightProvider) ModuleWeightsForSubject(subjectID int64) map[int64]float64 {
	return copyWeights(p.modulesBySubject[subjectID])
}

// SubjectWeights returns every configured subject weight.
func (p *WeightProvider) SubjectWeights() map[int64]float64 {
	return copyWeights(p.subjects)
}

func copyWeights(src map[int64]float64) map[int64]float64 {
	dst := make(map[int64]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
