package service

import (
	"math"
	"sort"
)

const (
	// DefaultBaseScore is the top of the grading scale.
	DefaultBaseScore = 10.0
	// DefaultMinimumScore floors every decayed response contribution.
	DefaultMinimumScore = 2.0
	// DefaultItemWeight applies to children without a configured weight.
	DefaultItemWeight = 1.0
)

// GradingCalculator holds the pure numeric rules of the grade hierarchy.
type GradingCalculator struct {
	baseScore    float64
	minimumScore float64
}

// NewGradingCalculator builds a calculator. A non-positive base score or a negative minimum score
// falls back to the default; a minimum of 0 disables the floor.
func NewGradingCalculator(baseScore, minimumScore float64) *GradingCalculator {
	if baseScore <= 0 {
		baseScore = DefaultBaseScore
	}
	if minimumScore < 0 {
		minimumScore = DefaultMinimumScore
	}
	return &GradingCalculator{baseScore: baseScore, minimumScore: minimumScore}
}

// BaseScore returns the top of the grading scale.
func (c *GradingCalculator) BaseScore() float64 {
	return c.baseScore
}

// MinimumScore returns the per-response floor.
func (c *GradingCalculator) MinimumScore() float64 {
	return c.minimumScore
}

// AssignmentGrade averages the responses of one assignment, oldest first.
// The response at position i loses ln(i+2) points and never contributes less than the minimum score.
func (c *GradingCalculator) AssignmentGrade(responses []float64) float64 {
	if len(responses) == 0 {
		return 0
	}
	var sum float64
	for i, grade := range responses {
		sum += math.Max(grade-math.Log(float64(i+2)), c.minimumScore)
	}
	return sum / float64(len(responses))
}

// WeightedAverage combines child grades using their weights; unknown children weigh 1.0.
// Zero total weight or no grades yields 0.
func (c *GradingCalculator) WeightedAverage(grades map[int64]float64, weights map[int64]float64) float64 {
	if len(grades) == 0 {
		return 0
	}

	ids := make([]int64, 0, len(grades))
	for id := range grades {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var weighted, total float64
	for _, id := range ids {
		weight, ok := weights[id]
		if !ok {
			weight = DefaultItemWeight
		}
		weighted += grades[id] * weight
		total += weight
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}
