package model

import (
	"errors"

	"rankidx/pkg/common"
)

// ErrEmptyInput is returned when a model or index is fit over zero points.
var ErrEmptyInput = errors.New("model: empty input")

// LinearModel is a fitted least-squares line y = Slope*x + Intercept.
// Immutable once returned by Fit.
type LinearModel struct {
	Slope     float64
	Intercept float64
}

// Fit solves closed-form least squares over (key, target) pairs using
// running sums. When all keys are equal the slope is undefined and the
// model degrades to a flat line at the mean target.
func Fit(keys []common.KeyType, targets []float64) (LinearModel, error) {
	if len(keys) == 0 {
		return LinearModel{}, ErrEmptyInput
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, key := range keys {
		x := float64(key)
		y := targets[i]

		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	slope, intercept := solve(float64(len(keys)), sumX, sumY, sumXY, sumXX)
	return LinearModel{Slope: slope, Intercept: intercept}, nil
}

// Predict evaluates the line. Pure, no side effects.
func (lm LinearModel) Predict(x float64) float64 {
	return lm.Slope*x + lm.Intercept
}

func solve(n, sumX, sumY, sumXY, sumXX float64) (slope, intercept float64) {
	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
