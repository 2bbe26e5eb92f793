package positioning

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// EstimateFromFingerprint interpolates in signal space: every anchor with a
// reference signal is weighted by 1/(|ref-measured|+ε) and the result is the
// weight-normalised centroid of the anchor positions.
func (e *Estimator) EstimateFromFingerprint(measured int) Estimate {
	weights := make([]float64, 0, len(e.anchors))
	xs := make([]float64, 0, len(e.anchors))
	ys := make([]float64, 0, len(e.anchors))

	for _, anchor := range e.anchors {
		if !anchor.HasReferenceSignal() {
			continue
		}
		weights = append(weights, 1/(math.Abs(*anchor.ReferenceSignal-float64(measured))+e.epsilon))
		xs = append(xs, anchor.Position.X)
		ys = append(ys, anchor.Position.Y)
	}
	if len(weights) == 0 {
		return invalid(MethodFingerprint, 0)
	}

	total := floats.Sum(weights)
	if total == 0 || !isFinite(total) {
		return invalid(MethodFingerprint, len(weights))
	}

	p := Point{
		X: floats.Dot(weights, xs) / total,
		Y: floats.Dot(weights, ys) / total,
	}
	if !p.IsFinite() {
		return invalid(MethodFingerprint, len(weights))
	}

	return Estimate{
		Position:    p,
		Valid:       true,
		Method:      MethodFingerprint,
		AnchorsUsed: len(weights),
	}
}
