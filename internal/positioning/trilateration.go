package positioning

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const minRangeAnchors = 3

// EstimateFromRanges solves the linearised least-squares trilateration
// problem. The first configured anchor that has a range is the reference; each
// other anchor contributes one row of A·p = b, which is solved through the
// 2×2 normal equations.
func (e *Estimator) EstimateFromRanges(ranges map[int]float64) Estimate {
	used := make([]Anchor, 0, len(e.anchors))
	dist := make([]float64, 0, len(e.anchors))
	for _, anchor := range e.anchors {
		r, ok := ranges[anchor.ID]
		if !ok {
			continue
		}
		if !isFinite(r) || r < 0 {
			return invalid(MethodRanges, 0)
		}
		used = append(used, anchor)
		dist = append(dist, r)
	}
	if len(used) < minRangeAnchors {
		return invalid(MethodRanges, len(used))
	}

	ref := used[0].Position
	r0 := dist[0]
	rows := len(used) - 1

	a := mat.NewDense(rows, 2, nil)
	b := mat.NewVecDense(rows, nil)
	for i := 1; i < len(used); i++ {
		p := used[i].Position
		ri := dist[i]
		a.Set(i-1, 0, 2*(p.X-ref.X))
		a.Set(i-1, 1, 2*(p.Y-ref.Y))
		b.SetVec(i-1, r0*r0-ri*ri-ref.X*ref.X+p.X*p.X-ref.Y*ref.Y+p.Y*p.Y)
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var atb mat.VecDense
	atb.MulVec(a.T(), b)

	m00, m01 := ata.At(0, 0), ata.At(0, 1)
	m10, m11 := ata.At(1, 0), ata.At(1, 1)
	det := m00*m11 - m01*m10
	if !isFinite(det) || math.Abs(det) <= e.detThreshold {
		return invalid(MethodRanges, len(used))
	}

	v0, v1 := atb.AtVec(0), atb.AtVec(1)
	x := (m11*v0 - m01*v1) / det
	y := (m00*v1 - m10*v0) / det
	if !isFinite(x) || !isFinite(y) {
		return invalid(MethodRanges, len(used))
	}

	return Estimate{
		Position:    Point{X: x, Y: y},
		Valid:       true,
		Method:      MethodRanges,
		AnchorsUsed: len(used),
	}
}
