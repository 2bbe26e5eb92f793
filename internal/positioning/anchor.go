package positioning

import (
	"fmt"
	"math"
)

// Point is a planar coordinate in meters.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Anchor is a surveyed reference point. ReferenceSignal is only needed for
// fingerprinting.
type Anchor struct {
	ID              int      `json:"id"`
	Position        Point    `json:"position"`
	ReferenceSignal *float64 `json:"reference_signal,omitempty"`
}

func (a Anchor) HasReferenceSignal() bool {
	return a.ReferenceSignal != nil
}

func (a Anchor) validate() error {
	if !a.Position.IsFinite() {
		return fmt.Errorf("anchor %d has a non-finite position (%v, %v)", a.ID, a.Position.X, a.Position.Y)
	}
	if a.ReferenceSignal != nil && !isFinite(*a.ReferenceSignal) {
		return fmt.Errorf("anchor %d has a non-finite reference signal", a.ID)
	}
	return nil
}

// clone detaches the reference signal pointer from caller owned memory.
func (a Anchor) clone() Anchor {
	if a.ReferenceSignal != nil {
		ref := *a.ReferenceSignal
		a.ReferenceSignal = &ref
	}
	return a
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
