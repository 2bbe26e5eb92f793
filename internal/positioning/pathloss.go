package positioning

import (
	"fmt"
	"math"
)

const (
	DefaultReferenceSignal  = -40.0
	DefaultPathLossExponent = 3.5
)

// PathLossModel is the log-distance path-loss model. ReferenceSignal is the
// expected reading at one meter. Both values are calibration placeholders and
// have to be measured per deployment.
type PathLossModel struct {
	ReferenceSignal float64 `json:"reference_signal"`
	Exponent        float64 `json:"exponent"`
}

func DefaultPathLossModel() PathLossModel {
	return PathLossModel{
		ReferenceSignal: DefaultReferenceSignal,
		Exponent:        DefaultPathLossExponent,
	}
}

func (m PathLossModel) Validate() error {
	if !isFinite(m.ReferenceSignal) {
		return fmt.Errorf("path loss reference signal must be finite, got %v", m.ReferenceSignal)
	}
	if !isFinite(m.Exponent) || m.Exponent <= 0 {
		return fmt.Errorf("path loss exponent must be greater than 0, got %v", m.Exponent)
	}
	return nil
}

// Distance converts a measured signal into meters.
func (m PathLossModel) Distance(signal float64) float64 {
	return math.Pow(10, (m.ReferenceSignal-signal)/(10*m.Exponent))
}

// Signal is the inverse of Distance, truncated toward zero like a firmware
// integer reading.
func (m PathLossModel) Signal(distance float64) int {
	return int(m.ReferenceSignal - 10*m.Exponent*math.Log10(distance))
}
