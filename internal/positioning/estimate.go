package positioning

type Method string

const (
	MethodRanges      Method = "ranges"
	MethodSignals     Method = "signals"
	MethodFingerprint Method = "fingerprint"
)

// Estimate is the outcome of one estimation call. Position must not be used
// when Valid is false.
type Estimate struct {
	Position    Point  `json:"position"`
	Valid       bool   `json:"valid"`
	Method      Method `json:"method"`
	AnchorsUsed int    `json:"anchors_used"`
}

// Or returns the estimated position when valid and fallback otherwise.
func (e Estimate) Or(fallback Point) Point {
	if e.Valid {
		return e.Position
	}
	return fallback
}

func invalid(method Method, used int) Estimate {
	return Estimate{Method: method, AnchorsUsed: used}
}
