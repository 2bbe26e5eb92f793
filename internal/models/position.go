package models

import (
	"time"

	"github.com/google/uuid"

	"yard-tracker/internal/positioning"
)

// PositionReport is what the locator publishes per processed observation.
// Valid tells whether this cycle's solve succeeded; Stale marks a report that
// carries the last good position forward; HasFix is false until the device
// produced its first valid estimate. MeasuredDistance is the tracker's own
// single-router range, passed through as reported and nil when absent.
type PositionReport struct {
	ID               uuid.UUID          `json:"id"`
	DeviceID         string             `json:"device_id"`
	X                float64            `json:"x"`
	Y                float64            `json:"y"`
	Valid            bool               `json:"valid"`
	Stale            bool               `json:"stale"`
	HasFix           bool               `json:"has_fix"`
	Method           positioning.Method `json:"method"`
	AnchorsUsed      int                `json:"anchors_used"`
	Simulated        bool               `json:"simulated"`
	MeasuredDistance *float64           `json:"measured_distance,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
}

func (r *PositionReport) Position() positioning.Point {
	return positioning.Point{X: r.X, Y: r.Y}
}
