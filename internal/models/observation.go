package models

import (
	"fmt"
	"math"
)

// Observation is one measurement cycle reported by a tracker. The firmware
// payload {"device","rssi","distance","simulated"} decodes into it directly;
// multi-anchor trackers send ranges or per-anchor signals instead. Distance
// is the tracker's own path-loss range to its router; it does not feed the
// estimator and is carried into the report as MeasuredDistance.
type Observation struct {
	Device    string          `json:"device"`
	RSSI      *int            `json:"rssi,omitempty"`
	Distance  *float64        `json:"distance,omitempty"`
	Ranges    map[int]float64 `json:"ranges,omitempty"`
	Signals   map[int]int     `json:"signals,omitempty"`
	Simulated bool            `json:"simulated"`
}

func (o *Observation) HasMeasurement() bool {
	return len(o.Ranges) > 0 || len(o.Signals) > 0 || o.RSSI != nil
}

// Validate rejects structurally broken messages. Non-finite or negative
// ranges are left to the estimator, which reports them as invalid.
func (o *Observation) Validate() error {
	if !o.HasMeasurement() {
		return fmt.Errorf("observation carries no rssi, ranges or signals")
	}
	if o.Distance != nil && (math.IsNaN(*o.Distance) || math.IsInf(*o.Distance, 0) || *o.Distance < 0) {
		return fmt.Errorf("distance must be a finite non-negative number")
	}
	return nil
}

// TelemetryMessage is the payload published by the tracker agent, field for
// field the one the yard firmware sends.
type TelemetryMessage struct {
	Device    string  `json:"device"`
	RSSI      int     `json:"rssi"`
	Distance  float64 `json:"distance"`
	Simulated bool    `json:"simulated"`
}
