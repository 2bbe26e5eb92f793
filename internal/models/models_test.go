package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yard-tracker/internal/positioning"
)

func TestAnchorConversion(t *testing.T) {
	ref := -42.0
	surveyed := positioning.Anchor{ID: 2, Position: positioning.Point{X: 3.5, Y: -1}, ReferenceSignal: &ref}

	row := AnchorFromPositioning(surveyed)
	assert.Equal(t, 2, row.AnchorID)
	assert.Equal(t, "anchor-2", row.Name)
	require.NotNil(t, row.ReferenceSignal)

	// the row owns its own copy
	ref = -90
	assert.Equal(t, -42.0, *row.ReferenceSignal)

	back := row.ToPositioning()
	assert.Equal(t, surveyed.Position, back.Position)
	assert.Equal(t, -42.0, *back.ReferenceSignal)

	plain := AnchorsToPositioning([]*Anchor{{AnchorID: 1}, {AnchorID: 3, X: 1}})
	require.Len(t, plain, 2)
	assert.Equal(t, 3, plain[1].ID)
	assert.False(t, plain[0].HasReferenceSignal())
}

func TestObservation_Validate(t *testing.T) {
	rssi := -64
	assert.NoError(t, (&Observation{RSSI: &rssi}).Validate())
	assert.NoError(t, (&Observation{Ranges: map[int]float64{1: 2}}).Validate())
	assert.NoError(t, (&Observation{Signals: map[int]int{1: -50}}).Validate())
	assert.Error(t, (&Observation{Device: "moto-1"}).Validate())

	for _, bad := range []float64{math.NaN(), math.Inf(1), -0.5} {
		d := bad
		assert.Error(t, (&Observation{RSSI: &rssi, Distance: &d}).Validate(), "distance %v", bad)
	}
	ok := 4.85
	assert.NoError(t, (&Observation{RSSI: &rssi, Distance: &ok}).Validate())
}
