package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalker_StepsOnlyAfterInterval(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	w, err := NewWalker(DefaultWalkerConfig(), start)
	require.NoError(t, err)

	d, rssi := w.Sample(start.Add(2 * time.Second))
	assert.Equal(t, 5, d)
	assert.Equal(t, -64, rssi)

	// exactly one interval is not enough
	d, _ = w.Sample(start.Add(3 * time.Second))
	assert.Equal(t, 5, d)

	d, _ = w.Sample(start.Add(3*time.Second + time.Millisecond))
	assert.Equal(t, 6, d)

	// a long gap still moves a single meter
	d, _ = w.Sample(start.Add(time.Minute))
	assert.Equal(t, 7, d)
}

func TestWalker_Bounces(t *testing.T) {
	cfg := DefaultWalkerConfig()
	cfg.StartDistance = 18
	now := time.Unix(0, 0)
	w, err := NewWalker(cfg, now)
	require.NoError(t, err)

	var path []int
	for i := 0; i < 4; i++ {
		now = now.Add(4 * time.Second)
		d, _ := w.Sample(now)
		path = append(path, d)
	}
	assert.Equal(t, []int{19, 20, 19, 18}, path)

	cfg.StartDistance = 3
	w, err = NewWalker(cfg, now)
	require.NoError(t, err)
	w.increasing = false

	path = path[:0]
	for i := 0; i < 3; i++ {
		now = now.Add(4 * time.Second)
		d, _ := w.Sample(now)
		path = append(path, d)
	}
	assert.Equal(t, []int{2, 3, 4}, path)
}

func TestWalkerConfig_Validate(t *testing.T) {
	cfg := DefaultWalkerConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.MinDistance = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxDistance = bad.MinDistance
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.StartDistance = 50
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.StepInterval = 0
	assert.Error(t, bad.Validate())
}
