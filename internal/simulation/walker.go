// Package simulation produces synthetic signal readings for a tracker that
// walks back and forth in front of a single router.
package simulation

import (
	"fmt"
	"time"

	"yard-tracker/internal/positioning"
)

const (
	DefaultStartDistance = 5
	DefaultMinDistance   = 2
	DefaultMaxDistance   = 20
	DefaultStepInterval  = 3 * time.Second
)

type WalkerConfig struct {
	StartDistance int
	MinDistance   int
	MaxDistance   int
	StepInterval  time.Duration
	PathLoss      positioning.PathLossModel
}

func DefaultWalkerConfig() WalkerConfig {
	return WalkerConfig{
		StartDistance: DefaultStartDistance,
		MinDistance:   DefaultMinDistance,
		MaxDistance:   DefaultMaxDistance,
		StepInterval:  DefaultStepInterval,
		PathLoss:      positioning.DefaultPathLossModel(),
	}
}

func (c WalkerConfig) Validate() error {
	if c.MinDistance <= 0 {
		return fmt.Errorf("minimum distance must be greater than 0, got %d", c.MinDistance)
	}
	if c.MaxDistance <= c.MinDistance {
		return fmt.Errorf("maximum distance %d must be greater than minimum distance %d", c.MaxDistance, c.MinDistance)
	}
	if c.StartDistance < c.MinDistance || c.StartDistance > c.MaxDistance {
		return fmt.Errorf("start distance %d outside [%d, %d]", c.StartDistance, c.MinDistance, c.MaxDistance)
	}
	if c.StepInterval <= 0 {
		return fmt.Errorf("step interval must be greater than 0")
	}
	return c.PathLoss.Validate()
}

// Walker moves one meter per step between MinDistance and MaxDistance and
// turns around at either end. It is not safe for concurrent use.
type Walker struct {
	cfg        WalkerConfig
	distance   int
	increasing bool
	lastStep   time.Time
}

func NewWalker(cfg WalkerConfig, start time.Time) (*Walker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid walker config: %w", err)
	}

	return &Walker{
		cfg:        cfg,
		distance:   cfg.StartDistance,
		increasing: true,
		lastStep:   start,
	}, nil
}

// Sample advances the walk if more than one step interval passed since the
// last step and returns the current distance with its simulated signal.
func (w *Walker) Sample(now time.Time) (int, int) {
	if now.Sub(w.lastStep) > w.cfg.StepInterval {
		w.lastStep = now
		w.step()
	}

	return w.distance, w.cfg.PathLoss.Signal(float64(w.distance))
}

func (w *Walker) Distance() int {
	return w.distance
}

func (w *Walker) step() {
	if w.increasing {
		w.distance++
		if w.distance >= w.cfg.MaxDistance {
			w.increasing = false
		}
		return
	}

	w.distance--
	if w.distance <= w.cfg.MinDistance {
		w.increasing = true
	}
}
