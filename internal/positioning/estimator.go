// Package positioning estimates a 2D position from range or signal-strength
// observations against a fixed set of surveyed anchors.
//
// An Estimator is immutable after construction and only reads its anchor set,
// so a single instance can be shared between goroutines. Estimation calls
// never fail: ill-conditioned geometry and non-finite values are reported
// through Estimate.Valid and the caller keeps the last good position.
package positioning

import (
	"errors"
	"fmt"
)

const (
	DefaultFingerprintEpsilon   = 0.1
	DefaultDeterminantThreshold = 1e-3
)

type Option func(*Estimator)

func WithPathLoss(model PathLossModel) Option {
	return func(e *Estimator) {
		e.pathLoss = model
	}
}

// WithFingerprintEpsilon sets the term added to every signal difference so a
// perfect match does not divide by zero.
func WithFingerprintEpsilon(epsilon float64) Option {
	return func(e *Estimator) {
		e.epsilon = epsilon
	}
}

// WithDeterminantThreshold sets the smallest |det(AᵗA)| accepted by the range
// solver.
func WithDeterminantThreshold(threshold float64) Option {
	return func(e *Estimator) {
		e.detThreshold = threshold
	}
}

type Estimator struct {
	anchors      []Anchor
	pathLoss     PathLossModel
	epsilon      float64
	detThreshold float64
}

func NewEstimator(anchors []Anchor, opts ...Option) (*Estimator, error) {
	if len(anchors) == 0 {
		return nil, errors.New("at least one anchor is required")
	}

	e := &Estimator{
		anchors:      make([]Anchor, 0, len(anchors)),
		pathLoss:     DefaultPathLossModel(),
		epsilon:      DefaultFingerprintEpsilon,
		detThreshold: DefaultDeterminantThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}

	seen := make(map[int]struct{}, len(anchors))
	for _, anchor := range anchors {
		if _, dup := seen[anchor.ID]; dup {
			return nil, fmt.Errorf("duplicate anchor id %d", anchor.ID)
		}
		if err := anchor.validate(); err != nil {
			return nil, err
		}
		seen[anchor.ID] = struct{}{}
		e.anchors = append(e.anchors, anchor.clone())
	}

	if err := e.pathLoss.Validate(); err != nil {
		return nil, err
	}
	if !isFinite(e.epsilon) || e.epsilon <= 0 {
		return nil, fmt.Errorf("fingerprint epsilon must be greater than 0, got %v", e.epsilon)
	}
	if !isFinite(e.detThreshold) || e.detThreshold < 0 {
		return nil, fmt.Errorf("determinant threshold must not be negative, got %v", e.detThreshold)
	}

	return e, nil
}

// Anchors returns a copy of the configured anchor set in configured order.
func (e *Estimator) Anchors() []Anchor {
	out := make([]Anchor, len(e.anchors))
	for i, anchor := range e.anchors {
		out[i] = anchor.clone()
	}
	return out
}

func (e *Estimator) PathLoss() PathLossModel {
	return e.pathLoss
}

// EstimateFromSignals converts per-anchor signal readings into distances with
// the configured path-loss model and trilaterates them.
func (e *Estimator) EstimateFromSignals(signals map[int]int) Estimate {
	ranges := make(map[int]float64, len(signals))
	for id, signal := range signals {
		ranges[id] = e.pathLoss.Distance(float64(signal))
	}

	estimate := e.EstimateFromRanges(ranges)
	estimate.Method = MethodSignals
	return estimate
}
