package components

import (
	"math"

	"yard-tracker/internal/config/shared"
	"yard-tracker/internal/interfaces"
	"yard-tracker/internal/positioning"
)

const (
	AnchorSourceFile     = "file"
	AnchorSourcePostgres = "postgres"
)

type PositioningConfig interface {
	interfaces.Config
	PathLoss() positioning.PathLossModel
	EstimatorOptions() []positioning.Option
}

// PositioningConfigImpl carries the calibration constants. None of the
// defaults are measured values.
type PositioningConfigImpl struct {
	ReferenceSignal      float64 `json:"reference_signal"`
	PathLossExponent     float64 `json:"path_loss_exponent"`
	FingerprintEpsilon   float64 `json:"fingerprint_epsilon"`
	DeterminantThreshold float64 `json:"determinant_threshold"`
	AnchorSource         string  `json:"anchor_source"`
	AnchorFile           string  `json:"anchor_file"`
}

func NewPositioningConfig() PositioningConfigImpl {
	config := PositioningConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (P *PositioningConfigImpl) Load() {
	P.ReferenceSignal = shared.GetEnvAsFloat("PATH_LOSS_REFERENCE_SIGNAL", positioning.DefaultReferenceSignal)
	P.PathLossExponent = shared.GetEnvAsFloat("PATH_LOSS_EXPONENT", positioning.DefaultPathLossExponent)
	P.FingerprintEpsilon = shared.GetEnvAsFloat("FINGERPRINT_EPSILON", positioning.DefaultFingerprintEpsilon)
	P.DeterminantThreshold = shared.GetEnvAsFloat("DETERMINANT_THRESHOLD", positioning.DefaultDeterminantThreshold)
	P.AnchorSource = shared.GetEnv("ANCHOR_SOURCE")
	P.AnchorFile = shared.GetEnv("ANCHOR_FILE")
}

func (P *PositioningConfigImpl) SetDefaults() {
	if P.AnchorSource == "" {
		P.AnchorSource = AnchorSourceFile
	}
	if P.AnchorFile == "" {
		P.AnchorFile = "anchors.yaml"
	}
}

func (P *PositioningConfigImpl) Validate() error {
	if err := P.PathLoss().Validate(); err != nil {
		return &shared.ConfigError{Component: "positioning", Field: "path_loss", Value: P.PathLoss(), Message: err.Error()}
	}
	if math.IsNaN(P.FingerprintEpsilon) || P.FingerprintEpsilon <= 0 {
		return &shared.ConfigError{Component: "positioning", Field: "fingerprint_epsilon", Value: P.FingerprintEpsilon, Message: "must be greater than 0"}
	}
	if math.IsNaN(P.DeterminantThreshold) || P.DeterminantThreshold < 0 {
		return &shared.ConfigError{Component: "positioning", Field: "determinant_threshold", Value: P.DeterminantThreshold, Message: "must not be negative"}
	}
	switch P.AnchorSource {
	case AnchorSourceFile:
		if P.AnchorFile == "" {
			return &shared.ConfigError{Component: "positioning", Field: "anchor_file", Message: "is required for the file anchor source"}
		}
	case AnchorSourcePostgres:
	default:
		return &shared.ConfigError{Component: "positioning", Field: "anchor_source", Value: P.AnchorSource, Message: "must be file or postgres"}
	}
	return nil
}

func (P *PositioningConfigImpl) PathLoss() positioning.PathLossModel {
	return positioning.PathLossModel{
		ReferenceSignal: P.ReferenceSignal,
		Exponent:        P.PathLossExponent,
	}
}

func (P *PositioningConfigImpl) EstimatorOptions() []positioning.Option {
	return []positioning.Option{
		positioning.WithPathLoss(P.PathLoss()),
		positioning.WithFingerprintEpsilon(P.FingerprintEpsilon),
		positioning.WithDeterminantThreshold(P.DeterminantThreshold),
	}
}

var _ PositioningConfig = (*PositioningConfigImpl)(nil)
