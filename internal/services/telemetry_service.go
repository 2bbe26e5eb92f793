package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"yard-tracker/internal/models"
	"yard-tracker/internal/positioning"
	"yard-tracker/internal/simulation"
)

type RawPublisher interface {
	Publish(topic string, payload []byte) error
}

// TelemetryService is the tracker side: it samples the simulated walk and
// publishes the reading in the firmware payload format.
type TelemetryService struct {
	walker    *simulation.Walker
	pathLoss  positioning.PathLossModel
	publisher RawPublisher
	topic     string
	deviceID  string
	logger    zerolog.Logger
}

func NewTelemetryService(
	walker *simulation.Walker,
	pathLoss positioning.PathLossModel,
	publisher RawPublisher,
	topic string,
	deviceID string,
	logger zerolog.Logger,
) *TelemetryService {
	return &TelemetryService{
		walker:    walker,
		pathLoss:  pathLoss,
		publisher: publisher,
		topic:     topic,
		deviceID:  deviceID,
		logger:    logger,
	}
}

func (s *TelemetryService) PublishOnce(now time.Time) (*models.TelemetryMessage, error) {
	_, rssi := s.walker.Sample(now)

	msg := &models.TelemetryMessage{
		Device:    s.deviceID,
		RSSI:      rssi,
		Distance:  math.Round(s.pathLoss.Distance(float64(rssi))*100) / 100,
		Simulated: true,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal telemetry: %w", err)
	}

	if err := s.publisher.Publish(s.topic, payload); err != nil {
		return nil, fmt.Errorf("failed to publish telemetry: %w", err)
	}

	s.logger.Info().
		Str("topic", s.topic).
		Int("rssi", msg.RSSI).
		Float64("distance", msg.Distance).
		Msg("Telemetry sent")

	return msg, nil
}

// Run publishes immediately and then once per interval until ctx is done.
// Publish failures are logged and the next tick tries again.
func (s *TelemetryService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.PublishOnce(time.Now()); err != nil {
			s.logger.Error().Err(err).Msg("Telemetry cycle failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
