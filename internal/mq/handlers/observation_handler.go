package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"yard-tracker/internal/models"
	"yard-tracker/internal/mq"
)

type ObservationProcessor interface {
	ProcessObservation(ctx context.Context, deviceID string, observation *models.Observation) (*models.PositionReport, error)
}

// ObservationHandler accepts observations on the firmware tracking topic,
// where the device id is part of the payload, and on the per-device
// observation topics.
type ObservationHandler struct {
	processor    ObservationProcessor
	topicManager *mq.TopicManager
	logger       zerolog.Logger
	timeout      time.Duration
}

func NewObservationHandler(topicManager *mq.TopicManager, processor ObservationProcessor, logger zerolog.Logger) *ObservationHandler {
	return &ObservationHandler{
		processor:    processor,
		topicManager: topicManager,
		logger:       logger,
		timeout:      30 * time.Second,
	}
}

func (h *ObservationHandler) HandleMessage(client mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	topic := msg.Topic()
	payload := msg.Payload()

	if len(payload) == 0 {
		return
	}

	h.logger.Debug().
		Str("topic", topic).
		Str("payload", string(payload)).
		Msg("Received observation")

	var observation models.Observation
	if err := json.Unmarshal(payload, &observation); err != nil {
		h.logger.Error().Err(err).
			Str("topic", topic).
			Str("payload", string(payload)).
			Msg("Could not parse observation")
		return
	}

	deviceID, err := h.resolveDeviceID(topic, &observation)
	if err != nil {
		h.logger.Error().Err(err).
			Str("topic", topic).
			Msg("Could not determine device of observation")
		return
	}

	if err := observation.Validate(); err != nil {
		h.logger.Error().Err(err).
			Str("topic", topic).
			Str("device_id", deviceID).
			Msg("Invalid observation received")
		return
	}

	report, err := h.processor.ProcessObservation(ctx, deviceID, &observation)
	if err != nil {
		h.logger.Error().Err(err).
			Str("device_id", deviceID).
			Msg("Error processing observation")
		return
	}

	h.logger.Debug().
		Str("device_id", deviceID).
		Bool("valid", report.Valid).
		Float64("x", report.X).
		Float64("y", report.Y).
		Msg("Observation processed")
}

func (h *ObservationHandler) resolveDeviceID(topic string, observation *models.Observation) (string, error) {
	if h.topicManager.IsTrackingTopic(topic) {
		if observation.Device == "" {
			return "", fmt.Errorf("device is not set in payload")
		}
		return observation.Device, nil
	}

	deviceID, err := h.topicManager.ExtractDeviceId(topic)
	if err != nil {
		return "", err
	}
	if observation.Device != "" && observation.Device != deviceID {
		return "", fmt.Errorf("payload device %q does not match topic device %q", observation.Device, deviceID)
	}
	observation.Device = deviceID
	return deviceID, nil
}
