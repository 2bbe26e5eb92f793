package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yard-tracker/internal/models"
	"yard-tracker/internal/positioning"
	"yard-tracker/internal/simulation"
)

type rawMessage struct {
	topic   string
	payload []byte
}

type fakeRawPublisher struct {
	msgs []rawMessage
	err  error
}

func (p *fakeRawPublisher) Publish(topic string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, rawMessage{topic: topic, payload: payload})
	return nil
}

func TestTelemetryService_PublishOnce(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	walker, err := simulation.NewWalker(simulation.DefaultWalkerConfig(), start)
	require.NoError(t, err)

	publisher := &fakeRawPublisher{}
	svc := NewTelemetryService(walker, positioning.DefaultPathLossModel(), publisher, "patio/motos/tracking", "moto_simulator", zerolog.Nop())

	msg, err := svc.PublishOnce(start)
	require.NoError(t, err)

	assert.Equal(t, "moto_simulator", msg.Device)
	assert.Equal(t, -64, msg.RSSI)
	// 10^(24/35) is 4.8497 before rounding
	assert.Equal(t, 4.85, msg.Distance)
	assert.True(t, msg.Simulated)

	require.Len(t, publisher.msgs, 1)
	assert.Equal(t, "patio/motos/tracking", publisher.msgs[0].topic)

	var decoded models.Observation
	require.NoError(t, json.Unmarshal(publisher.msgs[0].payload, &decoded))
	assert.Equal(t, "moto_simulator", decoded.Device)
	require.NotNil(t, decoded.RSSI)
	assert.Equal(t, -64, *decoded.RSSI)
}

func TestTelemetryService_PublishError(t *testing.T) {
	walker, err := simulation.NewWalker(simulation.DefaultWalkerConfig(), time.Now())
	require.NoError(t, err)

	svc := NewTelemetryService(walker, positioning.DefaultPathLossModel(), &fakeRawPublisher{err: errors.New("offline")}, "t", "d", zerolog.Nop())
	_, err = svc.PublishOnce(time.Now())
	assert.Error(t, err)
}
