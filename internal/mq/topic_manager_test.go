package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicManager(t *testing.T) {
	m := NewTopicManager("patio/motos/")

	assert.Equal(t, "patio/motos", m.GetBaseTopic())
	assert.Equal(t, "patio/motos/tracking", m.GetTrackingTopic())
	assert.Equal(t, "patio/motos/v1/observations/+", m.GetObservationTopic())
	assert.Equal(t, "patio/motos/v1/positions/moto-3", m.GetPositionTopic("moto-3"))
	assert.Equal(t, "patio/motos/v1/events/anchors", m.GetAnchorEventTopic())
	assert.True(t, m.IsTrackingTopic("patio/motos/tracking"))
	assert.False(t, m.IsTrackingTopic("patio/motos/v1/observations/moto-3"))
}

func TestTopicManager_ExtractDeviceId(t *testing.T) {
	m := NewTopicManager("patio/motos")

	id, err := m.ExtractDeviceId("patio/motos/v1/observations/moto-3")
	require.NoError(t, err)
	assert.Equal(t, "moto-3", id)

	for _, topic := range []string{
		"patio/motos/tracking",
		"patio/motos/v1/observations/",
		"patio/motos/v1/observations/a/b",
		"other/v1/observations/moto-3",
	} {
		_, err := m.ExtractDeviceId(topic)
		assert.Error(t, err, topic)
	}
}

func TestTopicManager_BaseTopicIsEscaped(t *testing.T) {
	m := NewTopicManager("yard.v2")

	_, err := m.ExtractDeviceId("yardXv2/v1/observations/moto-1")
	assert.Error(t, err)

	id, err := m.ExtractDeviceId("yard.v2/v1/observations/moto-1")
	require.NoError(t, err)
	assert.Equal(t, "moto-1", id)
}
