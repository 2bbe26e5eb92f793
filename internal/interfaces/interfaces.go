package interfaces

import (
	"context"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"yard-tracker/internal/models"
)

type IMqClient interface {
	Publish(topic string, payload []byte) error
	PublishJson(topic string, data interface{}) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context)
	IsConnected() bool
}

type ITopicManager interface {
	GetBaseTopic() string
	GetTrackingTopic() string
	GetObservationTopic() string
	GetPositionTopic(deviceID string) string
	GetAnchorEventTopic() string
	ExtractDeviceId(topic string) (string, error)
}

// IPositionSink receives every position report produced by the tracking
// service. Implementations must be safe for concurrent use.
type IPositionSink interface {
	Name() string
	Send(ctx context.Context, report *models.PositionReport) error
}

type IPositionWriter interface {
	WritePosition(ctx context.Context, report *models.PositionReport) error
}

type IPositionSource interface {
	Snapshot() []models.PositionReport
	LastKnown(deviceID string) (models.PositionReport, bool)
}

type IAnchorRepository interface {
	FindAll(ctx context.Context) ([]*models.Anchor, error)
	CreateOrUpdate(ctx context.Context, anchor *models.Anchor) error
}
