package listeners

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"yard-tracker/internal/interfaces"
	"yard-tracker/internal/models"
	"yard-tracker/internal/positioning"
)

type EstimatorSwapper interface {
	SetEstimator(estimator *positioning.Estimator)
}

type JsonPublisher interface {
	PublishJson(topic string, data interface{}) error
}

// AnchorTableListener rebuilds the estimator from the registry whenever the
// anchors table changes. A registry that no longer yields a usable anchor set
// leaves the running estimator in place.
type AnchorTableListener struct {
	*BaseTableListener
	repository interfaces.IAnchorRepository
	swapper    EstimatorSwapper
	options    []positioning.Option
	publisher  JsonPublisher
	topic      string
	logger     zerolog.Logger

	mu sync.Mutex
}

func NewAnchorTableListener(
	repository interfaces.IAnchorRepository,
	swapper EstimatorSwapper,
	options []positioning.Option,
	publisher JsonPublisher,
	topic string,
	logger zerolog.Logger,
) *AnchorTableListener {
	return &AnchorTableListener{
		BaseTableListener: NewBaseTableListener("anchors"),
		repository:        repository,
		swapper:           swapper,
		options:           options,
		publisher:         publisher,
		topic:             topic,
		logger:            logger,
	}
}

func (l *AnchorTableListener) HandleChange(ctx context.Context, event *TableChangeEvent) error {
	switch event.Operation {
	case InsertOperation, UpdateOperation, DeleteOperation:
	default:
		return fmt.Errorf("unknown operation: %s", event.Operation)
	}

	l.logger.Info().
		Str("operation", string(event.Operation)).
		Time("timestamp", event.Timestamp).
		Msg("Anchor table change detected")

	// Notifications arrive in parallel; reload one at a time so the last
	// change always wins.
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.repository.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload anchors: %w", err)
	}

	estimator, err := positioning.NewEstimator(models.AnchorsToPositioning(rows), l.options...)
	if err != nil {
		return fmt.Errorf("anchor registry rejected, keeping current estimator: %w", err)
	}
	l.swapper.SetEstimator(estimator)

	l.logger.Info().
		Int("anchors", len(rows)).
		Msg("Estimator rebuilt from anchor registry")

	if err := l.publisher.PublishJson(l.topic, map[string]interface{}{
		"event":     "anchors_reloaded",
		"operation": event.Operation,
		"anchors":   len(rows),
		"timestamp": event.Timestamp,
	}); err != nil {
		l.logger.Error().Err(err).Msg("Failed to publish anchor reload event")
	}

	return nil
}

var _ TableListener = (*AnchorTableListener)(nil)
