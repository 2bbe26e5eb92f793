package listeners

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yard-tracker/internal/models"
	"yard-tracker/internal/positioning"
)

type memoryRepository struct {
	rows []*models.Anchor
	err  error
}

func (r *memoryRepository) FindAll(ctx context.Context) ([]*models.Anchor, error) {
	return r.rows, r.err
}

func (r *memoryRepository) CreateOrUpdate(ctx context.Context, anchor *models.Anchor) error {
	r.rows = append(r.rows, anchor)
	return nil
}

type recordingSwapper struct {
	mu         sync.Mutex
	estimators []*positioning.Estimator
}

func (s *recordingSwapper) SetEstimator(estimator *positioning.Estimator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimators = append(s.estimators, estimator)
}

func (s *recordingSwapper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.estimators)
}

type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) PublishJson(topic string, data interface{}) error {
	p.topics = append(p.topics, topic)
	return nil
}

func triangleRows() []*models.Anchor {
	return []*models.Anchor{
		{AnchorID: 1, X: 0, Y: 0},
		{AnchorID: 2, X: 10, Y: 0},
		{AnchorID: 3, X: 0, Y: 10},
	}
}

func TestAnchorTableListener_Reloads(t *testing.T) {
	repo := &memoryRepository{rows: triangleRows()}
	swapper := &recordingSwapper{}
	publisher := &recordingPublisher{}
	listener := NewAnchorTableListener(repo, swapper, nil, publisher, "patio/motos/v1/events/anchors", zerolog.Nop())

	assert.Equal(t, "anchors", listener.GetTableName())
	assert.Equal(t, "table_events", listener.GetChannelName())

	err := listener.HandleChange(context.Background(), &TableChangeEvent{Operation: UpdateOperation, Table: "anchors"})
	require.NoError(t, err)

	require.Len(t, swapper.estimators, 1)
	assert.Len(t, swapper.estimators[0].Anchors(), 3)
	assert.Equal(t, []string{"patio/motos/v1/events/anchors"}, publisher.topics)
}

func TestAnchorTableListener_KeepsEstimatorOnBadRegistry(t *testing.T) {
	swapper := &recordingSwapper{}
	publisher := &recordingPublisher{}

	empty := NewAnchorTableListener(&memoryRepository{}, swapper, nil, publisher, "t", zerolog.Nop())
	assert.Error(t, empty.HandleChange(context.Background(), &TableChangeEvent{Operation: DeleteOperation}))

	broken := NewAnchorTableListener(&memoryRepository{err: errors.New("connection reset")}, swapper, nil, publisher, "t", zerolog.Nop())
	assert.Error(t, broken.HandleChange(context.Background(), &TableChangeEvent{Operation: InsertOperation}))

	unknown := NewAnchorTableListener(&memoryRepository{rows: triangleRows()}, swapper, nil, publisher, "t", zerolog.Nop())
	assert.Error(t, unknown.HandleChange(context.Background(), &TableChangeEvent{Operation: "TRUNCATE"}))

	assert.Empty(t, swapper.estimators)
	assert.Empty(t, publisher.topics)
}

func TestListenerManager_DispatchesByTable(t *testing.T) {
	manager := newManager(nil, zerolog.Nop())
	defer manager.Stop()

	swapper := &recordingSwapper{}
	listener := NewAnchorTableListener(&memoryRepository{rows: triangleRows()}, swapper, nil, &recordingPublisher{}, "t", zerolog.Nop())
	require.NoError(t, manager.RegisterListener(listener))

	manager.handleNotification(`{"operation":"UPDATE","table":"devices","timestamp":"2024-05-01T09:00:00Z"}`)
	manager.handleNotification(`not json`)
	manager.handleNotification(`{"operation":"INSERT","table":"anchors","new_data":{"anchor_id":4},"timestamp":"2024-05-01T09:00:00Z"}`)

	require.Eventually(t, func() bool { return swapper.count() == 1 }, time.Second, 10*time.Millisecond)
}
