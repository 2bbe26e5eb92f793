package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"yard-tracker/internal/interfaces"
	"yard-tracker/internal/models"
	"yard-tracker/internal/positioning"
)

var (
	ErrNoObservation = errors.New("observation carries no measurement")
	ErrUnknownDevice = errors.New("device id is not set")
)

type JsonPublisher interface {
	PublishJson(topic string, data interface{}) error
}

type fix struct {
	position positioning.Point
	at       time.Time
}

// TrackingService turns observations into position reports. It owns the last
// good fix of every device, which is what an invalid estimate falls back to.
type TrackingService struct {
	estimator    atomic.Pointer[positioning.Estimator]
	publisher    JsonPublisher
	topicManager interfaces.ITopicManager
	writer       interfaces.IPositionWriter
	sinks        []interfaces.IPositionSink
	logger       zerolog.Logger
	now          func() time.Time

	mu      sync.RWMutex
	fixes   map[string]fix
	reports map[string]models.PositionReport
}

// NewTrackingService wires the service. writer may be nil when no history is
// kept.
func NewTrackingService(
	estimator *positioning.Estimator,
	publisher JsonPublisher,
	topicManager interfaces.ITopicManager,
	writer interfaces.IPositionWriter,
	sinks []interfaces.IPositionSink,
	logger zerolog.Logger,
) *TrackingService {
	s := &TrackingService{
		publisher:    publisher,
		topicManager: topicManager,
		writer:       writer,
		sinks:        sinks,
		logger:       logger,
		now:          time.Now,
		fixes:        make(map[string]fix),
		reports:      make(map[string]models.PositionReport),
	}
	s.estimator.Store(estimator)
	return s
}

// SetEstimator replaces the estimator used for subsequent observations. Last
// known fixes are kept.
func (s *TrackingService) SetEstimator(estimator *positioning.Estimator) {
	s.estimator.Store(estimator)
}

func (s *TrackingService) ProcessObservation(ctx context.Context, deviceID string, observation *models.Observation) (*models.PositionReport, error) {
	if deviceID == "" {
		return nil, ErrUnknownDevice
	}

	estimate, err := s.estimate(observation)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", deviceID, err)
	}

	now := s.now()
	report := models.PositionReport{
		ID:          uuid.New(),
		DeviceID:    deviceID,
		Valid:       estimate.Valid,
		Method:      estimate.Method,
		AnchorsUsed: estimate.AnchorsUsed,
		Simulated:   observation.Simulated,
		Timestamp:   now,
	}
	if observation.Distance != nil {
		distance := *observation.Distance
		report.MeasuredDistance = &distance
	}

	s.mu.Lock()
	last, known := s.fixes[deviceID]
	if estimate.Valid {
		last = fix{position: estimate.Position, at: now}
		s.fixes[deviceID] = last
	}
	if estimate.Valid || known {
		report.X = last.position.X
		report.Y = last.position.Y
		report.HasFix = true
		report.Stale = !estimate.Valid
	}
	s.reports[deviceID] = report
	s.mu.Unlock()

	if !estimate.Valid {
		event := s.logger.Warn().
			Str("device_id", deviceID).
			Str("method", string(estimate.Method)).
			Int("anchors_used", estimate.AnchorsUsed)
		if known {
			event = event.Str("last_fix", humanize.RelTime(last.at, now, "ago", "from now"))
		}
		event.Msg("Estimate not valid, keeping last known position")
	}

	s.dispatch(ctx, &report)

	return &report, nil
}

func (s *TrackingService) estimate(observation *models.Observation) (positioning.Estimate, error) {
	estimator := s.estimator.Load()
	switch {
	case observation == nil:
		return positioning.Estimate{}, ErrNoObservation
	case len(observation.Ranges) > 0:
		return estimator.EstimateFromRanges(observation.Ranges), nil
	case len(observation.Signals) > 0:
		return estimator.EstimateFromSignals(observation.Signals), nil
	case observation.RSSI != nil:
		return estimator.EstimateFromFingerprint(*observation.RSSI), nil
	default:
		return positioning.Estimate{}, ErrNoObservation
	}
}

// dispatch hands the report to every output. Failures are logged; one broken
// output never blocks the others.
func (s *TrackingService) dispatch(ctx context.Context, report *models.PositionReport) {
	topic := s.topicManager.GetPositionTopic(report.DeviceID)
	if err := s.publisher.PublishJson(topic, report); err != nil {
		s.logger.Error().Err(err).
			Str("topic", topic).
			Msg("Failed to publish position")
	}

	if s.writer != nil {
		if err := s.writer.WritePosition(ctx, report); err != nil {
			s.logger.Error().Err(err).
				Str("device_id", report.DeviceID).
				Msg("Failed to write position history")
		}
	}

	for _, sink := range s.sinks {
		if err := sink.Send(ctx, report); err != nil {
			s.logger.Error().Err(err).
				Str("sink", sink.Name()).
				Str("device_id", report.DeviceID).
				Msg("Failed to forward position")
		}
	}
}

func (s *TrackingService) LastKnown(deviceID string) (models.PositionReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[deviceID]
	return report, ok
}

// Snapshot returns the latest report of every device ordered by device id.
func (s *TrackingService) Snapshot() []models.PositionReport {
	s.mu.RLock()
	reports := make([]models.PositionReport, 0, len(s.reports))
	for _, report := range s.reports {
		reports = append(reports, report)
	}
	s.mu.RUnlock()

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].DeviceID < reports[j].DeviceID
	})
	return reports
}

var _ interfaces.IPositionSource = (*TrackingService)(nil)
