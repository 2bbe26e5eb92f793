package mq

import (
	"fmt"
	"regexp"
	"strings"

	"yard-tracker/internal/interfaces"
)

const (
	TrackingTopicTemplate    = "%s/tracking"
	ObservationTopicTemplate = "%s/v1/observations/+"
	PositionTopicTemplate    = "%s/v1/positions/%s"
	AnchorEventTopicTemplate = "%s/v1/events/anchors"
)

type TopicManager struct {
	BaseTopic        string
	observationRegex *regexp.Regexp
}

func NewTopicManager(baseTopic string) *TopicManager {
	m := &TopicManager{BaseTopic: strings.TrimSuffix(baseTopic, "/")}
	m.observationRegex = m.buildTopicRegex(ObservationTopicTemplate)
	return m
}

// GetTrackingTopic is the flat topic the yard firmware publishes to; the
// device id travels in the payload.
func (m *TopicManager) GetTrackingTopic() string {
	return fmt.Sprintf(TrackingTopicTemplate, m.BaseTopic)
}

func (m *TopicManager) GetObservationTopic() string {
	return fmt.Sprintf(ObservationTopicTemplate, m.BaseTopic)
}

func (m *TopicManager) GetPositionTopic(deviceID string) string {
	return fmt.Sprintf(PositionTopicTemplate, m.BaseTopic, deviceID)
}

func (m *TopicManager) GetAnchorEventTopic() string {
	return fmt.Sprintf(AnchorEventTopicTemplate, m.BaseTopic)
}

func (m *TopicManager) IsTrackingTopic(topic string) bool {
	return topic == m.GetTrackingTopic()
}

func (m *TopicManager) buildTopicRegex(template string) *regexp.Regexp {
	pattern := strings.ReplaceAll(template, "%s", regexp.QuoteMeta(m.BaseTopic))
	pattern = strings.ReplaceAll(pattern, "+", "([^/]+)")
	pattern = "^" + pattern + "$"

	return regexp.MustCompile(pattern)
}

// ExtractDeviceId returns the device segment of an observation topic.
func (m *TopicManager) ExtractDeviceId(topic string) (string, error) {
	matches := m.observationRegex.FindStringSubmatch(topic)

	if len(matches) < 2 {
		return "", fmt.Errorf("could not extract device ID from topic: %s", topic)
	}

	return matches[1], nil
}

func (m *TopicManager) GetBaseTopic() string {
	return m.BaseTopic
}

var _ interfaces.ITopicManager = (*TopicManager)(nil)
