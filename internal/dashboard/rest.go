package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"yard-tracker/internal/config/components"
	"yard-tracker/internal/interfaces"
	"yard-tracker/internal/models"
)

// RESTSink posts every report as JSON to a generic collector endpoint.
type RESTSink struct {
	endpoint string
	client   *http.Client
}

func NewRESTSink(cfg components.DashboardConfigImpl) *RESTSink {
	return &RESTSink{
		endpoint: cfg.RestEndpointURL,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *RESTSink) Name() string {
	return "rest"
}

func (s *RESTSink) Send(ctx context.Context, report *models.PositionReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to %s failed: %w", s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post to %s returned status %d", s.endpoint, resp.StatusCode)
	}
	return nil
}

var _ interfaces.IPositionSink = (*RESTSink)(nil)
