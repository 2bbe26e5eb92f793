// Package dashboard forwards position reports to external HTTP dashboards.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"yard-tracker/internal/config/components"
	"yard-tracker/internal/interfaces"
	"yard-tracker/internal/models"
)

// ThingSpeakSink posts reports to a ThingSpeak channel update endpoint. The
// free tier refuses updates closer than 15 s apart, so reports arriving
// within MinInterval of the last accepted one are dropped.
type ThingSpeakSink struct {
	endpoint    string
	apiKey      string
	minInterval time.Duration
	client      *http.Client
	logger      zerolog.Logger
	now         func() time.Time

	mu       sync.Mutex
	lastSent time.Time
}

func NewThingSpeakSink(cfg components.DashboardConfigImpl, logger zerolog.Logger) *ThingSpeakSink {
	return &ThingSpeakSink{
		endpoint:    cfg.ThingSpeakURL,
		apiKey:      cfg.ThingSpeakAPIKey,
		minInterval: cfg.ThingSpeakMinInterval,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ThingSpeakSink) Name() string {
	return "thingspeak"
}

func (s *ThingSpeakSink) Send(ctx context.Context, report *models.PositionReport) error {
	if !report.HasFix {
		return nil
	}

	// The lock is held across the request so concurrent reports cannot both
	// pass the rate check; only an accepted update starts a new window.
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.lastSent.IsZero() && now.Sub(s.lastSent) < s.minInterval {
		s.logger.Debug().
			Str("device_id", report.DeviceID).
			Msg("ThingSpeak rate limit, skipping report")
		return nil
	}

	form := url.Values{}
	form.Set("api_key", s.apiKey)
	form.Set("field1", strconv.FormatFloat(report.X, 'f', 2, 64))
	form.Set("field2", strconv.FormatFloat(report.Y, 'f', 2, 64))
	form.Set("field3", strconv.Itoa(report.AnchorsUsed))
	form.Set("field4", strconv.FormatBool(report.Valid))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build thingspeak request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("thingspeak update failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return fmt.Errorf("failed to read thingspeak response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("thingspeak update returned status %d", resp.StatusCode)
	}
	// ThingSpeak answers 200 with entry id 0 when it rejects an update
	if strings.TrimSpace(string(body)) == "0" {
		return fmt.Errorf("thingspeak rejected the update")
	}

	s.lastSent = now
	return nil
}

var _ interfaces.IPositionSink = (*ThingSpeakSink)(nil)
