package components

import (
	"net/url"
	"time"

	"yard-tracker/internal/config/shared"
	"yard-tracker/internal/interfaces"
)

type DashboardConfig interface {
	interfaces.Config
}

// DashboardConfigImpl configures the optional HTTP sinks. A sink is disabled
// while its key or endpoint is empty.
type DashboardConfigImpl struct {
	ThingSpeakURL         string        `json:"thingspeak_url"`
	ThingSpeakAPIKey      string        `json:"thingspeak_api_key"`
	ThingSpeakMinInterval time.Duration `json:"thingspeak_min_interval"`
	RestEndpointURL       string        `json:"rest_endpoint_url"`
	Timeout               time.Duration `json:"timeout"`
}

func NewDashboardConfig() DashboardConfigImpl {
	config := DashboardConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (D *DashboardConfigImpl) Load() {
	D.ThingSpeakURL = shared.GetEnv("THINGSPEAK_URL")
	D.ThingSpeakAPIKey = shared.GetEnv("THINGSPEAK_API_KEY")
	D.ThingSpeakMinInterval = shared.GetEnvAsDuration("THINGSPEAK_MIN_INTERVAL")
	D.RestEndpointURL = shared.GetEnv("REST_ENDPOINT_URL")
	D.Timeout = shared.GetEnvAsDuration("DASHBOARD_TIMEOUT")
}

func (D *DashboardConfigImpl) SetDefaults() {
	if D.ThingSpeakURL == "" {
		D.ThingSpeakURL = "https://api.thingspeak.com/update"
	}
	if D.ThingSpeakMinInterval <= 0 {
		D.ThingSpeakMinInterval = 15 * time.Second
	}
	if D.Timeout <= 0 {
		D.Timeout = 5 * time.Second
	}
}

func (D *DashboardConfigImpl) Validate() error {
	if D.ThingSpeakEnabled() {
		if _, err := url.ParseRequestURI(D.ThingSpeakURL); err != nil {
			return &shared.ConfigError{Component: "dashboard", Field: "thingspeak_url", Value: D.ThingSpeakURL, Message: "is not a valid URL"}
		}
	}
	if D.RestEnabled() {
		if _, err := url.ParseRequestURI(D.RestEndpointURL); err != nil {
			return &shared.ConfigError{Component: "dashboard", Field: "rest_endpoint_url", Value: D.RestEndpointURL, Message: "is not a valid URL"}
		}
	}
	return nil
}

func (D *DashboardConfigImpl) ThingSpeakEnabled() bool {
	return D.ThingSpeakAPIKey != ""
}

func (D *DashboardConfigImpl) RestEnabled() bool {
	return D.RestEndpointURL != ""
}

var _ DashboardConfig = (*DashboardConfigImpl)(nil)
