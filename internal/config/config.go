package config

import (
	"fmt"

	"github.com/joho/godotenv"

	"yard-tracker/internal/config/components"
	"yard-tracker/internal/interfaces"
)

type Config struct {
	MQTT        components.MQTTConfigImpl        `json:"mqtt"`
	Postgres    components.PostgresConfigImpl    `json:"postgres"`
	InfluxDB    components.InfluxConfigImpl      `json:"influxdb"`
	Logger      components.LoggerConfigImpl      `json:"logger"`
	Service     components.ServiceConfigImpl     `json:"service"`
	Positioning components.PositioningConfigImpl `json:"positioning"`
	Dashboard   components.DashboardConfigImpl   `json:"dashboard"`
}

// Load reads an optional .env file, then the environment, applies defaults
// and validates every component.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		MQTT:        components.NewMQTTConfig(),
		Postgres:    components.NewPostgresConfig(),
		InfluxDB:    components.NewInfluxConfig(),
		Logger:      components.NewLoggerConfig(),
		Service:     components.NewServiceConfig(),
		Positioning: components.NewPositioningConfig(),
		Dashboard:   components.NewDashboardConfig(),
	}

	return config, config.validate()
}

func (c *Config) validate() error {
	checks := []interfaces.Config{
		&c.MQTT,
		&c.InfluxDB,
		&c.Logger,
		&c.Service,
		&c.Positioning,
		&c.Dashboard,
	}
	if c.Positioning.AnchorSource == components.AnchorSourcePostgres {
		checks = append(checks, &c.Postgres)
	}

	for _, check := range checks {
		if err := check.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return nil
}
