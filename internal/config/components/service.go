package components

import (
	"time"

	"yard-tracker/internal/config/shared"
	"yard-tracker/internal/interfaces"
)

type ServiceConfig interface {
	interfaces.Config
}

type ServiceConfigImpl struct {
	Name                   string        `json:"name"`
	Version                string        `json:"version"`
	DeviceID               string        `json:"device_id"`
	PublishInterval        time.Duration `json:"publish_interval"`
	SimulationMode         bool          `json:"simulation_mode"`
	SimulationStepInterval time.Duration `json:"simulation_step_interval"`
	HTTPAddr               string        `json:"http_addr"`
}

func NewServiceConfig() ServiceConfigImpl {
	config := ServiceConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (S *ServiceConfigImpl) Load() {
	S.Name = shared.GetEnv("SERVICE_NAME")
	S.Version = shared.GetEnv("SERVICE_VERSION")
	S.DeviceID = shared.GetEnv("DEVICE_ID")
	S.PublishInterval = shared.GetEnvAsDuration("PUBLISH_INTERVAL")
	S.SimulationMode = shared.GetEnvAsBool("SIMULATION_MODE", true)
	S.SimulationStepInterval = shared.GetEnvAsDuration("SIMULATION_STEP_INTERVAL")
	S.HTTPAddr = shared.GetEnv("HTTP_ADDR")
}

func (S *ServiceConfigImpl) SetDefaults() {
	if S.Name == "" {
		S.Name = "yard-tracker"
	}
	if S.Version == "" {
		S.Version = "1.0.0"
	}
	if S.DeviceID == "" {
		S.DeviceID = "moto_simulator"
	}
	if S.PublishInterval <= 0 {
		S.PublishInterval = 5 * time.Second
	}
	if S.SimulationStepInterval <= 0 {
		S.SimulationStepInterval = 3 * time.Second
	}
	if S.HTTPAddr == "" {
		S.HTTPAddr = ":8080"
	}
}

func (S *ServiceConfigImpl) Validate() error {
	if S.Name == "" {
		return &shared.ConfigError{Component: "service", Field: "name", Message: "is required"}
	}

	if S.DeviceID == "" {
		return &shared.ConfigError{Component: "service", Field: "device_id", Message: "is required"}
	}

	if S.PublishInterval <= 0 {
		return &shared.ConfigError{Component: "service", Field: "publish_interval", Value: S.PublishInterval, Message: "must be greater than 0"}
	}

	if S.SimulationStepInterval <= 0 {
		return &shared.ConfigError{Component: "service", Field: "simulation_step_interval", Value: S.SimulationStepInterval, Message: "must be greater than 0"}
	}

	return nil
}

var _ ServiceConfig = (*ServiceConfigImpl)(nil)
