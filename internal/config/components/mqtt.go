package components

import (
	"fmt"
	"strings"
	"time"

	"yard-tracker/internal/config/shared"
	"yard-tracker/internal/interfaces"
)

type MQTTConfig interface {
	interfaces.Config
	GetUrl() string
}

type MQTTConfigImpl struct {
	Host                 string        `json:"host"`
	Port                 int           `json:"port"`
	Username             string        `json:"username"`
	Password             string        `json:"password"`
	ClientID             string        `json:"client_id"`
	BaseTopic            string        `json:"base_topic"`
	QoS                  byte          `json:"qos"`
	KeepAlive            time.Duration `json:"keep_alive"`
	AutoReconnect        bool          `json:"auto_reconnect"`
	MaxReconnectInterval time.Duration `json:"max_reconnect_interval"`
	CleanSession         bool          `json:"clean_session"`
	ConnectTimeout       time.Duration `json:"connect_timeout"`
	RetryInitial         time.Duration `json:"retry_initial"`
	RetryMax             time.Duration `json:"retry_max"`

	// rawQoS keeps MQTT_QOS as read so out-of-range values fail validation
	// instead of wrapping when narrowed to a byte.
	rawQoS int
}

func NewMQTTConfig() MQTTConfigImpl {
	config := MQTTConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (M *MQTTConfigImpl) Load() {
	M.Host = shared.GetEnv("MQTT_HOST")
	M.Port = shared.GetEnvAsInt("MQTT_PORT")
	M.Username = shared.GetEnv("MQTT_USERNAME")
	M.Password = shared.GetEnv("MQTT_PASSWORD")
	M.ClientID = shared.GetEnv("MQTT_CLIENT_ID")
	M.BaseTopic = shared.GetEnv("MQTT_BASE_TOPIC")
	M.rawQoS = shared.GetEnvAsIntDefault("MQTT_QOS", 1)
	if M.rawQoS >= 0 && M.rawQoS <= 2 {
		M.QoS = byte(M.rawQoS)
	}
	M.KeepAlive = shared.GetEnvAsDuration("MQTT_KEEP_ALIVE")
	M.AutoReconnect = shared.GetEnvAsBool("MQTT_AUTO_RECONNECT", true)
	M.MaxReconnectInterval = shared.GetEnvAsDuration("MQTT_MAX_RECONNECT_INTERVAL")
	M.CleanSession = shared.GetEnvAsBool("MQTT_CLEAN_SESSION", true)
	M.ConnectTimeout = shared.GetEnvAsDuration("MQTT_CONNECT_TIMEOUT")
	M.RetryInitial = shared.GetEnvAsDuration("MQTT_RETRY_INITIAL")
	M.RetryMax = shared.GetEnvAsDuration("MQTT_RETRY_MAX")
}

func (M *MQTTConfigImpl) SetDefaults() {
	if M.Host == "" {
		M.Host = "localhost"
	}
	if M.Port == 0 {
		M.Port = 1883
	}
	if M.ClientID == "" {
		M.ClientID = "yard-tracker"
	}
	if M.BaseTopic == "" {
		M.BaseTopic = "patio/motos"
	}
	if M.KeepAlive == 0 {
		M.KeepAlive = 60 * time.Second
	}
	if M.MaxReconnectInterval == 0 {
		M.MaxReconnectInterval = 10 * time.Second
	}
	if M.ConnectTimeout == 0 {
		M.ConnectTimeout = 30 * time.Second
	}
	if M.RetryInitial == 0 {
		M.RetryInitial = time.Second
	}
	if M.RetryMax == 0 {
		M.RetryMax = 30 * time.Second
	}

	M.BaseTopic = strings.TrimSuffix(M.BaseTopic, "/")
}

func (M *MQTTConfigImpl) Validate() error {
	if M.Host == "" {
		return &shared.ConfigError{Component: "mqtt", Field: "host", Message: "is required"}
	}

	if M.Port <= 0 || M.Port > 65535 {
		return &shared.ConfigError{Component: "mqtt", Field: "port", Value: M.Port, Message: "must be between 1 and 65535"}
	}

	if M.QoS > 2 || M.rawQoS < 0 || M.rawQoS > 2 {
		return &shared.ConfigError{Component: "mqtt", Field: "qos", Value: M.rawQoS, Message: "must be 0, 1, or 2"}
	}

	if M.KeepAlive < 0 {
		return &shared.ConfigError{Component: "mqtt", Field: "keep_alive", Value: M.KeepAlive, Message: "cannot be negative"}
	}

	if M.RetryMax < M.RetryInitial {
		return &shared.ConfigError{Component: "mqtt", Field: "retry_max", Value: M.RetryMax, Message: "must not be shorter than retry_initial"}
	}

	return nil
}

func (M *MQTTConfigImpl) GetUrl() string {
	return fmt.Sprintf("tcp://%s:%d", M.Host, M.Port)
}

var _ MQTTConfig = (*MQTTConfigImpl)(nil)
