package greenboard

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

const (
	DefDashboardURL    = "http://localhost:9090"
	DefTLSVerification = false
	DefMQTTClientID    = "greenboard-cli"
)

// Config is the CLI configuration file.
type Config struct {
	Dashboard DashboardConfig `toml:"dashboard"`
	MQTT      MQTTConfig      `toml:"mqtt"`
}

type DashboardConfig struct {
	URL             string `toml:"url"`
	TLSVerification bool   `toml:"tls_verification"`
	ViewID          string `toml:"view_id"`
}

type MQTTConfig struct {
	URL       string        `toml:"url"`
	ClientID  string        `toml:"client_id"`
	Username  string        `toml:"username"`
	Password  string        `toml:"password"`
	DomainID  string        `toml:"domain_id"`
	ChannelID string        `toml:"channel_id"`
	QoS       uint8         `toml:"qos"`
	Timeout   time.Duration `toml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		Dashboard: DashboardConfig{
			URL:             DefDashboardURL,
			TLSVerification: DefTLSVerification,
		},
		MQTT: MQTTConfig{
			ClientID: DefMQTTClientID,
			QoS:      1,
			Timeout:  30 * time.Second,
		},
	}
}

// LoadConfig reads path over the defaults. Keys absent from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return cfg, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := tree.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}
