package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"meross_emulator/internal/models"
)

const envPrefix = "MEROSS_EMU"

type Config struct {
	Port      string          `mapstructure:"port"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Devices   []DeviceConfig  `mapstructure:"devices"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey    string        `mapstructure:"signing_key"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	AdminUser     string        `mapstructure:"admin_user"`
	AdminPassword string        `mapstructure:"admin_password"`
}

type SimulatorConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

// MQTTConfig configures the broker bridge; an empty Broker disables it.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	QoS      byte   `mapstructure:"qos"`
}

// DeviceConfig seeds one emulated device.
type DeviceConfig struct {
	UUID          string                `mapstructure:"uuid"`
	Type          string                `mapstructure:"type"`
	Key           string                `mapstructure:"key"`
	Timezone      string                `mapstructure:"timezone"`
	BugCompatible *bool                 `mapstructure:"bug_compatible"`
	Channel       int                   `mapstructure:"channel"`
	Voltage       int                   `mapstructure:"voltage"`
	Power         int                   `mapstructure:"power"`
	Calibration   map[string]any        `mapstructure:"config"`
	ConsumptionX  []models.EnergyRecord `mapstructure:"consumptionx"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("simulator.tick", 10*time.Second)
	v.SetDefault("mqtt.client_id", "meross-emulator")
}

// Load reads the config file at path (any viper-supported format) with
// MEROSS_EMU_* environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Auth.SigningKey == "" {
		return errors.New("auth.signing_key is required")
	}
	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if d.UUID == "" {
			return fmt.Errorf("devices[%d]: uuid is required", i)
		}
		if seen[d.UUID] {
			return fmt.Errorf("devices[%d]: duplicate uuid %s", i, d.UUID)
		}
		seen[d.UUID] = true
	}
	return nil
}

// Descriptor builds the device record the emulator starts from.
// bug_compatible defaults to true.
func (d DeviceConfig) Descriptor() (models.Descriptor, error) {
	bugCompatible := true
	if d.BugCompatible != nil {
		bugCompatible = *d.BugCompatible
	}
	var calibration json.RawMessage
	if len(d.Calibration) > 0 {
		b, err := json.Marshal(d.Calibration)
		if err != nil {
			return models.Descriptor{}, fmt.Errorf("device %s: config: %w", d.UUID, err)
		}
		calibration = b
	}
	ledger := make([]models.EnergyRecord, len(d.ConsumptionX))
	copy(ledger, d.ConsumptionX)

	return models.Descriptor{
		UUID:          d.UUID,
		Type:          d.Type,
		Key:           d.Key,
		Timezone:      d.Timezone,
		BugCompatible: bugCompatible,
		Namespaces: models.Namespaces{
			Electricity: &models.ElectricityPayload{Electricity: models.Electricity{
				Channel: d.Channel,
				Voltage: d.Voltage,
				Power:   d.Power,
				Config:  calibration,
			}},
			ConsumptionX: &models.ConsumptionXPayload{ConsumptionX: ledger},
		},
	}, nil
}
