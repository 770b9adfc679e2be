package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Transport TransportConfig `yaml:"transport"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	History   HistoryConfig   `yaml:"history"`
	Mock      MockConfig      `yaml:"mock"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// SerialConfig describes the port the raw sample stream arrives on.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// TransportConfig describes the serial port status lines are written to
// (typically a Bluetooth SPP port such as /dev/rfcomm0). Empty port disables it.
type TransportConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// PipelineConfig contains pipeline timing.
type PipelineConfig struct {
	Interval time.Duration `yaml:"interval"` // Minimum time between emitted readings
}

// HistoryConfig controls how many emitted readings the monitor keeps.
type HistoryConfig struct {
	MaxReadings int `yaml:"max_readings"`
}

// MockConfig contains simulated rain sensor configuration.
type MockConfig struct {
	DryLevel     float64       `yaml:"dry_level"`     // Raw reading of a dry sensor
	WetLevel     float64       `yaml:"wet_level"`     // Raw reading at the peak of a shower
	NoiseLevel   float64       `yaml:"noise_level"`   // Noise amplitude in raw units
	SpikeEvery   int           `yaml:"spike_every"`   // Emit an electrical spike every N samples (0 = never)
	ShowerPeriod time.Duration `yaml:"shower_period"` // Duration of one dry-wet-dry cycle
	SampleRate   time.Duration `yaml:"sample_rate"`   // Sample interval
}

// MQTTConfig contains optional status publishing configuration.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"` // Generated when empty
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	DeviceID    string `yaml:"device_id"`
	Encoding    string `yaml:"encoding"` // "json" or "msgpack"
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: 115200,
		},
		Transport: TransportConfig{
			Port:     "",
			BaudRate: 9600, // HC-05 default
		},
		Pipeline: PipelineConfig{
			Interval: 500 * time.Millisecond,
		},
		History: HistoryConfig{
			MaxReadings: 600, // 5 minutes at 2 readings per second
		},
		Mock: MockConfig{
			DryLevel:     3900,
			WetLevel:     700,
			NoiseLevel:   40,
			SpikeEvery:   37,
			ShowerPeriod: 2 * time.Minute,
			SampleRate:   20 * time.Millisecond,
		},
		MQTT: MQTTConfig{
			Enabled:     false,
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "rain",
			DeviceID:    "rain-sensor",
			Encoding:    "json",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads envFile (if present) into the process environment and then
// applies RAIN_* overrides on top of the configuration.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if v := os.Getenv("RAIN_SERIAL_PORT"); v != "" {
		c.Serial.Port = v
	}
	if v := os.Getenv("RAIN_TRANSPORT_PORT"); v != "" {
		c.Transport.Port = v
	}
	if v := os.Getenv("RAIN_MQTT_BROKER"); v != "" {
		c.MQTT.Broker = v
		c.MQTT.Enabled = true
	}
	if v := os.Getenv("RAIN_MQTT_DEVICE_ID"); v != "" {
		c.MQTT.DeviceID = v
	}
	if v := os.Getenv("RAIN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RAIN_INTERVAL %q: %w", v, err)
		}
		c.Pipeline.Interval = d
	}
	if v := os.Getenv("RAIN_HISTORY_MAX_READINGS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RAIN_HISTORY_MAX_READINGS %q: %w", v, err)
		}
		c.History.MaxReadings = n
	}

	c.ensureDefaults()
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate <= 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Transport.BaudRate <= 0 {
		c.Transport.BaudRate = def.Transport.BaudRate
	}

	if c.Pipeline.Interval <= 0 {
		c.Pipeline.Interval = def.Pipeline.Interval
	}
	if c.History.MaxReadings <= 0 {
		c.History.MaxReadings = def.History.MaxReadings
	}

	if c.Mock.DryLevel == 0 {
		c.Mock.DryLevel = def.Mock.DryLevel
	}
	if c.Mock.WetLevel == 0 {
		c.Mock.WetLevel = def.Mock.WetLevel
	}
	if c.Mock.ShowerPeriod <= 0 {
		c.Mock.ShowerPeriod = def.Mock.ShowerPeriod
	}
	if c.Mock.SampleRate <= 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = def.MQTT.TopicPrefix
	}
	if c.MQTT.DeviceID == "" {
		c.MQTT.DeviceID = def.MQTT.DeviceID
	}
	if c.MQTT.Encoding == "" {
		c.MQTT.Encoding = def.MQTT.Encoding
	}
}
