package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, "", cfg.Transport.Port)
	assert.Equal(t, 9600, cfg.Transport.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.Pipeline.Interval)
	assert.Equal(t, 600, cfg.History.MaxReadings)
	assert.Equal(t, float64(3900), cfg.Mock.DryLevel)
	assert.Equal(t, float64(700), cfg.Mock.WetLevel)
	assert.Equal(t, 20*time.Millisecond, cfg.Mock.SampleRate)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "json", cfg.MQTT.Encoding)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 57600

transport:
  port: "/dev/rfcomm0"

pipeline:
  interval: 1s

history:
  max_readings: 120

mock:
  dry_level: 4000
  wet_level: 500
  noise_level: 10
  shower_period: 30s

mqtt:
  enabled: true
  broker: "tcp://broker:1883"
  device_id: "garden"
  encoding: "msgpack"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, "/dev/rfcomm0", cfg.Transport.Port)
	assert.Equal(t, 9600, cfg.Transport.BaudRate) // default
	assert.Equal(t, time.Second, cfg.Pipeline.Interval)
	assert.Equal(t, 120, cfg.History.MaxReadings)
	assert.Equal(t, float64(4000), cfg.Mock.DryLevel)
	assert.Equal(t, float64(500), cfg.Mock.WetLevel)
	assert.Equal(t, 30*time.Second, cfg.Mock.ShowerPeriod)
	assert.Equal(t, 20*time.Millisecond, cfg.Mock.SampleRate) // default
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "garden", cfg.MQTT.DeviceID)
	assert.Equal(t, "rain", cfg.MQTT.TopicPrefix) // default
	assert.Equal(t, "msgpack", cfg.MQTT.Encoding)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_NonPositiveMockDurations(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
mock:
  sample_rate: -20ms
  shower_period: -1s
`
	require.NoError(t, os.WriteFile(filename, []byte(yamlContent), 0644))

	cfg, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, Default().Mock.SampleRate, cfg.Mock.SampleRate)
	assert.Equal(t, Default().Mock.ShowerPeriod, cfg.Mock.ShowerPeriod)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB1"
	cfg.Pipeline.Interval = 750 * time.Millisecond

	filename := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.Save(filename))

	loaded, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", loaded.Serial.Port)
	assert.Equal(t, 750*time.Millisecond, loaded.Pipeline.Interval)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("RAIN_SERIAL_PORT", "/dev/ttyS9")
	t.Setenv("RAIN_TRANSPORT_PORT", "/dev/rfcomm1")
	t.Setenv("RAIN_MQTT_BROKER", "tcp://mqtt.local:1883")
	t.Setenv("RAIN_INTERVAL", "250ms")
	t.Setenv("RAIN_HISTORY_MAX_READINGS", "42")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(""))

	assert.Equal(t, "/dev/ttyS9", cfg.Serial.Port)
	assert.Equal(t, "/dev/rfcomm1", cfg.Transport.Port)
	assert.Equal(t, "tcp://mqtt.local:1883", cfg.MQTT.Broker)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.Interval)
	assert.Equal(t, 42, cfg.History.MaxReadings)
}

func TestApplyEnv_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RAIN_MQTT_DEVICE_ID=roof\n"), 0644))
	t.Setenv("RAIN_MQTT_DEVICE_ID", "")
	require.NoError(t, os.Unsetenv("RAIN_MQTT_DEVICE_ID"))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envFile))
	assert.Equal(t, "roof", cfg.MQTT.DeviceID)
}

func TestApplyEnv_MissingEnvFile(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestApplyEnv_InvalidInterval(t *testing.T) {
	t.Setenv("RAIN_INTERVAL", "soon")

	cfg := Default()
	assert.Error(t, cfg.ApplyEnv(""))
}
