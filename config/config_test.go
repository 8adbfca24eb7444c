package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sensorlog/core/model"
	"github.com/kilianp07/sensorlog/infra/mqtt"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `mqtt:
  broker: "tcp://localhost:1883"
  client_id: "WXX_vm"
  username: "duang"
  password: "duangkey"
  qos: 1
  keep_alive_seconds: 30
topics:
  - "home/sensor/light"
  - "home/sensor/soil"
logging:
  level: "debug"
  format: "json"
metrics:
  prometheus_enabled: true
  prometheus_addr: ":9200"
`)

	cfg, err := Load(path, noEnvFile(t))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "WXX_vm"},
		{"username", cfg.MQTT.Username, "duang"},
		{"password", cfg.MQTT.Password, "duangkey"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"keep_alive", cfg.MQTT.KeepAliveSeconds, 30},
		{"subscribe_timeout default", cfg.MQTT.SubscribeTimeoutSeconds, 10},
		{"topics", len(cfg.Topics), 2},
		{"first topic", cfg.Topics[0], "home/sensor/light"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format", cfg.Logging.Format, "json"},
		{"logging.output", cfg.Logging.Output, "stderr"},
		{"metrics.enabled", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.addr", cfg.Metrics.PrometheusAddr, ":9200"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"mqtt": {"broker": "ssl://broker.emqx.io:8883"}, "logging": {"output": "stdout"}}`)
	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "ssl://broker.emqx.io:8883", cfg.MQTT.Broker)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, mqtt.DefaultBroker, cfg.MQTT.Broker)
	assert.NotEmpty(t, cfg.MQTT.ClientID)
	assert.Equal(t, model.DefaultTopics(), cfg.Topics)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.PrometheusEnabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SENSORLOG_MQTT__PASSWORD", "secret")
	t.Setenv("SENSORLOG_MQTT__QOS", "2")
	t.Setenv("SENSORLOG_TOPICS", "home/sensor/pressure, home/sensor/altitude")
	path := writeFile(t, "config.yaml", "mqtt:\n  password: \"file\"\n")

	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.MQTT.Password)
	assert.Equal(t, byte(2), cfg.MQTT.QoS)
	assert.Equal(t, model.TopicList{"home/sensor/pressure", "home/sensor/altitude"}, cfg.Topics)
}

func TestLoadEnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "SENSORLOG_MQTT__USERNAME=from-dotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("SENSORLOG_MQTT__USERNAME") })

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.MQTT.Username)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", ""), noEnvFile(t))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"), noEnvFile(t))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.yaml", "mqtt:\n  broker: \"http://nope\"\n"), noEnvFile(t))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.yaml", "topics: [\"a\", \"a\"]\n"), noEnvFile(t))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.yaml", "logging:\n  level: \"loud\"\n"), noEnvFile(t))
	assert.Error(t, err)
}

func TestLoadPortlessBroker(t *testing.T) {
	path := writeFile(t, "config.yaml", "mqtt:\n  broker: \"mqtt://broker.emqx.io\"\n")
	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "mqtt://broker.emqx.io:1883", cfg.MQTT.Broker)
}
