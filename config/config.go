package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/sensorlog/core/model"
	"github.com/kilianp07/sensorlog/infra/metrics"
	"github.com/kilianp07/sensorlog/infra/mqtt"
)

// EnvPrefix prefixes every environment override, e.g.
// SENSORLOG_MQTT__PASSWORD sets mqtt.password.
const EnvPrefix = "SENSORLOG_"

// DefaultEnvFile is loaded into the environment when present.
const DefaultEnvFile = ".env"

type Config struct {
	MQTT    mqtt.Config     `json:"mqtt"`
	Topics  model.TopicList `json:"topics"`
	Logging LoggingConfig   `json:"logging"`
	Metrics metrics.Config  `json:"metrics"`
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment overrides apply. Each envFiles entry (".env" when
// none is given) is loaded into the process environment if it exists;
// variables already set take precedence.
func Load(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if err := loadEnvFile(f); err != nil {
			return nil, err
		}
	}

	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps SENSORLOG_MQTT__CLIENT_ID to mqtt.client_id. SENSORLOG_TOPICS
// is read as a comma separated list.
func envKey(key, value string) (string, any) {
	k := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	k = strings.ReplaceAll(k, "__", ".")
	if k == "topics" {
		var topics []string
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
		return k, topics
	}
	return k, value
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	c.MQTT.SetDefaults()
	if len(c.Topics) == 0 {
		c.Topics = model.DefaultTopics()
	}
	c.Logging.SetDefaults()
	c.Metrics.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Topics.Validate(); err != nil {
		return fmt.Errorf("topics: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}
