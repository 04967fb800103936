package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/stagewatch/stagewatch/infra/mqtt"
	"github.com/stagewatch/stagewatch/planning"
)

type Config struct {
	Server   ServerConfig    `json:"server"`
	Planning planning.Config `json:"planning"`
	Schedule ScheduleConfig  `json:"schedule"`
	MQTT     MQTTConfig      `json:"mqtt"`
	Metrics  MetricsConfig   `json:"metrics"`
	History  HistoryConfig   `json:"history"`
	Logging  LoggingConfig   `json:"logging"`
}

// MQTTConfig wraps the publisher settings with an enable switch; deployments
// without display hardware run API-only.
type MQTTConfig struct {
	Enabled     bool `json:"enabled"`
	mqtt.Config `json:",squash"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("SW_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sw_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	cfg.Planning.SetDefaults()
	cfg.Schedule.SetDefaults()
	cfg.History.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Planning.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.History.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
