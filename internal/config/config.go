package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	API           APIConfig        `json:"api"`
	LogConfig     logger.LogConfig `json:"log_config"`
	ArtifactStore StoreConfig      `json:"artifact_store"`
	Schedule      ScheduleConfig   `json:"schedule"`
	Serve         ServeConfig      `json:"serve"`
}

type APIConfig struct {
	BaseURL        string       `json:"base_url"`
	APIKey         string       `json:"api_key"`
	PageSize       int          `json:"page_size"`
	TimeoutSeconds int          `json:"timeout_seconds"`
	Filters        FilterConfig `json:"filters"`
}

// FilterConfig carries optional API filter IDs per endpoint. Filters let the
// instance strip PII fields and include hidden ones; empty means server default.
type FilterConfig struct {
	Questions string `json:"questions"`
	Answers   string `json:"answers"`
	Users     string `json:"users"`
}

type StoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ScheduleConfig struct {
	Spec string `json:"spec"`
}

type ServeConfig struct {
	Port        int      `json:"port"`
	CORSOrigins []string `json:"cors_origins"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is required")
	}
	if cfg.API.APIKey == "" {
		return nil, fmt.Errorf("api.api_key is required")
	}
	if cfg.API.PageSize == 0 {
		cfg.API.PageSize = 100
	}
	if cfg.API.PageSize < 1 || cfg.API.PageSize > 100 {
		return nil, fmt.Errorf("api.page_size must be between 1 and 100")
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 30
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.ArtifactStore.Type == "" {
		cfg.ArtifactStore.Type = "local"
		cfg.ArtifactStore.Data = map[string]interface{}{"dir": "."}
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = 8080
	}
	return &cfg, nil
}
