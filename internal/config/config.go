package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is read once at startup and injected; nothing mutates it afterwards.
type Config struct {
	Port           string `json:"port" yaml:"port"`
	APIMasterKey   string `json:"api_master_key" yaml:"api_master_key"`
	UpstreamURL    string `json:"upstream_url" yaml:"upstream_url"`
	UserAgent      string `json:"user_agent" yaml:"user_agent"`
	DebugEnabled   bool   `json:"debug_enabled" yaml:"debug_enabled"`
	RequestTimeout int    `json:"request_timeout" yaml:"request_timeout"`
}

const (
	// DefaultAPIMasterKey is the fallback auth key when none is configured.
	DefaultAPIMasterKey = "sk-hackaigc-free"

	defaultPort           = "8787"
	defaultUpstreamURL    = "https://chat.hackaigc.com"
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	defaultRequestTimeout = 300
)

// Load reads config.json/config.yaml (optional when no explicit path is
// given), applies environment overrides, then defaults.
func Load(path string) (*Config, error) {
	cfg := Config{}

	resolved, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if resolved != "" {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		switch ext := strings.ToLower(filepath.Ext(resolved)); ext {
		case ".json":
			if err := json.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config json: %w", err)
			}
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config yaml: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported config extension: %s", ext)
		}
	}

	applyEnv(&cfg)
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// resolveConfigPath returns the explicit path as-is, probes the usual
// candidates otherwise, and returns "" when nothing is configured. A keyless
// default run is valid for this shim.
func resolveConfigPath(path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config not found: %s", path)
		}
		return path, nil
	}
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// applyEnv lets deployment environments override file values, which keeps the
// master key out of checked-in config files.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("API_MASTER_KEY"); v != "" {
		cfg.APIMasterKey = v
	}
	if v := os.Getenv("UPSTREAM_URL"); v != "" {
		cfg.UpstreamURL = v
	}
	if v := os.Getenv("USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("DEBUG_ENABLED"); v != "" {
		cfg.DebugEnabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeout = n
		}
	}
}

func ApplyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.APIMasterKey == "" {
		cfg.APIMasterKey = DefaultAPIMasterKey
		slog.Warn("使用默认 API Key，请通过 api_master_key 或 API_MASTER_KEY 设置专属密钥")
	}
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = defaultUpstreamURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
}
