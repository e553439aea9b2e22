package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths lists the files tried in order when no explicit path is configured.
var DefaultSearchPaths = []string{".config.yaml", "config.yaml"}

// Loader reads configuration from defaults, an optional YAML file and the environment.
type Loader struct {
	useDotEnv bool
	path      string
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a loader that searches DefaultSearchPaths and reads a .env file if present.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		lookupEnv: os.LookupEnv,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath pins the YAML file to read. A missing pinned file is an error.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithEnv overrides environment lookup (useful for tests).
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	if lookup != nil {
		l.lookupEnv = lookup
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load merges defaults, the YAML file and environment overrides, then validates the result.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("读取 .env 文件失败: %w", err)
		}
	}

	cfg := DefaultConfig()
	path, err := l.readFile(cfg)
	if err != nil {
		return nil, err
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

func (l *Loader) readFile(cfg *Config) (string, error) {
	candidates := DefaultSearchPaths
	if l.path != "" {
		candidates = []string{l.path}
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && l.path == "" {
				continue
			}
			return "", fmt.Errorf("读取配置文件 %s 失败: %w", candidate, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return "", fmt.Errorf("解析配置文件 %s 失败: %w", candidate, err)
		}
		return candidate, nil
	}
	return "defaults", nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := l.lookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := l.lookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("环境变量 %s 不是整数: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("ICON_SERVER_IP", &cfg.Server.IP)
	str("ICON_SERVER_MODE", &cfg.Server.Mode)
	str("ICON_LOG_LEVEL", &cfg.Log.Level)
	str("ICON_LOG_DIR", &cfg.Log.Dir)
	str("ICON_STATIC_DIR", &cfg.Web.StaticDir)
	str("ICON_LOCALE", &cfg.Web.Locale)
	str("ICON_RESAMPLER", &cfg.Icon.Resampler)
	str("ICON_RATE_LIMIT_DRIVER", &cfg.RateLimit.Driver)
	str("ICON_REDIS_ADDR", &cfg.RateLimit.Redis.Addr)
	str("ICON_REDIS_PASSWORD", &cfg.RateLimit.Redis.Password)

	if err := num("ICON_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if err := num("ICON_RATE_LIMIT_MAX", &cfg.RateLimit.Max); err != nil {
		return err
	}
	if err := num("ICON_CONCURRENCY", &cfg.Icon.Concurrency); err != nil {
		return err
	}
	return nil
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	switch cfg.Server.Mode {
	case ModeProduction, ModeDevelopment:
	default:
		return fmt.Errorf("invalid server mode: %q", cfg.Server.Mode)
	}

	if cfg.Icon.RequiredDimension <= 0 {
		return fmt.Errorf("invalid required dimension: %d", cfg.Icon.RequiredDimension)
	}
	if len(cfg.Icon.Sizes) == 0 {
		return fmt.Errorf("icon sizes must not be empty")
	}
	seen := make(map[int]struct{}, len(cfg.Icon.Sizes))
	for _, size := range cfg.Icon.Sizes {
		if size <= 0 {
			return fmt.Errorf("invalid icon size: %d", size)
		}
		if _, dup := seen[size]; dup {
			return fmt.Errorf("duplicate icon size: %d", size)
		}
		seen[size] = struct{}{}
	}
	switch cfg.Icon.Resampler {
	case "lanczos", "nfnt":
	default:
		return fmt.Errorf("unsupported resampler: %q", cfg.Icon.Resampler)
	}
	if cfg.Icon.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid max upload bytes: %d", cfg.Icon.MaxUploadBytes)
	}
	if cfg.Icon.FieldName == "" {
		return fmt.Errorf("upload field name must not be empty")
	}
	if cfg.Icon.Concurrency < 0 {
		return fmt.Errorf("invalid icon concurrency: %d", cfg.Icon.Concurrency)
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Window <= 0 || cfg.RateLimit.Max <= 0 {
			return fmt.Errorf("invalid rate limit: %d per %s", cfg.RateLimit.Max, cfg.RateLimit.Window)
		}
		switch cfg.RateLimit.Driver {
		case "memory":
		case "redis":
			if cfg.RateLimit.Redis.Addr == "" {
				return fmt.Errorf("redis rate limit driver requires addr")
			}
		default:
			return fmt.Errorf("unsupported rate limit driver: %q", cfg.RateLimit.Driver)
		}
	}
	return nil
}
