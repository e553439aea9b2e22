package config

import (
	"time"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Web       WebConfig       `yaml:"web"`
	Icon      IconConfig      `yaml:"icon"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
	// Mode is "production" or "development"; error details are exposed only in development.
	Mode string `yaml:"mode"`
}

// IsDevelopment reports whether internal error detail may be returned to clients.
func (s ServerConfig) IsDevelopment() bool {
	return s.Mode == ModeDevelopment
}

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	StaticDir      string   `yaml:"static_dir"`
	Locale         string   `yaml:"locale"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// IconConfig 图标生成配置
type IconConfig struct {
	RequiredDimension int    `yaml:"required_dimension"`
	Sizes             []int  `yaml:"sizes"`
	Resampler         string `yaml:"resampler"`
	MaxUploadBytes    int64  `yaml:"max_upload_bytes"`
	FieldName         string `yaml:"field_name"`
	// Concurrency caps sizes rendered in parallel per request; 0 means GOMAXPROCS.
	Concurrency int `yaml:"concurrency"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool           `yaml:"enabled"`
	Driver  string         `yaml:"driver"`
	Window  time.Duration  `yaml:"window"`
	Max     int            `yaml:"max"`
	Redis   RateLimitRedis `yaml:"redis,omitempty"`
}

type RateLimitRedis struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}
