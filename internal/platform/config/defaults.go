package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 3000,
			Mode: ModeProduction,
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			StaticDir:      "./web",
			Locale:         "zh",
			AllowedOrigins: []string{"*"},
		},
		Icon: IconConfig{
			RequiredDimension: 1024,
			Sizes:             []int{16, 32, 64, 128, 256, 512, 1024},
			Resampler:         "lanczos",
			MaxUploadBytes:    5 * 1024 * 1024,
			FieldName:         "icon",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Driver:  "memory",
			Window:  15 * time.Minute,
			Max:     100,
			Redis: RateLimitRedis{
				Prefix: "icon:ratelimit:",
			},
		},
	}
}
