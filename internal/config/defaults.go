package config

import "strings"

// GetDefaultConfig returns a Config with every field set to its default,
// used when no configuration file is present.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in any unspecified configuration fields with
// sensible defaults. Zero values (0, "", false) are replaced; explicit
// values are preserved.
func ApplyDefaults(cfg *Config) {
	applyCacheDefaults(&cfg.Cache)
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applyServeDefaults(&cfg.Serve)
}

func applyCacheDefaults(cfg *CacheConfig) {
	if cfg.MapPath == "" && cfg.Path != "" {
		cfg.MapPath = cfg.Path + ".map"
	}
	if cfg.ZeroCheckMode == "" {
		cfg.ZeroCheckMode = "heuristic"
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9091
	}
}

func applyServeDefaults(cfg *ServeConfig) {
	if cfg.Listen == "" {
		cfg.Listen = "127.0.0.1:10809"
	}
}
