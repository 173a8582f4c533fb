// Package config loads envmap configuration from file, environment and defaults.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
	Fetch        FetchConfig        `yaml:"fetch" mapstructure:"fetch"`
	TablesFile   string             `yaml:"tables_file" mapstructure:"tables_file"`
	Xweather     XweatherConfig     `yaml:"xweather" mapstructure:"xweather"`
	ElevationAPI ElevationAPIConfig `yaml:"elevation_api" mapstructure:"elevation_api"`
	AQI          MapConfig          `yaml:"aqi" mapstructure:"aqi"`
	Elevation    ElevationConfig    `yaml:"elevation" mapstructure:"elevation"`
	Transit      MapConfig          `yaml:"transit" mapstructure:"transit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// FetchConfig configures remote feature source downloads.
type FetchConfig struct {
	TempDir     string  `yaml:"temp_dir" mapstructure:"temp_dir"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxMB       int64   `yaml:"max_mb" mapstructure:"max_mb"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// MaxBytes returns the download size cap, zero when unlimited.
func (c FetchConfig) MaxBytes() int64 {
	return c.MaxMB << 20
}

// Timeout returns the download timeout.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// XweatherConfig holds Xweather (Aeris) API credentials and settings.
type XweatherConfig struct {
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string  `yaml:"client_secret" mapstructure:"client_secret"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ElevationAPIConfig configures the OpenTopoData elevation service.
type ElevationAPIConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Dataset     string  `yaml:"dataset" mapstructure:"dataset"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BatchSize   int     `yaml:"batch_size" mapstructure:"batch_size"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// MapConfig configures one map artifact.
type MapConfig struct {
	Output string  `yaml:"output" mapstructure:"output"`
	Table  string  `yaml:"table" mapstructure:"table"`
	Tiles  string  `yaml:"tiles" mapstructure:"tiles"`
	Zoom   int     `yaml:"zoom" mapstructure:"zoom"`
	Lat    float64 `yaml:"lat" mapstructure:"lat"`
	Lon    float64 `yaml:"lon" mapstructure:"lon"`
}

// ElevationConfig configures the zonal elevation map.
type ElevationConfig struct {
	MapConfig `yaml:",inline" mapstructure:",squash"`
	NameField string `yaml:"name_field" mapstructure:"name_field"`
	Samples   int    `yaml:"samples" mapstructure:"samples"`
}

// Validate checks that the settings a command depends on are present.
func (c *Config) Validate(command string) error {
	var errs []string

	switch command {
	case "aqi":
		if c.Xweather.ClientID == "" {
			errs = append(errs, "xweather.client_id is required (ENVMAP_XWEATHER_CLIENT_ID)")
		}
		if c.Xweather.ClientSecret == "" {
			errs = append(errs, "xweather.client_secret is required (ENVMAP_XWEATHER_CLIENT_SECRET)")
		}
		errs = append(errs, c.AQI.validate("aqi")...)
	case "elevation":
		if c.ElevationAPI.BaseURL == "" {
			errs = append(errs, "elevation_api.base_url is required")
		}
		if c.ElevationAPI.BatchSize <= 0 {
			errs = append(errs, "elevation_api.batch_size must be positive")
		}
		if c.Elevation.Samples <= 0 {
			errs = append(errs, "elevation.samples must be positive")
		}
		errs = append(errs, c.Elevation.validate("elevation")...)
	case "transit":
		errs = append(errs, c.Transit.validate("transit")...)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (m MapConfig) validate(section string) []string {
	var errs []string
	if m.Output == "" {
		errs = append(errs, section+".output is required")
	}
	if m.Zoom < 0 || m.Zoom > 20 {
		errs = append(errs, section+".zoom must be between 0 and 20")
	}
	return errs
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENVMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fetch.temp_dir", "/tmp/envmap")
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.user_agent", "envmap-cli/1.0")
	v.SetDefault("fetch.max_mb", 512)
	v.SetDefault("fetch.rate_limit", 0.0)
	v.SetDefault("tables_file", "")
	v.SetDefault("xweather.client_id", "")
	v.SetDefault("xweather.client_secret", "")
	v.SetDefault("xweather.base_url", "https://api.aerisapi.com")
	v.SetDefault("xweather.timeout_secs", 10)
	v.SetDefault("xweather.rate_limit", 5)
	v.SetDefault("elevation_api.base_url", "https://api.opentopodata.org")
	v.SetDefault("elevation_api.dataset", "srtm30m")
	v.SetDefault("elevation_api.timeout_secs", 10)
	v.SetDefault("elevation_api.batch_size", 100)
	v.SetDefault("elevation_api.rate_limit", 1)
	v.SetDefault("aqi.output", "real_time_aqi_map.html")
	v.SetDefault("aqi.table", "aqi")
	v.SetDefault("aqi.tiles", "openstreetmap")
	v.SetDefault("aqi.zoom", 5)
	v.SetDefault("aqi.lat", 23.0)
	v.SetDefault("aqi.lon", 82.0)
	v.SetDefault("elevation.output", "mean_elevation_map.html")
	v.SetDefault("elevation.table", "elevation")
	v.SetDefault("elevation.tiles", "openstreetmap")
	v.SetDefault("elevation.zoom", 10)
	v.SetDefault("elevation.name_field", "County_Nam")
	v.SetDefault("elevation.samples", 64)
	v.SetDefault("transit.output", "transit_map.html")
	v.SetDefault("transit.tiles", "cartodb_positron")
	v.SetDefault("transit.zoom", 12)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
