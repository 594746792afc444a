// Package config loads commutemap settings from an optional YAML file and
// COMMUTEMAP_ environment variables, and configures the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zalepa/commutemap/census"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the two input datasets. Paths may be URLs.
type DataConfig struct {
	Boundaries    string   `yaml:"boundaries" mapstructure:"boundaries"`
	Travel        string   `yaml:"travel" mapstructure:"travel"`
	BoundariesURL string   `yaml:"boundaries_url" mapstructure:"boundaries_url"`
	TravelURL     string   `yaml:"travel_url" mapstructure:"travel_url"`
	Categories    []string `yaml:"categories" mapstructure:"categories"`
}

// RenderConfig controls map and chart output.
type RenderConfig struct {
	Width       int    `yaml:"width" mapstructure:"width"`
	Height      int    `yaml:"height" mapstructure:"height"`
	ChartWidth  int    `yaml:"chart_width" mapstructure:"chart_width"`
	ChartHeight int    `yaml:"chart_height" mapstructure:"chart_height"`
	Designated  string `yaml:"designated" mapstructure:"designated"`
	Palette     string `yaml:"palette" mapstructure:"palette"`
	Labels      bool   `yaml:"labels" mapstructure:"labels"`
}

// ServerConfig configures the dashboard server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// FetchConfig configures remote dataset retrieval.
type FetchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the HTTP timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from commutemap.yaml (if present), environment
// variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("commutemap")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMMUTEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.boundaries", "data/geoJson/Community_Boundaries.geojson")
	v.SetDefault("data.travel", "data/Modes_of_Travel.csv")
	v.SetDefault("data.boundaries_url", "")
	v.SetDefault("data.travel_url", "")
	v.SetDefault("data.categories", categoryNames(census.Categories))
	v.SetDefault("render.width", 760)
	v.SetDefault("render.height", 700)
	v.SetDefault("render.chart_width", 1024)
	v.SetDefault("render.chart_height", 768)
	v.SetDefault("render.designated", string(census.Bicycle))
	v.SetDefault("render.palette", "")
	v.SetDefault("render.labels", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// Validate checks the settings a command depends on.
func (c *Config) Validate() error {
	var errs []string
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, "render.width and render.height must be positive")
	}
	if c.Render.ChartWidth <= 0 || c.Render.ChartHeight <= 0 {
		errs = append(errs, "render.chart_width and render.chart_height must be positive")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 0 and 65535")
	}
	if c.Fetch.TimeoutSecs <= 0 {
		errs = append(errs, "fetch.timeout_secs must be positive")
	}
	if _, err := c.CategoryList(); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := c.DesignatedCategory(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// CategoryList returns data.categories as an ordered category list.
func (c *Config) CategoryList() ([]census.Category, error) {
	if len(c.Data.Categories) == 0 {
		return census.Categories, nil
	}
	out := make([]census.Category, 0, len(c.Data.Categories))
	for _, name := range c.Data.Categories {
		cat, ok := census.ParseCategory(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, eris.Errorf("data.categories: unknown category %q", name)
		}
		out = append(out, cat)
	}
	return out, nil
}

// DesignatedCategory returns render.designated as a category.
func (c *Config) DesignatedCategory() (census.Category, error) {
	cat, ok := census.ParseCategory(strings.ToLower(strings.TrimSpace(c.Render.Designated)))
	if !ok {
		return "", eris.Errorf("render.designated: unknown category %q", c.Render.Designated)
	}
	return cat, nil
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

func categoryNames(cats []census.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}
