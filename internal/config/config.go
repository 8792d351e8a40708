// Package config provides configuration management for monetizer using
// Viper for loading from files, environment variables and command-line
// flags.
//
// The configuration covers the preview server, the SQLite page store, the
// page file directory, compiler rendering policies, the analytics beacon
// endpoint and the export bundle settings. Values are read from
// .monetizer.yml and may be overridden with MONETIZER_ environment
// variables (e.g. MONETIZER_SERVER_PORT=9000).
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/export"
)

// Rendering policy values accepted in render.custom_code.
const (
	CustomCodeTrusted   = "trusted"
	CustomCodeSandboxed = "sandboxed"
	CustomCodeDisabled  = "disabled"
)

// Missing testimonial rating behaviours accepted in render.missing_rating
// and preview.missing_rating.
const (
	MissingRatingHide = "hide"
	MissingRatingFive = "five"
)

// DefaultAnalyticsEndpoint is the production analytics ingestion base URL.
const DefaultAnalyticsEndpoint = "https://404monetizer.com"

type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	Pages     PagesConfig     `mapstructure:"pages" yaml:"pages"`
	Render    RenderConfig    `mapstructure:"render" yaml:"render"`
	Preview   PreviewConfig   `mapstructure:"preview" yaml:"preview"`
	Analytics AnalyticsConfig `mapstructure:"analytics" yaml:"analytics"`
	Export    ExportConfig    `mapstructure:"export" yaml:"export"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Host           string   `mapstructure:"host" yaml:"host"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	// ViewRateLimit caps public /api/view requests per client per minute.
	// 0 disables the limit.
	ViewRateLimit int `mapstructure:"view_rate_limit" yaml:"view_rate_limit"`
	// TrustProxy makes the rate limiter key on X-Forwarded-For.
	TrustProxy bool `mapstructure:"trust_proxy" yaml:"trust_proxy"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type PagesConfig struct {
	Dir   string `mapstructure:"dir" yaml:"dir"`
	Watch bool   `mapstructure:"watch" yaml:"watch"`
}

type RenderConfig struct {
	CustomCode    string        `mapstructure:"custom_code" yaml:"custom_code"`
	MissingRating string        `mapstructure:"missing_rating" yaml:"missing_rating"`
	CacheEntries  int           `mapstructure:"cache_entries" yaml:"cache_entries"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

type PreviewConfig struct {
	MissingRating string `mapstructure:"missing_rating" yaml:"missing_rating"`
	LiveReload    bool   `mapstructure:"live_reload" yaml:"live_reload"`
}

type AnalyticsConfig struct {
	Endpoint    string `mapstructure:"endpoint" yaml:"endpoint"`
	DefaultPlan string `mapstructure:"default_plan" yaml:"default_plan"`
}

type ExportConfig struct {
	OutputDir string   `mapstructure:"output_dir" yaml:"output_dir"`
	Hosts     []string `mapstructure:"hosts" yaml:"hosts"`
	Schedule  string   `mapstructure:"schedule" yaml:"schedule"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

func applyDefaults(config *Config) {
	if config.Server.Port == 0 && !viper.IsSet("server.port") {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if viper.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}
	if config.Server.ViewRateLimit == 0 && !viper.IsSet("server.view_rate_limit") {
		config.Server.ViewRateLimit = 120
	}

	if config.Store.Path == "" {
		config.Store.Path = ".monetizer/pages.db"
	}

	if config.Pages.Dir == "" {
		config.Pages.Dir = "pages"
	}
	if viper.IsSet("pages.watch") {
		config.Pages.Watch = viper.GetBool("pages.watch")
	} else {
		config.Pages.Watch = true
	}

	if config.Render.CustomCode == "" {
		config.Render.CustomCode = CustomCodeTrusted
	}
	if config.Render.MissingRating == "" {
		config.Render.MissingRating = MissingRatingHide
	}
	if config.Render.CacheEntries == 0 {
		config.Render.CacheEntries = 128
	}
	if config.Render.CacheTTL == 0 {
		config.Render.CacheTTL = time.Minute
	}

	if config.Preview.MissingRating == "" {
		config.Preview.MissingRating = MissingRatingFive
	}
	if viper.IsSet("preview.live_reload") {
		config.Preview.LiveReload = viper.GetBool("preview.live_reload")
	} else {
		config.Preview.LiveReload = true
	}

	if config.Analytics.Endpoint == "" {
		config.Analytics.Endpoint = DefaultAnalyticsEndpoint
	}
	if config.Analytics.DefaultPlan == "" {
		config.Analytics.DefaultPlan = "free"
	}

	if config.Export.OutputDir == "" {
		config.Export.OutputDir = "dist"
	}
	if viper.IsSet("export.hosts") && len(config.Export.Hosts) == 0 {
		config.Export.Hosts = viper.GetStringSlice("export.hosts")
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validatePath(config.Store.Path); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := validatePath(config.Pages.Dir); err != nil {
		return fmt.Errorf("pages config: %w", err)
	}

	if err := validateRenderConfig(&config.Render, &config.Preview); err != nil {
		return fmt.Errorf("render config: %w", err)
	}

	if err := validateAnalyticsConfig(&config.Analytics); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}

	if err := validateExportConfig(&config.Export); err != nil {
		return fmt.Errorf("export config: %w", err)
	}

	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// 0 is allowed for system-assigned ports in tests
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.ViewRateLimit < 0 {
		return fmt.Errorf("view_rate_limit must not be negative")
	}

	if strings.ContainsAny(config.Host, ";&|$`()<>\"'\\ ") {
		return fmt.Errorf("host contains dangerous characters: %q", config.Host)
	}

	return nil
}

func validateRenderConfig(render *RenderConfig, preview *PreviewConfig) error {
	switch render.CustomCode {
	case CustomCodeTrusted, CustomCodeSandboxed, CustomCodeDisabled:
	default:
		return fmt.Errorf("custom_code must be one of trusted, sandboxed, disabled: %q", render.CustomCode)
	}

	for _, v := range []string{render.MissingRating, preview.MissingRating} {
		if v != MissingRatingHide && v != MissingRatingFive {
			return fmt.Errorf("missing_rating must be hide or five: %q", v)
		}
	}

	if render.CacheEntries < 0 {
		return fmt.Errorf("cache_entries must not be negative")
	}

	return nil
}

func validateAnalyticsConfig(config *AnalyticsConfig) error {
	parsed, err := url.Parse(config.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("endpoint must be http or https: %q", config.Endpoint)
	}
	if parsed.Host == "" {
		return fmt.Errorf("endpoint must have a host: %q", config.Endpoint)
	}
	if _, err := analytics.ParsePlan(config.DefaultPlan); err != nil {
		return fmt.Errorf("default_plan: %w", err)
	}
	return nil
}

func validateExportConfig(config *ExportConfig) error {
	if err := validatePath(config.OutputDir); err != nil {
		return err
	}
	if _, err := export.ParseHosts(config.Hosts); err != nil {
		return fmt.Errorf("hosts: %w", err)
	}
	if config.Schedule != "" {
		if _, err := cron.ParseStandard(config.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", config.Schedule, err)
		}
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	if strings.ContainsAny(cleanPath, ";&|$`<>\"'") {
		return fmt.Errorf("path contains dangerous characters: %s", path)
	}

	return nil
}
