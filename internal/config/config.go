package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Simplici0/bakecost/internal/labels"
)

const envPrefix = "BAKECOST"

// Config holds application configuration sourced from an optional YAML file,
// a local .env file and BAKECOST_* environment variables.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Labels  LabelsConfig  `mapstructure:"labels"`
	Seed    SeedConfig    `mapstructure:"seed"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// PricingConfig carries the defaults applied when a request omits a value.
type PricingConfig struct {
	DefaultProfitMargin      float64 `mapstructure:"default_profit_margin"`
	DefaultMonthlyProduction int     `mapstructure:"default_monthly_production"`
	CurrencySymbol           string  `mapstructure:"currency_symbol"`
}

// LabelsConfig describes the sheet and wording used for label printing.
type LabelsConfig struct {
	PageWidthMM        float64 `mapstructure:"page_width_mm"`
	PageHeightMM       float64 `mapstructure:"page_height_mm"`
	IngredientsCaption string  `mapstructure:"ingredients_caption"`
	ExpiryCaption      string  `mapstructure:"expiry_caption"`
	FontPath           string  `mapstructure:"font_path"`
	Borders            bool    `mapstructure:"borders"`
}

// SeedConfig names the store created on startup. Empty code skips seeding.
type SeedConfig struct {
	StoreCode string `mapstructure:"store_code"`
	StoreName string `mapstructure:"store_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.path", "./bakecost.db")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("pricing.default_profit_margin", 30.0)
	v.SetDefault("pricing.default_monthly_production", 1)
	v.SetDefault("pricing.currency_symbol", labels.DefaultOptions.CurrencySymbol)
	v.SetDefault("labels.page_width_mm", labels.A4.Width)
	v.SetDefault("labels.page_height_mm", labels.A4.Height)
	v.SetDefault("labels.ingredients_caption", labels.DefaultOptions.IngredientsCaption)
	v.SetDefault("labels.expiry_caption", labels.DefaultOptions.ExpiryCaption)
	v.SetDefault("labels.font_path", "")
	v.SetDefault("labels.borders", true)
	v.SetDefault("seed.store_code", "")
	v.SetDefault("seed.store_name", "")
}

// Load reads configuration. path may be empty or point at a missing file.
func Load(path string) (Config, error) {
	// Best-effort: load local dev environment variables.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}

func (c Config) validate() error {
	if m := c.Pricing.DefaultProfitMargin; m < 0 || m >= 100 {
		return fmt.Errorf("pricing.default_profit_margin must be in [0, 100), got %v", m)
	}
	if c.Pricing.DefaultMonthlyProduction <= 0 {
		return fmt.Errorf("pricing.default_monthly_production must be positive, got %d", c.Pricing.DefaultMonthlyProduction)
	}
	if c.Labels.PageWidthMM <= 0 || c.Labels.PageHeightMM <= 0 {
		return fmt.Errorf("labels page size must be positive, got %vx%v", c.Labels.PageWidthMM, c.Labels.PageHeightMM)
	}
	return nil
}

// IsDev reports whether the app runs in the development environment.
func (c Config) IsDev() bool {
	return c.App.Env == "" || c.App.Env == "dev"
}

// PageSize is the label sheet size.
func (c Config) PageSize() labels.PageSize {
	return labels.PageSize{Width: c.Labels.PageWidthMM, Height: c.Labels.PageHeightMM}
}

// LabelOptions is the wording used on printed labels.
func (c Config) LabelOptions() labels.Options {
	return labels.Options{
		CurrencySymbol:     c.Pricing.CurrencySymbol,
		IngredientsCaption: c.Labels.IngredientsCaption,
		ExpiryCaption:      c.Labels.ExpiryCaption,
	}
}
