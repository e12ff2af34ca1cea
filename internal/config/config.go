package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"order-desk/internal/core"
)

// Config is the single configuration object handed to the engines and
// adapters. Defaults are overlaid by an optional YAML file, which in turn is
// overlaid by environment variables.
type Config struct {
	ServerPort     string `yaml:"server_port"`
	DatabaseURL    string `yaml:"database_url"`
	AllowedOrigins string `yaml:"allowed_origins"`
	TaxRecalcURL   string `yaml:"tax_recalc_url"`

	// DiscountCeilingPercent caps total discount as a percentage of the
	// tax-free subtotal, organization-wide.
	DiscountCeilingPercent decimal.Decimal `yaml:"discount_ceiling_percent"`

	// HorizonDays is the rolling delivery-scheduling window.
	HorizonDays int                 `yaml:"horizon_days"`
	LeadTime    core.LeadTimePolicy `yaml:"lead_time"`

	// ClampNoticeMillis is how long the frontend shows the ceiling-exceeded
	// notice before auto-dismissing it.
	ClampNoticeMillis int `yaml:"clamp_notice_millis"`

	CartTTLMinutes int `yaml:"cart_ttl_minutes"`
}

// CartTTL is how long an idle session cart survives before eviction.
func (c Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLMinutes) * time.Minute
}

func defaults() Config {
	return Config{
		ServerPort:             "8080",
		DiscountCeilingPercent: decimal.NewFromInt(5),
		HorizonDays:            30,
		LeadTime:               core.DefaultLeadTimePolicy,
		ClampNoticeMillis:      5000,
		CartTTLMinutes:         240,
	}
}

// Load builds the configuration. path may be empty; a missing file is not an
// error so deployments can run on defaults plus environment.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.ServerPort = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = v
	}
	if v := os.Getenv("TAX_RECALC_URL"); v != "" {
		cfg.TaxRecalcURL = v
	}
	if v := os.Getenv("DISCOUNT_CEILING_PERCENT"); v != "" {
		pct, err := decimal.NewFromString(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid DISCOUNT_CEILING_PERCENT %q: %w", v, err)
		}
		cfg.DiscountCeilingPercent = pct
	}
	if v := os.Getenv("HORIZON_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid HORIZON_DAYS %q: %w", v, err)
		}
		cfg.HorizonDays = n
	}

	if cfg.HorizonDays < 0 {
		return cfg, fmt.Errorf("horizon_days must be >= 0, got %d", cfg.HorizonDays)
	}
	if cfg.DiscountCeilingPercent.IsNegative() {
		return cfg, fmt.Errorf("discount_ceiling_percent must be >= 0, got %s", cfg.DiscountCeilingPercent)
	}

	return cfg, nil
}
