package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	DefaultTenant   string   `mapstructure:"DEFAULT_TENANT"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	AuthIssuer      string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience    string   `mapstructure:"AUTH_AUDIENCE"`
	AuthJWKSURL     string   `mapstructure:"AUTH_JWKS_URL"`
	JWTSigningKey   string   `mapstructure:"JWT_SIGNING_KEY"`
	ReportTimezone  string   `mapstructure:"REPORT_TIMEZONE"`
	AnalyticsRowCap int      `mapstructure:"ANALYTICS_ROW_CAP"`
	RateLimitRPS    float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEFAULT_TENANT", "default")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	// All dashboards share one civil timezone so "today" means the same
	// calendar day for every caller.
	v.SetDefault("REPORT_TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("ANALYTICS_ROW_CAP", 5000)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DEFAULT_TENANT")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("JWT_SIGNING_KEY")
	v.BindEnv("REPORT_TIMEZONE")
	v.BindEnv("ANALYTICS_ROW_CAP")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// some form of JWT validation must be configured.
func (c *Config) Validate() error {
	if c.IsDev() {
		return nil
	}
	if c.AuthJWKSURL == "" && c.JWTSigningKey == "" {
		return fmt.Errorf(
			"AUTH_JWKS_URL or JWT_SIGNING_KEY must be set when ENV=%q; "+
				"refusing to start without authentication configuration", c.Env)
	}
	if c.AnalyticsRowCap <= 0 {
		return fmt.Errorf("ANALYTICS_ROW_CAP must be positive, got %d", c.AnalyticsRowCap)
	}
	return nil
}
