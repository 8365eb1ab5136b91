package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		t.Setenv("PORTAL_JWT_SECRET", "dev-secret")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "marketplace-portal", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "http://localhost:5000/api", cfg.Backend.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, int64(10<<20), cfg.Backend.MaxResponseBytes)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 30*time.Minute, cfg.Onboarding.SessionTTL)
		assert.Equal(t, 30*time.Second, cfg.Onboarding.OTPResendCooldown)
		assert.Equal(t, 0.8, cfg.Pricing.RentRatio)
		assert.Equal(t, 0.25, cfg.Pricing.CommissionRate)
		assert.Equal(t, 7*24*time.Hour, cfg.Orders.ReturnWindow)
		assert.Equal(t, "marketplace-portal", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with PORTAL prefix", func(t *testing.T) {
		t.Setenv("PORTAL_JWT_SECRET", "dev-secret")
		t.Setenv("PORTAL_APP_PORT", "9000")
		t.Setenv("PORTAL_BACKEND_BASE_URL", "https://api.shop.test/v2")
		t.Setenv("PORTAL_BACKEND_TIMEOUT", "5s")
		t.Setenv("PORTAL_DATABASE_DRIVER", "sqlite")
		t.Setenv("PORTAL_DATABASE_PATH", ":memory:")
		t.Setenv("PORTAL_ONBOARDING_OTP_RESEND_COOLDOWN", "45s")
		t.Setenv("PORTAL_PRICING_COMMISSION_RATE", "0.2")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "https://api.shop.test/v2", cfg.Backend.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.Path)
		assert.Equal(t, 45*time.Second, cfg.Onboarding.OTPResendCooldown)
		assert.Equal(t, 0.2, cfg.Pricing.CommissionRate)
	})

	t.Run("requires a jwt secret outside production", func(t *testing.T) {
		t.Setenv("PORTAL_JWT_SECRET", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestValidate_Production(t *testing.T) {
	base := func() *Config {
		cfg := &Config{
			App:      AppConfig{Env: "production"},
			JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			Database: DatabaseConfig{Password: "secret", SSLMode: "require"},
		}
		applyDefaults(cfg)
		return cfg
	}

	require.NoError(t, base().validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }, "jwt.secret"},
		{"sqlite", func(c *Config) { c.Database.Driver = "sqlite" }, "sqlite"},
		{"no db password", func(c *Config) { c.Database.Password = "" }, "database.password"},
		{"ssl disabled", func(c *Config) { c.Database.SSLMode = "disable" }, "sslmode"},
		{"wildcard cors", func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"*"} }, "cors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_Common(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"bad base url", func(c *Config) { c.Backend.BaseURL = "not a url" }, "backend.base_url"},
		{"rent ratio", func(c *Config) { c.Pricing.RentRatio = 1.5 }, "rent_ratio"},
		{"commission", func(c *Config) { c.Pricing.CommissionRate = 1 }, "commission_rate"},
		{"storage creds", func(c *Config) { c.Storage.Enabled = true }, "storage.access_key"},
		{"sampling", func(c *Config) { c.Telemetry.SamplingRatio = 2 }, "sampling_ratio"},
		{"idle conns", func(c *Config) { c.Database.MaxIdleConns = 100 }, "max_idle_conns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{JWT: JWTConfig{Secret: "dev"}}
			applyDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFromViper_ConfigValues(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "dev")
	v.Set("http.cors_allow_origins", []string{"http://localhost:3000"})
	v.Set("storage.enabled", true)
	v.Set("storage.access_key", "ak")
	v.Set("storage.secret_key", "sk")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSAllowOrigins)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "portal-imports", cfg.Storage.Bucket)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/word", DBName: "portal", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%2Fword@db:5432/portal?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
