package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cjmartens/homestead/internal/auth"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "https://homestead.example.com", cfg.Server.BaseURL)
	require.Equal(t, 50, cfg.Server.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "homestead-test", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 1440*time.Hour, cfg.Auth.Session.RefreshTTL)
	require.Equal(t, 64, cfg.Auth.Session.RefreshLength)

	require.True(t, cfg.Auth.OIDC.Enabled)
	require.Equal(t, "corp", cfg.Auth.OIDC.Name)
	require.Equal(t, "https://id.example.com", cfg.Auth.OIDC.Issuer)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, 72*time.Hour, cfg.Invites.Expiry)
	require.Equal(t, 3, cfg.Limits.FreeHomes)

	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@every 30m", cfg.Maintenance.Schedule)
	require.Equal(t, 720*time.Hour, cfg.Maintenance.ActivityRetention)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 720*time.Hour, cfg.Auth.Session.RefreshTTL)
	require.Equal(t, 168*time.Hour, cfg.Invites.Expiry)
	require.Equal(t, 1, cfg.Limits.FreeHomes)
	require.Equal(t, "@hourly", cfg.Maintenance.Schedule)
	require.False(t, cfg.Auth.OIDC.Enabled)
}

func TestAuthConfigAdapters(t *testing.T) {
	cfg := Config{
		Auth: AuthConfig{
			JWT: JWTSettings{
				Secret: "secret",
				Issuer: "issuer",
				TTL:    30 * time.Minute,
			},
			Session: SessionSettings{
				RefreshTTL:    10 * time.Hour,
				RefreshLength: 32,
			},
		},
	}

	jwtCfg := cfg.Auth.JWTServiceConfig()
	require.Equal(t, "secret", jwtCfg.Secret)
	require.Equal(t, "issuer", jwtCfg.Issuer)
	require.Equal(t, 30*time.Minute, jwtCfg.AccessTokenTTL)

	sessionCfg := cfg.Auth.SessionServiceConfig()
	require.Equal(t, 10*time.Hour, sessionCfg.RefreshTokenTTL)
	require.Equal(t, 32, sessionCfg.RefreshLength)

	// Zero values fall back to library defaults.
	empty := AuthConfig{}
	require.Equal(t, auth.DefaultAccessTokenTTL, empty.JWTServiceConfig().AccessTokenTTL)
	require.Equal(t, auth.DefaultRefreshTokenTTL, empty.SessionServiceConfig().RefreshTokenTTL)
	require.Equal(t, 48, empty.SessionServiceConfig().RefreshLength)
}

func TestDatabaseConfigAdapter(t *testing.T) {
	cfg := DatabaseConfig{
		Driver: "PostgreSQL",
		Postgres: DBAuthConfig{
			Host:     "db.internal",
			Port:     5432,
			Database: "homestead",
			Username: "app",
			Password: "pw",
		},
	}

	dbCfg := cfg.DatabaseServiceConfig()
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, "homestead", dbCfg.Name)

	require.Equal(t, "sqlite", DatabaseConfig{}.DatabaseServiceConfig().Driver)
}
