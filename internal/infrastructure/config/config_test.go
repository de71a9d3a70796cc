package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"SOCIALSYNC_APP_NAME":                os.Getenv("SOCIALSYNC_APP_NAME"),
		"SOCIALSYNC_APP_ENV":                 os.Getenv("SOCIALSYNC_APP_ENV"),
		"SOCIALSYNC_APP_PORT":                os.Getenv("SOCIALSYNC_APP_PORT"),
		"SOCIALSYNC_DATABASE_HOST":           os.Getenv("SOCIALSYNC_DATABASE_HOST"),
		"SOCIALSYNC_DATABASE_PORT":           os.Getenv("SOCIALSYNC_DATABASE_PORT"),
		"SOCIALSYNC_DATABASE_USER":           os.Getenv("SOCIALSYNC_DATABASE_USER"),
		"SOCIALSYNC_DATABASE_PASSWORD":       os.Getenv("SOCIALSYNC_DATABASE_PASSWORD"),
		"SOCIALSYNC_DATABASE_DBNAME":         os.Getenv("SOCIALSYNC_DATABASE_DBNAME"),
		"SOCIALSYNC_DATABASE_SSLMODE":        os.Getenv("SOCIALSYNC_DATABASE_SSLMODE"),
		"SOCIALSYNC_DATABASE_MAX_OPEN_CONNS": os.Getenv("SOCIALSYNC_DATABASE_MAX_OPEN_CONNS"),
		"SOCIALSYNC_DATABASE_MAX_IDLE_CONNS": os.Getenv("SOCIALSYNC_DATABASE_MAX_IDLE_CONNS"),
		"SOCIALSYNC_JWT_SECRET":              os.Getenv("SOCIALSYNC_JWT_SECRET"),
		"SOCIALSYNC_META_APP_ID":             os.Getenv("SOCIALSYNC_META_APP_ID"),
		"SOCIALSYNC_META_APP_SECRET":         os.Getenv("SOCIALSYNC_META_APP_SECRET"),
		"SOCIALSYNC_STATE_TOKEN_SECRET":      os.Getenv("SOCIALSYNC_STATE_TOKEN_SECRET"),
		"SOCIALSYNC_STATE_TOKEN_TTL":         os.Getenv("SOCIALSYNC_STATE_TOKEN_TTL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "socialsync-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "socialsync", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "https://graph.facebook.com/v19.0", cfg.Meta.GraphBaseURL)
		assert.Equal(t, 30*time.Second, cfg.Meta.RequestTimeout)
		assert.Equal(t, 10*time.Minute, cfg.StateToken.TTL)
	})

	t.Run("loads values from environment variables with SOCIALSYNC prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("SOCIALSYNC_APP_NAME", "test-app")
		os.Setenv("SOCIALSYNC_APP_ENV", "testing")
		os.Setenv("SOCIALSYNC_APP_PORT", "9000")
		os.Setenv("SOCIALSYNC_DATABASE_HOST", "testdb.local")
		os.Setenv("SOCIALSYNC_DATABASE_PORT", "5433")
		os.Setenv("SOCIALSYNC_META_APP_ID", "app-123")
		os.Setenv("SOCIALSYNC_META_APP_SECRET", "shhh")
		os.Setenv("SOCIALSYNC_STATE_TOKEN_TTL", "5m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "app-123", cfg.Meta.AppID)
		assert.Equal(t, "shhh", cfg.Meta.AppSecret)
		assert.Equal(t, 5*time.Minute, cfg.StateToken.TTL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("SOCIALSYNC_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("SOCIALSYNC_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects state token TTL under one minute", func(t *testing.T) {
		clearEnv()
		os.Setenv("SOCIALSYNC_STATE_TOKEN_TTL", "10s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "state_token.ttl")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"SOCIALSYNC_APP_ENV":            os.Getenv("SOCIALSYNC_APP_ENV"),
		"SOCIALSYNC_JWT_SECRET":         os.Getenv("SOCIALSYNC_JWT_SECRET"),
		"SOCIALSYNC_STATE_TOKEN_SECRET": os.Getenv("SOCIALSYNC_STATE_TOKEN_SECRET"),
		"SOCIALSYNC_META_APP_ID":        os.Getenv("SOCIALSYNC_META_APP_ID"),
		"SOCIALSYNC_META_APP_SECRET":    os.Getenv("SOCIALSYNC_META_APP_SECRET"),
		"SOCIALSYNC_DATABASE_PASSWORD":  os.Getenv("SOCIALSYNC_DATABASE_PASSWORD"),
		"SOCIALSYNC_DATABASE_SSLMODE":   os.Getenv("SOCIALSYNC_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	setValidProductionBase := func() {
		os.Setenv("SOCIALSYNC_APP_ENV", "production")
		os.Setenv("SOCIALSYNC_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("SOCIALSYNC_STATE_TOKEN_SECRET", "this-is-a-very-secure-state-secret-32chars")
		os.Setenv("SOCIALSYNC_META_APP_ID", "app-123")
		os.Setenv("SOCIALSYNC_META_APP_SECRET", "meta-secret")
		os.Setenv("SOCIALSYNC_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SOCIALSYNC_DATABASE_SSLMODE", "require")
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("SOCIALSYNC_JWT_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires state_token.secret in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("SOCIALSYNC_STATE_TOKEN_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "state_token.secret is required in production")
	})

	t.Run("requires state_token.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("SOCIALSYNC_STATE_TOKEN_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "state_token.secret must be at least 32 characters")
	})

	t.Run("requires meta credentials in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("SOCIALSYNC_META_APP_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "meta.app_id and meta.app_secret are required")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("SOCIALSYNC_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})
}
