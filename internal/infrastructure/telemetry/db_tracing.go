// Package telemetry provides OpenTelemetry integration for distributed tracing.
package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled    bool
	DBName     string // Database name attribute for spans (default: "postgres")
	LogFullSQL bool   // Include query variables in spans (dev only, security risk in prod)
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:    false,
		DBName:     "postgres",
		LogFullSQL: false,
	}
}

// RegisterOtelGorm registers the otelgorm plugin with the given GORM DB instance
// so every query produces a child span of the request trace.
func RegisterOtelGorm(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	dbName := cfg.DBName
	if dbName == "" {
		dbName = "postgres"
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(dbName),
	}
	if !cfg.LogFullSQL {
		// Keep query parameters out of spans
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_name", dbName),
		zap.Bool("log_full_sql", cfg.LogFullSQL),
	)
	return nil
}
