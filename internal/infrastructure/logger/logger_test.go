package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "console format", cfg: &Config{Level: "debug", Format: "console", Output: "stdout", TimeFormat: "2006-01-02"}},
		{name: "json format", cfg: &Config{Level: "info", Format: "json", Output: "stderr", TimeFormat: "2006-01-02"}},
		{name: "unknown level falls back to info", cfg: &Config{Level: "verbose", Format: "json", Output: "stdout", TimeFormat: "2006-01-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, l)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestNewForEnvironment(t *testing.T) {
	dev, err := NewForEnvironment("development")
	require.NoError(t, err)
	assert.NotNil(t, dev)

	prod, err := NewForEnvironment("production")
	require.NoError(t, err)
	assert.NotNil(t, prod)
}

func TestContextLogger(t *testing.T) {
	base := zap.NewNop()

	t.Run("FromContext returns nop when absent", func(t *testing.T) {
		l := FromContext(context.Background())
		assert.NotNil(t, l)
	})

	t.Run("round trips through context", func(t *testing.T) {
		ctx := WithContext(context.Background(), base)
		assert.Equal(t, base, FromContext(ctx))
	})

	t.Run("WithRequestID stores the ID", func(t *testing.T) {
		ctx, enriched := WithRequestID(context.Background(), base, "req-1")
		assert.NotNil(t, enriched)
		assert.Equal(t, "req-1", GetRequestID(ctx))
	})

	t.Run("WithCompanyID stores the ID", func(t *testing.T) {
		ctx, enriched := WithCompanyID(context.Background(), base, "co-1")
		assert.NotNil(t, enriched)
		assert.Equal(t, "co-1", GetCompanyID(ctx))
	})

	t.Run("L never returns nil", func(t *testing.T) {
		assert.NotNil(t, L(context.Background()))
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}
