package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/identity"
	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/metaapi"
	"github.com/socialsync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TokenHealthMonitor wraps platform calls made with a stored company token.
// Transient failures are retried with a short whole-call budget; credential
// failures clear the affected token slot so the next request forces the
// re-authorization flow instead of hammering the platform with a dead token.
type TokenHealthMonitor struct {
	companyRepo identity.CompanyRepository
	classifier  platform.ErrorClassifier
	retry       metaapi.RetryPolicy
	metrics     *telemetry.SyncMetrics
	logger      *zap.Logger
}

// NewTokenHealthMonitor creates a new TokenHealthMonitor. metrics may be nil
// when metrics are disabled.
func NewTokenHealthMonitor(
	companyRepo identity.CompanyRepository,
	classifier platform.ErrorClassifier,
	metrics *telemetry.SyncMetrics,
	logger *zap.Logger,
) *TokenHealthMonitor {
	return &TokenHealthMonitor{
		companyRepo: companyRepo,
		classifier:  classifier,
		retry:       metaapi.TransientRetryPolicy,
		metrics:     metrics,
		logger:      logger,
	}
}

// Guard runs op with the company's kind-scoped token, retrying transient
// failures, and translates terminal token failures into the re-authorization
// taxonomy. The returned error wraps ErrReauthorizationRequired when the
// caller must send the user back through the OAuth flow.
func (m *TokenHealthMonitor) Guard(ctx context.Context, companyID uuid.UUID, kind platform.ResourceKind, op func(ctx context.Context) error) error {
	err := m.retry.Do(ctx,
		func() error { return op(ctx) },
		func(err error) bool {
			return m.classifier.Classify(err).Class == platform.ErrorClassTransient
		},
	)
	if err == nil {
		return nil
	}

	cls := m.classifier.Classify(err)
	switch cls.Class {
	case platform.ErrorClassInvalidCredential:
		m.recordTokenError(ctx, companyID, cls)
		if clearErr := m.companyRepo.ClearToken(ctx, companyID, kind); clearErr != nil {
			m.logger.Error("failed to clear invalidated token",
				zap.String("company_id", companyID.String()),
				zap.String("kind", kind.String()),
				zap.Error(clearErr),
			)
		} else {
			m.logger.Warn("stored token invalidated, cleared token slot",
				zap.String("company_id", companyID.String()),
				zap.String("kind", kind.String()),
				zap.Int("code", cls.Code),
				zap.Int("subcode", cls.Subcode),
			)
		}
		return fmt.Errorf("%w: %w", platform.ErrReauthorizationRequired, platform.ErrInvalidCredential)

	case platform.ErrorClassPermissionDenied:
		m.recordTokenError(ctx, companyID, cls)
		if clearErr := m.companyRepo.ClearToken(ctx, companyID, kind); clearErr != nil {
			m.logger.Error("failed to clear under-scoped token",
				zap.String("company_id", companyID.String()),
				zap.String("kind", kind.String()),
				zap.Error(clearErr),
			)
		} else {
			m.logger.Warn("stored token lacks required permissions, cleared token slot",
				zap.String("company_id", companyID.String()),
				zap.String("kind", kind.String()),
				zap.Int("code", cls.Code),
				zap.Strings("missing_scopes", cls.MissingScopes),
			)
		}
		if len(cls.MissingScopes) > 0 {
			return fmt.Errorf("%w: %w: missing scopes %s",
				platform.ErrReauthorizationRequired, platform.ErrPermissionDenied,
				strings.Join(cls.MissingScopes, ","))
		}
		return fmt.Errorf("%w: %w", platform.ErrReauthorizationRequired, platform.ErrPermissionDenied)

	case platform.ErrorClassTransient:
		return fmt.Errorf("%w: %v", platform.ErrPlatformUnavailable, err)

	default:
		return err
	}
}

func (m *TokenHealthMonitor) recordTokenError(ctx context.Context, companyID uuid.UUID, cls platform.Classification) {
	if m.metrics != nil {
		m.metrics.RecordTokenError(ctx, companyID, string(cls.Class))
	}
}
