package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/identity"
	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/config"
	"github.com/socialsync/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ConnectService orchestrates the OAuth link flow end to end: authorize URL
// issuance, the callback pipeline (decode → exchange → fetch → arbitrate →
// synchronize → subscribe), and the management surface around linked
// resources.
type ConnectService struct {
	companyRepo   identity.CompanyRepository
	resourceRepo  platform.ResourceRepository
	skippedRepo   platform.SkippedResourceRepository
	client        platform.Client
	codec         platform.StateCodec
	arbitrator    *OwnershipArbitrator
	subscriptions *SubscriptionManager
	health        *TokenHealthMonitor
	metrics       *telemetry.SyncMetrics
	meta          config.MetaConfig
	logger        *zap.Logger
}

// ConnectServiceConfig bundles the dependencies of ConnectService.
type ConnectServiceConfig struct {
	CompanyRepo   identity.CompanyRepository
	ResourceRepo  platform.ResourceRepository
	SkippedRepo   platform.SkippedResourceRepository
	Client        platform.Client
	Codec         platform.StateCodec
	Arbitrator    *OwnershipArbitrator
	Subscriptions *SubscriptionManager
	Health        *TokenHealthMonitor
	Metrics       *telemetry.SyncMetrics // optional
	Meta          config.MetaConfig
	Logger        *zap.Logger
}

// NewConnectService creates a new ConnectService
func NewConnectService(cfg ConnectServiceConfig) *ConnectService {
	return &ConnectService{
		companyRepo:   cfg.CompanyRepo,
		resourceRepo:  cfg.ResourceRepo,
		skippedRepo:   cfg.SkippedRepo,
		client:        cfg.Client,
		codec:         cfg.Codec,
		arbitrator:    cfg.Arbitrator,
		subscriptions: cfg.Subscriptions,
		health:        cfg.Health,
		metrics:       cfg.Metrics,
		meta:          cfg.Meta,
		logger:        cfg.Logger,
	}
}

// redirectURI returns the registered callback URI for the kind. The exchange
// request must repeat the exact URI the dialog was opened with.
func (s *ConnectService) redirectURI(kind platform.ResourceKind) string {
	if kind == platform.ResourceKindPixel {
		return s.meta.PixelRedirectURI
	}
	return s.meta.PageRedirectURI
}

// ---------------------------------------------------------------------------
// Authorize
// ---------------------------------------------------------------------------

// Authorize builds the platform OAuth dialog URL for the company, embedding
// a signed state token that the callback will verify.
func (s *ConnectService) Authorize(ctx context.Context, companyID, userID uuid.UUID, kind platform.ResourceKind) (*AuthorizeResponse, error) {
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, err
	}

	state, err := s.codec.Encode(platform.AuthorizationContext{
		CompanyID: companyID,
		UserID:    userID,
		Kind:      kind,
		IssuedAt:  time.Now(),
	})
	if err != nil {
		return nil, err
	}

	return &AuthorizeResponse{
		AuthorizationURL: s.client.AuthorizationURL(kind, s.redirectURI(kind), state),
	}, nil
}

// ---------------------------------------------------------------------------
// Callback
// ---------------------------------------------------------------------------

// Callback runs the full link pipeline for a platform redirect. Everything
// through synchronization is synchronous; webhook subscription attempts are
// dispatched fire-and-forget so the user's redirect never waits on them.
func (s *ConnectService) Callback(ctx context.Context, kind platform.ResourceKind, code, state string) (*CallbackResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "platform", "callback",
		attribute.String("kind", kind.String()),
	)
	defer span.End()

	authCtx, err := s.codec.Decode(state)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if authCtx.Kind != kind {
		telemetry.RecordError(span, platform.ErrStateInvalid)
		return nil, platform.ErrStateInvalid
	}
	if authCtx.Expired(time.Now()) {
		telemetry.RecordError(span, platform.ErrStateExpired)
		return nil, platform.ErrStateExpired
	}
	span.SetAttributes(attribute.String("company_id", authCtx.CompanyID.String()))

	company, err := s.companyRepo.FindByID(ctx, authCtx.CompanyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	token, err := s.client.ExchangeCode(ctx, code, s.redirectURI(kind))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.checkGrantedScopes(kind, token); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.companyRepo.UpdateToken(ctx, company.ID, kind, token.Token); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	// Keep the loaded aggregate in step with the column update: the pixel
	// branch below saves the full row, and a stale slot would wipe the
	// token that was just stored.
	company.SetTokenForKind(kind, token.Token)

	result, err := s.fetchResources(ctx, company.ID, kind, token.Token)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	report, err := s.arbitrator.Arbitrate(ctx, company.ID, result.Resources)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if report.Wrote > 0 {
		if err := s.companyRepo.IncrementInstallCount(ctx, company.ID); err != nil {
			s.logger.Error("failed to increment install count",
				zap.String("company_id", company.ID.String()),
				zap.Error(err),
			)
		}
	}

	if kind == platform.ResourceKindPixel && len(report.Synced) > 0 {
		company.PixelExternalID = report.Synced[0].ExternalID
		if err := s.companyRepo.Save(ctx, company); err != nil {
			s.logger.Error("failed to store pixel external id",
				zap.String("company_id", company.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.subscriptions.Dispatch(ctx, report.Synced)

	s.recordSyncMetrics(ctx, company.ID, kind, report)
	s.logger.Info("platform callback completed",
		zap.String("company_id", company.ID.String()),
		zap.String("kind", kind.String()),
		zap.Int("synced", len(report.Synced)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("wrote", report.Wrote),
		zap.Int("failed", report.Failed),
		zap.Bool("partial", result.Partial),
	)

	return newCallbackResult(company.ID, kind, report, result.Partial), nil
}

// checkGrantedScopes rejects a pixel grant that lacks the advertising
// capabilities before anything is persisted. Pages are not checked here:
// the platform reports page capability problems on the listing call itself.
func (s *ConnectService) checkGrantedScopes(kind platform.ResourceKind, token *platform.AccessToken) error {
	if kind != platform.ResourceKindPixel || len(token.Scopes) == 0 {
		return nil
	}

	granted := make(map[string]bool, len(token.Scopes))
	for _, scope := range token.Scopes {
		granted[scope] = true
	}
	var missing []string
	for _, scope := range kind.Scopes() {
		if !granted[scope] {
			missing = append(missing, scope)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", platform.ErrMissingCapabilities, strings.Join(missing, ","))
	}
	return nil
}

func (s *ConnectService) fetchResources(ctx context.Context, companyID uuid.UUID, kind platform.ResourceKind, userToken string) (*platform.FetchResult, error) {
	var result *platform.FetchResult
	start := time.Now()

	err := s.health.Guard(ctx, companyID, kind, func(ctx context.Context) error {
		var fetchErr error
		if kind == platform.ResourceKindPixel {
			result, fetchErr = s.client.FetchPixels(ctx, userToken)
		} else {
			result, fetchErr = s.client.FetchPages(ctx, userToken)
		}
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordFetchDuration(ctx, kind.String(), time.Since(start), result.Partial)
	}
	return result, nil
}

func (s *ConnectService) recordSyncMetrics(ctx context.Context, companyID uuid.UUID, kind platform.ResourceKind, report *SyncReport) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSynced(ctx, companyID, kind.String(), int64(len(report.Synced)))
	s.metrics.RecordSkipped(ctx, companyID, kind.String(), int64(len(report.Skipped)))
}

func newCallbackResult(companyID uuid.UUID, kind platform.ResourceKind, report *SyncReport, partial bool) *CallbackResult {
	result := &CallbackResult{
		CompanyID: companyID,
		Kind:      kind.String(),
		Synced:    make([]ResourceResponse, 0, len(report.Synced)),
		Skipped:   make([]SkippedResourceResponse, 0, len(report.Skipped)),
		Partial:   partial,
	}
	for i := range report.Synced {
		result.Synced = append(result.Synced, NewResourceResponse(&report.Synced[i]))
	}
	for i := range report.Skipped {
		result.Skipped = append(result.Skipped, NewSkippedResourceResponse(&report.Skipped[i]))
	}
	return result
}

// ---------------------------------------------------------------------------
// Management surface
// ---------------------------------------------------------------------------

// Status lists the company's connected resources of the kind, plus whether
// an access token is currently stored for that slot. For pages the webhook
// subscription state is looked up best-effort; a failed lookup leaves the
// field unset rather than failing the listing.
func (s *ConnectService) Status(ctx context.Context, companyID uuid.UUID, kind platform.ResourceKind) (*ConnectionStatusResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resources, err := s.resourceRepo.FindConnectedByCompany(ctx, companyID, kind)
	if err != nil {
		return nil, err
	}

	response := &ConnectionStatusResponse{
		Kind:       kind.String(),
		Authorized: company.TokenForKind(kind) != "",
		Resources:  make([]ResourceResponse, 0, len(resources)),
	}
	for i := range resources {
		item := NewResourceResponse(&resources[i])
		if kind == platform.ResourceKindPage {
			if state, err := s.subscriptions.Verify(ctx, &resources[i]); err == nil {
				subscribed := state.Subscribed
				item.WebhookSubscribed = &subscribed
			} else {
				s.logger.Debug("subscription state lookup failed",
					zap.String("external_id", resources[i].ExternalID),
					zap.Error(err),
				)
			}
		}
		response.Resources = append(response.Resources, item)
	}
	return response, nil
}

// Disconnect soft-disables the listed resources. An empty list disconnects
// every connected resource of the kind. Rows are kept for reconnect history.
func (s *ConnectService) Disconnect(ctx context.Context, companyID uuid.UUID, kind platform.ResourceKind, externalIDs []string) (*DisconnectResponse, error) {
	if len(externalIDs) == 0 {
		resources, err := s.resourceRepo.FindConnectedByCompany(ctx, companyID, kind)
		if err != nil {
			return nil, err
		}
		for i := range resources {
			externalIDs = append(externalIDs, resources[i].ExternalID)
		}
	}
	if len(externalIDs) == 0 {
		return &DisconnectResponse{Disconnected: 0}, nil
	}

	n, err := s.resourceRepo.Disconnect(ctx, companyID, externalIDs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("resources disconnected",
		zap.String("company_id", companyID.String()),
		zap.String("kind", kind.String()),
		zap.Int64("count", n),
	)
	return &DisconnectResponse{Disconnected: n}, nil
}

// ListSkipped returns the unresolved ownership conflicts where the company
// was the attempting tenant.
func (s *ConnectService) ListSkipped(ctx context.Context, companyID uuid.UUID) ([]SkippedResourceResponse, error) {
	records, err := s.skippedRepo.FindUnresolvedByAttempting(ctx, companyID)
	if err != nil {
		return nil, err
	}
	responses := make([]SkippedResourceResponse, 0, len(records))
	for i := range records {
		responses = append(responses, NewSkippedResourceResponse(&records[i]))
	}
	return responses, nil
}

// ResolveSkipped marks the listed conflict records reviewed. An empty list
// resolves every unresolved record for the company.
func (s *ConnectService) ResolveSkipped(ctx context.Context, companyID uuid.UUID, externalIDs []string) (*ResolveSkippedResponse, error) {
	n, err := s.skippedRepo.Resolve(ctx, companyID, externalIDs)
	if err != nil {
		return nil, err
	}
	return &ResolveSkippedResponse{Resolved: n}, nil
}
