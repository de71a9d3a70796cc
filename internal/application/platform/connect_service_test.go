package platform

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/identity"
	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/config"
	"github.com/socialsync/backend/internal/infrastructure/metaapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serviceFixture struct {
	service      *ConnectService
	companyRepo  *fakeCompanyRepo
	resourceRepo *fakeResourceRepo
	skippedRepo  *fakeSkippedRepo
	client       *fakeClient
	codec        *stubCodec
	company      *identity.Company
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	logger := zap.NewNop()

	company, err := identity.NewCompany("Acme")
	require.NoError(t, err)

	companyRepo := newFakeCompanyRepo(company)
	resourceRepo := newFakeResourceRepo()
	skippedRepo := &fakeSkippedRepo{}
	client := &fakeClient{
		exchangeToken: &platform.AccessToken{Token: "long-lived-token"},
		fetchResult:   &platform.FetchResult{},
	}
	codec := &stubCodec{
		decoded: &platform.AuthorizationContext{
			CompanyID: company.ID,
			UserID:    uuid.New(),
			Kind:      platform.ResourceKindPage,
			Nonce:     uuid.NewString(),
			IssuedAt:  time.Now(),
		},
	}

	synchronizer := NewResourceSynchronizer(resourceRepo, logger)
	arbitrator := NewOwnershipArbitrator(resourceRepo, skippedRepo, &fakeLocker{}, synchronizer, logger)
	subscriptions := NewSubscriptionManager(client, resourceRepo, metaapi.Classifier{}, nil, logger)
	health := NewTokenHealthMonitor(companyRepo, metaapi.Classifier{}, nil, logger)

	service := NewConnectService(ConnectServiceConfig{
		CompanyRepo:   companyRepo,
		ResourceRepo:  resourceRepo,
		SkippedRepo:   skippedRepo,
		Client:        client,
		Codec:         codec,
		Arbitrator:    arbitrator,
		Subscriptions: subscriptions,
		Health:        health,
		Meta: config.MetaConfig{
			PageRedirectURI:  "https://api.example/platform/pages/callback",
			PixelRedirectURI: "https://api.example/platform/pixels/callback",
		},
		Logger: logger,
	})

	return &serviceFixture{
		service:      service,
		companyRepo:  companyRepo,
		resourceRepo: resourceRepo,
		skippedRepo:  skippedRepo,
		client:       client,
		codec:        codec,
		company:      company,
	}
}

func TestConnectService_Authorize(t *testing.T) {
	f := newServiceFixture(t)

	resp, err := f.service.Authorize(context.Background(), f.company.ID, uuid.New(), platform.ResourceKindPage)
	require.NoError(t, err)
	assert.Contains(t, resp.AuthorizationURL, "state=signed-state")
	assert.Contains(t, resp.AuthorizationURL, "kind=page")
}

func TestConnectService_Authorize_UnknownCompany(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Authorize(context.Background(), uuid.New(), uuid.New(), platform.ResourceKindPage)
	assert.ErrorIs(t, err, identity.ErrCompanyNotFound)
}

func TestConnectService_Callback_ClaimsAndSkips(t *testing.T) {
	f := newServiceFixture(t)

	// P2 is already owned by company B
	companyB := uuid.New()
	f.resourceRepo.put(mustResource(t, "page-2", "Owned Elsewhere", "tok-b", companyB))

	f.client.fetchResult = &platform.FetchResult{
		Resources: []platform.DiscoveredResource{
			discoveredPage("page-1", "Fresh Page", "tok-1"),
			discoveredPage("page-2", "Owned Elsewhere", "tok-x"),
		},
	}

	result, err := f.service.Callback(context.Background(), platform.ResourceKindPage, "auth-code", "signed-state")
	require.NoError(t, err)

	assert.Equal(t, f.company.ID, result.CompanyID)
	require.Len(t, result.Synced, 1)
	assert.Equal(t, "page-1", result.Synced[0].ExternalID)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "page-2", result.Skipped[0].ExternalID)
	assert.Equal(t, companyB, result.Skipped[0].ConnectedCompanyID)
	assert.False(t, result.Partial)

	// Token landed in the page slot, install counted once
	company, err := f.companyRepo.FindByID(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, "long-lived-token", company.PageAccessToken)
	assert.Empty(t, company.PixelAccessToken)
	assert.Equal(t, 1, company.InstallCount)
}

func TestConnectService_Callback_SecondRunNoInstallIncrement(t *testing.T) {
	f := newServiceFixture(t)
	f.client.fetchResult = &platform.FetchResult{
		Resources: []platform.DiscoveredResource{
			discoveredPage("page-1", "Main Page", "long-lived-token"),
		},
	}
	// Listing returns the same token the exchange produced, so the second
	// run finds nothing to write.
	_, err := f.service.Callback(context.Background(), platform.ResourceKindPage, "code", "signed-state")
	require.NoError(t, err)

	_, err = f.service.Callback(context.Background(), platform.ResourceKindPage, "code", "signed-state")
	require.NoError(t, err)

	company, err := f.companyRepo.FindByID(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, company.InstallCount)
}

func TestConnectService_Callback_KindMismatch(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Callback(context.Background(), platform.ResourceKindPixel, "code", "signed-state")
	assert.ErrorIs(t, err, platform.ErrStateInvalid)
}

func TestConnectService_Callback_ExpiredState(t *testing.T) {
	f := newServiceFixture(t)
	f.codec.decodeErr = platform.ErrStateExpired

	_, err := f.service.Callback(context.Background(), platform.ResourceKindPage, "code", "stale-state")
	assert.ErrorIs(t, err, platform.ErrStateExpired)
}

func TestConnectService_Callback_StaleIssuedAt(t *testing.T) {
	f := newServiceFixture(t)
	f.codec.decoded.IssuedAt = time.Now().Add(-11 * time.Minute)

	_, err := f.service.Callback(context.Background(), platform.ResourceKindPage, "code", "signed-state")
	assert.ErrorIs(t, err, platform.ErrStateExpired)
}

func TestConnectService_Callback_CompanyNotFound(t *testing.T) {
	f := newServiceFixture(t)
	f.codec.decoded.CompanyID = uuid.New()

	_, err := f.service.Callback(context.Background(), platform.ResourceKindPage, "code", "signed-state")
	assert.ErrorIs(t, err, identity.ErrCompanyNotFound)
}

func TestConnectService_Callback_ExchangeFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.client.exchangeErr = platform.ErrExchangeFailed

	_, err := f.service.Callback(context.Background(), platform.ResourceKindPage, "used-code", "signed-state")
	assert.ErrorIs(t, err, platform.ErrExchangeFailed)

	// Nothing persisted on a failed exchange
	company, findErr := f.companyRepo.FindByID(context.Background(), f.company.ID)
	require.NoError(t, findErr)
	assert.Empty(t, company.PageAccessToken)
}

func TestConnectService_Callback_PixelMissingCapabilities(t *testing.T) {
	f := newServiceFixture(t)
	f.codec.decoded.Kind = platform.ResourceKindPixel
	f.client.exchangeToken = &platform.AccessToken{
		Token:  "pixel-token",
		Scopes: []string{"ads_read"},
	}

	_, err := f.service.Callback(context.Background(), platform.ResourceKindPixel, "code", "signed-state")
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrMissingCapabilities)
	assert.Contains(t, err.Error(), "business_management")
}

func TestConnectService_Callback_PixelStoresExternalID(t *testing.T) {
	f := newServiceFixture(t)
	f.codec.decoded.Kind = platform.ResourceKindPixel
	f.client.exchangeToken = &platform.AccessToken{
		Token:  "pixel-token",
		Scopes: []string{"ads_management", "ads_read", "business_management"},
	}
	f.client.fetchResult = &platform.FetchResult{
		Resources: []platform.DiscoveredResource{{
			ExternalID:  "pixel-77",
			Name:        "Main Pixel",
			AccessToken: "pixel-token",
			Kind:        platform.ResourceKindPixel,
		}},
	}

	result, err := f.service.Callback(context.Background(), platform.ResourceKindPixel, "code", "signed-state")
	require.NoError(t, err)
	require.Len(t, result.Synced, 1)

	company, err := f.companyRepo.FindByID(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, "pixel-token", company.PixelAccessToken)
	assert.Equal(t, "pixel-77", company.PixelExternalID)
	assert.Empty(t, company.PageAccessToken)
}

func TestConnectService_Status(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.companyRepo.UpdateToken(context.Background(), f.company.ID, platform.ResourceKindPage, "tok"))
	f.resourceRepo.put(mustResource(t, "page-1", "Main Page", "tok-1", f.company.ID))
	f.client.checkState = &platform.SubscriptionState{Subscribed: true}

	status, err := f.service.Status(context.Background(), f.company.ID, platform.ResourceKindPage)
	require.NoError(t, err)
	assert.True(t, status.Authorized)
	require.Len(t, status.Resources, 1)
	require.NotNil(t, status.Resources[0].WebhookSubscribed)
	assert.True(t, *status.Resources[0].WebhookSubscribed)
}

func TestConnectService_Status_Unauthorized(t *testing.T) {
	f := newServiceFixture(t)

	status, err := f.service.Status(context.Background(), f.company.ID, platform.ResourceKindPixel)
	require.NoError(t, err)
	assert.False(t, status.Authorized)
	assert.Empty(t, status.Resources)
}

func TestConnectService_Disconnect(t *testing.T) {
	f := newServiceFixture(t)
	f.resourceRepo.put(mustResource(t, "page-1", "One", "t1", f.company.ID))
	f.resourceRepo.put(mustResource(t, "page-2", "Two", "t2", f.company.ID))

	resp, err := f.service.Disconnect(context.Background(), f.company.ID, platform.ResourceKindPage, []string{"page-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Disconnected)
	assert.Equal(t, platform.ResourceStatusDisconnected, f.resourceRepo.get("page-1").Status)
	assert.Equal(t, platform.ResourceStatusConnected, f.resourceRepo.get("page-2").Status)
}

func TestConnectService_Disconnect_AllOfKind(t *testing.T) {
	f := newServiceFixture(t)
	f.resourceRepo.put(mustResource(t, "page-1", "One", "t1", f.company.ID))
	f.resourceRepo.put(mustResource(t, "page-2", "Two", "t2", f.company.ID))

	resp, err := f.service.Disconnect(context.Background(), f.company.ID, platform.ResourceKindPage, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Disconnected)
}

func TestConnectService_SkippedLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	companyB := uuid.New()

	record, err := platform.NewSkippedResource("page-9", "Contested", platform.ResourceKindPage, f.company.ID, companyB)
	require.NoError(t, err)
	require.NoError(t, f.skippedRepo.Create(context.Background(), record))

	listed, err := f.service.ListSkipped(context.Background(), f.company.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "page-9", listed[0].ExternalID)

	resolved, err := f.service.ResolveSkipped(context.Background(), f.company.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resolved.Resolved)

	listed, err = f.service.ListSkipped(context.Background(), f.company.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
