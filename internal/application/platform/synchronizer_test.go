package platform

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func discoveredPage(externalID, name, token string) platform.DiscoveredResource {
	return platform.DiscoveredResource{
		ExternalID:  externalID,
		Name:        name,
		AccessToken: token,
		Kind:        platform.ResourceKindPage,
	}
}

func TestSynchronizer_CreatesNewResource(t *testing.T) {
	repo := newFakeResourceRepo()
	sync := NewResourceSynchronizer(repo, zap.NewNop())
	companyID := uuid.New()

	result, err := sync.Synchronize(context.Background(), companyID, discoveredPage("page-1", "Main Page", "tok-1"), nil)
	require.NoError(t, err)
	assert.True(t, result.Wrote)

	stored := repo.get("page-1")
	require.NotNil(t, stored)
	assert.True(t, stored.OwnedBy(companyID))
	assert.Equal(t, platform.ResourceStatusConnected, stored.Status)
	assert.Equal(t, "tok-1", stored.AccessToken)
}

func TestSynchronizer_SkipsUnchangedResource(t *testing.T) {
	repo := newFakeResourceRepo()
	sync := NewResourceSynchronizer(repo, zap.NewNop())
	companyID := uuid.New()

	existing, err := platform.NewResource("page-1", "Main Page", "tok-1", platform.ResourceKindPage, companyID)
	require.NoError(t, err)
	repo.put(existing)

	result, err := sync.Synchronize(context.Background(), companyID, discoveredPage("page-1", "Main Page", "tok-1"), existing)
	require.NoError(t, err)
	assert.False(t, result.Wrote)
}

func TestSynchronizer_UpdatesOnTokenRotation(t *testing.T) {
	repo := newFakeResourceRepo()
	sync := NewResourceSynchronizer(repo, zap.NewNop())
	companyID := uuid.New()

	existing, err := platform.NewResource("page-1", "Main Page", "tok-old", platform.ResourceKindPage, companyID)
	require.NoError(t, err)
	repo.put(existing)

	result, err := sync.Synchronize(context.Background(), companyID, discoveredPage("page-1", "Main Page", "tok-new"), existing)
	require.NoError(t, err)
	assert.True(t, result.Wrote)
	assert.Equal(t, "tok-new", repo.get("page-1").AccessToken)
}

func TestSynchronizer_ReconnectsDisconnectedResource(t *testing.T) {
	repo := newFakeResourceRepo()
	sync := NewResourceSynchronizer(repo, zap.NewNop())
	companyID := uuid.New()

	existing, err := platform.NewResource("page-1", "Main Page", "tok-1", platform.ResourceKindPage, companyID)
	require.NoError(t, err)
	existing.Disconnect()
	repo.put(existing)

	result, err := sync.Synchronize(context.Background(), companyID, discoveredPage("page-1", "Main Page", "tok-1"), existing)
	require.NoError(t, err)
	assert.True(t, result.Wrote)

	stored := repo.get("page-1")
	assert.Equal(t, platform.ResourceStatusConnected, stored.Status)
	assert.Nil(t, stored.DisconnectedAt)
}

func TestSynchronizer_ClaimsUnownedResource(t *testing.T) {
	repo := newFakeResourceRepo()
	sync := NewResourceSynchronizer(repo, zap.NewNop())
	companyID := uuid.New()

	existing, err := platform.NewResource("page-1", "Main Page", "tok-1", platform.ResourceKindPage, companyID)
	require.NoError(t, err)
	existing.OwnerCompanyID = nil
	repo.put(existing)

	result, err := sync.Synchronize(context.Background(), companyID, discoveredPage("page-1", "Main Page", "tok-1"), existing)
	require.NoError(t, err)
	assert.True(t, result.Wrote)
	assert.True(t, repo.get("page-1").OwnedBy(companyID))
}

func TestSynchronizer_PropagatesClaimConflict(t *testing.T) {
	repo := newFakeResourceRepo()
	sync := NewResourceSynchronizer(repo, zap.NewNop())
	companyA := uuid.New()
	companyB := uuid.New()

	existing, err := platform.NewResource("page-1", "Main Page", "tok-1", platform.ResourceKindPage, companyB)
	require.NoError(t, err)
	repo.put(existing)

	// Stale snapshot claims the row is unowned while company B already holds it
	stale := *existing
	stale.OwnerCompanyID = nil

	_, err = sync.Synchronize(context.Background(), companyA, discoveredPage("page-1", "Main Page", "tok-2"), &stale)
	assert.ErrorIs(t, err, platform.ErrResourceClaimed)
	assert.True(t, repo.get("page-1").OwnedBy(companyB))
}
