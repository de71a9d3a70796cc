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

func newTestArbitrator(resourceRepo *fakeResourceRepo, skippedRepo *fakeSkippedRepo) *OwnershipArbitrator {
	logger := zap.NewNop()
	return NewOwnershipArbitrator(
		resourceRepo,
		skippedRepo,
		&fakeLocker{},
		NewResourceSynchronizer(resourceRepo, logger),
		logger,
	)
}

func TestArbitrator_ClaimsUnownedAndSkipsOwned(t *testing.T) {
	resourceRepo := newFakeResourceRepo()
	skippedRepo := &fakeSkippedRepo{}
	arb := newTestArbitrator(resourceRepo, skippedRepo)

	companyA := uuid.New()
	companyB := uuid.New()

	// P2 already belongs to company B
	p2, err := platform.NewResource("page-2", "Other Page", "tok-b", platform.ResourceKindPage, companyB)
	require.NoError(t, err)
	resourceRepo.put(p2)

	report, err := arb.Arbitrate(context.Background(), companyA, []platform.DiscoveredResource{
		discoveredPage("page-1", "Fresh Page", "tok-1"),
		discoveredPage("page-2", "Other Page", "tok-x"),
	})
	require.NoError(t, err)

	require.Len(t, report.Synced, 1)
	assert.Equal(t, "page-1", report.Synced[0].ExternalID)
	assert.Equal(t, 1, report.Wrote)

	require.Len(t, report.Skipped, 1)
	skip := report.Skipped[0]
	assert.Equal(t, "page-2", skip.ExternalID)
	assert.Equal(t, companyA, skip.AttemptingCompanyID)
	assert.Equal(t, companyB, skip.ConnectedCompanyID)
	assert.Equal(t, platform.SkipReasonAlreadyConnected, skip.Reason)

	// The contested row must be untouched
	stored := resourceRepo.get("page-2")
	assert.True(t, stored.OwnedBy(companyB))
	assert.Equal(t, "tok-b", stored.AccessToken)
}

func TestArbitrator_SecondRunIsIdempotent(t *testing.T) {
	resourceRepo := newFakeResourceRepo()
	skippedRepo := &fakeSkippedRepo{}
	arb := newTestArbitrator(resourceRepo, skippedRepo)

	companyID := uuid.New()
	discovered := []platform.DiscoveredResource{
		discoveredPage("page-1", "Main Page", "tok-1"),
		discoveredPage("page-2", "Second Page", "tok-2"),
	}

	first, err := arb.Arbitrate(context.Background(), companyID, discovered)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Wrote)

	second, err := arb.Arbitrate(context.Background(), companyID, discovered)
	require.NoError(t, err)
	assert.Len(t, second.Synced, 2)
	assert.Zero(t, second.Wrote)
}

func TestArbitrator_DoesNotDuplicateSkipRecords(t *testing.T) {
	resourceRepo := newFakeResourceRepo()
	skippedRepo := &fakeSkippedRepo{}
	arb := newTestArbitrator(resourceRepo, skippedRepo)

	companyA := uuid.New()
	companyB := uuid.New()

	p1, err := platform.NewResource("page-1", "Contested", "tok-b", platform.ResourceKindPage, companyB)
	require.NoError(t, err)
	resourceRepo.put(p1)

	discovered := []platform.DiscoveredResource{discoveredPage("page-1", "Contested", "tok-a")}

	for range 3 {
		report, err := arb.Arbitrate(context.Background(), companyA, discovered)
		require.NoError(t, err)
		assert.Len(t, report.Skipped, 1)
	}

	records, err := skippedRepo.FindUnresolvedByAttempting(context.Background(), companyA)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestArbitrator_LocksEveryDiscoveredResource(t *testing.T) {
	resourceRepo := newFakeResourceRepo()
	skippedRepo := &fakeSkippedRepo{}
	locker := &fakeLocker{}
	logger := zap.NewNop()
	arb := NewOwnershipArbitrator(resourceRepo, skippedRepo, locker, NewResourceSynchronizer(resourceRepo, logger), logger)

	companyID := uuid.New()
	_, err := arb.Arbitrate(context.Background(), companyID, []platform.DiscoveredResource{
		discoveredPage("page-1", "A", "t1"),
		discoveredPage("page-2", "B", "t2"),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"page-1", "page-2"}, locker.acquired)
}

func TestArbitrator_LostRaceBecomesSkip(t *testing.T) {
	resourceRepo := newFakeResourceRepo()
	skippedRepo := &fakeSkippedRepo{}
	arb := newTestArbitrator(resourceRepo, skippedRepo)

	companyA := uuid.New()
	companyB := uuid.New()

	// Company B claims the resource between the arbiter's warm load and the
	// decision. The relocking re-read sees B's row and records a skip.
	resourceRepo.put(mustResource(t, "page-1", "Raced", "tok-b", companyB))

	report, err := arb.Arbitrate(context.Background(), companyA, []platform.DiscoveredResource{
		discoveredPage("page-1", "Raced", "tok-a"),
	})
	require.NoError(t, err)
	assert.Empty(t, report.Synced)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, companyB, report.Skipped[0].ConnectedCompanyID)
}

func TestArbitrator_EmptyBatch(t *testing.T) {
	arb := newTestArbitrator(newFakeResourceRepo(), &fakeSkippedRepo{})

	report, err := arb.Arbitrate(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Synced)
	assert.Empty(t, report.Skipped)
	assert.Zero(t, report.Wrote)
}

func mustResource(t *testing.T, externalID, name, token string, owner uuid.UUID) *platform.Resource {
	t.Helper()
	r, err := platform.NewResource(externalID, name, token, platform.ResourceKindPage, owner)
	require.NoError(t, err)
	return r
}
