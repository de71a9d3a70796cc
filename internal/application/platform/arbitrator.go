package platform

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/platform"
	"go.uber.org/zap"
)

// DefaultClaimLockTTL bounds how long a per-resource claim lock may be held
// before the lock store reclaims it.
const DefaultClaimLockTTL = 15 * time.Second

// OwnershipArbitrator decides, per discovered resource, whether the claiming
// company may keep it. A resource owned by another company is never touched;
// the rejection is recorded as a SkippedResource instead. Accepted resources
// are handed to the synchronizer while the per-resource lock is still held.
type OwnershipArbitrator struct {
	resourceRepo platform.ResourceRepository
	skippedRepo  platform.SkippedResourceRepository
	locker       platform.ResourceLocker
	synchronizer *ResourceSynchronizer
	lockTTL      time.Duration
	logger       *zap.Logger
}

// NewOwnershipArbitrator creates a new OwnershipArbitrator
func NewOwnershipArbitrator(
	resourceRepo platform.ResourceRepository,
	skippedRepo platform.SkippedResourceRepository,
	locker platform.ResourceLocker,
	synchronizer *ResourceSynchronizer,
	logger *zap.Logger,
) *OwnershipArbitrator {
	return &OwnershipArbitrator{
		resourceRepo: resourceRepo,
		skippedRepo:  skippedRepo,
		locker:       locker,
		synchronizer: synchronizer,
		lockTTL:      DefaultClaimLockTTL,
		logger:       logger,
	}
}

// SyncReport aggregates the outcome of arbitrating one discovered batch.
type SyncReport struct {
	// Synced are the resources now connected to the company
	Synced []platform.Resource
	// Skipped are the ownership conflicts encountered in this run
	Skipped []platform.SkippedResource
	// Wrote counts resources that were actually created or updated
	Wrote int
	// Failed counts resources that errored and were left untouched
	Failed int
}

// Arbitrate runs the ownership decision for every discovered resource.
// Per-resource failures are logged and counted but do not abort the batch;
// only context cancellation or a failed batch preload does.
func (a *OwnershipArbitrator) Arbitrate(ctx context.Context, companyID uuid.UUID, discovered []platform.DiscoveredResource) (*SyncReport, error) {
	report := &SyncReport{}
	if len(discovered) == 0 {
		return report, nil
	}

	externalIDs := make([]string, 0, len(discovered))
	for _, d := range discovered {
		externalIDs = append(externalIDs, d.ExternalID)
	}
	// Warm batch load so the common no-conflict path avoids per-resource
	// lookups; the decision itself re-reads under the lock.
	existing, err := a.resourceRepo.FindByExternalIDs(ctx, externalIDs)
	if err != nil {
		return nil, err
	}

	unresolved, err := a.skippedRepo.FindUnresolvedByAttempting(ctx, companyID)
	if err != nil {
		return nil, err
	}
	alreadyRecorded := make(map[string]bool, len(unresolved))
	for _, s := range unresolved {
		alreadyRecorded[s.ExternalID] = true
	}

	for _, d := range discovered {
		if err := a.arbitrateOne(ctx, companyID, d, existing[d.ExternalID], alreadyRecorded, report); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			a.logger.Error("resource arbitration failed",
				zap.String("external_id", d.ExternalID),
				zap.String("company_id", companyID.String()),
				zap.Error(err),
			)
			report.Failed++
		}
	}
	return report, nil
}

func (a *OwnershipArbitrator) arbitrateOne(
	ctx context.Context,
	companyID uuid.UUID,
	d platform.DiscoveredResource,
	preloaded *platform.Resource,
	alreadyRecorded map[string]bool,
	report *SyncReport,
) error {
	release, err := a.locker.Acquire(ctx, d.ExternalID, a.lockTTL)
	if err != nil {
		return err
	}
	defer release()

	current := preloaded
	// The warm load happened before the lock, so another run may have
	// claimed the resource in between. Re-read once the lock is ours.
	fresh, err := a.resourceRepo.FindByExternalIDs(ctx, []string{d.ExternalID})
	if err != nil {
		return err
	}
	if r, ok := fresh[d.ExternalID]; ok {
		current = r
	} else {
		current = nil
	}

	if current != nil && !current.Unowned() && !current.OwnedBy(companyID) {
		return a.recordSkip(ctx, companyID, d, *current.OwnerCompanyID, alreadyRecorded, report)
	}

	result, err := a.synchronizer.Synchronize(ctx, companyID, d, current)
	if errors.Is(err, platform.ErrResourceClaimed) {
		// Lost the race despite the lock (e.g. an expired lock elsewhere).
		// The conditional update refused the write; treat it as a conflict.
		owner, ownerErr := a.currentOwner(ctx, d.ExternalID)
		if ownerErr != nil {
			return ownerErr
		}
		return a.recordSkip(ctx, companyID, d, owner, alreadyRecorded, report)
	}
	if err != nil {
		return err
	}

	report.Synced = append(report.Synced, *result.Resource)
	if result.Wrote {
		report.Wrote++
	}
	return nil
}

func (a *OwnershipArbitrator) recordSkip(
	ctx context.Context,
	companyID uuid.UUID,
	d platform.DiscoveredResource,
	owner uuid.UUID,
	alreadyRecorded map[string]bool,
	report *SyncReport,
) error {
	record, err := platform.NewSkippedResource(d.ExternalID, d.Name, d.Kind, companyID, owner)
	if err != nil {
		return err
	}
	if !alreadyRecorded[d.ExternalID] {
		if err := a.skippedRepo.Create(ctx, record); err != nil {
			return err
		}
		alreadyRecorded[d.ExternalID] = true
	}
	report.Skipped = append(report.Skipped, *record)
	a.logger.Warn("resource skipped, owned by another company",
		zap.String("external_id", d.ExternalID),
		zap.String("attempting_company_id", companyID.String()),
		zap.String("connected_company_id", owner.String()),
	)
	return nil
}

func (a *OwnershipArbitrator) currentOwner(ctx context.Context, externalID string) (uuid.UUID, error) {
	resources, err := a.resourceRepo.FindByExternalIDs(ctx, []string{externalID})
	if err != nil {
		return uuid.Nil, err
	}
	r, ok := resources[externalID]
	if !ok || r.OwnerCompanyID == nil {
		return uuid.Nil, platform.ErrResourceClaimed
	}
	return *r.OwnerCompanyID, nil
}
