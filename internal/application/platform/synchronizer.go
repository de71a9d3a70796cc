package platform

import (
	"context"

	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/platform"
	"go.uber.org/zap"
)

// ResourceSynchronizer upserts resources the arbitrator has accepted.
// Unchanged resources are skipped entirely so a reconnect of an unchanged
// account issues zero writes.
type ResourceSynchronizer struct {
	resourceRepo platform.ResourceRepository
	logger       *zap.Logger
}

// NewResourceSynchronizer creates a new ResourceSynchronizer
func NewResourceSynchronizer(resourceRepo platform.ResourceRepository, logger *zap.Logger) *ResourceSynchronizer {
	return &ResourceSynchronizer{
		resourceRepo: resourceRepo,
		logger:       logger,
	}
}

// SyncResult is the per-resource outcome of a synchronize call.
type SyncResult struct {
	Resource *platform.Resource
	// Wrote is false when the stored row already matched the fresh values
	Wrote bool
}

// Synchronize writes one accepted resource for the company. existing is the
// current row, nil when the platform ID has never been seen. The caller must
// have already ruled out ownership by another company; a concurrent claim
// still surfaces as ErrResourceClaimed through the conditional update.
func (s *ResourceSynchronizer) Synchronize(ctx context.Context, companyID uuid.UUID, d platform.DiscoveredResource, existing *platform.Resource) (*SyncResult, error) {
	if existing == nil {
		resource, err := platform.NewResource(d.ExternalID, d.Name, d.AccessToken, d.Kind, companyID)
		if err != nil {
			return nil, err
		}
		if err := s.resourceRepo.Create(ctx, resource); err != nil {
			return nil, err
		}
		s.logger.Info("resource connected",
			zap.String("external_id", resource.ExternalID),
			zap.String("kind", resource.Kind.String()),
			zap.String("company_id", companyID.String()),
		)
		return &SyncResult{Resource: resource, Wrote: true}, nil
	}

	if existing.OwnedBy(companyID) && !existing.NeedsUpdate(d.Name, d.AccessToken) {
		return &SyncResult{Resource: existing, Wrote: false}, nil
	}

	existing.Refresh(d.Name, d.AccessToken)
	if existing.Unowned() {
		existing.OwnerCompanyID = &companyID
	}
	if err := s.resourceRepo.UpdateOwned(ctx, existing, companyID); err != nil {
		return nil, err
	}
	s.logger.Info("resource refreshed",
		zap.String("external_id", existing.ExternalID),
		zap.String("kind", existing.Kind.String()),
		zap.String("company_id", companyID.String()),
	)
	return &SyncResult{Resource: existing, Wrote: true}, nil
}
