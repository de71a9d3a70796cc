package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/persistence/models"
)

// GormResourceRepository implements platform.ResourceRepository using GORM
type GormResourceRepository struct {
	db *gorm.DB
}

var _ platform.ResourceRepository = (*GormResourceRepository)(nil)

// NewGormResourceRepository creates a new GormResourceRepository
func NewGormResourceRepository(db *gorm.DB) *GormResourceRepository {
	return &GormResourceRepository{db: db}
}

// FindByExternalIDs batch-loads resources keyed by their platform IDs
func (r *GormResourceRepository) FindByExternalIDs(ctx context.Context, externalIDs []string) (map[string]*platform.Resource, error) {
	result := make(map[string]*platform.Resource, len(externalIDs))
	if len(externalIDs) == 0 {
		return result, nil
	}

	var resourceModels []models.ResourceModel
	if err := r.db.WithContext(ctx).
		Where("external_id IN ?", externalIDs).
		Find(&resourceModels).Error; err != nil {
		return nil, err
	}

	for i := range resourceModels {
		resource := resourceModels[i].ToDomain()
		result[resource.ExternalID] = resource
	}
	return result, nil
}

// FindConnectedByCompany lists the company's connected resources of one kind
func (r *GormResourceRepository) FindConnectedByCompany(ctx context.Context, companyID uuid.UUID, kind platform.ResourceKind) ([]platform.Resource, error) {
	var resourceModels []models.ResourceModel
	if err := r.db.WithContext(ctx).
		Where("owner_company_id = ? AND kind = ? AND status = ?", companyID, kind.String(), string(platform.ResourceStatusConnected)).
		Order("name ASC").
		Find(&resourceModels).Error; err != nil {
		return nil, err
	}

	resources := make([]platform.Resource, len(resourceModels))
	for i := range resourceModels {
		resources[i] = *resourceModels[i].ToDomain()
	}
	return resources, nil
}

// Create inserts a freshly claimed resource
func (r *GormResourceRepository) Create(ctx context.Context, resource *platform.Resource) error {
	var model models.ResourceModel
	model.FromDomain(resource)
	return r.db.WithContext(ctx).Create(&model).Error
}

// UpdateOwned applies refreshed values conditionally on ownership. The WHERE
// clause accepts rows still unowned or owned by ownerCompanyID; zero rows
// affected means another company claimed the resource concurrently.
func (r *GormResourceRepository) UpdateOwned(ctx context.Context, resource *platform.Resource, ownerCompanyID uuid.UUID) error {
	updates := map[string]any{
		"name":             resource.Name,
		"access_token":     resource.AccessToken,
		"status":           string(resource.Status),
		"owner_company_id": ownerCompanyID,
		"connected_at":     resource.ConnectedAt,
		"disconnected_at":  resource.DisconnectedAt,
		"updated_at":       time.Now(),
	}

	tx := r.db.WithContext(ctx).
		Model(&models.ResourceModel{}).
		Where("external_id = ? AND (owner_company_id IS NULL OR owner_company_id = ?)", resource.ExternalID, ownerCompanyID).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return platform.ErrResourceClaimed
	}
	return nil
}

// Disconnect soft-disables the listed resources owned by the company
func (r *GormResourceRepository) Disconnect(ctx context.Context, companyID uuid.UUID, externalIDs []string) (int64, error) {
	if len(externalIDs) == 0 {
		return 0, nil
	}

	now := time.Now()
	tx := r.db.WithContext(ctx).
		Model(&models.ResourceModel{}).
		Where("owner_company_id = ? AND external_id IN ?", companyID, externalIDs).
		Updates(map[string]any{
			"status":          string(platform.ResourceStatusDisconnected),
			"disconnected_at": now,
			"updated_at":      now,
		})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// ClearToken blanks the stored token of a single resource
func (r *GormResourceRepository) ClearToken(ctx context.Context, externalID string) error {
	tx := r.db.WithContext(ctx).
		Model(&models.ResourceModel{}).
		Where("external_id = ?", externalID).
		Updates(map[string]any{
			"access_token": "",
			"updated_at":   time.Now(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return platform.ErrResourceNotFound
	}
	return nil
}
