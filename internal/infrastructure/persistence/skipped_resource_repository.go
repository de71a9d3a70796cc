package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/persistence/models"
)

// GormSkippedResourceRepository implements platform.SkippedResourceRepository using GORM
type GormSkippedResourceRepository struct {
	db *gorm.DB
}

var _ platform.SkippedResourceRepository = (*GormSkippedResourceRepository)(nil)

// NewGormSkippedResourceRepository creates a new GormSkippedResourceRepository
func NewGormSkippedResourceRepository(db *gorm.DB) *GormSkippedResourceRepository {
	return &GormSkippedResourceRepository{db: db}
}

// Create inserts a conflict record
func (r *GormSkippedResourceRepository) Create(ctx context.Context, record *platform.SkippedResource) error {
	var model models.SkippedResourceModel
	model.FromDomain(record)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindUnresolvedByAttempting lists unresolved records where the company was
// the attempting tenant
func (r *GormSkippedResourceRepository) FindUnresolvedByAttempting(ctx context.Context, companyID uuid.UUID) ([]platform.SkippedResource, error) {
	var recordModels []models.SkippedResourceModel
	if err := r.db.WithContext(ctx).
		Where("attempting_company_id = ? AND resolved = ?", companyID, false).
		Order("created_at DESC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]platform.SkippedResource, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records, nil
}

// Resolve marks matching unresolved records resolved. An empty externalIDs
// slice resolves every unresolved record for the company.
func (r *GormSkippedResourceRepository) Resolve(ctx context.Context, companyID uuid.UUID, externalIDs []string) (int64, error) {
	now := time.Now()
	query := r.db.WithContext(ctx).
		Model(&models.SkippedResourceModel{}).
		Where("attempting_company_id = ? AND resolved = ?", companyID, false)

	if len(externalIDs) > 0 {
		query = query.Where("external_id IN ?", externalIDs)
	}

	tx := query.Updates(map[string]any{
		"resolved":    true,
		"resolved_at": now,
		"updated_at":  now,
	})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
