package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialsync/backend/internal/domain/identity"
	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/persistence/models"
)

// GormCompanyRepository implements identity.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

var _ identity.CompanyRepository = (*GormCompanyRepository)(nil)

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID loads a company by its ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrCompanyNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *identity.Company) error {
	var model models.CompanyModel
	model.FromDomain(company)
	return r.db.WithContext(ctx).Save(&model).Error
}

// UpdateToken writes one token slot without touching the rest of the row
func (r *GormCompanyRepository) UpdateToken(ctx context.Context, id uuid.UUID, kind platform.ResourceKind, token string) error {
	return r.updateTokenColumn(ctx, id, kind, token)
}

// ClearToken blanks one token slot
func (r *GormCompanyRepository) ClearToken(ctx context.Context, id uuid.UUID, kind platform.ResourceKind) error {
	return r.updateTokenColumn(ctx, id, kind, "")
}

func (r *GormCompanyRepository) updateTokenColumn(ctx context.Context, id uuid.UUID, kind platform.ResourceKind, token string) error {
	column := "page_access_token"
	if kind == platform.ResourceKindPixel {
		column = "pixel_access_token"
	}

	tx := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			column:       token,
			"updated_at": time.Now(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return identity.ErrCompanyNotFound
	}
	return nil
}

// IncrementInstallCount bumps the install counter atomically in SQL so
// concurrent callbacks never lose an increment
func (r *GormCompanyRepository) IncrementInstallCount(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"install_count": gorm.Expr("install_count + 1"),
			"updated_at":    time.Now(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return identity.ErrCompanyNotFound
	}
	return nil
}
