package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/platform"
)

// CompanyRepository persists company accounts and their token slots.
type CompanyRepository interface {
	// FindByID loads a company, returning ErrCompanyNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)

	// Save creates or updates a company.
	Save(ctx context.Context, company *Company) error

	// UpdateToken writes one token slot without touching the rest of the row.
	UpdateToken(ctx context.Context, id uuid.UUID, kind platform.ResourceKind, token string) error

	// ClearToken blanks one token slot.
	ClearToken(ctx context.Context, id uuid.UUID, kind platform.ResourceKind) error

	// IncrementInstallCount bumps the install counter atomically.
	IncrementInstallCount(ctx context.Context, id uuid.UUID) error
}
