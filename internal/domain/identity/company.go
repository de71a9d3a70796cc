package identity

import (
	"errors"
	"strings"

	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/domain/shared"
)

// Company errors
var (
	ErrCompanyNotFound    = errors.New("identity: company not found")
	ErrCompanyInvalidName = errors.New("identity: company name is required")
)

// CompanyStatus represents the status of a company account
type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusSuspended CompanyStatus = "suspended"
)

// Company represents a tenant organization. It carries the two independent
// platform token slots: the page-scope token and the pixel-scope token are
// granted different capabilities and must never be conflated.
type Company struct {
	shared.BaseAggregateRoot
	Name             string
	Status           CompanyStatus
	PageAccessToken  string
	PixelAccessToken string
	PixelExternalID  string
	InstallCount     int
}

// NewCompany creates a new company account
func NewCompany(name string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCompanyInvalidName
	}
	return &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Status:            CompanyStatusActive,
	}, nil
}

// TokenForKind returns the stored token of the slot matching the resource kind.
func (c *Company) TokenForKind(kind platform.ResourceKind) string {
	if kind == platform.ResourceKindPixel {
		return c.PixelAccessToken
	}
	return c.PageAccessToken
}

// SetTokenForKind writes the token into the slot matching the resource kind.
func (c *Company) SetTokenForKind(kind platform.ResourceKind, token string) {
	if kind == platform.ResourceKindPixel {
		c.PixelAccessToken = token
		return
	}
	c.PageAccessToken = token
}

// ClearTokenForKind blanks the slot matching the resource kind so the next
// platform operation forces re-authorization.
func (c *Company) ClearTokenForKind(kind platform.ResourceKind) {
	c.SetTokenForKind(kind, "")
}

// RecordInstall increments the per-company install counter. Called once per
// callback run that synchronized at least one resource.
func (c *Company) RecordInstall() {
	c.InstallCount++
}
