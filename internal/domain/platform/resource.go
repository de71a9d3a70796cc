package platform

import (
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Resource Entity
// ---------------------------------------------------------------------------

// Resource represents an externally-owned platform object (a page or a
// pixel) linked to at most one company. The external ID is assigned by the
// platform and globally unique; OwnerCompanyID is nil until the resource is
// first claimed.
type Resource struct {
	// ID is the internal identifier of this row
	ID uuid.UUID
	// ExternalID is the platform-assigned identifier
	ExternalID string
	// Kind discriminates pages from pixels
	Kind ResourceKind
	// Name is the display name reported by the platform
	Name string
	// AccessToken is the resource-scoped access token
	AccessToken string
	// Status is the lifecycle status
	Status ResourceStatus
	// OwnerCompanyID is the owning company, nil when unclaimed
	OwnerCompanyID *uuid.UUID
	// ConnectedAt is when the resource was last connected
	ConnectedAt *time.Time
	// DisconnectedAt is when the resource was explicitly disconnected
	DisconnectedAt *time.Time
	// CreatedAt is when this row was created
	CreatedAt time.Time
	// UpdatedAt is when this row was last updated
	UpdatedAt time.Time
}

// NewResource creates a freshly claimed resource for a company.
func NewResource(externalID, name, accessToken string, kind ResourceKind, ownerCompanyID uuid.UUID) (*Resource, error) {
	if externalID == "" {
		return nil, ErrResourceInvalidID
	}
	if ownerCompanyID == uuid.Nil {
		return nil, ErrResourceInvalidTenant
	}
	if !kind.IsValid() {
		return nil, ErrResourceInvalidID
	}

	now := time.Now()
	return &Resource{
		ID:             uuid.New(),
		ExternalID:     externalID,
		Kind:           kind,
		Name:           name,
		AccessToken:    accessToken,
		Status:         ResourceStatusConnected,
		OwnerCompanyID: &ownerCompanyID,
		ConnectedAt:    &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// OwnedBy returns true if the resource is currently owned by the given company.
func (r *Resource) OwnedBy(companyID uuid.UUID) bool {
	return r.OwnerCompanyID != nil && *r.OwnerCompanyID == companyID
}

// Unowned returns true if no company currently holds the resource.
func (r *Resource) Unowned() bool {
	return r.OwnerCompanyID == nil
}

// NeedsUpdate reports whether a re-sync with the given fresh values would
// change anything. Unchanged resources are skipped entirely to avoid write
// amplification on reconnects.
func (r *Resource) NeedsUpdate(name, accessToken string) bool {
	if r.Status != ResourceStatusConnected {
		return true
	}
	return r.AccessToken != accessToken || r.Name != name
}

// Refresh applies freshly fetched values: rotates the token, updates the
// name, restores connected status and clears any prior disconnection.
func (r *Resource) Refresh(name, accessToken string) {
	now := time.Now()
	r.Name = name
	r.AccessToken = accessToken
	r.Status = ResourceStatusConnected
	r.ConnectedAt = &now
	r.DisconnectedAt = nil
	r.UpdatedAt = now
}

// Disconnect soft-disables the resource. The row is kept so a later
// reconnect retains history; normal flow never hard-deletes.
func (r *Resource) Disconnect() {
	now := time.Now()
	r.Status = ResourceStatusDisconnected
	r.DisconnectedAt = &now
	r.UpdatedAt = now
}

// ---------------------------------------------------------------------------
// DiscoveredResource Value Object
// ---------------------------------------------------------------------------

// DiscoveredResource is a resource as reported by the platform listing
// endpoint, before arbitration decides whether the claiming company may
// keep it.
type DiscoveredResource struct {
	// ExternalID is the platform-assigned identifier
	ExternalID string
	// Name is the display name
	Name string
	// AccessToken is the resource-scoped token returned by the listing
	AccessToken string
	// Kind discriminates pages from pixels
	Kind ResourceKind
}
