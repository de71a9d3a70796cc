package platform

import (
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SkippedResource Entity
// ---------------------------------------------------------------------------

// SkippedResource records an ownership conflict: a company attempted to
// claim a resource already held by another company. Records are created by
// arbitration, surfaced to operators, and mutated only by an explicit
// resolution. They are never deleted automatically.
type SkippedResource struct {
	// ID is the internal identifier of this record
	ID uuid.UUID
	// ExternalID is the platform-assigned identifier of the contested resource
	ExternalID string
	// Name is the display name of the contested resource
	Name string
	// Kind discriminates pages from pixels
	Kind ResourceKind
	// Reason encodes why the claim was rejected
	Reason SkipReason
	// AttemptingCompanyID is the company whose claim was rejected
	AttemptingCompanyID uuid.UUID
	// ConnectedCompanyID is the company currently holding the resource
	ConnectedCompanyID uuid.UUID
	// Resolved indicates an operator has reviewed the conflict
	Resolved bool
	// ResolvedAt is when the record was marked resolved
	ResolvedAt *time.Time
	// CreatedAt is when the conflict was recorded
	CreatedAt time.Time
	// UpdatedAt is when this record was last updated
	UpdatedAt time.Time
}

// NewSkippedResource creates a conflict record referencing both companies.
func NewSkippedResource(externalID, name string, kind ResourceKind, attempting, connected uuid.UUID) (*SkippedResource, error) {
	if externalID == "" {
		return nil, ErrResourceInvalidID
	}
	if attempting == uuid.Nil || connected == uuid.Nil {
		return nil, ErrResourceInvalidTenant
	}

	now := time.Now()
	return &SkippedResource{
		ID:                  uuid.New(),
		ExternalID:          externalID,
		Name:                name,
		Kind:                kind,
		Reason:              SkipReasonAlreadyConnected,
		AttemptingCompanyID: attempting,
		ConnectedCompanyID:  connected,
		Resolved:            false,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// Resolve marks the conflict as reviewed. Resolving twice is a no-op.
func (s *SkippedResource) Resolve() {
	if s.Resolved {
		return
	}
	now := time.Now()
	s.Resolved = true
	s.ResolvedAt = &now
	s.UpdatedAt = now
}
