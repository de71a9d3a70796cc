package platform

import (
	"time"

	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/platform"
)

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// AuthorizeResponse carries the platform OAuth dialog URL the UI must
// redirect the user to.
type AuthorizeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

// ResourceResponse represents a linked resource in API responses
type ResourceResponse struct {
	ID                uuid.UUID  `json:"id"`
	ExternalID        string     `json:"external_id"`
	Name              string     `json:"name"`
	Kind              string     `json:"kind"`
	Status            string     `json:"status"`
	ConnectedAt       *time.Time `json:"connected_at,omitempty"`
	WebhookSubscribed *bool      `json:"webhook_subscribed,omitempty"`
}

// NewResourceResponse converts a domain resource to its API representation
func NewResourceResponse(r *platform.Resource) ResourceResponse {
	return ResourceResponse{
		ID:          r.ID,
		ExternalID:  r.ExternalID,
		Name:        r.Name,
		Kind:        r.Kind.String(),
		Status:      r.Status.String(),
		ConnectedAt: r.ConnectedAt,
	}
}

// SkippedResourceResponse represents an ownership conflict in API responses
type SkippedResourceResponse struct {
	ID                 uuid.UUID `json:"id"`
	ExternalID         string    `json:"external_id"`
	Name               string    `json:"name"`
	Kind               string    `json:"kind"`
	Reason             string    `json:"reason"`
	ConnectedCompanyID uuid.UUID `json:"connected_company_id"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewSkippedResourceResponse converts a conflict record to its API representation
func NewSkippedResourceResponse(s *platform.SkippedResource) SkippedResourceResponse {
	return SkippedResourceResponse{
		ID:                 s.ID,
		ExternalID:         s.ExternalID,
		Name:               s.Name,
		Kind:               s.Kind.String(),
		Reason:             string(s.Reason),
		ConnectedCompanyID: s.ConnectedCompanyID,
		CreatedAt:          s.CreatedAt,
	}
}

// ConnectionStatusResponse describes one kind's connection state for a company.
type ConnectionStatusResponse struct {
	Kind       string             `json:"kind"`
	Authorized bool               `json:"authorized"`
	Resources  []ResourceResponse `json:"resources"`
}

// CallbackResult is the outcome of one callback run, consumed by the HTTP
// layer to build the UI redirect.
type CallbackResult struct {
	CompanyID uuid.UUID                 `json:"company_id"`
	Kind      string                    `json:"kind"`
	Synced    []ResourceResponse        `json:"synced"`
	Skipped   []SkippedResourceResponse `json:"skipped"`
	Partial   bool                      `json:"partial"`
}

// DisconnectResponse reports how many resources a disconnect touched.
type DisconnectResponse struct {
	Disconnected int64 `json:"disconnected"`
}

// ResolveSkippedResponse reports how many conflict records were resolved.
type ResolveSkippedResponse struct {
	Resolved int64 `json:"resolved"`
}

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// DisconnectRequest lists the resources to disconnect. An empty list
// disconnects every connected resource of the kind.
type DisconnectRequest struct {
	ResourceIDs []string `json:"resource_ids"`
}

// ResolveSkippedRequest lists the conflict records to resolve. An empty list
// resolves every unresolved record for the company.
type ResolveSkippedRequest struct {
	ResourceIDs []string `json:"resource_ids"`
}
