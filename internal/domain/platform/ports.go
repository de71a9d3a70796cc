package platform

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Repository ports
// ---------------------------------------------------------------------------

// ResourceRepository persists linked resources. Implementations live in the
// infrastructure layer.
type ResourceRepository interface {
	// FindByExternalIDs batch-loads resources by their platform IDs so
	// arbitration never issues per-resource lookups.
	FindByExternalIDs(ctx context.Context, externalIDs []string) (map[string]*Resource, error)

	// FindConnectedByCompany lists the company's currently connected
	// resources of the given kind.
	FindConnectedByCompany(ctx context.Context, companyID uuid.UUID, kind ResourceKind) ([]Resource, error)

	// Create inserts a freshly claimed resource.
	Create(ctx context.Context, resource *Resource) error

	// UpdateOwned applies refreshed values to a resource conditionally on
	// the owner still being ownerCompanyID (or the row being unowned). It
	// returns ErrResourceClaimed when the condition fails, guaranteeing a
	// concurrent claim by another company is never silently overwritten.
	UpdateOwned(ctx context.Context, resource *Resource, ownerCompanyID uuid.UUID) error

	// Disconnect soft-disables the listed resources, restricted to rows the
	// company owns. It returns the number of rows affected.
	Disconnect(ctx context.Context, companyID uuid.UUID, externalIDs []string) (int64, error)

	// ClearToken blanks the stored token of a single resource.
	ClearToken(ctx context.Context, externalID string) error
}

// SkippedResourceRepository persists ownership conflict records.
type SkippedResourceRepository interface {
	// Create inserts a conflict record.
	Create(ctx context.Context, record *SkippedResource) error

	// FindUnresolvedByAttempting lists unresolved records where the company
	// was the attempting tenant.
	FindUnresolvedByAttempting(ctx context.Context, companyID uuid.UUID) ([]SkippedResource, error)

	// Resolve marks the matching unresolved records resolved. An empty
	// externalIDs slice resolves every unresolved record for the company.
	// It returns the number of records resolved.
	Resolve(ctx context.Context, companyID uuid.UUID, externalIDs []string) (int64, error)
}

// ---------------------------------------------------------------------------
// Lock port
// ---------------------------------------------------------------------------

// ResourceLocker serializes arbitration per external resource ID so two
// companies cannot both pass the "no prior owner" check for the same
// resource.
type ResourceLocker interface {
	// Acquire takes the lock for the external ID, returning a release
	// function. It returns ErrResourceLocked when the lock is held elsewhere
	// and the wait budget is exhausted.
	Acquire(ctx context.Context, externalID string, ttl time.Duration) (release func(), err error)
}

// ---------------------------------------------------------------------------
// Platform client ports
// ---------------------------------------------------------------------------

// AccessToken is an opaque platform token together with the scopes it was
// granted.
type AccessToken struct {
	// Token is the opaque token string
	Token string
	// Scopes are the granted capabilities, when the platform reported them
	Scopes []string
	// ExpiresAt is the token expiry, zero when the platform omitted it
	ExpiresAt time.Time
}

// FetchResult is the outcome of walking a paginated listing endpoint.
// Partial is true when retries were exhausted mid-walk and Resources holds
// only what was accumulated before the failure.
type FetchResult struct {
	Resources []DiscoveredResource
	Partial   bool
}

// SubscriptionState describes the webhook subscription of one resource.
type SubscriptionState struct {
	Subscribed bool
	Fields     []string
}

// Client is the outbound port to the external platform.
type Client interface {
	// AuthorizationURL builds the OAuth dialog URL for the given resource
	// kind, embedding the encoded state and the kind's scope set.
	AuthorizationURL(kind ResourceKind, redirectURI, state string) string

	// ExchangeCode trades a single-use authorization code for a long-lived
	// user access token. Never retried: codes burn on first use.
	ExchangeCode(ctx context.Context, code, redirectURI string) (*AccessToken, error)

	// FetchPages walks the user's page listing.
	FetchPages(ctx context.Context, userToken string) (*FetchResult, error)

	// FetchPixels walks the user's businesses and their ad pixels.
	FetchPixels(ctx context.Context, userToken string) (*FetchResult, error)

	// Subscribe arms the webhook subscription on one page using its
	// resource-scoped token.
	Subscribe(ctx context.Context, externalID, resourceToken string) error

	// CheckSubscription reports the current subscription state of one page.
	CheckSubscription(ctx context.Context, externalID, resourceToken string) (*SubscriptionState, error)
}
