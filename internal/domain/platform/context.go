package platform

import (
	"time"

	"github.com/google/uuid"
)

// StateTokenTTL is the maximum age of an authorization context. A callback
// arriving later than this must restart the flow.
const StateTokenTTL = 10 * time.Minute

// AuthorizationContext is the tamper-evident bundle of claim data carried
// through the OAuth redirect round-trip. It is created by the authorize
// endpoint, travels encoded in the `state` query parameter, and is consumed
// exactly once by the callback.
type AuthorizationContext struct {
	// CompanyID is the company initiating the link
	CompanyID uuid.UUID
	// UserID is the user who clicked authorize
	UserID uuid.UUID
	// Kind selects the resource class being linked
	Kind ResourceKind
	// Nonce makes each encoded context unique
	Nonce string
	// IssuedAt is when the context was created
	IssuedAt time.Time
}

// Expired judges expiry purely from the embedded timestamp; the codec keeps
// no server-side state.
func (c *AuthorizationContext) Expired(now time.Time) bool {
	return now.Sub(c.IssuedAt) > StateTokenTTL
}

// StateCodec encodes an AuthorizationContext into a transport-safe string
// and decodes it back, rejecting forged or expired values.
type StateCodec interface {
	Encode(ctx AuthorizationContext) (string, error)
	Decode(state string) (*AuthorizationContext, error)
}
