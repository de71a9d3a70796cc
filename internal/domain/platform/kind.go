package platform

// ---------------------------------------------------------------------------
// ResourceKind
// ---------------------------------------------------------------------------

// ResourceKind discriminates the two classes of external resources a company
// can link. Each kind uses its own token slot and its own OAuth scope set.
type ResourceKind string

const (
	// ResourceKindPage is a social page managed via the page token slot
	ResourceKindPage ResourceKind = "page"
	// ResourceKindPixel is an advertising pixel managed via the pixel token slot
	ResourceKindPixel ResourceKind = "pixel"
)

// IsValid returns true if the resource kind is valid
func (k ResourceKind) IsValid() bool {
	switch k {
	case ResourceKindPage, ResourceKindPixel:
		return true
	default:
		return false
	}
}

// String returns the string representation of ResourceKind
func (k ResourceKind) String() string {
	return string(k)
}

// Scopes returns the OAuth scopes the authorization URL must request for
// this resource kind.
func (k ResourceKind) Scopes() []string {
	switch k {
	case ResourceKindPixel:
		return []string{"ads_management", "ads_read", "business_management"}
	default:
		return []string{"pages_show_list", "pages_messaging", "pages_manage_metadata", "pages_read_engagement"}
	}
}

// ---------------------------------------------------------------------------
// ResourceStatus
// ---------------------------------------------------------------------------

// ResourceStatus is the lifecycle status of a linked resource.
type ResourceStatus string

const (
	// ResourceStatusConnected indicates the resource is actively linked
	ResourceStatusConnected ResourceStatus = "connected"
	// ResourceStatusDisconnected indicates the resource was explicitly unlinked
	ResourceStatusDisconnected ResourceStatus = "disconnected"
)

// IsValid returns true if the status is valid
func (s ResourceStatus) IsValid() bool {
	switch s {
	case ResourceStatusConnected, ResourceStatusDisconnected:
		return true
	default:
		return false
	}
}

// String returns the string representation of ResourceStatus
func (s ResourceStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// SkipReason
// ---------------------------------------------------------------------------

// SkipReason encodes why ownership arbitration rejected a claim.
type SkipReason string

// SkipReasonAlreadyConnected is recorded when a discovered resource is
// already owned by a different company.
const SkipReasonAlreadyConnected SkipReason = "already_connected_to_another_company"
