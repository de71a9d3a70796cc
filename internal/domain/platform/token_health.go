package platform

// ---------------------------------------------------------------------------
// Token health taxonomy
// ---------------------------------------------------------------------------

// ErrorClass buckets platform error responses for the token health monitor.
type ErrorClass string

const (
	// ErrorClassInvalidCredential means the stored token has been invalidated
	// (password change, app removal, token expiry) and must be cleared.
	ErrorClassInvalidCredential ErrorClass = "invalid_credential"
	// ErrorClassPermissionDenied means the token is live but lacks a required
	// capability; re-authorization must request the missing scopes.
	ErrorClassPermissionDenied ErrorClass = "permission_denied"
	// ErrorClassTransient means the call may succeed if retried shortly.
	ErrorClassTransient ErrorClass = "transient"
	// ErrorClassOther is everything else.
	ErrorClassOther ErrorClass = "other"
)

// Classification is the result of inspecting a platform error response.
type Classification struct {
	// Class is the error bucket
	Class ErrorClass
	// MissingScopes names the capabilities a permission_denied response
	// lacked, when the platform reported them
	MissingScopes []string
	// Code is the platform's numeric error code, 0 when unknown
	Code int
	// Subcode is the platform's numeric error subcode, 0 when unknown
	Subcode int
	// Message is the platform's error message verbatim
	Message string
}

// ErrorClassifier inspects an error returned by a platform call and buckets
// it for the token health monitor.
type ErrorClassifier interface {
	Classify(err error) Classification
}
