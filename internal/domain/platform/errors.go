package platform

import "errors"

var (
	// State token errors
	ErrStateInvalid = errors.New("platform: invalid state token")
	ErrStateExpired = errors.New("platform: state token expired")

	// OAuth errors
	ErrExchangeFailed = errors.New("platform: authorization code exchange failed")

	// Platform call errors
	ErrPlatformUnavailable     = errors.New("platform: temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("platform: request failed")
	ErrPlatformInvalidResponse = errors.New("platform: invalid response")
	ErrPlatformRateLimited     = errors.New("platform: rate limited")

	// Token health errors
	ErrInvalidCredential        = errors.New("platform: access token invalidated")
	ErrPermissionDenied         = errors.New("platform: required permission missing")
	ErrReauthorizationRequired  = errors.New("platform: re-authorization required")
	ErrMissingCapabilities      = errors.New("platform: granted scopes lack required capabilities")

	// Resource errors
	ErrResourceNotFound      = errors.New("platform: resource not found")
	ErrResourceInvalidID     = errors.New("platform: invalid external resource ID")
	ErrResourceInvalidTenant = errors.New("platform: invalid company ID")
	ErrResourceClaimed       = errors.New("platform: resource owned by another company")

	// Skip record errors
	ErrSkippedResourceNotFound = errors.New("platform: skipped resource record not found")

	// Lock errors
	ErrResourceLocked = errors.New("platform: resource is locked by another sync run")
)
