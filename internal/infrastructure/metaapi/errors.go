package metaapi

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/socialsync/backend/internal/domain/platform"
)

// GraphError is the error envelope returned by the Graph API. The platform
// wraps every failure in {"error": {...}}; code and subcode together decide
// how the caller should react.
type GraphError struct {
	Message    string `json:"message"`
	Type       string `json:"type"`
	Code       int    `json:"code"`
	Subcode    int    `json:"error_subcode"`
	UserMsg    string `json:"error_user_msg"`
	HTTPStatus int    `json:"-"`
}

// Error implements the error interface
func (e *GraphError) Error() string {
	if e.Subcode != 0 {
		return fmt.Sprintf("metaapi: graph error %d/%d (%s): %s", e.Code, e.Subcode, e.Type, e.Message)
	}
	return fmt.Sprintf("metaapi: graph error %d (%s): %s", e.Code, e.Type, e.Message)
}

// IsRateLimit reports whether the error is a throttling response that a
// smaller page size or a later retry can get past.
func (e *GraphError) IsRateLimit() bool {
	switch e.Code {
	case 4, 17, 32, 613:
		return true
	}
	return e.HTTPStatus == 429
}

// graphErrorEnvelope mirrors the wire shape of a Graph API failure
type graphErrorEnvelope struct {
	Error *GraphError `json:"error"`
}

// Classifier maps Graph API failures onto the domain's error classes.
type Classifier struct{}

var _ platform.ErrorClassifier = Classifier{}

// Classify inspects an error and returns its domain classification. Non
// Graph errors (network failures, timeouts) classify as transient: the
// platform was never reached, so the credential is not suspect.
func (Classifier) Classify(err error) platform.Classification {
	var graphErr *GraphError
	if !errors.As(err, &graphErr) {
		return platform.Classification{Class: platform.ErrorClassTransient, Message: err.Error()}
	}

	c := platform.Classification{
		Code:    graphErr.Code,
		Subcode: graphErr.Subcode,
		Message: graphErr.Message,
	}

	switch {
	case graphErr.Code == 190:
		// OAuthException: the token itself is dead. Subcodes 458, 460, 463
		// and 467 name the specific way it died (app uninstalled, password
		// change, expiry, invalidation) but all demand re-authorization.
		c.Class = platform.ErrorClassInvalidCredential

	case graphErr.Code == 10, graphErr.Code >= 200 && graphErr.Code <= 299:
		c.Class = platform.ErrorClassPermissionDenied
		c.MissingScopes = extractScopes(graphErr.Message)

	case graphErr.IsRateLimit(), graphErr.Code == 1, graphErr.Code == 2, graphErr.Code == 341:
		c.Class = platform.ErrorClassTransient

	default:
		c.Class = platform.ErrorClassOther
	}

	return c
}

// scopePattern matches Graph permission names, which are always lowercase
// snake_case words like "pages_show_list" or "ads_management".
var scopePattern = regexp.MustCompile(`\b[a-z]+(?:_[a-z]+)+\b`)

// extractScopes pulls permission names out of a permission-denied message.
// Graph error text names the missing permissions verbatim ("requires the
// pages_messaging permission"), so the snake_case tokens in the message are
// the scopes re-authorization must request.
func extractScopes(message string) []string {
	matches := scopePattern.FindAllString(message, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	scopes := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			scopes = append(scopes, m)
		}
	}
	return scopes
}
