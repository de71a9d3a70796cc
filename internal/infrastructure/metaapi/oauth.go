package metaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/socialsync/backend/internal/domain/platform"
)

// tokenResponse is the wire shape of /oauth/access_token
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeCode trades a single-use authorization code for a user access
// token, then upgrades it to a long-lived token. Neither step retries: the
// code burns on first use, so a retry after a partial success would fail
// with a confusing error instead of the real one.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*platform.AccessToken, error) {
	params := url.Values{}
	params.Set("client_id", c.cfg.AppID)
	params.Set("client_secret", c.cfg.AppSecret)
	params.Set("redirect_uri", redirectURI)
	params.Set("code", code)

	body, err := c.get(ctx, "/oauth/access_token", params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", platform.ErrExchangeFailed, err)
	}

	var short tokenResponse
	if err := json.Unmarshal(body, &short); err != nil || short.AccessToken == "" {
		return nil, fmt.Errorf("%w: unexpected token response", platform.ErrExchangeFailed)
	}

	// Upgrade to a long-lived token. A failure here is non-fatal: the
	// short-lived token still works for the rest of the callback run.
	token := short
	extended, err := c.extendToken(ctx, short.AccessToken)
	if err != nil {
		c.logger.Warn("long-lived token exchange failed, continuing with short-lived token", zap.Error(err))
	} else {
		token = *extended
	}

	result := &platform.AccessToken{Token: token.AccessToken}
	if token.ExpiresIn > 0 {
		result.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	// Granted scopes are reported by the token debug endpoint; failures are
	// tolerated since scopes are advisory at this point.
	if scopes, err := c.debugTokenScopes(ctx, token.AccessToken); err == nil {
		result.Scopes = scopes
	}

	return result, nil
}

// extendToken trades a short-lived user token for a long-lived one.
func (c *Client) extendToken(ctx context.Context, shortToken string) (*tokenResponse, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", c.cfg.AppID)
	params.Set("client_secret", c.cfg.AppSecret)
	params.Set("fb_exchange_token", shortToken)

	body, err := c.get(ctx, "/oauth/access_token", params)
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: unexpected token response", platform.ErrPlatformInvalidResponse)
	}
	return &resp, nil
}

// debugTokenScopes asks the platform which scopes a token was granted.
func (c *Client) debugTokenScopes(ctx context.Context, token string) ([]string, error) {
	params := url.Values{}
	params.Set("input_token", token)
	params.Set("access_token", c.cfg.AppID+"|"+c.cfg.AppSecret)

	body, err := c.get(ctx, "/debug_token", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Scopes []string `json:"scopes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unexpected debug_token response", platform.ErrPlatformInvalidResponse)
	}
	return resp.Data.Scopes, nil
}

// AuthorizationURL builds the OAuth dialog URL the browser is sent to.
func (c *Client) AuthorizationURL(kind platform.ResourceKind, redirectURI, state string) string {
	params := url.Values{}
	params.Set("client_id", c.cfg.AppID)
	params.Set("redirect_uri", redirectURI)
	params.Set("state", state)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(kind.Scopes(), ","))
	return c.cfg.OAuthDialogURL + "?" + params.Encode()
}
