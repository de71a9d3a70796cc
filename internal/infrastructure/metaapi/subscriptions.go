package metaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/socialsync/backend/internal/domain/platform"
)

// Subscribe arms the app's webhook subscription on one page using the
// page-scoped token. The platform treats repeated subscription as idempotent.
func (c *Client) Subscribe(ctx context.Context, externalID, resourceToken string) error {
	params := url.Values{}
	params.Set("access_token", resourceToken)
	params.Set("subscribed_fields", strings.Join(c.cfg.WebhookFields, ","))

	body, err := c.postForm(ctx, "/"+externalID+"/subscribed_apps", params)
	if err != nil {
		return err
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: unexpected subscription response", platform.ErrPlatformInvalidResponse)
	}
	if !resp.Success {
		return fmt.Errorf("%w: platform reported failure for %s", platform.ErrPlatformRequestFailed, externalID)
	}
	return nil
}

// CheckSubscription reports whether the app is currently subscribed on the
// page and with which fields.
func (c *Client) CheckSubscription(ctx context.Context, externalID, resourceToken string) (*platform.SubscriptionState, error) {
	params := url.Values{}
	params.Set("access_token", resourceToken)

	body, err := c.get(ctx, "/"+externalID+"/subscribed_apps", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			ID               string   `json:"id"`
			SubscribedFields []string `json:"subscribed_fields"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unexpected subscription response", platform.ErrPlatformInvalidResponse)
	}

	state := &platform.SubscriptionState{}
	for _, app := range resp.Data {
		if app.ID == c.cfg.AppID || len(resp.Data) == 1 {
			state.Subscribed = true
			state.Fields = app.SubscribedFields
			break
		}
	}
	return state, nil
}
