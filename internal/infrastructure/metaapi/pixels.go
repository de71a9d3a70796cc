package metaapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/socialsync/backend/internal/domain/platform"
)

// businessEntry is one element of /me/businesses
type businessEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// pixelEntry is one element of {business-id}/adspixels
type pixelEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FetchPixels walks the user's businesses and collects the ad pixels of
// each. Pixels carry no token of their own; operations against a pixel use
// the user token, so DiscoveredResource.AccessToken echoes it.
func (c *Client) FetchPixels(ctx context.Context, userToken string) (*platform.FetchResult, error) {
	var businesses []businessEntry

	collectBusinesses := func(raw json.RawMessage) error {
		var entries []businessEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("%w: %v", platform.ErrPlatformInvalidResponse, err)
		}
		businesses = append(businesses, entries...)
		return nil
	}

	if _, err := c.fetchAll(ctx, "/me/businesses", userToken, "id,name", collectBusinesses); err != nil {
		var graphErr *GraphError
		if errors.As(err, &graphErr) && (graphErr.Code == 10 || (graphErr.Code >= 200 && graphErr.Code <= 299)) {
			return nil, fmt.Errorf("%w: business_management", platform.ErrMissingCapabilities)
		}
		return nil, err
	}

	result := &platform.FetchResult{}
	for _, business := range businesses {
		collectPixels := func(raw json.RawMessage) error {
			var entries []pixelEntry
			if err := json.Unmarshal(raw, &entries); err != nil {
				return fmt.Errorf("%w: %v", platform.ErrPlatformInvalidResponse, err)
			}
			for _, pixel := range entries {
				result.Resources = append(result.Resources, platform.DiscoveredResource{
					ExternalID:  pixel.ID,
					Name:        pixel.Name,
					AccessToken: userToken,
					Kind:        platform.ResourceKindPixel,
				})
			}
			return nil
		}

		if _, err := c.fetchAll(ctx, "/"+business.ID+"/adspixels", userToken, "id,name", collectPixels); err != nil {
			// One inaccessible business must not sink the pixels already
			// collected from the others
			if len(result.Resources) == 0 {
				return nil, err
			}
			result.Partial = true
		}
	}

	return result, nil
}
