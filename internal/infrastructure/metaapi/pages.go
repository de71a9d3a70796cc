package metaapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/socialsync/backend/internal/domain/platform"
)

// listing is the wire shape of a paginated Graph collection
type listing struct {
	Data   json.RawMessage `json:"data"`
	Paging struct {
		Cursors struct {
			After string `json:"after"`
		} `json:"cursors"`
		Next string `json:"next"`
	} `json:"paging"`
}

// pageEntry is one element of /me/accounts
type pageEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// FetchPages walks the user's page listing, following the after-cursor until
// exhausted. Rate-limit responses shrink the page size and retry the same
// cursor position; once retries run out the walk stops and whatever
// accumulated is returned with Partial set.
func (c *Client) FetchPages(ctx context.Context, userToken string) (*platform.FetchResult, error) {
	result := &platform.FetchResult{}

	walk := func(raw json.RawMessage) error {
		var entries []pageEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("%w: %v", platform.ErrPlatformInvalidResponse, err)
		}
		for _, page := range entries {
			result.Resources = append(result.Resources, platform.DiscoveredResource{
				ExternalID:  page.ID,
				Name:        page.Name,
				AccessToken: page.AccessToken,
				Kind:        platform.ResourceKindPage,
			})
		}
		return nil
	}

	partial, err := c.fetchAll(ctx, "/me/accounts", userToken, "id,name,access_token", walk)
	if err != nil {
		if len(result.Resources) == 0 {
			return nil, err
		}
		// Partial results beat total failure: pages already fetched are
		// still actionable
		partial = true
	}
	result.Partial = partial
	return result, nil
}

// fetchAll walks one cursor-paginated collection, invoking consume for every
// page body. It returns partial=true when the walk stopped early with some
// pages already consumed, and a non-nil error when the walk failed outright.
func (c *Client) fetchAll(ctx context.Context, path, token, fields string, consume func(json.RawMessage) error) (bool, error) {
	pageSize := DefaultPageSize
	after := ""

	for {
		var current listing

		fetchPage := func() error {
			params := url.Values{}
			params.Set("access_token", token)
			if fields != "" {
				params.Set("fields", fields)
			}
			params.Set("limit", strconv.Itoa(pageSize))
			if after != "" {
				params.Set("after", after)
			}

			body, err := c.get(ctx, path, params)
			if err != nil {
				return err
			}
			current = listing{}
			if jsonErr := json.Unmarshal(body, &current); jsonErr != nil {
				return fmt.Errorf("%w: %v", platform.ErrPlatformInvalidResponse, jsonErr)
			}
			return nil
		}

		err := c.pagination.Do(ctx, fetchPage, func(err error) bool {
			var graphErr *GraphError
			if errors.As(err, &graphErr) && graphErr.IsRateLimit() {
				// Same cursor, smaller bite
				pageSize = ShrinkPageSize(pageSize)
				c.logger.Warn("rate limited during listing walk, shrinking page size",
					zap.String("path", path),
					zap.Int("page_size", pageSize))
				return true
			}
			return false
		})
		if err != nil {
			c.logger.Warn("listing walk aborted",
				zap.String("path", path),
				zap.Error(err))
			return after != "", err
		}

		if err := consume(current.Data); err != nil {
			return after != "", err
		}

		if current.Paging.Next == "" || current.Paging.Cursors.After == "" {
			return false, nil
		}
		after = current.Paging.Cursors.After
	}
}
