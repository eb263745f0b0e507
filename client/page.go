package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Page is the normalized list result. Endpoints answer either a paged
// envelope or, for legacy callers, a bare array; both decode into a Page so
// nothing downstream has to care which shape arrived.
type Page[T any] struct {
	Data            []T   `json:"data"`
	PageNumber      int   `json:"pageNumber"`
	PageSize        int   `json:"pageSize"`
	TotalCount      int64 `json:"totalCount"`
	TotalPages      int   `json:"totalPages"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

func decodePage[T any](raw []byte) (Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, err
		}
		return Page[T]{
			Data:       items,
			PageNumber: 1,
			PageSize:   len(items),
			TotalCount: int64(len(items)),
			TotalPages: 1,
		}, nil
	}
	var page Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return Page[T]{}, err
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page, nil
}

// List fetches a collection endpoint through the read cache.
func List[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	raw, err := c.getCached(ctx, path, query)
	if err != nil {
		return Page[T]{}, err
	}
	return decodePage[T](raw)
}

// GetOne fetches a single resource by path, e.g. /api/items/42.
func GetOne[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	raw, err := c.getCached(ctx, path, nil)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

func Create[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	var out T
	err := c.mutate(ctx, http.MethodPost, path, nil, body, &out)
	return out, err
}

func Update[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	var out T
	err := c.mutate(ctx, http.MethodPut, path, nil, body, &out)
	return out, err
}

type toggleResponse struct {
	ID          int64 `json:"id"`
	IsActive    *bool `json:"isActive"`
	IsAvailable *bool `json:"isAvailable"`
}

// ToggleActive flips a resource's active flag and returns the new value.
func (c *Client) ToggleActive(ctx context.Context, resource string, id int64) (bool, error) {
	var resp toggleResponse
	path := fmt.Sprintf("/api/%s/%d/toggle-active", resource, id)
	if err := c.mutate(ctx, http.MethodPut, path, nil, nil, &resp); err != nil {
		return false, err
	}
	if resp.IsActive == nil {
		return false, fmt.Errorf("client: toggle response missing isActive")
	}
	return *resp.IsActive, nil
}

// ToggleAvailability flips an item's availability flag.
func (c *Client) ToggleAvailability(ctx context.Context, id int64) (bool, error) {
	var resp toggleResponse
	path := fmt.Sprintf("/api/items/%d/toggle-available", id)
	if err := c.mutate(ctx, http.MethodPut, path, nil, nil, &resp); err != nil {
		return false, err
	}
	if resp.IsAvailable == nil {
		return false, fmt.Errorf("client: toggle response missing isAvailable")
	}
	return *resp.IsAvailable, nil
}
