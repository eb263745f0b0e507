// Package client is the typed HTTP client console tooling talks to the
// restopos API with. It normalizes the two list shapes the API can return,
// classifies errors for retry decisions, and caches reads by resource so
// mutations can invalidate exactly what they touched.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	cache   *TagCache
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   NewTagCache(),
	}
}

// SetToken installs the bearer token used on every subsequent request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Cache exposes the read cache, mainly so callers can drop it wholesale
// on logout.
func (c *Client) Cache() *TagCache {
	return c.cache
}

// doRaw performs one HTTP round trip and hands back the response body.
// Non-2xx responses and transport failures both come back as *APIError.
func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, headers http.Header, body interface{}) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: 0, Message: err.Error()}
	}
	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

// getCached serves GETs from the tag cache when possible and files fresh
// responses under the path's resource tag.
func (c *Client) getCached(ctx context.Context, path string, query url.Values) ([]byte, error) {
	key := cacheKey(path, query)
	if raw, ok := c.cache.Get(key); ok {
		return raw, nil
	}
	raw, err := c.doRaw(ctx, http.MethodGet, path, query, nil, nil)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, raw, resourceOf(path))
	return raw, nil
}

// mutate runs a write request and invalidates every resource the mutation
// could have touched.
func (c *Client) mutate(ctx context.Context, method, path string, headers http.Header, body, out interface{}) error {
	raw, err := c.doRaw(ctx, method, path, nil, headers, body)
	if err != nil {
		return err
	}
	c.cache.Invalidate(invalidatedBy(resourceOf(path))...)
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// resourceOf extracts the collection segment from an API path:
// /api/items/3/toggle-active -> items.
func resourceOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/")
	if idx := strings.IndexByte(trimmed, '/'); idx > 0 {
		return trimmed[:idx]
	}
	return trimmed
}

// invalidatedBy widens a mutated resource to everything derived from it.
// Orders move stock and feed reports; stock movements change item levels.
var crossInvalidation = map[string][]string{
	"orders": {"orders", "items", "stocks", "reports"},
	"stocks": {"stocks", "items"},
}

func invalidatedBy(resource string) []string {
	if tags, ok := crossInvalidation[resource]; ok {
		return tags
	}
	return []string{resource}
}
