package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"restopos/domain"
)

type loginResponse struct {
	Token string       `json:"token"`
	Staff domain.Staff `json:"staff"`
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Staff, error) {
	body := map[string]string{"email": email, "password": password}
	raw, err := c.doRaw(ctx, http.MethodPost, "/auth/login", nil, nil, body)
	if err != nil {
		return domain.Staff{}, err
	}
	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.Staff{}, err
	}
	c.token = resp.Token
	c.cache.Clear()
	return resp.Staff, nil
}

// PostOrder submits a draft with its idempotency key. Retrying with the
// same key returns the already-created order instead of a duplicate.
func (c *Client) PostOrder(ctx context.Context, submission domain.OrderSubmission, idempotencyKey string) (domain.Order, error) {
	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set("Idempotency-Key", idempotencyKey)
	}
	var order domain.Order
	if err := c.mutate(ctx, http.MethodPost, "/api/orders", headers, submission, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	return GetOne[domain.Order](ctx, c, fmt.Sprintf("/api/orders/%d", id))
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, statusCode int) (domain.Order, error) {
	var order domain.Order
	body := map[string]int{"statusCode": statusCode}
	path := fmt.Sprintf("/api/orders/%d/status", id)
	if err := c.mutate(ctx, http.MethodPut, path, nil, body, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, fmt.Sprintf("/api/orders/%d", id), nil, nil, nil)
}

// PostStockMovement records an in/out/adjust movement against an item.
func (c *Client) PostStockMovement(ctx context.Context, itemID int64, movementType int, quantity int64, note string) (domain.StockMovement, error) {
	body := map[string]interface{}{
		"itemId":       itemID,
		"movementType": movementType,
		"quantity":     quantity,
		"note":         note,
	}
	var movement domain.StockMovement
	if err := c.mutate(ctx, http.MethodPost, "/api/stocks", nil, body, &movement); err != nil {
		return domain.StockMovement{}, err
	}
	return movement, nil
}

// SalesSummary is the aggregate row the report endpoints return.
type SalesSummary struct {
	OrderCount        int64   `json:"orderCount"`
	Revenue           float64 `json:"revenue"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

func (c *Client) DailySales(ctx context.Context) (SalesSummary, error) {
	return GetOne[SalesSummary](ctx, c, "/api/reports/sales/daily")
}

func (c *Client) MonthlySales(ctx context.Context) (SalesSummary, error) {
	return GetOne[SalesSummary](ctx, c, "/api/reports/sales/monthly")
}
