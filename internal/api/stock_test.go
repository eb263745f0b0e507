package api

import (
	"net/http"
	"testing"

	"restopos/domain"
)

func TestItemCreateValidation(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	var created domain.Item
	status := request(t, http.MethodPost, server.URL+"/api/items", token, map[string]interface{}{
		"tenantId":    f.TenantID,
		"categoryId":  f.CategoryID,
		"name":        "Lentil Stew",
		"price":       "7.50",
		"description": "hearty",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", status)
	}
	if !created.Price.Equal(dec("7.50")) {
		t.Errorf("price = %s, want 7.50", created.Price)
	}
	if !created.IsActive || !created.IsAvailable {
		t.Errorf("new item flags = active %v available %v, want both true", created.IsActive, created.IsAvailable)
	}

	var errResp errorBody
	status = request(t, http.MethodPost, server.URL+"/api/items", token, map[string]interface{}{
		"tenantId":   f.TenantID,
		"categoryId": f.CategoryID,
		"name":       "Bad Price",
		"price":      "-1.00",
	}, &errResp)
	if status != http.StatusBadRequest || errResp.Field != "price" {
		t.Errorf("negative price status = %d field %q, want 400/price", status, errResp.Field)
	}

	status = request(t, http.MethodPost, server.URL+"/api/items", token, map[string]interface{}{
		"tenantId":   f.TenantID,
		"categoryId": 9999,
		"name":       "Orphan Dish",
		"price":      "5.00",
	}, &errResp)
	if status != http.StatusBadRequest || errResp.Field != "categoryId" {
		t.Errorf("unknown category status = %d field %q, want 400/categoryId", status, errResp.Field)
	}

	status = request(t, http.MethodPost, server.URL+"/api/items", token, map[string]interface{}{
		"tenantId":   f.TenantID,
		"categoryId": f.CategoryID,
		"name":       "Tomato Soup",
		"price":      "9.99",
	}, &errResp)
	if status != http.StatusConflict || errResp.Field != "name" {
		t.Errorf("duplicate item status = %d field %q, want 409/name", status, errResp.Field)
	}
}

func TestItemUpdateLeavesStockAlone(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	var updated domain.Item
	status := request(t, http.MethodPut, apiURL(server, "/api/items/%d", f.SoupID), token, map[string]interface{}{
		"tenantId":   f.TenantID,
		"categoryId": f.CategoryID,
		"name":       "Tomato Soup Deluxe",
		"price":      "11.00",
	}, &updated)
	if status != http.StatusOK {
		t.Fatalf("update status = %d, want 200", status)
	}
	if updated.StockQty != 20 {
		t.Errorf("stock after edit = %d, want 20 (edits never move stock)", updated.StockQty)
	}
	if !updated.Price.Equal(dec("11.00")) {
		t.Errorf("price = %s, want 11.00", updated.Price)
	}
}

func TestItemAvailabilityToggle(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	var toggled struct {
		IsAvailable bool `json:"isAvailable"`
	}
	status := request(t, http.MethodPut, apiURL(server, "/api/items/%d/toggle-available", f.SoupID), token, nil, &toggled)
	if status != http.StatusOK || toggled.IsAvailable {
		t.Fatalf("toggle status = %d available = %v, want 200/false", status, toggled.IsAvailable)
	}

	var unavailable []domain.Item
	request(t, http.MethodGet, server.URL+"/api/items?isAvailable=false", token, nil, &unavailable)
	if len(unavailable) != 1 || unavailable[0].ID != f.SoupID {
		t.Errorf("unavailable filter = %+v, want only the soup", unavailable)
	}
}

func TestStockMovements(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	var movement domain.StockMovement
	status := request(t, http.MethodPost, server.URL+"/api/stocks", token, map[string]interface{}{
		"itemId":       f.SoupID,
		"movementType": domain.MovementIn,
		"quantity":     30,
		"note":         "weekly delivery",
	}, &movement)
	if status != http.StatusCreated {
		t.Fatalf("movement in status = %d, want 201", status)
	}
	if movement.ResultingQty != 50 {
		t.Errorf("resulting qty = %d, want 50", movement.ResultingQty)
	}
	if got := stockOf(t, db, f.SoupID); got != 50 {
		t.Errorf("item stock = %d, want 50", got)
	}

	status = request(t, http.MethodPost, server.URL+"/api/stocks", token, map[string]interface{}{
		"itemId":       f.SoupID,
		"movementType": domain.MovementOut,
		"quantity":     10,
	}, &movement)
	if status != http.StatusCreated || movement.ResultingQty != 40 {
		t.Fatalf("movement out status = %d resulting = %d, want 201/40", status, movement.ResultingQty)
	}

	// Adjust is absolute: the quantity becomes the new level.
	status = request(t, http.MethodPost, server.URL+"/api/stocks", token, map[string]interface{}{
		"itemId":       f.SoupID,
		"movementType": domain.MovementAdjust,
		"quantity":     12,
		"note":         "cycle count",
	}, &movement)
	if status != http.StatusCreated || movement.ResultingQty != 12 {
		t.Fatalf("adjust status = %d resulting = %d, want 201/12", status, movement.ResultingQty)
	}
	if got := stockOf(t, db, f.SoupID); got != 12 {
		t.Errorf("item stock after adjust = %d, want 12", got)
	}

	// A cycle count can zero an item out.
	status = request(t, http.MethodPost, server.URL+"/api/stocks", token, map[string]interface{}{
		"itemId":       f.SoupID,
		"movementType": domain.MovementAdjust,
		"quantity":     0,
	}, &movement)
	if status != http.StatusCreated || movement.ResultingQty != 0 {
		t.Fatalf("adjust-to-zero status = %d resulting = %d, want 201/0", status, movement.ResultingQty)
	}
}

func TestStockMovementRejections(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	var errResp errorBody
	status := request(t, http.MethodPost, server.URL+"/api/stocks", token, map[string]interface{}{
		"itemId":       f.BreadID,
		"movementType": domain.MovementOut,
		"quantity":     6,
	}, &errResp)
	if status != http.StatusBadRequest || errResp.Field != "quantity" {
		t.Errorf("below-zero out status = %d field %q, want 400/quantity", status, errResp.Field)
	}
	if got := stockOf(t, db, f.BreadID); got != 5 {
		t.Errorf("stock after rejected movement = %d, want 5 untouched", got)
	}

	status = request(t, http.MethodPost, server.URL+"/api/stocks", token, map[string]interface{}{
		"itemId":       f.BreadID,
		"movementType": 9,
		"quantity":     1,
	}, &errResp)
	if status != http.StatusBadRequest {
		t.Errorf("bad movement type status = %d, want 400", status)
	}

	status = request(t, http.MethodPost, server.URL+"/api/stocks", token, map[string]interface{}{
		"itemId":       9999,
		"movementType": domain.MovementIn,
		"quantity":     1,
	}, &errResp)
	if status != http.StatusBadRequest || errResp.Field != "itemId" {
		t.Errorf("unknown item status = %d field %q, want 400/itemId", status, errResp.Field)
	}

	status = request(t, http.MethodPost, server.URL+"/api/stocks", token, map[string]interface{}{
		"itemId":       f.BreadID,
		"movementType": domain.MovementIn,
		"quantity":     0,
	}, &errResp)
	if status != http.StatusBadRequest || errResp.Field != "quantity" {
		t.Errorf("zero-quantity in status = %d field %q, want 400/quantity", status, errResp.Field)
	}
}

func TestStockHistoryAndLowStock(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	for _, qty := range []int{3, 4} {
		status := request(t, http.MethodPost, server.URL+"/api/stocks", token, map[string]interface{}{
			"itemId":       f.SoupID,
			"movementType": domain.MovementIn,
			"quantity":     qty,
		}, nil)
		if status != http.StatusCreated {
			t.Fatalf("movement status = %d", status)
		}
	}

	var history []domain.StockMovement
	status := request(t, http.MethodGet, apiURL(server, "/api/stocks?itemId=%d", f.SoupID), token, nil, &history)
	if status != http.StatusOK {
		t.Fatalf("history status = %d", status)
	}
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2", len(history))
	}
	// Newest first.
	if history[0].Quantity != 4 || history[1].Quantity != 3 {
		t.Errorf("history order = %d,%d, want 4,3", history[0].Quantity, history[1].Quantity)
	}

	var low []domain.Item
	status = request(t, http.MethodGet, server.URL+"/api/stocks/low?threshold=10", token, nil, &low)
	if status != http.StatusOK {
		t.Fatalf("low stock status = %d", status)
	}
	if len(low) != 1 || low[0].ID != f.BreadID {
		t.Errorf("low stock = %+v, want only the flatbread at 5", low)
	}
}
