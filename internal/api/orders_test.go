package api

import (
	"net/http"
	"strings"
	"testing"

	"restopos/domain"
)

func soupOrder(f fixtures) domain.OrderSubmission {
	return domain.OrderSubmission{
		BranchID:    f.BranchID,
		OrderTypeID: 1,
		Items: []domain.LineSubmission{
			{ItemID: f.SoupID, Quantity: 2, UnitPrice: dec("10.00")},
		},
		TaxPercentage:  decPtr("10"),
		DiscountAmount: decPtr("3"),
	}
}

func TestSubmitOrderComputesTotals(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	var order domain.Order
	status := request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), &order)
	if status != http.StatusCreated {
		t.Fatalf("submit status = %d, want 201", status)
	}

	if !strings.HasPrefix(order.OrderNo, "ORD-") {
		t.Errorf("order number = %q, want ORD- prefix", order.OrderNo)
	}
	if order.StatusCode != domain.StatusPlaced {
		t.Errorf("status = %d, want placed", order.StatusCode)
	}
	if !order.Subtotal.Equal(dec("20")) {
		t.Errorf("subtotal = %s, want 20", order.Subtotal)
	}
	if !order.EffectiveTax.Equal(dec("2")) {
		t.Errorf("effective tax = %s, want 2", order.EffectiveTax)
	}
	if !order.EffectiveDiscount.Equal(dec("3")) {
		t.Errorf("effective discount = %s, want 3", order.EffectiveDiscount)
	}
	if !order.GrandTotal.Equal(dec("19")) {
		t.Errorf("grand total = %s, want 19", order.GrandTotal)
	}
	if len(order.Items) != 1 {
		t.Fatalf("order items = %d, want 1", len(order.Items))
	}
	line := order.Items[0]
	if line.ItemName != "Tomato Soup" || !line.LineTotal.Equal(dec("20")) {
		t.Errorf("line = %+v, want Tomato Soup at 20", line)
	}

	// Submitting consumed stock and left an audit movement.
	if got := stockOf(t, db, f.SoupID); got != 18 {
		t.Errorf("soup stock = %d, want 18", got)
	}
	var movement domain.StockMovement
	if err := db.Get(&movement,
		"SELECT * FROM stock_movements WHERE item_id = ? ORDER BY id DESC LIMIT 1", f.SoupID); err != nil {
		t.Fatalf("read movement: %v", err)
	}
	if movement.MovementType != domain.MovementOut || movement.ResultingQty != 18 {
		t.Errorf("movement = %+v, want out with resulting 18", movement)
	}
}

func TestSubmitOrderPercentageDiscountWins(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	submission := soupOrder(f)
	submission.DiscountPercentage = decPtr("50")

	var order domain.Order
	status := request(t, http.MethodPost, server.URL+"/api/orders", token, submission, &order)
	if status != http.StatusCreated {
		t.Fatalf("submit status = %d, want 201", status)
	}
	if !order.EffectiveDiscount.Equal(dec("10")) {
		t.Errorf("effective discount = %s, want 10 (50%% of 20)", order.EffectiveDiscount)
	}
	if !order.GrandTotal.Equal(dec("12")) {
		t.Errorf("grand total = %s, want 12", order.GrandTotal)
	}
}

func TestSubmitOrderIdempotentReplay(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	headers := map[string]string{"Idempotency-Key": "4fa2dd7c-2f1a-4a3e-9d5e-0c33aa111111"}

	var first domain.Order
	status := requestWithHeaders(t, http.MethodPost, server.URL+"/api/orders", token, headers, soupOrder(f), &first)
	if status != http.StatusCreated {
		t.Fatalf("first submit status = %d, want 201", status)
	}

	var replay domain.Order
	status = requestWithHeaders(t, http.MethodPost, server.URL+"/api/orders", token, headers, soupOrder(f), &replay)
	if status != http.StatusOK {
		t.Fatalf("replay status = %d, want 200", status)
	}
	if replay.ID != first.ID {
		t.Errorf("replay returned order %d, want original %d", replay.ID, first.ID)
	}
	if got := orderCount(t, db); got != 1 {
		t.Errorf("orders in database = %d, want 1", got)
	}
	if got := stockOf(t, db, f.SoupID); got != 18 {
		t.Errorf("stock after replay = %d, want 18 (no double decrement)", got)
	}
}

func TestSubmitOrderRejections(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	tests := []struct {
		name       string
		mutate     func(*domain.OrderSubmission)
		wantStatus int
	}{
		{
			name: "noLines",
			mutate: func(s *domain.OrderSubmission) {
				s.Items = nil
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "zeroQuantity",
			mutate: func(s *domain.OrderSubmission) {
				s.Items[0].Quantity = 0
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknownItem",
			mutate: func(s *domain.OrderSubmission) {
				s.Items[0].ItemID = 9999
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknownBranch",
			mutate: func(s *domain.OrderSubmission) {
				s.BranchID = 9999
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknownOrderType",
			mutate: func(s *domain.OrderSubmission) {
				s.OrderTypeID = 9999
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "insufficientStock",
			mutate: func(s *domain.OrderSubmission) {
				s.Items[0].Quantity = 100
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "duplicateItemLines",
			mutate: func(s *domain.OrderSubmission) {
				s.Items = append(s.Items, domain.LineSubmission{ItemID: f.SoupID, Quantity: 3, UnitPrice: dec("10.00")})
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submission := soupOrder(f)
			tt.mutate(&submission)
			var errResp errorBody
			status := request(t, http.MethodPost, server.URL+"/api/orders", token, submission, &errResp)
			if status != tt.wantStatus {
				t.Errorf("status = %d (%s), want %d", status, errResp.Message, tt.wantStatus)
			}
		})
	}

	if got := orderCount(t, db); got != 0 {
		t.Errorf("orders persisted by rejected submissions = %d, want 0", got)
	}
	if got := stockOf(t, db, f.SoupID); got != 20 {
		t.Errorf("stock after rejections = %d, want 20 untouched", got)
	}
	var movements int64
	if err := db.Get(&movements, "SELECT COUNT(1) FROM stock_movements WHERE item_id = ?", f.SoupID); err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if movements != 0 {
		t.Errorf("movements recorded by rejected submissions = %d, want 0", movements)
	}
}

func TestSubmitOrderInactiveBranchAndItem(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	request(t, http.MethodPut, apiURL(server, "/api/items/%d/toggle-available", f.SoupID), token, nil, nil)
	status := request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), nil)
	if status != http.StatusConflict {
		t.Errorf("unavailable item submit status = %d, want 409", status)
	}
	request(t, http.MethodPut, apiURL(server, "/api/items/%d/toggle-available", f.SoupID), token, nil, nil)

	request(t, http.MethodPut, apiURL(server, "/api/branches/%d/toggle-active", f.BranchID), token, nil, nil)
	var errResp errorBody
	status = request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), &errResp)
	if status != http.StatusBadRequest || errResp.Field != "branchId" {
		t.Errorf("inactive branch status = %d field %q, want 400/branchId", status, errResp.Field)
	}
}

func TestOrderStatusLifecycle(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	var order domain.Order
	request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), &order)

	// Skipping a step is rejected with both status names in the message.
	var errResp errorBody
	status := request(t, http.MethodPut, apiURL(server, "/api/orders/%d/status", order.ID), token,
		map[string]int{"statusCode": domain.StatusReady}, &errResp)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("skip transition status = %d, want 422", status)
	}
	if !strings.Contains(errResp.Message, "placed") || !strings.Contains(errResp.Message, "ready") {
		t.Errorf("transition message = %q, want it to name both states", errResp.Message)
	}

	for _, next := range []int{domain.StatusInKitchen, domain.StatusReady, domain.StatusServed, domain.StatusPaid} {
		var updated domain.Order
		status := request(t, http.MethodPut, apiURL(server, "/api/orders/%d/status", order.ID), token,
			map[string]int{"statusCode": next}, &updated)
		if status != http.StatusOK {
			t.Fatalf("transition to %d status = %d, want 200", next, status)
		}
		if updated.StatusCode != next {
			t.Errorf("order status = %d, want %d", updated.StatusCode, next)
		}
	}

	// Paid is terminal.
	status = request(t, http.MethodPut, apiURL(server, "/api/orders/%d/status", order.ID), token,
		map[string]int{"statusCode": domain.StatusCancelled}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Errorf("cancel after paid status = %d, want 422", status)
	}

	status = request(t, http.MethodPut, apiURL(server, "/api/orders/%d/status", order.ID), token,
		map[string]int{"statusCode": 42}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("unknown code status = %d, want 400", status)
	}
}

func TestCancelRestocksItems(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	var order domain.Order
	request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), &order)
	if got := stockOf(t, db, f.SoupID); got != 18 {
		t.Fatalf("stock after submit = %d, want 18", got)
	}

	var cancelled domain.Order
	status := request(t, http.MethodPut, apiURL(server, "/api/orders/%d/status", order.ID), token,
		map[string]int{"statusCode": domain.StatusCancelled}, &cancelled)
	if status != http.StatusOK {
		t.Fatalf("cancel status = %d, want 200", status)
	}
	// The restock and the status change commit together.
	if cancelled.StatusCode != domain.StatusCancelled {
		t.Errorf("status after cancel = %d, want cancelled", cancelled.StatusCode)
	}
	if got := stockOf(t, db, f.SoupID); got != 20 {
		t.Errorf("stock after cancel = %d, want 20 restored", got)
	}

	var movement domain.StockMovement
	if err := db.Get(&movement,
		"SELECT * FROM stock_movements WHERE item_id = ? ORDER BY id DESC LIMIT 1", f.SoupID); err != nil {
		t.Fatalf("read movement: %v", err)
	}
	if movement.MovementType != domain.MovementIn || !strings.Contains(movement.Note, "cancelled") {
		t.Errorf("restock movement = %+v, want an in-movement noting the cancellation", movement)
	}

	// Cancelled is terminal, so a second cancel cannot restock again.
	status = request(t, http.MethodPut, apiURL(server, "/api/orders/%d/status", order.ID), token,
		map[string]int{"statusCode": domain.StatusCancelled}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Errorf("double cancel status = %d, want 422", status)
	}
	if got := stockOf(t, db, f.SoupID); got != 20 {
		t.Errorf("stock after double cancel = %d, want 20 unchanged", got)
	}
}

func TestDeleteOnlyCancelledOrders(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	var order domain.Order
	request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), &order)

	status := request(t, http.MethodDelete, apiURL(server, "/api/orders/%d", order.ID), token, nil, nil)
	if status != http.StatusBadRequest {
		t.Errorf("delete placed order status = %d, want 400", status)
	}

	request(t, http.MethodPut, apiURL(server, "/api/orders/%d/status", order.ID), token,
		map[string]int{"statusCode": domain.StatusCancelled}, nil)
	status = request(t, http.MethodDelete, apiURL(server, "/api/orders/%d", order.ID), token, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("delete cancelled order status = %d, want 200", status)
	}

	var errResp errorBody
	status = request(t, http.MethodGet, apiURL(server, "/api/orders/%d", order.ID), token, nil, &errResp)
	if status != http.StatusNotFound {
		t.Errorf("get deleted order status = %d, want 404", status)
	}
	if errResp.Message != "order not found or already deleted" {
		t.Errorf("message = %q, want %q", errResp.Message, "order not found or already deleted")
	}

	status = request(t, http.MethodDelete, apiURL(server, "/api/orders/%d", order.ID), token, nil, &errResp)
	if status != http.StatusNotFound {
		t.Errorf("double delete status = %d, want 404", status)
	}
}

func TestListOrdersPartyFilterPrecedence(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	registerStaff(t, server.URL, "Server One", "s1@example.com", "cashier", &f.BranchID)
	registerStaff(t, server.URL, "Server Two", "s2@example.com", "cashier", &f.BranchID)
	var staff1, staff2 int64
	if err := db.Get(&staff1, "SELECT id FROM staff WHERE email = 's1@example.com'"); err != nil {
		t.Fatalf("staff1: %v", err)
	}
	if err := db.Get(&staff2, "SELECT id FROM staff WHERE email = 's2@example.com'"); err != nil {
		t.Fatalf("staff2: %v", err)
	}
	var customerID int64
	if err := db.QueryRowx(
		"INSERT INTO customers (tenant_id, name) VALUES (?, 'Walk In') RETURNING id", f.TenantID).Scan(&customerID); err != nil {
		t.Fatalf("customer: %v", err)
	}

	first := soupOrder(f)
	first.StaffID = &staff1
	request(t, http.MethodPost, server.URL+"/api/orders", token, first, nil)

	second := soupOrder(f)
	second.StaffID = &staff2
	second.CustomerID = &customerID
	request(t, http.MethodPost, server.URL+"/api/orders", token, second, nil)

	// staffId beats customerId: even with the customer of order two in the
	// query, only staff one's order comes back.
	var orders []domain.Order
	url := apiURL(server, "/api/orders?staffId=%d&customerId=%d", staff1, customerID)
	status := request(t, http.MethodGet, url, token, nil, &orders)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if len(orders) != 1 || orders[0].StaffID == nil || *orders[0].StaffID != staff1 {
		t.Errorf("staff+customer filter returned %d orders, want only staff one's", len(orders))
	}

	// branchId beats staffId: the whole branch comes back.
	url = apiURL(server, "/api/orders?branchId=%d&staffId=%d", f.BranchID, staff1)
	request(t, http.MethodGet, url, token, nil, &orders)
	if len(orders) != 2 {
		t.Errorf("branch+staff filter returned %d orders, want both", len(orders))
	}
}

func TestListOrdersStatusAndDateFilters(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	var order domain.Order
	request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), &order)
	request(t, http.MethodPut, apiURL(server, "/api/orders/%d/status", order.ID), token,
		map[string]int{"statusCode": domain.StatusInKitchen}, nil)
	request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), nil)

	var inKitchen []domain.Order
	status := request(t, http.MethodGet, apiURL(server, "/api/orders?status=%d", domain.StatusInKitchen), token, nil, &inKitchen)
	if status != http.StatusOK || len(inKitchen) != 1 {
		t.Errorf("status filter returned %d orders (status %d), want 1", len(inKitchen), status)
	}

	if status := request(t, http.MethodGet, server.URL+"/api/orders?from=yesterday", token, nil, nil); status != http.StatusBadRequest {
		t.Errorf("malformed from status = %d, want 400", status)
	}

	var none []domain.Order
	request(t, http.MethodGet, server.URL+"/api/orders?from=2099-01-01", token, nil, &none)
	if len(none) != 0 {
		t.Errorf("future from filter returned %d orders, want 0", len(none))
	}
}

func TestSalesReportExcludesCancelled(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), nil)

	var cancelled domain.Order
	request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), &cancelled)
	request(t, http.MethodPut, apiURL(server, "/api/orders/%d/status", cancelled.ID), token,
		map[string]int{"statusCode": domain.StatusCancelled}, nil)

	var report struct {
		OrderCount int64   `json:"orderCount"`
		Revenue    float64 `json:"revenue"`
		TopItems   []struct {
			ItemName string `json:"itemName"`
			Quantity int64  `json:"quantity"`
		} `json:"topItems"`
	}
	status := request(t, http.MethodGet, server.URL+"/api/reports/sales", token, nil, &report)
	if status != http.StatusOK {
		t.Fatalf("report status = %d", status)
	}
	if report.OrderCount != 1 {
		t.Errorf("order count = %d, want 1 (cancelled excluded)", report.OrderCount)
	}
	if report.Revenue != 19 {
		t.Errorf("revenue = %v, want 19", report.Revenue)
	}
	if len(report.TopItems) != 1 || report.TopItems[0].Quantity != 2 {
		t.Errorf("top items = %+v, want the soup at quantity 2", report.TopItems)
	}

	var daily struct {
		OrderCount int64   `json:"orderCount"`
		Revenue    float64 `json:"revenue"`
	}
	status = request(t, http.MethodGet, server.URL+"/api/reports/sales/daily", token, nil, &daily)
	if status != http.StatusOK || daily.OrderCount != 1 {
		t.Errorf("daily report = %+v (status %d), want today's single order", daily, status)
	}
}
