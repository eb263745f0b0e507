package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"restopos/domain"
)

func newOrderNo() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

func zeroIfNil(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// submitOrder turns a POS draft into a persisted order. Totals are always
// recomputed server-side from the submitted lines; unit prices are trusted
// as the snapshots the draft captured. An Idempotency-Key header makes the
// call safe to retry: a key already on file returns the original order.
func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderSubmission
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey != "" {
		if existing, ok := h.orderByIdempotencyKey(idemKey); ok {
			respondJSON(w, http.StatusOK, existing)
			return
		}
	}

	var branch domain.Branch
	err := h.db.Get(&branch, "SELECT * FROM branches WHERE id = ?", req.BranchID)
	if errors.Is(err, sql.ErrNoRows) {
		respondFieldError(w, http.StatusBadRequest, "branchId", "branch not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !branch.IsActive {
		respondFieldError(w, http.StatusBadRequest, "branchId", "branch is not active")
		return
	}

	if !h.refExists("order_types", req.OrderTypeID) {
		respondFieldError(w, http.StatusBadRequest, "orderTypeId", "order type not found")
		return
	}
	optionalRefs := []struct {
		id    *int64
		table string
		field string
	}{
		{req.PaymentModeID, "payment_modes", "paymentModeId"},
		{req.StaffID, "staff", "staffId"},
		{req.CustomerID, "customers", "customerId"},
		{req.TableID, "dining_tables", "tableId"},
		{req.KitchenID, "kitchens", "kitchenId"},
	}
	for _, ref := range optionalRefs {
		if ref.id != nil && !h.refExists(ref.table, *ref.id) {
			respondFieldError(w, http.StatusBadRequest, ref.field, ref.field+" not found")
			return
		}
	}

	// Default the selling staff to the authenticated account.
	if req.StaffID == nil {
		if staffID, ok := r.Context().Value(ctxStaffID).(int64); ok && staffID > 0 {
			req.StaffID = &staffID
		}
	}

	// One line per item, matching the cart. A duplicate line would write the
	// same pre-read stock snapshot twice and lose one decrement.
	itemIDs := make([]int64, 0, len(req.Items))
	seen := make(map[int64]bool, len(req.Items))
	for _, line := range req.Items {
		if seen[line.ItemID] {
			respondFieldError(w, http.StatusBadRequest, "items", fmt.Sprintf("item %d appears in more than one line", line.ItemID))
			return
		}
		seen[line.ItemID] = true
		itemIDs = append(itemIDs, line.ItemID)
	}
	query, inArgs, err := sqlx.In("SELECT * FROM items WHERE id IN (?)", itemIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	var items []domain.Item
	if err := h.db.Select(&items, h.db.Rebind(query), inArgs...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	byID := make(map[int64]domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	for _, line := range req.Items {
		item, ok := byID[line.ItemID]
		if !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("item %d not found", line.ItemID))
			return
		}
		if !item.IsActive || !item.IsAvailable {
			respondError(w, http.StatusConflict, fmt.Sprintf("%s is not available", item.Name))
			return
		}
		if item.StockQty < line.Quantity {
			respondError(w, http.StatusConflict, fmt.Sprintf("insufficient stock for %s", item.Name))
			return
		}
	}

	totals := domain.ComputeTotals(req.Items, req.TaxAmount, req.TaxPercentage, req.DiscountAmount, req.DiscountPercentage)

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	orderNo := newOrderNo()
	var orderID int64
	err = tx.QueryRowx(
		`INSERT INTO orders (
            order_no, branch_id, order_type_id, payment_mode_id, staff_id, customer_id,
            table_id, kitchen_id, status_code, subtotal, tax_amount, tax_percentage,
            discount_amount, discount_percentage, effective_tax, effective_discount,
            grand_total, notes, idempotency_key
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		orderNo, req.BranchID, req.OrderTypeID, req.PaymentModeID, req.StaffID, req.CustomerID,
		req.TableID, req.KitchenID, domain.StatusPlaced, totals.Subtotal, zeroIfNil(req.TaxAmount), req.TaxPercentage,
		zeroIfNil(req.DiscountAmount), req.DiscountPercentage, totals.EffectiveTax, totals.EffectiveDiscount,
		totals.GrandTotal, req.Notes, nullIfEmpty(idemKey),
	).Scan(&orderID)
	if err != nil {
		// Release the connection before re-querying: a concurrent retry may
		// have landed the same idempotency key first.
		tx.Rollback()
		if idemKey != "" {
			if existing, ok := h.orderByIdempotencyKey(idemKey); ok {
				respondJSON(w, http.StatusOK, existing)
				return
			}
		}
		respondError(w, http.StatusInternalServerError, "could not create order")
		return
	}

	for _, line := range req.Items {
		item := byID[line.ItemID]
		lineTotal := domain.LineTotal(line.Quantity, line.UnitPrice)
		if _, err := tx.Exec(
			`INSERT INTO order_items (order_id, item_id, item_name, quantity, unit_price, line_total, notes)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			orderID, line.ItemID, item.Name, line.Quantity, line.UnitPrice, lineTotal, line.Notes,
		); err != nil {
			respondError(w, http.StatusInternalServerError, "could not record order items")
			return
		}
		resulting := item.StockQty - line.Quantity
		if _, err := tx.Exec(
			"UPDATE items SET stock_qty = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			resulting, line.ItemID,
		); err != nil {
			respondError(w, http.StatusInternalServerError, "could not update stock")
			return
		}
		if _, err := tx.Exec(
			`INSERT INTO stock_movements (item_id, movement_type, quantity, resulting_qty, note, created_by)
             VALUES (?, ?, ?, ?, ?, ?)`,
			line.ItemID, domain.MovementOut, line.Quantity, resulting, "order "+orderNo, req.StaffID,
		); err != nil {
			respondError(w, http.StatusInternalServerError, "could not record stock movement")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "could not commit order")
		return
	}

	order, err := h.loadOrder(orderID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	h.hub.broadcast("orderCreated", order)
	respondJSON(w, http.StatusCreated, order)
}

// listOrders filters by at most one party: branch wins over staff, staff
// wins over customer. Status and a created-at date window stack on top.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	clauses := []string{"1=1"}
	args := []interface{}{}

	if branchID, ok := queryInt64(r, "branchId"); ok {
		clauses = append(clauses, "branch_id = ?")
		args = append(args, branchID)
	} else if staffID, ok := queryInt64(r, "staffId"); ok {
		clauses = append(clauses, "staff_id = ?")
		args = append(args, staffID)
	} else if customerID, ok := queryInt64(r, "customerId"); ok {
		clauses = append(clauses, "customer_id = ?")
		args = append(args, customerID)
	}

	if status, ok := queryInt64(r, "status"); ok {
		if !domain.ValidStatus(int(status)) {
			respondError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		clauses = append(clauses, "status_code = ?")
		args = append(args, status)
	}
	if from := strings.TrimSpace(r.URL.Query().Get("from")); from != "" {
		if _, err := time.Parse("2006-01-02", from); err != nil {
			respondError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		clauses = append(clauses, "DATE(created_at) >= ?")
		args = append(args, from)
	}
	if to := strings.TrimSpace(r.URL.Query().Get("to")); to != "" {
		if _, err := time.Parse("2006-01-02", to); err != nil {
			respondError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		clauses = append(clauses, "DATE(created_at) <= ?")
		args = append(args, to)
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := h.db.Get(&total, "SELECT COUNT(1) FROM orders WHERE "+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	query := "SELECT * FROM orders WHERE " + where + " ORDER BY id DESC"
	if params.Paged {
		limit, offset := params.limitOffset()
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	orders := []domain.Order{}
	if err := h.db.Select(&orders, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if err := h.attachItems(orders); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondList(w, params, orders, total)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	order, err := h.loadOrder(id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "order not found or already deleted")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

type statusUpdateRequest struct {
	StatusCode int `json:"statusCode" validate:"required"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidStatus(req.StatusCode) {
		respondError(w, http.StatusBadRequest, "unknown status code")
		return
	}

	var current int
	err = h.db.Get(&current, "SELECT status_code FROM orders WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "order not found or already deleted")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !domain.CanTransition(current, req.StatusCode) {
		respondError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("cannot move order from %s to %s", domain.StatusName(current), domain.StatusName(req.StatusCode)))
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	// The restock and the status write land in one transaction: a cancelled
	// order without its restock, or the reverse, must never be visible.
	if req.StatusCode == domain.StatusCancelled {
		if err := h.restockOrder(tx, id); err != nil {
			respondError(w, http.StatusInternalServerError, "could not restock cancelled order")
			return
		}
	}

	if _, err := tx.Exec(
		"UPDATE orders SET status_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		req.StatusCode, id,
	); err != nil {
		respondError(w, http.StatusInternalServerError, "could not update status")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "could not update status")
		return
	}

	order, err := h.loadOrder(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	h.hub.broadcast("orderStatus", map[string]interface{}{
		"orderId":    order.ID,
		"orderNo":    order.OrderNo,
		"statusCode": order.StatusCode,
		"status":     domain.StatusName(order.StatusCode),
	})
	respondJSON(w, http.StatusOK, order)
}

// restockOrder returns every line's quantity to inventory when an order is
// cancelled, leaving an audit trail of "in" movements. It runs inside the
// caller's transaction.
func (h *Handler) restockOrder(tx *sqlx.Tx, orderID int64) error {
	var order domain.Order
	if err := tx.Get(&order, "SELECT * FROM orders WHERE id = ?", orderID); err != nil {
		return err
	}
	var lines []domain.OrderItem
	if err := tx.Select(&lines, "SELECT * FROM order_items WHERE order_id = ?", orderID); err != nil {
		return err
	}
	for _, line := range lines {
		var resulting int64
		if err := tx.QueryRowx(
			"UPDATE items SET stock_qty = stock_qty + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? RETURNING stock_qty",
			line.Quantity, line.ItemID,
		).Scan(&resulting); err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO stock_movements (item_id, movement_type, quantity, resulting_qty, note, created_by)
             VALUES (?, ?, ?, ?, ?, ?)`,
			line.ItemID, domain.MovementIn, line.Quantity, resulting, "order "+order.OrderNo+" cancelled", order.StaffID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var status int
	err = h.db.Get(&status, "SELECT status_code FROM orders WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "order not found or already deleted")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if status != domain.StatusCancelled {
		respondError(w, http.StatusBadRequest, "only cancelled orders can be deleted")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()
	if _, err := tx.Exec("DELETE FROM order_items WHERE order_id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "could not delete order items")
		return
	}
	if _, err := tx.Exec("DELETE FROM orders WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "could not delete order")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "could not commit delete")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) loadOrder(id int64) (domain.Order, error) {
	var order domain.Order
	if err := h.db.Get(&order, "SELECT * FROM orders WHERE id = ?", id); err != nil {
		return domain.Order{}, err
	}
	items := []domain.OrderItem{}
	if err := h.db.Select(&items, "SELECT * FROM order_items WHERE order_id = ? ORDER BY id", id); err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return order, nil
}

func (h *Handler) orderByIdempotencyKey(key string) (domain.Order, bool) {
	var id int64
	err := h.db.Get(&id, "SELECT id FROM orders WHERE idempotency_key = ?", key)
	if err != nil {
		return domain.Order{}, false
	}
	order, err := h.loadOrder(id)
	if err != nil {
		return domain.Order{}, false
	}
	return order, true
}

func (h *Handler) attachItems(orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	query, args, err := sqlx.In("SELECT * FROM order_items WHERE order_id IN (?) ORDER BY id", ids)
	if err != nil {
		return err
	}
	var lines []domain.OrderItem
	if err := h.db.Select(&lines, h.db.Rebind(query), args...); err != nil {
		return err
	}
	byOrder := make(map[int64][]domain.OrderItem, len(orders))
	for _, line := range lines {
		byOrder[line.OrderID] = append(byOrder[line.OrderID], line)
	}
	for i := range orders {
		items := byOrder[orders[i].ID]
		if items == nil {
			items = []domain.OrderItem{}
		}
		orders[i].Items = items
	}
	return nil
}

func (h *Handler) refExists(table string, id int64) bool {
	var count int
	if err := h.db.Get(&count, fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE id = ?", table), id); err != nil {
		return false
	}
	return count > 0
}
