package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"restopos/domain"
)

type itemRequest struct {
	TenantID    int64           `json:"tenantId" validate:"required,gt=0"`
	CategoryID  int64           `json:"categoryId" validate:"required,gt=0"`
	Name        string          `json:"name" validate:"required,min=2,max=150"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl" validate:"max=500"`
	StockQty    *int64          `json:"stockQuantity"`
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Price.IsNegative() {
		respondFieldError(w, http.StatusBadRequest, "price", "price cannot be negative")
		return
	}

	var categoryTenant int64
	err := h.db.Get(&categoryTenant, "SELECT tenant_id FROM categories WHERE id = ?", req.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		respondFieldError(w, http.StatusBadRequest, "categoryId", "category not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if categoryTenant != req.TenantID {
		respondFieldError(w, http.StatusBadRequest, "categoryId", "category belongs to a different tenant")
		return
	}

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM items WHERE tenant_id = ? AND name = ?", req.TenantID, req.Name); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "name", "an item with this name already exists")
		return
	}

	stockQty := int64(0)
	if req.StockQty != nil {
		if *req.StockQty < 0 {
			respondFieldError(w, http.StatusBadRequest, "stockQuantity", "stock quantity cannot be negative")
			return
		}
		stockQty = *req.StockQty
	}

	var id int64
	err = h.db.QueryRowx(
		`INSERT INTO items (tenant_id, category_id, name, description, price, image_url, stock_qty)
         VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		req.TenantID, req.CategoryID, req.Name, req.Description, req.Price, req.ImageURL, stockQty,
	).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create item")
		return
	}
	h.respondItem(w, http.StatusCreated, id)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	clauses := []string{"1=1"}
	args := []interface{}{}

	if tenantID, ok := queryInt64(r, "tenantId"); ok {
		clauses = append(clauses, "tenant_id = ?")
		args = append(args, tenantID)
	}
	if categoryID, ok := queryInt64(r, "categoryId"); ok {
		clauses = append(clauses, "category_id = ?")
		args = append(args, categoryID)
	}
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		clauses = append(clauses, "(name LIKE ? OR description LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	if active := strings.TrimSpace(r.URL.Query().Get("isActive")); active != "" {
		clauses = append(clauses, "is_active = ?")
		args = append(args, active == "true")
	}
	if available := strings.TrimSpace(r.URL.Query().Get("isAvailable")); available != "" {
		clauses = append(clauses, "is_available = ?")
		args = append(args, available == "true")
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := h.db.Get(&total, "SELECT COUNT(1) FROM items WHERE "+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	query := "SELECT * FROM items WHERE " + where + " ORDER BY name"
	if params.Paged {
		limit, offset := params.limitOffset()
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	items := []domain.Item{}
	if err := h.db.Select(&items, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondList(w, params, items, total)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var item domain.Item
	err = h.db.Get(&item, "SELECT * FROM items WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Price.IsNegative() {
		respondFieldError(w, http.StatusBadRequest, "price", "price cannot be negative")
		return
	}

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM items WHERE tenant_id = ? AND name = ? AND id != ?", req.TenantID, req.Name, id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "name", "an item with this name already exists")
		return
	}

	// Stock level is adjusted through stock movements, not item edits.
	res, err := h.db.Exec(
		`UPDATE items SET category_id = ?, name = ?, description = ?, price = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		req.CategoryID, req.Name, req.Description, req.Price, req.ImageURL, id,
	)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not update item")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	h.respondItem(w, http.StatusOK, id)
}

func (h *Handler) toggleItem(w http.ResponseWriter, r *http.Request) {
	h.toggleColumn(w, r, "items", "is_active", "isActive", "item")
}

func (h *Handler) toggleItemAvailability(w http.ResponseWriter, r *http.Request) {
	h.toggleColumn(w, r, "items", "is_available", "isAvailable", "item")
}

func (h *Handler) respondItem(w http.ResponseWriter, status int, id int64) {
	var item domain.Item
	if err := h.db.Get(&item, "SELECT * FROM items WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, status, item)
}
