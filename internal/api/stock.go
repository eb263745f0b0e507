package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"restopos/domain"
)

type stockMovementRequest struct {
	ItemID       int64  `json:"itemId" validate:"required,gt=0"`
	MovementType int    `json:"movementType" validate:"required"`
	Quantity     int64  `json:"quantity" validate:"gte=0"`
	Note         string `json:"note" validate:"max=255"`
}

// postStockMovement applies an in/out/adjust movement to an item inside a
// transaction and records the resulting level on the movement row.
func (h *Handler) postStockMovement(w http.ResponseWriter, r *http.Request) {
	var req stockMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	if !domain.ValidMovement(req.MovementType) {
		respondFieldError(w, http.StatusBadRequest, "movementType", "movementType must be 1 (in), 2 (out) or 3 (adjust)")
		return
	}
	// Adjust may set the level to zero; in and out must move something.
	if req.MovementType != domain.MovementAdjust && req.Quantity < 1 {
		respondFieldError(w, http.StatusBadRequest, "quantity", "quantity must be at least 1")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	var current int64
	err = tx.Get(&current, "SELECT stock_qty FROM items WHERE id = ?", req.ItemID)
	if errors.Is(err, sql.ErrNoRows) {
		respondFieldError(w, http.StatusBadRequest, "itemId", "item not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	var resulting int64
	switch req.MovementType {
	case domain.MovementIn:
		resulting = current + req.Quantity
	case domain.MovementOut:
		resulting = current - req.Quantity
		if resulting < 0 {
			respondFieldError(w, http.StatusBadRequest, "quantity", "movement would take stock below zero")
			return
		}
	case domain.MovementAdjust:
		// Adjust sets the absolute level; quantity is the new count.
		resulting = req.Quantity
	}

	if _, err := tx.Exec("UPDATE items SET stock_qty = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", resulting, req.ItemID); err != nil {
		respondError(w, http.StatusInternalServerError, "could not update stock")
		return
	}

	var createdBy *int64
	if staffID, ok := r.Context().Value(ctxStaffID).(int64); ok && staffID > 0 {
		createdBy = &staffID
	}
	var movementID int64
	err = tx.QueryRowx(
		`INSERT INTO stock_movements (item_id, movement_type, quantity, resulting_qty, note, created_by)
         VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		req.ItemID, req.MovementType, req.Quantity, resulting, req.Note, createdBy,
	).Scan(&movementID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not record movement")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "could not commit movement")
		return
	}

	var movement domain.StockMovement
	if err := h.db.Get(&movement, "SELECT * FROM stock_movements WHERE id = ?", movementID); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusCreated, movement)
}

func (h *Handler) listStockMovements(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	clauses := []string{"1=1"}
	args := []interface{}{}

	if itemID, ok := queryInt64(r, "itemId"); ok {
		clauses = append(clauses, "item_id = ?")
		args = append(args, itemID)
	}
	if movementType := strings.TrimSpace(r.URL.Query().Get("movementType")); movementType != "" {
		code, err := strconv.Atoi(movementType)
		if err != nil || !domain.ValidMovement(code) {
			respondError(w, http.StatusBadRequest, "invalid movementType filter")
			return
		}
		clauses = append(clauses, "movement_type = ?")
		args = append(args, code)
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := h.db.Get(&total, "SELECT COUNT(1) FROM stock_movements WHERE "+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	query := "SELECT * FROM stock_movements WHERE " + where + " ORDER BY id DESC"
	if params.Paged {
		limit, offset := params.limitOffset()
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	movements := []domain.StockMovement{}
	if err := h.db.Select(&movements, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondList(w, params, movements, total)
}

// lowStockAlerts lists active items at or below a threshold, lowest first.
func (h *Handler) lowStockAlerts(w http.ResponseWriter, r *http.Request) {
	threshold := int64(10)
	if raw := strings.TrimSpace(r.URL.Query().Get("threshold")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid threshold")
			return
		}
		threshold = parsed
	}

	items := []domain.Item{}
	err := h.db.Select(&items,
		"SELECT * FROM items WHERE is_active = 1 AND stock_qty <= ? ORDER BY stock_qty, name", threshold)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, items)
}
