package api

import (
	"net/http"
	"strings"

	"restopos/domain"
)

type customerRequest struct {
	TenantID int64  `json:"tenantId" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone" validate:"max=30"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}

	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO customers (tenant_id, name, phone, email) VALUES (?, ?, ?, ?) RETURNING id`,
		req.TenantID, strings.TrimSpace(req.Name), req.Phone, req.Email,
	).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create customer")
		return
	}

	var customer domain.Customer
	if err := h.db.Get(&customer, "SELECT * FROM customers WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusCreated, customer)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	clauses := []string{"1=1"}
	args := []interface{}{}

	if tenantID, ok := queryInt64(r, "tenantId"); ok {
		clauses = append(clauses, "tenant_id = ?")
		args = append(args, tenantID)
	}
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		clauses = append(clauses, "(name LIKE ? OR phone LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	if active := strings.TrimSpace(r.URL.Query().Get("isActive")); active != "" {
		clauses = append(clauses, "is_active = ?")
		args = append(args, active == "true")
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := h.db.Get(&total, "SELECT COUNT(1) FROM customers WHERE "+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	query := "SELECT * FROM customers WHERE " + where + " ORDER BY name"
	if params.Paged {
		limit, offset := params.limitOffset()
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	customers := []domain.Customer{}
	if err := h.db.Select(&customers, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondList(w, params, customers, total)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}

	res, err := h.db.Exec(
		`UPDATE customers SET name = ?, phone = ?, email = ? WHERE id = ?`,
		strings.TrimSpace(req.Name), req.Phone, req.Email, id,
	)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not update customer")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}

	var customer domain.Customer
	if err := h.db.Get(&customer, "SELECT * FROM customers WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *Handler) toggleCustomer(w http.ResponseWriter, r *http.Request) {
	h.toggleColumn(w, r, "customers", "is_active", "isActive", "customer")
}

type tableRequest struct {
	BranchID    int64 `json:"branchId" validate:"required,gt=0"`
	TableNumber int64 `json:"tableNumber" validate:"required,gt=0"`
	Seats       int64 `json:"seats" validate:"gte=0"`
}

func (h *Handler) createTable(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	if !h.branchExists(req.BranchID) {
		respondFieldError(w, http.StatusBadRequest, "branchId", "branch not found")
		return
	}

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM dining_tables WHERE branch_id = ? AND table_number = ?", req.BranchID, req.TableNumber); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "tableNumber", "this table number already exists for the branch")
		return
	}

	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO dining_tables (branch_id, table_number, seats) VALUES (?, ?, ?) RETURNING id`,
		req.BranchID, req.TableNumber, req.Seats,
	).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create table")
		return
	}

	var table domain.DiningTable
	if err := h.db.Get(&table, "SELECT * FROM dining_tables WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusCreated, table)
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	clauses := []string{"1=1"}
	args := []interface{}{}

	if branchID, ok := queryInt64(r, "branchId"); ok {
		clauses = append(clauses, "branch_id = ?")
		args = append(args, branchID)
	}
	if active := strings.TrimSpace(r.URL.Query().Get("isActive")); active != "" {
		clauses = append(clauses, "is_active = ?")
		args = append(args, active == "true")
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := h.db.Get(&total, "SELECT COUNT(1) FROM dining_tables WHERE "+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	query := "SELECT * FROM dining_tables WHERE " + where + " ORDER BY table_number"
	if params.Paged {
		limit, offset := params.limitOffset()
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	tables := []domain.DiningTable{}
	if err := h.db.Select(&tables, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondList(w, params, tables, total)
}

func (h *Handler) updateTable(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req tableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM dining_tables WHERE branch_id = ? AND table_number = ? AND id != ?", req.BranchID, req.TableNumber, id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "tableNumber", "this table number already exists for the branch")
		return
	}

	res, err := h.db.Exec(
		`UPDATE dining_tables SET branch_id = ?, table_number = ?, seats = ? WHERE id = ?`,
		req.BranchID, req.TableNumber, req.Seats, id,
	)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not update table")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		respondError(w, http.StatusNotFound, "table not found")
		return
	}

	var table domain.DiningTable
	if err := h.db.Get(&table, "SELECT * FROM dining_tables WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, table)
}

func (h *Handler) toggleTable(w http.ResponseWriter, r *http.Request) {
	h.toggleColumn(w, r, "dining_tables", "is_active", "isActive", "table")
}

type kitchenRequest struct {
	BranchID int64  `json:"branchId" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

func (h *Handler) createKitchen(w http.ResponseWriter, r *http.Request) {
	var req kitchenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	if !h.branchExists(req.BranchID) {
		respondFieldError(w, http.StatusBadRequest, "branchId", "branch not found")
		return
	}

	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO kitchens (branch_id, name) VALUES (?, ?) RETURNING id`,
		req.BranchID, strings.TrimSpace(req.Name),
	).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create kitchen")
		return
	}

	var kitchen domain.Kitchen
	if err := h.db.Get(&kitchen, "SELECT * FROM kitchens WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusCreated, kitchen)
}

func (h *Handler) listKitchens(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	clauses := []string{"1=1"}
	args := []interface{}{}

	if branchID, ok := queryInt64(r, "branchId"); ok {
		clauses = append(clauses, "branch_id = ?")
		args = append(args, branchID)
	}
	if active := strings.TrimSpace(r.URL.Query().Get("isActive")); active != "" {
		clauses = append(clauses, "is_active = ?")
		args = append(args, active == "true")
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := h.db.Get(&total, "SELECT COUNT(1) FROM kitchens WHERE "+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	query := "SELECT * FROM kitchens WHERE " + where + " ORDER BY name"
	if params.Paged {
		limit, offset := params.limitOffset()
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	kitchens := []domain.Kitchen{}
	if err := h.db.Select(&kitchens, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondList(w, params, kitchens, total)
}

func (h *Handler) updateKitchen(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req kitchenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}

	res, err := h.db.Exec(
		`UPDATE kitchens SET branch_id = ?, name = ? WHERE id = ?`,
		req.BranchID, strings.TrimSpace(req.Name), id,
	)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not update kitchen")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		respondError(w, http.StatusNotFound, "kitchen not found")
		return
	}

	var kitchen domain.Kitchen
	if err := h.db.Get(&kitchen, "SELECT * FROM kitchens WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, kitchen)
}

func (h *Handler) toggleKitchen(w http.ResponseWriter, r *http.Request) {
	h.toggleColumn(w, r, "kitchens", "is_active", "isActive", "kitchen")
}

func (h *Handler) listOrderTypes(w http.ResponseWriter, _ *http.Request) {
	types := []domain.OrderType{}
	if err := h.db.Select(&types, "SELECT * FROM order_types WHERE is_active = 1 ORDER BY id"); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, types)
}

func (h *Handler) listPaymentModes(w http.ResponseWriter, _ *http.Request) {
	modes := []domain.PaymentMode{}
	if err := h.db.Select(&modes, "SELECT * FROM payment_modes WHERE is_active = 1 ORDER BY id"); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, modes)
}
