package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"restopos/domain"
)

type tenantRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Code    string `json:"code" validate:"max=20"`
	Address string `json:"address" validate:"max=255"`
	Phone   string `json:"phone" validate:"max=30"`
}

func (h *Handler) createTenant(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM tenants WHERE name = ?", req.Name); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "name", "a tenant with this name already exists")
		return
	}

	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO tenants (name, code, address, phone) VALUES (?, ?, ?, ?) RETURNING id`,
		req.Name, req.Code, req.Address, req.Phone,
	).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create tenant")
		return
	}
	h.respondTenant(w, http.StatusCreated, id)
}

func (h *Handler) listTenants(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	clauses := []string{"1=1"}
	args := []interface{}{}

	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		clauses = append(clauses, "(name LIKE ? OR code LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	if active := strings.TrimSpace(r.URL.Query().Get("isActive")); active != "" {
		clauses = append(clauses, "is_active = ?")
		args = append(args, active == "true")
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := h.db.Get(&total, "SELECT COUNT(1) FROM tenants WHERE "+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	query := "SELECT * FROM tenants WHERE " + where + " ORDER BY name"
	if params.Paged {
		limit, offset := params.limitOffset()
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	tenants := []domain.Tenant{}
	if err := h.db.Select(&tenants, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondList(w, params, tenants, total)
}

func (h *Handler) getTenant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var tenant domain.Tenant
	err = h.db.Get(&tenant, "SELECT * FROM tenants WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "tenant not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, tenant)
}

func (h *Handler) updateTenant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req tenantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM tenants WHERE name = ? AND id != ?", req.Name, id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "name", "a tenant with this name already exists")
		return
	}

	res, err := h.db.Exec(
		`UPDATE tenants SET name = ?, code = ?, address = ?, phone = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		req.Name, req.Code, req.Address, req.Phone, id,
	)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not update tenant")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		respondError(w, http.StatusNotFound, "tenant not found")
		return
	}
	h.respondTenant(w, http.StatusOK, id)
}

func (h *Handler) toggleTenant(w http.ResponseWriter, r *http.Request) {
	h.toggleColumn(w, r, "tenants", "is_active", "isActive", "tenant")
}

func (h *Handler) respondTenant(w http.ResponseWriter, status int, id int64) {
	var tenant domain.Tenant
	if err := h.db.Get(&tenant, "SELECT * FROM tenants WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, status, tenant)
}
