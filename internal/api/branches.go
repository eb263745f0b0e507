package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"restopos/domain"
)

type branchRequest struct {
	TenantID int64  `json:"tenantId" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Code     string `json:"code" validate:"max=20"`
	Address  string `json:"address" validate:"max=255"`
	Phone    string `json:"phone" validate:"max=30"`
}

func (h *Handler) createBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	var tenantCount int
	if err := h.db.Get(&tenantCount, "SELECT COUNT(1) FROM tenants WHERE id = ?", req.TenantID); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tenantCount == 0 {
		respondFieldError(w, http.StatusBadRequest, "tenantId", "tenant not found")
		return
	}

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM branches WHERE tenant_id = ? AND name = ?", req.TenantID, req.Name); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "name", "a branch with this name already exists for the tenant")
		return
	}

	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO branches (tenant_id, name, code, address, phone) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		req.TenantID, req.Name, req.Code, req.Address, req.Phone,
	).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create branch")
		return
	}
	h.respondBranch(w, http.StatusCreated, id)
}

func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	clauses := []string{"1=1"}
	args := []interface{}{}

	if tenantID, ok := queryInt64(r, "tenantId"); ok {
		clauses = append(clauses, "tenant_id = ?")
		args = append(args, tenantID)
	}
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
	if err := h.db.Get(&total, "SELECT COUNT(1) FROM branches WHERE "+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	query := "SELECT * FROM branches WHERE " + where + " ORDER BY name"
	if params.Paged {
		limit, offset := params.limitOffset()
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	branches := []domain.Branch{}
	if err := h.db.Select(&branches, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondList(w, params, branches, total)
}

func (h *Handler) getBranch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var branch domain.Branch
	err = h.db.Get(&branch, "SELECT * FROM branches WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "branch not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, branch)
}

func (h *Handler) updateBranch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req branchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM branches WHERE tenant_id = ? AND name = ? AND id != ?", req.TenantID, req.Name, id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "name", "a branch with this name already exists for the tenant")
		return
	}

	res, err := h.db.Exec(
		`UPDATE branches SET tenant_id = ?, name = ?, code = ?, address = ?, phone = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		req.TenantID, req.Name, req.Code, req.Address, req.Phone, id,
	)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not update branch")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		respondError(w, http.StatusNotFound, "branch not found")
		return
	}
	h.respondBranch(w, http.StatusOK, id)
}

func (h *Handler) toggleBranch(w http.ResponseWriter, r *http.Request) {
	h.toggleColumn(w, r, "branches", "is_active", "isActive", "branch")
}

func (h *Handler) respondBranch(w http.ResponseWriter, status int, id int64) {
	var branch domain.Branch
	if err := h.db.Get(&branch, "SELECT * FROM branches WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, status, branch)
}
