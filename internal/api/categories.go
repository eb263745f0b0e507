package api

import (
	"net/http"
	"strings"

	"restopos/domain"
)

type categoryRequest struct {
	TenantID     int64  `json:"tenantId" validate:"required,gt=0"`
	Name         string `json:"name" validate:"required,min=2,max=100"`
	DisplayOrder int64  `json:"displayOrder" validate:"gte=0"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM categories WHERE tenant_id = ? AND name = ?", req.TenantID, req.Name); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "name", "a category with this name already exists")
		return
	}

	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO categories (tenant_id, name, display_order) VALUES (?, ?, ?) RETURNING id`,
		req.TenantID, req.Name, req.DisplayOrder,
	).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create category")
		return
	}

	var category domain.Category
	if err := h.db.Get(&category, "SELECT * FROM categories WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	clauses := []string{"1=1"}
	args := []interface{}{}

	if tenantID, ok := queryInt64(r, "tenantId"); ok {
		clauses = append(clauses, "tenant_id = ?")
		args = append(args, tenantID)
	}
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		clauses = append(clauses, "name LIKE ?")
		args = append(args, "%"+search+"%")
	}
	if active := strings.TrimSpace(r.URL.Query().Get("isActive")); active != "" {
		clauses = append(clauses, "is_active = ?")
		args = append(args, active == "true")
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := h.db.Get(&total, "SELECT COUNT(1) FROM categories WHERE "+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	query := "SELECT * FROM categories WHERE " + where + " ORDER BY display_order, name"
	if params.Paged {
		limit, offset := params.limitOffset()
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	categories := []domain.Category{}
	if err := h.db.Select(&categories, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondList(w, params, categories, total)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM categories WHERE tenant_id = ? AND name = ? AND id != ?", req.TenantID, req.Name, id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "name", "a category with this name already exists")
		return
	}

	res, err := h.db.Exec(
		`UPDATE categories SET tenant_id = ?, name = ?, display_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		req.TenantID, req.Name, req.DisplayOrder, id,
	)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not update category")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}

	var category domain.Category
	if err := h.db.Get(&category, "SELECT * FROM categories WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *Handler) toggleCategory(w http.ResponseWriter, r *http.Request) {
	h.toggleColumn(w, r, "categories", "is_active", "isActive", "category")
}
