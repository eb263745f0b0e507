package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"restopos/domain"
)

type staffRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin manager cashier"`
	Phone    string `json:"phone" validate:"max=30"`
	BranchID *int64 `json:"branchId"`
}

func (h *Handler) createStaff(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	if req.Password == "" {
		respondFieldError(w, http.StatusBadRequest, "password", "password is required")
		return
	}
	if req.Role != domain.RoleAdmin && req.BranchID == nil {
		respondFieldError(w, http.StatusBadRequest, "branchId", "branchId is required for non-admin staff")
		return
	}
	if req.BranchID != nil && !h.branchExists(*req.BranchID) {
		respondFieldError(w, http.StatusBadRequest, "branchId", "branch not found")
		return
	}

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM staff WHERE email = ?", req.Email); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "email", "email already registered")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	var id int64
	err = h.db.QueryRowx(
		`INSERT INTO staff (branch_id, name, email, password, role, phone) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		req.BranchID, req.Name, req.Email, string(hashed), req.Role, req.Phone,
	).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create staff")
		return
	}
	h.respondStaff(w, http.StatusCreated, id)
}

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	clauses := []string{"1=1"}
	args := []interface{}{}

	if branchID, ok := queryInt64(r, "branchId"); ok {
		clauses = append(clauses, "branch_id = ?")
		args = append(args, branchID)
	}
	if role := strings.TrimSpace(r.URL.Query().Get("role")); role != "" {
		clauses = append(clauses, "role = ?")
		args = append(args, role)
	}
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		clauses = append(clauses, "(name LIKE ? OR email LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	if active := strings.TrimSpace(r.URL.Query().Get("isActive")); active != "" {
		clauses = append(clauses, "is_active = ?")
		args = append(args, active == "true")
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := h.db.Get(&total, "SELECT COUNT(1) FROM staff WHERE "+where, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	query := "SELECT * FROM staff WHERE " + where + " ORDER BY name"
	if params.Paged {
		limit, offset := params.limitOffset()
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	staff := []domain.Staff{}
	if err := h.db.Select(&staff, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondList(w, params, staff, total)
}

func (h *Handler) getStaff(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var staff domain.Staff
	err = h.db.Get(&staff, "SELECT * FROM staff WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "staff not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, staff)
}

func (h *Handler) updateStaff(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req staffRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	if req.Role != domain.RoleAdmin && req.BranchID == nil {
		respondFieldError(w, http.StatusBadRequest, "branchId", "branchId is required for non-admin staff")
		return
	}
	if req.BranchID != nil && !h.branchExists(*req.BranchID) {
		respondFieldError(w, http.StatusBadRequest, "branchId", "branch not found")
		return
	}

	var exists int
	if err := h.db.Get(&exists, "SELECT COUNT(1) FROM staff WHERE email = ? AND id != ?", req.Email, id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists > 0 {
		respondFieldError(w, http.StatusConflict, "email", "email already registered")
		return
	}

	res, err := h.db.Exec(
		`UPDATE staff SET branch_id = ?, name = ?, email = ?, role = ?, phone = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		req.BranchID, req.Name, req.Email, req.Role, req.Phone, id,
	)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not update staff")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		respondError(w, http.StatusNotFound, "staff not found")
		return
	}

	// Password changes ride along only when a new one is supplied.
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not hash password")
			return
		}
		if _, err := h.db.Exec("UPDATE staff SET password = ? WHERE id = ?", string(hashed), id); err != nil {
			respondError(w, http.StatusInternalServerError, "could not update password")
			return
		}
	}
	h.respondStaff(w, http.StatusOK, id)
}

func (h *Handler) toggleStaff(w http.ResponseWriter, r *http.Request) {
	h.toggleColumn(w, r, "staff", "is_active", "isActive", "staff")
}

func (h *Handler) respondStaff(w http.ResponseWriter, status int, id int64) {
	var staff domain.Staff
	if err := h.db.Get(&staff, "SELECT * FROM staff WHERE id = ?", id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, status, staff)
}
