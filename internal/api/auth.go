package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"restopos/domain"
)

type ctxKey string

const (
	ctxStaffID ctxKey = "staffID"
	ctxRole    ctxKey = "role"
)

type authClaims struct {
	StaffID int64  `json:"staff_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin manager cashier"`
	BranchID *int64 `json:"branchId"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleCashier
	}
	if req.Role != domain.RoleAdmin && req.BranchID == nil {
		respondFieldError(w, http.StatusBadRequest, "branchId", "branchId is required for non-admin staff")
		return
	}
	if req.BranchID != nil && !h.branchExists(*req.BranchID) {
		respondFieldError(w, http.StatusBadRequest, "branchId", "branch not found")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not hash password")
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

	var staffID int64
	err = h.db.QueryRowx(
		`INSERT INTO staff (name, email, password, role, branch_id) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		req.Name, req.Email, string(hashed), req.Role, req.BranchID,
	).Scan(&staffID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create staff account")
		return
	}

	token, err := h.generateToken(staffID, req.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    staffID,
		"name":  req.Name,
		"email": req.Email,
		"role":  req.Role,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}

	var staff domain.Staff
	err := h.db.Get(&staff, "SELECT * FROM staff WHERE email = ?", req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !staff.IsActive {
		respondError(w, http.StatusForbidden, "staff account is deactivated")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.generateToken(staff.ID, staff.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"staff": staff,
	})
}

type resetPasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	staffID, ok := r.Context().Value(ctxStaffID).(int64)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validateBody(w, &req) {
		return
	}

	var current string
	err := h.db.Get(&current, "SELECT password FROM staff WHERE id = ?", staffID)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "staff not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(current), []byte(req.OldPassword)) != nil {
		respondError(w, http.StatusUnauthorized, "old password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not hash password")
		return
	}
	if _, err := h.db.Exec("UPDATE staff SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", string(hashed), staffID); err != nil {
		respondError(w, http.StatusInternalServerError, "could not update password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *Handler) generateToken(staffID int64, role string) (string, error) {
	claims := authClaims{
		StaffID: staffID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

// authMiddleware accepts the token as a Bearer header or, for websocket
// clients that cannot set headers, as a "token" query parameter.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ""
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		} else {
			tokenString = r.URL.Query().Get("token")
		}
		if tokenString == "" {
			respondError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxStaffID, claims.StaffID)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(ctxRole).(string)
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

func (h *Handler) branchExists(id int64) bool {
	var count int
	if err := h.db.Get(&count, "SELECT COUNT(1) FROM branches WHERE id = ?", id); err != nil {
		return false
	}
	return count > 0
}
