package api

import (
	"fmt"
	"net/http"
)

// toggleColumn flips a boolean column in place and reports the new value.
// Table and column names come from route handlers, never from request input.
func (h *Handler) toggleColumn(w http.ResponseWriter, r *http.Request, table, column, jsonKey, entity string) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	query := fmt.Sprintf("UPDATE %s SET %s = 1 - %s WHERE id = ?", table, column, column)
	res, err := h.db.Exec(query, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		respondError(w, http.StatusNotFound, entity+" not found")
		return
	}

	var value bool
	if err := h.db.Get(&value, fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", column, table), id); err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, jsonKey: value})
}
