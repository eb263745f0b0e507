package api

import (
	"net/http"
	"strings"
	"time"

	"restopos/domain"
)

type salesSummary struct {
	OrderCount int64   `db:"order_count" json:"orderCount"`
	Revenue    float64 `db:"revenue" json:"revenue"`
}

type topItem struct {
	ItemID   int64   `db:"item_id" json:"itemId"`
	ItemName string  `db:"item_name" json:"itemName"`
	Quantity int64   `db:"quantity" json:"quantity"`
	Revenue  float64 `db:"revenue" json:"revenue"`
}

// salesReport aggregates non-cancelled orders over an optional branch and
// date window, with the top sellers for the same slice.
func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	clauses := []string{"o.status_code != ?"}
	args := []interface{}{domain.StatusCancelled}

	if branchID, ok := queryInt64(r, "branchId"); ok {
		clauses = append(clauses, "o.branch_id = ?")
		args = append(args, branchID)
	}
	if from := strings.TrimSpace(r.URL.Query().Get("from")); from != "" {
		if _, err := time.Parse("2006-01-02", from); err != nil {
			respondError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		clauses = append(clauses, "DATE(o.created_at) >= ?")
		args = append(args, from)
	}
	if to := strings.TrimSpace(r.URL.Query().Get("to")); to != "" {
		if _, err := time.Parse("2006-01-02", to); err != nil {
			respondError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		clauses = append(clauses, "DATE(o.created_at) <= ?")
		args = append(args, to)
	}
	where := strings.Join(clauses, " AND ")

	var summary salesSummary
	err := h.db.Get(&summary,
		`SELECT COUNT(1) AS order_count, COALESCE(SUM(CAST(o.grand_total AS REAL)), 0) AS revenue
         FROM orders o WHERE `+where, args...)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	topItems := []topItem{}
	err = h.db.Select(&topItems,
		`SELECT oi.item_id, oi.item_name,
                SUM(oi.quantity) AS quantity,
                COALESCE(SUM(CAST(oi.line_total AS REAL)), 0) AS revenue
         FROM order_items oi
         JOIN orders o ON o.id = oi.order_id
         WHERE `+where+`
         GROUP BY oi.item_id, oi.item_name
         ORDER BY quantity DESC
         LIMIT 5`, args...)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	average := 0.0
	if summary.OrderCount > 0 {
		average = summary.Revenue / float64(summary.OrderCount)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"orderCount":        summary.OrderCount,
		"revenue":           summary.Revenue,
		"averageOrderValue": average,
		"topItems":          topItems,
	})
}

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	h.periodSales(w, r, "DATE(created_at) = DATE('now')")
}

func (h *Handler) monthlySales(w http.ResponseWriter, r *http.Request) {
	h.periodSales(w, r, "strftime('%Y-%m', created_at) = strftime('%Y-%m', 'now')")
}

func (h *Handler) periodSales(w http.ResponseWriter, r *http.Request, period string) {
	clauses := []string{"status_code != ?", period}
	args := []interface{}{domain.StatusCancelled}

	if branchID, ok := queryInt64(r, "branchId"); ok {
		clauses = append(clauses, "branch_id = ?")
		args = append(args, branchID)
	}

	var summary salesSummary
	err := h.db.Get(&summary,
		`SELECT COUNT(1) AS order_count, COALESCE(SUM(CAST(grand_total AS REAL)), 0) AS revenue
         FROM orders WHERE `+strings.Join(clauses, " AND "), args...)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
