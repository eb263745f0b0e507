package api

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageEnvelope is the paged list shape. Endpoints fall back to a bare
// array when the caller never asked for a page, so older console builds
// keep working against the same routes.
type pageEnvelope struct {
	Data            interface{} `json:"data"`
	PageNumber      int         `json:"pageNumber"`
	PageSize        int         `json:"pageSize"`
	TotalCount      int64       `json:"totalCount"`
	TotalPages      int         `json:"totalPages"`
	HasPreviousPage bool        `json:"hasPreviousPage"`
	HasNextPage     bool        `json:"hasNextPage"`
}

type pageParams struct {
	Number int
	Size   int
	Paged  bool
}

func parsePageParams(r *http.Request) pageParams {
	params := pageParams{Number: 1, Size: defaultPageSize}
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return params
	}
	params.Paged = true
	if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
		params.Number = n
	}
	if rawSize := strings.TrimSpace(r.URL.Query().Get("pageSize")); rawSize != "" {
		if n, err := strconv.Atoi(rawSize); err == nil && n >= 1 {
			params.Size = n
		}
	}
	if params.Size > maxPageSize {
		params.Size = maxPageSize
	}
	return params
}

func (p pageParams) limitOffset() (int, int) {
	return p.Size, (p.Number - 1) * p.Size
}

func respondList(w http.ResponseWriter, params pageParams, rows interface{}, total int64) {
	if !params.Paged {
		respondJSON(w, http.StatusOK, rows)
		return
	}
	totalPages := int(total / int64(params.Size))
	if total%int64(params.Size) != 0 {
		totalPages++
	}
	respondJSON(w, http.StatusOK, pageEnvelope{
		Data:            rows,
		PageNumber:      params.Number,
		PageSize:        params.Size,
		TotalCount:      total,
		TotalPages:      totalPages,
		HasPreviousPage: params.Number > 1,
		HasNextPage:     params.Number < totalPages,
	})
}
