// Repair-record read API.
//
// This file exposes the reporting endpoint over stored records:
//   - GET /records (list, paginated, newest first, ETag support)
//
// The write path is the chat flow; this endpoint only reads, so it is
// safe to cache and cheap to poll from dashboards.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fleetops/repair-intake/internal/domain"
	"github.com/fleetops/repair-intake/internal/repo"
	"github.com/fleetops/repair-intake/internal/utils"
)

// RecordsHandler serves read access to stored repair records.
type RecordsHandler struct {
	DB *gorm.DB
}

// NewRecords constructs a RecordsHandler over the given database.
func NewRecords(db *gorm.DB) *RecordsHandler {
	return &RecordsHandler{DB: db}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListRecordsResponse wraps a page of records and pagination information.
type ListRecordsResponse struct {
	Records    []domain.RepairRecord `json:"records"`
	Pagination Pagination            `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// ListRecords handles GET /records with weak-ETag support: the tag is
// derived from the row count and latest creation time, so any append
// invalidates cached pages.
func (h *RecordsHandler) ListRecords(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	count, maxTS, err := repo.RecordsStats(ctx, h.DB)
	if err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"records:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	total, err := repo.CountRecords(ctx, h.DB)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	items, err := repo.ListRecordsPage(ctx, h.DB, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.RepairRecord{}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListRecordsResponse{
		Records: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}
