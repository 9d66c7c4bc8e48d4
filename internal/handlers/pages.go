package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/pagination"
	"github.com/charlesng35/fleetcn/pkg/response"
)

type pageWindowResponse struct {
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
	Pages      []pagination.Token `json:"pages"`
}

// PageWindow renders the page bar for arbitrary totals.
//
// GET /api/pages?total=&per_page=&page=&delta=
//
// delta moves from page with ClampNavigate; without it page is clamped into range.
func PageWindow(c *gin.Context) {
	total, err := parseIntQuery(c, "total", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	perPage, err := parseIntQuery(c, "per_page", DefaultPaging.DefaultPerPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := parseIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, err)
		return
	}
	delta, err := parseIntQuery(c, "delta", 0)
	if err != nil {
		response.Error(c, err)
		return
	}

	window, err := pagination.New(total, perPage)
	if err != nil {
		response.Error(c, services.ErrInvalidPagination.WithInternal(err))
		return
	}
	if window.TotalPages() == 0 {
		response.Success(c, http.StatusOK, pageWindowResponse{Page: 1, PerPage: perPage, Pages: []pagination.Token{}})
		return
	}

	if delta != 0 {
		page = pagination.ClampNavigate(page, delta, window.TotalPages())
	} else {
		page = window.Clamp(page)
	}

	tokens, err := pagination.ComputeWindow(total, perPage, page)
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, pageWindowResponse{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: window.TotalPages(),
		Pages:      tokens,
	})
}
