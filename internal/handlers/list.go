package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/response"
)

// Paging holds the page size bounds applied to list endpoints.
type Paging struct {
	DefaultPerPage int
	MaxPerPage     int
}

// DefaultPaging is used when a handler is built without explicit bounds.
var DefaultPaging = Paging{DefaultPerPage: 10, MaxPerPage: 100}

func (p Paging) normalised() Paging {
	if p.MaxPerPage <= 0 {
		p.MaxPerPage = DefaultPaging.MaxPerPage
	}
	if p.DefaultPerPage <= 0 {
		p.DefaultPerPage = DefaultPaging.DefaultPerPage
	}
	p.DefaultPerPage = min(p.DefaultPerPage, p.MaxPerPage)
	return p
}

// listOptions reads page, per_page and q. A missing per_page takes the default and large
// values are capped; an explicit per_page of zero or less is rejected.
func (p Paging) listOptions(c *gin.Context) (services.ListOptions, error) {
	p = p.normalised()

	page, err := parseIntQuery(c, "page", 1)
	if err != nil {
		return services.ListOptions{}, err
	}
	perPage, err := parseIntQuery(c, "per_page", p.DefaultPerPage)
	if err != nil {
		return services.ListOptions{}, err
	}
	if perPage <= 0 {
		return services.ListOptions{}, errors.NewBadRequest("per_page must be greater than zero")
	}

	return services.ListOptions{
		Page:    max(page, 1),
		PerPage: min(perPage, p.MaxPerPage),
		Query:   strings.TrimSpace(c.Query("q")),
	}, nil
}

// writeList renders one page of items with its page window.
func writeList[T any](c *gin.Context, result *services.ListResult[T]) {
	response.List(c, result.Items, result.Window, result.Page)
}
