package services

import (
	"context"
	"net/http"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/pagination"
)

// ErrInvalidPagination reports a page size or item count the page window cannot be built from.
var ErrInvalidPagination = apperrors.New("INVALID_PAGINATION", "Invalid pagination parameters", http.StatusBadRequest)

// ListOptions controls pagination and free-text search for list operations.
type ListOptions struct {
	Page    int
	PerPage int
	Query   string
}

// ListResult carries one page of rows together with the window it was cut from. Page is
// the requested page clamped into range.
type ListResult[T any] struct {
	Items  []T
	Window pagination.Window
	Page   int
}

// paginate counts the rows matched by query, clamps the requested page and loads it with
// the named associations preloaded.
func paginate[T any](query *gorm.DB, opts ListOptions, order string, preloads ...string) (*ListResult[T], error) {
	if _, err := pagination.New(0, opts.PerPage); err != nil {
		return nil, ErrInvalidPagination.WithInternal(err)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	window, err := pagination.New(int(total), opts.PerPage)
	if err != nil {
		return nil, ErrInvalidPagination.WithInternal(err)
	}
	page := window.Clamp(opts.Page)

	find := query
	for _, association := range preloads {
		find = find.Preload(association)
	}

	items := make([]T, 0, window.ItemsPerPage())
	if err := find.
		Order(order).
		Offset(window.Offset(page)).
		Limit(window.ItemsPerPage()).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &ListResult[T]{Items: items, Window: window, Page: page}, nil
}

// likePattern lower-cases the search term and wraps it for a LIKE comparison.
func likePattern(query string) string {
	return "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
