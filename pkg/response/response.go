// Package response renders the JSON envelope shared by every API endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/pagination"
)

// Response is the envelope: success flag plus either data (and list meta) or an error.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta accompanies list payloads. Pages is the page window a list control renders for
// the current page; it is empty when there is nothing to page through.
type Meta struct {
	Page       int                `json:"page,omitempty"`
	PerPage    int                `json:"per_page,omitempty"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
	Pages      []pagination.Token `json:"pages"`
}

// MetaFromWindow describes page (already clamped to the window) of window.
func MetaFromWindow(window pagination.Window, page int) *Meta {
	return &Meta{
		Page:       page,
		PerPage:    window.ItemsPerPage(),
		Total:      window.TotalItems(),
		TotalPages: window.TotalPages(),
		Pages:      window.Tokens(page),
	}
}

func Success(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

// List writes one page of items with its window metadata.
func List(c *gin.Context, items any, window pagination.Window, page int) {
	c.JSON(http.StatusOK, Response{Success: true, Data: items, Meta: MetaFromWindow(window, page)})
}

// Error renders err as an AppError. Errors that are not AppErrors become a generic 500
// so internal details never reach the client.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = apperrors.ErrInternalServer
	}
	appErr := apperrors.FromError(err)

	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{Error: &ErrorInfo{Code: appErr.Code, Message: appErr.Message}})
}
