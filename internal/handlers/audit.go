package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/response"
)

type AuditHandler struct {
	svc    *services.AuditService
	paging Paging
}

func NewAuditHandler(svc *services.AuditService, paging Paging) *AuditHandler {
	return &AuditHandler{svc: svc, paging: paging}
}

// GET /api/audit
func (h *AuditHandler) List(c *gin.Context) {
	opts, err := h.paging.listOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filters, err := auditFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.svc.List(requestContext(c), services.AuditListOptions{ListOptions: opts, Filters: filters})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, result)
}

// GET /api/audit/export
func (h *AuditHandler) Export(c *gin.Context) {
	filters, err := auditFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	logs, err := h.svc.Export(requestContext(c), filters)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="audit.json"`)
	response.Success(c, http.StatusOK, logs)
}

func auditFilters(c *gin.Context) (services.AuditFilters, error) {
	filters := services.AuditFilters{
		UserID:   strings.TrimSpace(c.Query("user_id")),
		Action:   strings.TrimSpace(c.Query("action")),
		Result:   strings.TrimSpace(c.Query("result")),
		Resource: strings.TrimSpace(c.Query("resource")),
	}

	var err error
	if filters.Since, err = parseTimeQuery(c, "since"); err != nil {
		return services.AuditFilters{}, err
	}
	if filters.Until, err = parseTimeQuery(c, "until"); err != nil {
		return services.AuditFilters{}, err
	}
	if filters.Since != nil && filters.Until != nil && filters.Until.Before(*filters.Since) {
		return services.AuditFilters{}, errors.NewBadRequest("until must not be before since")
	}
	return filters, nil
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.NewBadRequest(key + " must be an RFC3339 timestamp")
	}
	t = t.UTC()
	return &t, nil
}
