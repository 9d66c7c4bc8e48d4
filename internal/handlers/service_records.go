package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/response"
)

// ServiceRecordHandler exposes vehicle maintenance history.
type ServiceRecordHandler struct {
	svc    *services.ServiceRecordService
	paging Paging
}

type serviceRecordRequest struct {
	VehicleID   string    `json:"vehicle_id" validate:"required"`
	Type        string    `json:"type" validate:"required,max=64"`
	Description string    `json:"description"`
	Provider    string    `json:"provider" validate:"omitempty,max=128"`
	Cost        int64     `json:"cost" validate:"min=0"`
	Odometer    int       `json:"odometer" validate:"min=0"`
	ServiceDate time.Time `json:"service_date"`
}

type updateServiceRecordRequest struct {
	Type        *string    `json:"type" validate:"omitempty,max=64"`
	Description *string    `json:"description"`
	Provider    *string    `json:"provider" validate:"omitempty,max=128"`
	Cost        *int64     `json:"cost" validate:"omitempty,min=0"`
	Odometer    *int       `json:"odometer" validate:"omitempty,min=0"`
	ServiceDate *time.Time `json:"service_date"`
}

// NewServiceRecordHandler constructs a ServiceRecordHandler.
func NewServiceRecordHandler(svc *services.ServiceRecordService, paging Paging) *ServiceRecordHandler {
	return &ServiceRecordHandler{svc: svc, paging: paging}
}

// GET /api/services
func (h *ServiceRecordHandler) List(c *gin.Context) {
	opts, err := h.paging.listOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.svc.List(requestContext(c), services.ListServiceRecordsOptions{
		ListOptions: opts,
		VehicleID:   c.Query("vehicle_id"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, result)
}

// GET /api/services/:id
func (h *ServiceRecordHandler) Get(c *gin.Context) {
	record, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// POST /api/services
func (h *ServiceRecordHandler) Create(c *gin.Context) {
	var body serviceRecordRequest
	if !bindAndValidate(c, &body) {
		return
	}

	record, err := h.svc.Create(requestContext(c), services.ServiceRecordInput{
		VehicleID:   body.VehicleID,
		Type:        body.Type,
		Description: body.Description,
		Provider:    body.Provider,
		Cost:        body.Cost,
		Odometer:    body.Odometer,
		ServiceDate: body.ServiceDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, record)
}

// PATCH /api/services/:id
func (h *ServiceRecordHandler) Update(c *gin.Context) {
	var body updateServiceRecordRequest
	if !bindAndValidate(c, &body) {
		return
	}

	record, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateServiceRecordInput{
		Type:        body.Type,
		Description: body.Description,
		Provider:    body.Provider,
		Cost:        body.Cost,
		Odometer:    body.Odometer,
		ServiceDate: body.ServiceDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// DELETE /api/services/:id
func (h *ServiceRecordHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
