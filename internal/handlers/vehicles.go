package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/response"
)

// VehicleHandler exposes the fleet register.
type VehicleHandler struct {
	svc    *services.VehicleService
	paging Paging
}

type vehicleRequest struct {
	Plate              string `json:"plate" validate:"required,plate"`
	VIN                string `json:"vin" validate:"omitempty,vin"`
	Make               string `json:"make" validate:"omitempty,max=64"`
	Model              string `json:"model" validate:"omitempty,max=64"`
	Year               int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	Color              string `json:"color" validate:"omitempty,max=32"`
	Status             string `json:"status" validate:"omitempty,oneof=active maintenance retired"`
	Mileage            int    `json:"mileage" validate:"min=0"`
	AssignedEmployeeID string `json:"assigned_employee_id"`
}

type updateVehicleRequest struct {
	Plate              *string `json:"plate" validate:"omitempty,plate"`
	VIN                *string `json:"vin" validate:"omitempty,vin"`
	Make               *string `json:"make" validate:"omitempty,max=64"`
	Model              *string `json:"model" validate:"omitempty,max=64"`
	Year               *int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	Color              *string `json:"color" validate:"omitempty,max=32"`
	Status             *string `json:"status" validate:"omitempty,oneof=active maintenance retired"`
	Mileage            *int    `json:"mileage" validate:"omitempty,min=0"`
	AssignedEmployeeID *string `json:"assigned_employee_id"`
}

// NewVehicleHandler constructs a VehicleHandler.
func NewVehicleHandler(svc *services.VehicleService, paging Paging) *VehicleHandler {
	return &VehicleHandler{svc: svc, paging: paging}
}

// GET /api/vehicles
func (h *VehicleHandler) List(c *gin.Context) {
	opts, err := h.paging.listOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.svc.List(requestContext(c), services.ListVehiclesOptions{
		ListOptions: opts,
		Status:      c.Query("status"),
		EmployeeID:  c.Query("employee_id"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, result)
}

// GET /api/vehicles/stats
func (h *VehicleHandler) Stats(c *gin.Context) {
	counts, err := h.svc.CountByStatus(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, counts)
}

// GET /api/vehicles/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	vehicle, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vehicle)
}

// POST /api/vehicles
func (h *VehicleHandler) Create(c *gin.Context) {
	var body vehicleRequest
	if !bindAndValidate(c, &body) {
		return
	}

	vehicle, err := h.svc.Create(requestContext(c), services.VehicleInput{
		Plate:              body.Plate,
		VIN:                body.VIN,
		Make:               body.Make,
		Model:              body.Model,
		Year:               body.Year,
		Color:              body.Color,
		Status:             body.Status,
		Mileage:            body.Mileage,
		AssignedEmployeeID: body.AssignedEmployeeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, vehicle)
}

// PATCH /api/vehicles/:id
func (h *VehicleHandler) Update(c *gin.Context) {
	var body updateVehicleRequest
	if !bindAndValidate(c, &body) {
		return
	}

	vehicle, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateVehicleInput{
		Plate:              body.Plate,
		VIN:                body.VIN,
		Make:               body.Make,
		Model:              body.Model,
		Year:               body.Year,
		Color:              body.Color,
		Status:             body.Status,
		Mileage:            body.Mileage,
		AssignedEmployeeID: body.AssignedEmployeeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vehicle)
}

// DELETE /api/vehicles/:id
func (h *VehicleHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
