package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/response"
)

// EmployeeHandler exposes employee records.
type EmployeeHandler struct {
	svc    *services.EmployeeService
	paging Paging
}

type employeeRequest struct {
	FirstName  string     `json:"first_name" validate:"required,max=64"`
	LastName   string     `json:"last_name" validate:"required,max=64"`
	Email      string     `json:"email" validate:"omitempty,email"`
	Phone      string     `json:"phone" validate:"omitempty,max=32"`
	Position   string     `json:"position" validate:"omitempty,max=64"`
	DocumentID string     `json:"document_id" validate:"omitempty,max=32"`
	HireDate   *time.Time `json:"hire_date"`
}

type updateEmployeeRequest struct {
	FirstName  *string    `json:"first_name" validate:"omitempty,max=64"`
	LastName   *string    `json:"last_name" validate:"omitempty,max=64"`
	Email      *string    `json:"email" validate:"omitempty,email"`
	Phone      *string    `json:"phone" validate:"omitempty,max=32"`
	Position   *string    `json:"position" validate:"omitempty,max=64"`
	DocumentID *string    `json:"document_id" validate:"omitempty,max=32"`
	HireDate   *time.Time `json:"hire_date"`
	IsActive   *bool      `json:"is_active"`
}

// NewEmployeeHandler constructs an EmployeeHandler.
func NewEmployeeHandler(svc *services.EmployeeService, paging Paging) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, paging: paging}
}

// GET /api/employees
func (h *EmployeeHandler) List(c *gin.Context) {
	opts, err := h.paging.listOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	active, err := parseBoolQuery(c, "is_active")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.svc.List(requestContext(c), services.ListEmployeesOptions{ListOptions: opts, IsActive: active})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, result)
}

// GET /api/employees/:id
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, employee)
}

// POST /api/employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	var body employeeRequest
	if !bindAndValidate(c, &body) {
		return
	}

	employee, err := h.svc.Create(requestContext(c), services.EmployeeInput{
		FirstName:  body.FirstName,
		LastName:   body.LastName,
		Email:      body.Email,
		Phone:      body.Phone,
		Position:   body.Position,
		DocumentID: body.DocumentID,
		HireDate:   body.HireDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, employee)
}

// PATCH /api/employees/:id
func (h *EmployeeHandler) Update(c *gin.Context) {
	var body updateEmployeeRequest
	if !bindAndValidate(c, &body) {
		return
	}

	employee, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateEmployeeInput{
		FirstName:  body.FirstName,
		LastName:   body.LastName,
		Email:      body.Email,
		Phone:      body.Phone,
		Position:   body.Position,
		DocumentID: body.DocumentID,
		HireDate:   body.HireDate,
		IsActive:   body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, employee)
}

// DELETE /api/employees/:id
func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
