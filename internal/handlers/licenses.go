package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/response"
)

// LicenseHandler exposes employee driving licenses.
type LicenseHandler struct {
	svc    *services.LicenseService
	paging Paging
	now    func() time.Time
}

type licenseRequest struct {
	EmployeeID string     `json:"employee_id" validate:"required"`
	Number     string     `json:"number" validate:"required,max=64"`
	Class      string     `json:"class" validate:"required,max=16"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

type updateLicenseRequest struct {
	Number      *string    `json:"number" validate:"omitempty,max=64"`
	Class       *string    `json:"class" validate:"omitempty,max=16"`
	IssuedAt    *time.Time `json:"issued_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClearExpiry bool       `json:"clear_expiry"`
}

// NewLicenseHandler constructs a LicenseHandler.
func NewLicenseHandler(svc *services.LicenseService, paging Paging) *LicenseHandler {
	return &LicenseHandler{svc: svc, paging: paging, now: time.Now}
}

// GET /api/licenses
func (h *LicenseHandler) List(c *gin.Context) {
	opts, err := h.paging.listOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.svc.List(requestContext(c), services.ListLicensesOptions{
		ListOptions: opts,
		EmployeeID:  c.Query("employee_id"),
		Class:       c.Query("class"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, result)
}

// GET /api/licenses/expiring
func (h *LicenseHandler) Expiring(c *gin.Context) {
	from, to, err := expiryWindow(c, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.svc.ExpiringBetween(requestContext(c), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GET /api/licenses/:id
func (h *LicenseHandler) Get(c *gin.Context) {
	license, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, license)
}

// POST /api/licenses
func (h *LicenseHandler) Create(c *gin.Context) {
	var body licenseRequest
	if !bindAndValidate(c, &body) {
		return
	}

	license, err := h.svc.Create(requestContext(c), services.LicenseInput{
		EmployeeID: body.EmployeeID,
		Number:     body.Number,
		Class:      body.Class,
		IssuedAt:   body.IssuedAt,
		ExpiresAt:  body.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, license)
}

// PATCH /api/licenses/:id
func (h *LicenseHandler) Update(c *gin.Context) {
	var body updateLicenseRequest
	if !bindAndValidate(c, &body) {
		return
	}

	license, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateLicenseInput{
		Number:      body.Number,
		Class:       body.Class,
		IssuedAt:    body.IssuedAt,
		ExpiresAt:   body.ExpiresAt,
		ClearExpiry: body.ClearExpiry,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, license)
}

// DELETE /api/licenses/:id
func (h *LicenseHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
