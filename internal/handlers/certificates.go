package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/response"
)

// CertificateHandler exposes employee certificates.
type CertificateHandler struct {
	svc    *services.CertificateService
	paging Paging
	now    func() time.Time
}

type certificateRequest struct {
	EmployeeID string     `json:"employee_id" validate:"required"`
	Name       string     `json:"name" validate:"required,max=128"`
	Issuer     string     `json:"issuer" validate:"omitempty,max=128"`
	Number     string     `json:"number" validate:"omitempty,max=64"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

type updateCertificateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=128"`
	Issuer      *string    `json:"issuer" validate:"omitempty,max=128"`
	Number      *string    `json:"number" validate:"omitempty,max=64"`
	IssuedAt    *time.Time `json:"issued_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClearExpiry bool       `json:"clear_expiry"`
}

// NewCertificateHandler constructs a CertificateHandler.
func NewCertificateHandler(svc *services.CertificateService, paging Paging) *CertificateHandler {
	return &CertificateHandler{svc: svc, paging: paging, now: time.Now}
}

// GET /api/certificates
func (h *CertificateHandler) List(c *gin.Context) {
	opts, err := h.paging.listOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.svc.List(requestContext(c), services.ListCertificatesOptions{
		ListOptions: opts,
		EmployeeID:  c.Query("employee_id"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, result)
}

// GET /api/certificates/expiring
func (h *CertificateHandler) Expiring(c *gin.Context) {
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

// GET /api/certificates/:id
func (h *CertificateHandler) Get(c *gin.Context) {
	certificate, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, certificate)
}

// POST /api/certificates
func (h *CertificateHandler) Create(c *gin.Context) {
	var body certificateRequest
	if !bindAndValidate(c, &body) {
		return
	}

	certificate, err := h.svc.Create(requestContext(c), services.CertificateInput{
		EmployeeID: body.EmployeeID,
		Name:       body.Name,
		Issuer:     body.Issuer,
		Number:     body.Number,
		IssuedAt:   body.IssuedAt,
		ExpiresAt:  body.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, certificate)
}

// PATCH /api/certificates/:id
func (h *CertificateHandler) Update(c *gin.Context) {
	var body updateCertificateRequest
	if !bindAndValidate(c, &body) {
		return
	}

	certificate, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateCertificateInput{
		Name:        body.Name,
		Issuer:      body.Issuer,
		Number:      body.Number,
		IssuedAt:    body.IssuedAt,
		ExpiresAt:   body.ExpiresAt,
		ClearExpiry: body.ClearExpiry,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, certificate)
}

// DELETE /api/certificates/:id
func (h *CertificateHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
