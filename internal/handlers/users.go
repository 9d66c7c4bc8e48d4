package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/response"
)

// UserHandler exposes administrator account management.
type UserHandler struct {
	service *services.UserService
	paging  Paging
}

type createUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"first_name" validate:"omitempty,max=64"`
	LastName  string `json:"last_name" validate:"omitempty,max=64"`
	RoleID    string `json:"role_id"`
	IsActive  *bool  `json:"is_active"`
}

type updateUserRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=64"`
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=64"`
	LastName  *string `json:"last_name" validate:"omitempty,max=64"`
}

type changePasswordRequest struct {
	Password string `json:"password" validate:"required,password"`
}

type assignRoleRequest struct {
	RoleID string `json:"role_id"`
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(service *services.UserService, paging Paging) *UserHandler {
	return &UserHandler{service: service, paging: paging}
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
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

	result, err := h.service.List(requestContext(c), services.ListUsersOptions{
		ListOptions: opts,
		Filters:     services.UserFilters{IsActive: active, RoleID: c.Query("role_id")},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, result)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.service.Create(requestContext(c), services.CreateUserInput{
		Username:  body.Username,
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		RoleID:    body.RoleID,
		IsActive:  body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

// PATCH /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var body updateUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.service.Update(requestContext(c), c.Param("id"), services.UpdateUserInput{
		Username:  body.Username,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/users/:id/activate
func (h *UserHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// POST /api/users/:id/deactivate
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	if err := h.service.SetActive(requestContext(c), c.Param("id"), active); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"is_active": active})
}

// POST /api/users/:id/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var body changePasswordRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.service.ChangePassword(requestContext(c), c.Param("id"), body.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// PUT /api/users/:id/role
func (h *UserHandler) AssignRole(c *gin.Context) {
	var body assignRoleRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.service.AssignRole(requestContext(c), c.Param("id"), body.RoleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
