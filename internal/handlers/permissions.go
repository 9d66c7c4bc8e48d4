package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/permissions"
	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/response"
)

// PermissionHandler exposes the resource registry, permission snapshots and role management.
type PermissionHandler struct {
	svc    *services.PermissionService
	paging Paging
}

type roleRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

type updateRoleRequest struct {
	Name        string `json:"name" validate:"omitempty,max=64"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

type rolePermissionsRequest struct {
	Permissions []permissions.Record `json:"permissions"`
}

type permissionCheckResult struct {
	Resource string             `json:"resource"`
	Action   permissions.Action `json:"action"`
	Allowed  bool               `json:"allowed"`
}

// NewPermissionHandler constructs a PermissionHandler.
func NewPermissionHandler(svc *services.PermissionService, paging Paging) *PermissionHandler {
	return &PermissionHandler{svc: svc, paging: paging}
}

// GET /api/permissions/registry
func (h *PermissionHandler) Registry(c *gin.Context) {
	response.Success(c, http.StatusOK, permissions.List())
}

// GET /api/permissions/my
func (h *PermissionHandler) MyPermissions(c *gin.Context) {
	snapshot, ok := h.snapshot(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, snapshot)
}

// GET /api/permissions/menus
func (h *PermissionHandler) Menus(c *gin.Context) {
	snapshot, ok := h.snapshot(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, permissions.Visible(snapshot))
}

// GET /api/permissions/check?resource=&action=
func (h *PermissionHandler) Check(c *gin.Context) {
	resource := strings.TrimSpace(c.Query("resource"))
	if resource == "" {
		response.Error(c, errors.NewBadRequest("resource is required"))
		return
	}
	action, err := permissions.ParseAction(c.Query("action"))
	if err != nil {
		response.Error(c, errors.NewBadRequest(err.Error()))
		return
	}

	snapshot, ok := h.snapshot(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, permissionCheckResult{
		Resource: resource,
		Action:   action,
		Allowed:  permissions.HasPermission(snapshot, resource, action),
	})
}

func (h *PermissionHandler) snapshot(c *gin.Context) ([]permissions.Record, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	snapshot, err := h.svc.ListUserPermissions(requestContext(c), userID)
	if err != nil {
		response.Error(c, snapshotError(err))
		return nil, false
	}
	if snapshot == nil {
		snapshot = []permissions.Record{}
	}
	return snapshot, true
}

func snapshotError(err error) error {
	if stderrors.Is(err, permissions.ErrUnknownUser) {
		return errors.ErrUnauthorized
	}
	return errors.ErrInternalServer.WithInternal(err)
}

// GET /api/permissions/roles
func (h *PermissionHandler) ListRoles(c *gin.Context) {
	opts, err := h.paging.listOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.svc.ListRoles(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, result)
}

// GET /api/permissions/roles/:id
func (h *PermissionHandler) GetRole(c *gin.Context) {
	role, err := h.svc.GetRole(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/permissions/roles
func (h *PermissionHandler) CreateRole(c *gin.Context) {
	var body roleRequest
	if !bindAndValidate(c, &body) {
		return
	}

	role, err := h.svc.CreateRole(requestContext(c), services.CreateRoleInput{Name: body.Name, Description: body.Description})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, role)
}

// PATCH /api/permissions/roles/:id
func (h *PermissionHandler) UpdateRole(c *gin.Context) {
	var body updateRoleRequest
	if !bindAndValidate(c, &body) {
		return
	}

	role, err := h.svc.UpdateRole(requestContext(c), c.Param("id"), services.UpdateRoleInput{Name: body.Name, Description: body.Description})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// DELETE /api/permissions/roles/:id
func (h *PermissionHandler) DeleteRole(c *gin.Context) {
	if err := h.svc.DeleteRole(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/permissions/roles/:id/permissions
func (h *PermissionHandler) RolePermissions(c *gin.Context) {
	records, err := h.svc.ListRolePermissions(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}

// PUT /api/permissions/roles/:id/permissions
func (h *PermissionHandler) SetRolePermissions(c *gin.Context) {
	var body rolePermissionsRequest
	if !bindAndValidate(c, &body) {
		return
	}

	ctx := requestContext(c)
	if err := h.svc.SaveRolePermissions(ctx, c.Param("id"), body.Permissions); err != nil {
		response.Error(c, err)
		return
	}

	records, err := h.svc.ListRolePermissions(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}
