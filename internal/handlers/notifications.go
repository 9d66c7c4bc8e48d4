package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/permissions"
	"github.com/charlesng35/fleetcn/internal/realtime"
	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/response"
)

// NotificationHandler exposes HTTP endpoints for notifications.
type NotificationHandler struct {
	service *services.NotificationService
	hub     *realtime.Hub
	perms   *services.PermissionService
	paging  Paging
}

type createNotificationRequest struct {
	UserID       string         `json:"user_id" validate:"required"`
	Type         string         `json:"type" validate:"required,max=64"`
	ResourceType string         `json:"resource_type" validate:"omitempty,max=64"`
	ResourceID   string         `json:"resource_id" validate:"omitempty,max=64"`
	Title        string         `json:"title" validate:"required,max=255"`
	Message      string         `json:"message"`
	Severity     string         `json:"severity" validate:"omitempty,oneof=info success warning error"`
	ActionURL    string         `json:"action_url"`
	Metadata     map[string]any `json:"metadata"`
}

// NewNotificationHandler constructs a notification handler. The permission service decides
// which realtime streams a caller may subscribe to.
func NewNotificationHandler(service *services.NotificationService, hub *realtime.Hub, perms *services.PermissionService, paging Paging) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		hub:     hub,
		perms:   perms,
		paging:  paging,
	}
}

// List returns a page of the current user's notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	opts, err := h.paging.listOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	unread, err := parseBoolQuery(c, "unread")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListForUser(requestContext(c), userID, services.ListNotificationsOptions{
		ListOptions: opts,
		UnreadOnly:  unread != nil && *unread,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, result)
}

// UnreadCount returns the number of unread notifications of the current user.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// MarkRead toggles a notification to read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.updateReadState(c, true)
}

// MarkUnread toggles a notification to unread.
func (h *NotificationHandler) MarkUnread(c *gin.Context) {
	h.updateReadState(c, false)
}

func (h *NotificationHandler) updateReadState(c *gin.Context, read bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	var dto *services.NotificationDTO
	var err error
	if read {
		dto, err = h.service.MarkRead(requestContext(c), userID, id)
	} else {
		dto, err = h.service.MarkUnread(requestContext(c), userID, id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// Delete removes a notification.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// MarkAllRead marks all notifications read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.MarkAllRead(requestContext(c), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// Create sends a notification to a user.
func (h *NotificationHandler) Create(c *gin.Context) {
	var body createNotificationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	dto, err := h.service.Create(requestContext(c), services.CreateNotificationInput{
		UserID:       body.UserID,
		Type:         body.Type,
		ResourceType: body.ResourceType,
		ResourceID:   body.ResourceID,
		Title:        body.Title,
		Message:      body.Message,
		Severity:     body.Severity,
		ActionURL:    body.ActionURL,
		Metadata:     body.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, dto)
}

// Stream upgrades the connection to a WebSocket. Clients name the streams they want with
// ?streams=a,b; the notification stream is the default.
func (h *NotificationHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	allowed := map[string]struct{}{realtime.StreamNotifications: {}}
	if h.perms != nil {
		snapshot, err := h.perms.ListUserPermissions(requestContext(c), userID)
		if err != nil {
			response.Error(c, snapshotError(err))
			return
		}
		if permissions.HasPermission(snapshot, permissions.ResourceCertificates, permissions.ActionView) ||
			permissions.HasPermission(snapshot, permissions.ResourceLicenses, permissions.ActionView) {
			allowed[realtime.StreamExpiry] = struct{}{}
		}
	}

	streams := []string{realtime.StreamNotifications}
	if raw := strings.TrimSpace(c.Query("streams")); raw != "" {
		streams = strings.Split(raw, ",")
	}

	h.hub.Serve(userID, streams, allowed, c.Writer, c.Request)
}
