package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/internal/realtime"
	apperrors "github.com/charlesng35/fleetcn/pkg/errors"
)

// Events pushed on the notifications stream.
const (
	EventNotificationCreated = "notification.created"
	EventNotificationRead    = "notification.read"
	EventNotificationUnread  = "notification.unread"
	EventNotificationDeleted = "notification.deleted"
	EventNotificationReadAll = "notification.read_all"
)

// NotificationDTO is a notification as returned to its owner.
type NotificationDTO struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Type         string         `json:"type"`
	ResourceType string         `json:"resource_type,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Severity     string         `json:"severity"`
	ActionURL    string         `json:"action_url,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	IsRead       bool           `json:"is_read"`
	ReadAt       *time.Time     `json:"read_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// CreateNotificationInput describes a notification to deliver. Severity defaults to info.
type CreateNotificationInput struct {
	UserID       string
	Type         string
	ResourceType string
	ResourceID   string
	Title        string
	Message      string
	Severity     string
	ActionURL    string
	Metadata     map[string]any
}

// ListNotificationsOptions narrows an inbox listing.
type ListNotificationsOptions struct {
	ListOptions
	UnreadOnly bool
}

// NotificationEvent is the payload of a notifications stream message.
type NotificationEvent struct {
	Notification   *NotificationDTO `json:"notification,omitempty"`
	NotificationID string           `json:"notification_id,omitempty"`
}

// NotificationService owns each user's inbox and pushes inbox changes to connected clients.
type NotificationService struct {
	db  *gorm.DB
	hub *realtime.Hub
	now func() time.Time
}

// NewNotificationService builds the service. hub may be nil, in which case nothing is pushed.
func NewNotificationService(db *gorm.DB, hub *realtime.Hub) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{db: db, hub: hub, now: time.Now}, nil
}

// ListForUser returns a page of the user's inbox, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, opts ListNotificationsOptions) (*ListResult[NotificationDTO], error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}

	query := s.inbox(ensureContext(ctx), userID)
	if opts.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := likePattern(q)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(message) LIKE ?", pattern, pattern)
	}

	rows, err := paginate[models.Notification](query, opts.ListOptions, "created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("notification service: list: %w", err)
	}

	items := make([]NotificationDTO, 0, len(rows.Items))
	for _, row := range rows.Items {
		items = append(items, toNotificationDTO(row))
	}
	return &ListResult[NotificationDTO]{Items: items, Window: rows.Window, Page: rows.Page}, nil
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.inbox(ensureContext(ctx), strings.TrimSpace(userID)).
		Where("is_read = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("notification service: unread count: %w", err)
	}
	return count, nil
}

// Exists reports whether the user already holds a notification of notificationType about
// the record resourceID, read or not.
func (s *NotificationService) Exists(ctx context.Context, userID, notificationType, resourceID string) (bool, error) {
	var count int64
	err := s.inbox(ensureContext(ctx), strings.TrimSpace(userID)).
		Where("type = ? AND resource_id = ?", strings.TrimSpace(notificationType), strings.TrimSpace(resourceID)).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("notification service: lookup: %w", err)
	}
	return count > 0, nil
}

// Create stores a notification and pushes it to the owner's open streams.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, error) {
	notification := models.Notification{
		UserID:       strings.TrimSpace(input.UserID),
		Type:         strings.TrimSpace(input.Type),
		ResourceType: strings.TrimSpace(input.ResourceType),
		ResourceID:   strings.TrimSpace(input.ResourceID),
		Title:        strings.TrimSpace(input.Title),
		Message:      strings.TrimSpace(input.Message),
		Severity:     strings.ToLower(strings.TrimSpace(input.Severity)),
		ActionURL:    strings.TrimSpace(input.ActionURL),
	}

	switch {
	case notification.UserID == "":
		return nil, apperrors.NewBadRequest("user id is required")
	case notification.Type == "":
		return nil, apperrors.NewBadRequest("notification type is required")
	case notification.Title == "":
		notification.Title = notification.Type
	}
	if notification.Severity == "" {
		notification.Severity = models.SeverityInfo
	}
	if !models.ValidSeverity(notification.Severity) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown severity %q", input.Severity))
	}

	if len(input.Metadata) > 0 {
		data, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("notification service: encode metadata: %w", err)
		}
		notification.Metadata = datatypes.JSON(data)
	}

	if err := s.db.WithContext(ensureContext(ctx)).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("notification service: create: %w", err)
	}

	dto := toNotificationDTO(notification)
	s.push(dto.UserID, EventNotificationCreated, &NotificationEvent{Notification: &dto})
	return &dto, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*NotificationDTO, error) {
	return s.setRead(ensureContext(ctx), userID, notificationID, true)
}

// MarkUnread clears the read flag again.
func (s *NotificationService) MarkUnread(ctx context.Context, userID, notificationID string) (*NotificationDTO, error) {
	return s.setRead(ensureContext(ctx), userID, notificationID, false)
}

func (s *NotificationService) setRead(ctx context.Context, userID, notificationID string, read bool) (*NotificationDTO, error) {
	var notification models.Notification
	err := s.inbox(ctx, strings.TrimSpace(userID)).
		Where("id = ?", strings.TrimSpace(notificationID)).
		First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("notification service: load: %w", err)
	}

	var readAt *time.Time
	event := EventNotificationUnread
	if read {
		at := s.now().UTC()
		readAt = &at
		event = EventNotificationRead
	}

	if err := s.db.WithContext(ctx).Model(&notification).
		Updates(map[string]any{"is_read": read, "read_at": readAt}).Error; err != nil {
		return nil, fmt.Errorf("notification service: update read state: %w", err)
	}
	notification.IsRead = read
	notification.ReadAt = readAt

	dto := toNotificationDTO(notification)
	s.push(dto.UserID, event, &NotificationEvent{Notification: &dto, NotificationID: dto.ID})
	return &dto, nil
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	userID = strings.TrimSpace(userID)
	notificationID = strings.TrimSpace(notificationID)

	result := s.db.WithContext(ensureContext(ctx)).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("notification service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	s.push(userID, EventNotificationDeleted, &NotificationEvent{NotificationID: notificationID})
	return nil
}

// MarkAllRead flags every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)

	err := s.inbox(ensureContext(ctx), userID).
		Where("is_read = ?", false).
		Updates(map[string]any{"is_read": true, "read_at": s.now().UTC()}).Error
	if err != nil {
		return fmt.Errorf("notification service: mark all read: %w", err)
	}

	s.push(userID, EventNotificationReadAll, nil)
	return nil
}

func (s *NotificationService) inbox(ctx context.Context, userID string) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
}

func (s *NotificationService) push(userID, event string, payload *NotificationEvent) {
	if s.hub == nil {
		return
	}
	message := realtime.Message{Event: event}
	if payload != nil {
		message.Data = payload
	}
	s.hub.BroadcastToUser(realtime.StreamNotifications, userID, message)
}

func toNotificationDTO(row models.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:           row.ID,
		UserID:       row.UserID,
		Type:         row.Type,
		ResourceType: row.ResourceType,
		ResourceID:   row.ResourceID,
		Title:        row.Title,
		Message:      row.Message,
		Severity:     row.Severity,
		ActionURL:    row.ActionURL,
		IsRead:       row.IsRead,
		ReadAt:       row.ReadAt,
		CreatedAt:    row.CreatedAt,
	}
	if dto.Severity == "" {
		dto.Severity = models.SeverityInfo
	}
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &dto.Metadata)
	}
	return dto
}
