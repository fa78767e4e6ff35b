package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
)

// NotificationRepository is the storage dependency of NotificationService.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationService persists and reads per-user notifications.
type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// CreateNotificationForWS persists an event broadcast through the hub so
// offline users catch up on reconnect. The stored payload mirrors the wire
// format.
func (s *NotificationService) CreateNotificationForWS(ctx context.Context, userID uuid.UUID, event string, data interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"type": event,
		"data": data,
	})
	if err != nil {
		return err
	}

	return s.repo.Create(ctx, &models.Notification{
		UserID:  userID,
		Payload: payload,
	})
}

// List pages through the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.List(ctx, userID, limit, offset, unreadOnly)
}

// MarkAsRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, callerID uuid.UUID) error {
	notification, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "notification not found")
		}
		return err
	}
	if notification.UserID != callerID {
		return apperror.ErrForbidden
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}

// MarkAllAsRead marks every notification of the caller as read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, callerID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, callerID)
}

// CountUnread returns the caller's unread badge count.
func (s *NotificationService) CountUnread(ctx context.Context, callerID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, callerID)
}
