package notification

import (
	"context"

	"educycle_backend/internal/common"
	"educycle_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages in-app notifications.
type Service interface {
	shared.Notifier
	CreateNotification(ctx context.Context, userUID string, notifType NotificationType, title, message string, relatedID *uuid.UUID) (*Notification, error)
	GetNotificationsForUser(ctx context.Context, userUID string, page, pageSize int) ([]Notification, *common.Pagination, error)
	UnreadCount(ctx context.Context, userUID string) (int64, error)
	MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userUID string) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userUID string) (int64, error)
}

type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("notification"),
	}
}

func (s *ServiceImplementation) CreateNotification(ctx context.Context, userUID string, notifType NotificationType, title, message string, relatedID *uuid.UUID) (*Notification, error) {
	n := &Notification{
		UserUID:   userUID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification", zap.String("user_uid", userUID), zap.String("type", string(notifType)), zap.Error(err))
		return nil, err
	}
	return n, nil
}

// Notify is the fire-and-forget entry point other modules use.
func (s *ServiceImplementation) Notify(ctx context.Context, userUID, notificationType, title, message string, relatedID *uuid.UUID) error {
	_, err := s.CreateNotification(ctx, userUID, NotificationType(notificationType), title, message, relatedID)
	return err
}

func (s *ServiceImplementation) GetNotificationsForUser(ctx context.Context, userUID string, page, pageSize int) ([]Notification, *common.Pagination, error) {
	return s.repo.GetByUserUID(ctx, userUID, page, pageSize)
}

func (s *ServiceImplementation) UnreadCount(ctx context.Context, userUID string) (int64, error) {
	return s.repo.CountUnread(ctx, userUID)
}

func (s *ServiceImplementation) MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userUID string) error {
	return s.repo.MarkAsRead(ctx, notificationID, userUID)
}

func (s *ServiceImplementation) MarkAllUserNotificationsAsRead(ctx context.Context, userUID string) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, userUID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("Marked notifications as read", zap.String("user_uid", userUID), zap.Int64("count", count))
	return count, nil
}
