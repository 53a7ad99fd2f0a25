package notification

import (
	"context"
	"errors"
	"fmt"

	"educycle_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByUserUID(ctx context.Context, userUID string, page, pageSize int) ([]Notification, *common.Pagination, error)
	CountUnread(ctx context.Context, userUID string) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID, userUID string) error
	MarkAllAsRead(ctx context.Context, userUID string) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) Create(ctx context.Context, notification *Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByUserUID retrieves a page of a user's notifications, newest first.
func (r *GORMRepository) GetByUserUID(ctx context.Context, userUID string, page, pageSize int) ([]Notification, *common.Pagination, error) {
	var notifications []Notification
	var total int64

	if err := r.db.WithContext(ctx).Model(&Notification{}).Where("user_uid = ?", userUID).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting notifications for user %s failed: %w", userUID, err)
	}

	pagination := common.NewPagination(total, page, pageSize)
	offset := (pagination.CurrentPage - 1) * pagination.PageSize

	err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Order("created_at DESC").
		Limit(pagination.PageSize).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching notifications for user %s failed: %w", userUID, err)
	}
	return notifications, pagination, nil
}

func (r *GORMRepository) CountUnread(ctx context.Context, userUID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_uid = ? AND is_read = ?", userUID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications for user %s failed: %w", userUID, err)
	}
	return count, nil
}

// MarkAsRead marks one of the user's notifications as read. Marking an already read
// notification succeeds; a notification owned by someone else is reported as not found.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, userUID string) error {
	var notification Notification
	err := r.db.WithContext(ctx).Where("id = ? AND user_uid = ?", notificationID, userUID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound.WithDetails("Notification not found.")
		}
		return fmt.Errorf("failed to find notification %s: %w", notificationID, err)
	}
	if notification.IsRead {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&notification).Update("is_read", true).Error; err != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", notificationID, err)
	}
	return nil
}

// MarkAllAsRead marks all unread notifications for a user as read and returns how many changed.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, userUID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_uid = ? AND is_read = ?", userUID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read for user %s: %w", userUID, result.Error)
	}
	return result.RowsAffected, nil
}
