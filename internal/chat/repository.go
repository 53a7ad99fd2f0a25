package chat

import (
	"context"
	"errors"
	"fmt"

	"educycle_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// CreateIfMissing inserts the chat unless one already exists for its ID and reports whether it did.
	CreateIfMissing(ctx context.Context, chat *Chat) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Chat, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	AddMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]Message, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateIfMissing(ctx context.Context, chat *Chat) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(chat)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create chat %s: %w", chat.ID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Chat, error) {
	var chat Chat
	if err := r.db.WithContext(ctx).First(&chat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Chat not found")
		}
		return nil, fmt.Errorf("failed to find chat %s: %w", id, err)
	}
	return &chat, nil
}

func (r *gormRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&Chat{}).Where("id = ?", id).Update("active", false).Error; err != nil {
		return fmt.Errorf("failed to close chat %s: %w", id, err)
	}
	return nil
}

func (r *gormRepository) AddMessage(ctx context.Context, msg *Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to store chat message: %w", err)
	}
	return nil
}

// ListMessages returns a chat's messages oldest first.
func (r *gormRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("timestamp ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages for chat %s: %w", chatID, err)
	}
	return msgs, nil
}
