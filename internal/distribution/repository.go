// File: internal/distribution/repository.go
package distribution

import (
	"context"
	"errors"
	"fmt"

	"educycle_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)
	List(ctx context.Context, limit int) ([]Event, error)
	// ToggleLike adds or removes uid from the event's likes.
	ToggleLike(ctx context.Context, id uuid.UUID, uid string) (*LikeResult, error)
	// AddComment stores the comment and bumps the event's counter.
	AddComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, eventID uuid.UUID) ([]Comment, error)
	// Delete removes the event and its comments.
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create distribution event: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	return findEvent(r.db.WithContext(ctx), id)
}

func findEvent(db *gorm.DB, id uuid.UUID) (*Event, error) {
	var event Event
	if err := db.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Event not found")
		}
		return nil, fmt.Errorf("failed to find event %s: %w", id, err)
	}
	return &event, nil
}

func (r *gormRepository) List(ctx context.Context, limit int) ([]Event, error) {
	var events []Event
	if err := r.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list distribution events: %w", err)
	}
	return events, nil
}

func (r *gormRepository) ToggleLike(ctx context.Context, id uuid.UUID, uid string) (*LikeResult, error) {
	var res LikeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock: the new liked_by is computed from the one read here.
		event, err := findEvent(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		liked := make([]string, 0, len(event.LikedBy)+1)
		found := false
		for _, u := range event.LikedBy {
			if u == uid {
				found = true
				continue
			}
			liked = append(liked, u)
		}
		if !found {
			liked = append(liked, uid)
		}
		err = tx.Model(&Event{}).Where("id = ?", id).Updates(map[string]interface{}{
			"liked_by":    datatypes.NewJSONSlice(liked),
			"likes_count": len(liked),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update likes for event %s: %w", id, err)
		}
		res = LikeResult{Liked: !found, LikesCount: len(liked)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *gormRepository) AddComment(ctx context.Context, comment *Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to store comment: %w", err)
		}
		err := tx.Model(&Event{}).Where("id = ?", comment.EventID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error
		if err != nil {
			return fmt.Errorf("failed to count comment: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) ListComments(ctx context.Context, eventID uuid.UUID) ([]Comment, error) {
	var comments []Comment
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("timestamp ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments for event %s: %w", eventID, err)
	}
	return comments, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments for event %s: %w", id, err)
		}
		result := tx.Delete(&Event{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete event %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Event not found")
		}
		return nil
	})
}
