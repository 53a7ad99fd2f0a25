// File: internal/feedback/repository.go
package feedback

import (
	"context"
	"fmt"

	"educycle_backend/internal/common"

	"gorm.io/gorm"
)

type Repository interface {
	// Create stores fb unless its author already rated the request.
	Create(ctx context.Context, fb *Feedback) error
	AverageFor(ctx context.Context, toUID string) (float64, error)
	ListReceived(ctx context.Context, toUID string) ([]Feedback, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, fb *Feedback) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&Feedback{}).Where("request_id = ? AND from_uid = ?", fb.RequestID, fb.FromUID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing feedback: %w", err)
		}
		if existing > 0 {
			return common.ErrConflict.WithDetails("You have already left feedback for this request.")
		}
		if err := tx.Create(fb).Error; err != nil {
			return fmt.Errorf("failed to store feedback: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) AverageFor(ctx context.Context, toUID string) (float64, error) {
	var avg *float64
	if err := r.db.WithContext(ctx).Model(&Feedback{}).Where("to_uid = ?", toUID).Select("AVG(rating)").Scan(&avg).Error; err != nil {
		return 0, fmt.Errorf("failed to average ratings for %s: %w", toUID, err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *gormRepository) ListReceived(ctx context.Context, toUID string) ([]Feedback, error) {
	var out []Feedback
	if err := r.db.WithContext(ctx).Where("to_uid = ?", toUID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list feedback for %s: %w", toUID, err)
	}
	return out, nil
}
