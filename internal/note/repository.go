// File: internal/note/repository.go
package note

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"educycle_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for note persistence.
type Repository interface {
	Create(ctx context.Context, note *Note) error
	FindByID(ctx context.Context, id uuid.UUID) (*Note, error)
	List(ctx context.Context, query ListQuery) ([]Note, *common.Pagination, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]Note, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementDownloads bumps the counter and returns the new value.
	IncrementDownloads(ctx context.Context, id uuid.UUID) (int, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, note *Note) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	var note Note
	if err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Note not found")
		}
		return nil, fmt.Errorf("failed to find note %s: %w", id, err)
	}
	return &note, nil
}

func (r *gormRepository) List(ctx context.Context, query ListQuery) ([]Note, *common.Pagination, error) {
	scoped := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&Note{})
		if query.Subject != "" {
			tx = tx.Where("subject = ?", query.Subject)
		}
		if query.ClassLevel != "" {
			tx = tx.Where("class_level = ?", query.ClassLevel)
		}
		if query.Board != "" {
			tx = tx.Where("board = ?", query.Board)
		}
		if q := strings.TrimSpace(query.Q); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			tx = tx.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
		}
		return tx
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count notes: %w", err)
	}
	var notes []Note
	if err := scoped().Order("created_at DESC").Limit(query.Limit()).Offset(query.Offset()).Find(&notes).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, common.NewPagination(total, query.Page, query.PageSize), nil
}

func (r *gormRepository) ListByOwner(ctx context.Context, ownerUID string) ([]Note, error) {
	var notes []Note
	if err := r.db.WithContext(ctx).Where("owner_uid = ?", ownerUID).Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes for %s: %w", ownerUID, err)
	}
	return notes, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Note{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Note not found")
	}
	return nil
}

func (r *gormRepository) IncrementDownloads(ctx context.Context, id uuid.UUID) (int, error) {
	var downloads int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Note{}).Where("id = ?", id).UpdateColumn("downloads", gorm.Expr("downloads + ?", 1))
		if result.Error != nil {
			return fmt.Errorf("failed to count download for note %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Note not found")
		}
		return tx.Model(&Note{}).Where("id = ?", id).Pluck("downloads", &downloads).Error
	})
	return downloads, err
}
