// File: internal/book/repository.go
package book

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"educycle_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for book data operations.
type Repository interface {
	Create(ctx context.Context, book *Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*Book, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Book, error)
	Search(ctx context.Context, query SearchQuery) ([]Book, *common.Pagination, error)
	ListByDonor(ctx context.Context, donorUID string) ([]Book, error)
	CountByDonor(ctx context.Context, donorUID string) (int64, error)
	MarkUnavailable(ctx context.Context, id uuid.UUID) error
	FindAllForSync(ctx context.Context, offset, limit int) ([]Book, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM book repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, book *Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	var book Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Book not found")
		}
		return nil, fmt.Errorf("failed to find book %s: %w", id, err)
	}
	return &book, nil
}

// FindByIDs loads books and returns them in the order of ids. Unknown IDs are skipped.
func (r *gormRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Book, error) {
	if len(ids) == 0 {
		return []Book{}, nil
	}
	var found []Book
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}
	byID := make(map[uuid.UUID]Book, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	ordered := make([]Book, 0, len(found))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return ordered, nil
}

// Search returns available books matching every non-empty filter, newest first.
func (r *gormRepository) Search(ctx context.Context, query SearchQuery) ([]Book, *common.Pagination, error) {
	scoped := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&Book{}).Where("available = ?", true)
		for col, v := range query.filters() {
			tx = tx.Where(col+" = ?", v)
		}
		if q := strings.TrimSpace(query.Q); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			tx = tx.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
		}
		return tx
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count books: %w", err)
	}

	var books []Book
	err := scoped().Order("created_at DESC").
		Limit(query.Limit()).
		Offset(query.Offset()).
		Find(&books).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search books: %w", err)
	}
	return books, common.NewPagination(total, query.Page, query.PageSize), nil
}

func (r *gormRepository) ListByDonor(ctx context.Context, donorUID string) ([]Book, error) {
	var books []Book
	if err := r.db.WithContext(ctx).Where("donor_uid = ?", donorUID).Order("created_at DESC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books for donor %s: %w", donorUID, err)
	}
	return books, nil
}

func (r *gormRepository) CountByDonor(ctx context.Context, donorUID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Book{}).Where("donor_uid = ?", donorUID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count books for donor %s: %w", donorUID, err)
	}
	return n, nil
}

func (r *gormRepository) MarkUnavailable(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Book{}).Where("id = ?", id).Update("available", false)
	if result.Error != nil {
		return fmt.Errorf("failed to mark book %s unavailable: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Book not found")
	}
	return nil
}

// FindAllForSync pages through every book in a stable order for re-indexing.
func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Book, error) {
	var books []Book
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Offset(offset).Limit(limit).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch books for sync: %w", err)
	}
	return books, nil
}
