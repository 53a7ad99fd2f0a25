// File: internal/ngo/repository.go
package ngo

import (
	"context"
	"errors"
	"fmt"

	"educycle_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, req *BulkRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*BulkRequest, error)
	ListByNGO(ctx context.Context, ngoUID string) ([]BulkRequest, error)
	ListOpen(ctx context.Context, limit int) ([]BulkRequest, error)
	// AddFulfilled adds count to fulfilled and completes the request once quantity is reached.
	AddFulfilled(ctx context.Context, id uuid.UUID, count int) (*BulkRequest, error)
	// CloseFulfilled completes every open request whose fulfilled count reached its quantity.
	CloseFulfilled(ctx context.Context) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, req *BulkRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create bulk request: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*BulkRequest, error) {
	return findByID(r.db.WithContext(ctx), id)
}

func findByID(db *gorm.DB, id uuid.UUID) (*BulkRequest, error) {
	var req BulkRequest
	if err := db.First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Bulk request not found")
		}
		return nil, fmt.Errorf("failed to find bulk request %s: %w", id, err)
	}
	return &req, nil
}

func (r *gormRepository) ListByNGO(ctx context.Context, ngoUID string) ([]BulkRequest, error) {
	var reqs []BulkRequest
	if err := r.db.WithContext(ctx).Where("ngo_uid = ?", ngoUID).Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list bulk requests for %s: %w", ngoUID, err)
	}
	return reqs, nil
}

func (r *gormRepository) ListOpen(ctx context.Context, limit int) ([]BulkRequest, error) {
	var reqs []BulkRequest
	if err := r.db.WithContext(ctx).Where("status = ?", StatusOpen).Order("created_at DESC").Limit(limit).Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list open bulk requests: %w", err)
	}
	return reqs, nil
}

func (r *gormRepository) AddFulfilled(ctx context.Context, id uuid.UUID, count int) (*BulkRequest, error) {
	var out *BulkRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BulkRequest{}).Where("id = ?", id).
			UpdateColumn("fulfilled", gorm.Expr("fulfilled + ?", count))
		if result.Error != nil {
			return fmt.Errorf("failed to update bulk request %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Bulk request not found")
		}
		err := tx.Model(&BulkRequest{}).
			Where("id = ? AND fulfilled >= quantity AND status = ?", id, StatusOpen).
			UpdateColumn("status", StatusCompleted).Error
		if err != nil {
			return fmt.Errorf("failed to complete bulk request %s: %w", id, err)
		}
		out, err = findByID(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository) CloseFulfilled(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&BulkRequest{}).
		Where("status = ? AND fulfilled >= quantity", StatusOpen).
		UpdateColumn("status", StatusCompleted)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to close fulfilled bulk requests: %w", result.Error)
	}
	return result.RowsAffected, nil
}
