package request

import (
	"context"
	"errors"
	"fmt"

	"educycle_backend/internal/book"
	"educycle_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for book request persistence.
type Repository interface {
	// CreateIfNoActive inserts req unless the requester already has a pending or approved
	// request for the same book.
	CreateIfNoActive(ctx context.Context, req *BookRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*BookRequest, error)
	ListForUser(ctx context.Context, uid string) ([]BookRequest, error)
	// Transition moves the request from -> to only if it is still in from.
	Transition(ctx context.Context, id uuid.UUID, from, to Status, fields map[string]interface{}) error
	// Approve moves a pending request to approved while its book is still available and
	// no other request for the book is approved.
	Approve(ctx context.Context, id, bookID uuid.UUID, fields map[string]interface{}) error
	// Complete moves an approved request to completed, takes its book out of circulation
	// and rejects the book's remaining pending requests, which it returns.
	Complete(ctx context.Context, id, bookID uuid.UUID, fields map[string]interface{}) ([]BookRequest, error)
	CountByRequester(ctx context.Context, uid string, status *Status) (int64, error)
	CountByDonor(ctx context.Context, uid string, status *Status) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM request repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateIfNoActive(ctx context.Context, req *BookRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&BookRequest{}).
			Where("book_id = ? AND requester_uid = ? AND status IN ?", req.BookID, req.RequesterUID, []Status{StatusPending, StatusApproved}).
			Count(&active).Error
		if err != nil {
			return fmt.Errorf("failed to check existing requests: %w", err)
		}
		if active > 0 {
			return common.ErrConflict.WithDetails("You already have an active request for this book.")
		}
		if err := tx.Create(req).Error; err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*BookRequest, error) {
	var req BookRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Request not found")
		}
		return nil, fmt.Errorf("failed to find request %s: %w", id, err)
	}
	return &req, nil
}

// ListForUser returns requests where uid is the requester or the donor, newest first.
func (r *gormRepository) ListForUser(ctx context.Context, uid string) ([]BookRequest, error) {
	var reqs []BookRequest
	err := r.db.WithContext(ctx).
		Where("requester_uid = ? OR donor_uid = ?", uid, uid).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for %s: %w", uid, err)
	}
	return reqs, nil
}

func (r *gormRepository) Transition(ctx context.Context, id uuid.UUID, from, to Status, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transition(tx, id, from, to, fields)
	})
}

func (r *gormRepository) Approve(ctx context.Context, id, bookID uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBook(tx, bookID)
		if err != nil {
			return err
		}
		if !b.Available {
			return common.ErrConflict.WithDetails("This book is no longer available.")
		}
		var approved int64
		err = tx.Model(&BookRequest{}).
			Where("book_id = ? AND id <> ? AND status = ?", bookID, id, StatusApproved).
			Count(&approved).Error
		if err != nil {
			return fmt.Errorf("failed to check approved requests: %w", err)
		}
		if approved > 0 {
			return common.ErrConflict.WithDetails("Another request for this book is already approved.")
		}
		return transition(tx, id, StatusPending, StatusApproved, fields)
	})
}

func (r *gormRepository) Complete(ctx context.Context, id, bookID uuid.UUID, fields map[string]interface{}) ([]BookRequest, error) {
	var declined []BookRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockBook(tx, bookID); err != nil {
			return err
		}
		if err := transition(tx, id, StatusApproved, StatusCompleted, fields); err != nil {
			return err
		}
		result := tx.Model(&book.Book{}).Where("id = ? AND available = ?", bookID, true).Update("available", false)
		if result.Error != nil {
			return fmt.Errorf("failed to mark book %s unavailable: %w", bookID, result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrConflict.WithDetails("This book has already been handed over.")
		}

		err := tx.Where("book_id = ? AND id <> ? AND status = ?", bookID, id, StatusPending).Find(&declined).Error
		if err != nil {
			return fmt.Errorf("failed to load open requests for book %s: %w", bookID, err)
		}
		if len(declined) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(declined))
		for i := range declined {
			ids = append(ids, declined[i].ID)
			declined[i].Status = StatusRejected
		}
		err = tx.Model(&BookRequest{}).Where("id IN ? AND status = ?", ids, StatusPending).
			Updates(map[string]interface{}{"status": StatusRejected, "responded_at": fields["completed_at"]}).Error
		if err != nil {
			return fmt.Errorf("failed to decline open requests for book %s: %w", bookID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return declined, nil
}

// lockBook reads the book row FOR UPDATE so approvals and completions of one book
// run one at a time.
func lockBook(tx *gorm.DB, id uuid.UUID) (*book.Book, error) {
	var b book.Book
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Book not found")
		}
		return nil, fmt.Errorf("failed to lock book %s: %w", id, err)
	}
	return &b, nil
}

func transition(tx *gorm.DB, id uuid.UUID, from, to Status, fields map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := tx.Model(&BookRequest{}).Where("id = ? AND status = ?", id, from).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to move request %s to %s: %w", id, to, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}
	var current BookRequest
	if err := tx.Select("status").First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound.WithDetails("Request not found")
		}
		return fmt.Errorf("failed to reload request %s: %w", id, err)
	}
	return common.ErrConflict.WithDetails(fmt.Sprintf("Request is %s and cannot become %s.", current.Status, to))
}

func (r *gormRepository) CountByRequester(ctx context.Context, uid string, status *Status) (int64, error) {
	return r.count(ctx, "requester_uid", uid, status)
}

func (r *gormRepository) CountByDonor(ctx context.Context, uid string, status *Status) (int64, error) {
	return r.count(ctx, "donor_uid", uid, status)
}

func (r *gormRepository) count(ctx context.Context, column, uid string, status *Status) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&BookRequest{}).Where(column+" = ?", uid)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count requests by %s: %w", column, err)
	}
	return n, nil
}
