package credits

import (
	"context"
	"fmt"

	"educycle_backend/internal/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Apply records the transaction and moves the user's balance in one database transaction.
	// It reports false when the same award was already recorded.
	Apply(ctx context.Context, txn *Transaction) (bool, error)
	ListByUser(ctx context.Context, userUID string, limit int) ([]Transaction, error)
	TopUsers(ctx context.Context, limit int) ([]user.User, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Apply(ctx context.Context, txn *Transaction) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(txn)
		if result.Error != nil {
			return fmt.Errorf("failed to record credit transaction: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		upd := tx.Model(&user.User{}).
			Where("uid = ?", txn.UserUID).
			UpdateColumn("edu_credits", gorm.Expr("edu_credits + ?", txn.Amount))
		if upd.Error != nil {
			return fmt.Errorf("failed to update balance for %s: %w", txn.UserUID, upd.Error)
		}
		if upd.RowsAffected == 0 {
			return fmt.Errorf("user %s not found for credit award", txn.UserUID)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userUID string, limit int) ([]Transaction, error) {
	var txns []Transaction
	err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list credit transactions for %s: %w", userUID, err)
	}
	return txns, nil
}

func (r *gormRepository) TopUsers(ctx context.Context, limit int) ([]user.User, error) {
	var users []user.User
	err := r.db.WithContext(ctx).
		Where("edu_credits > 0").
		Order("edu_credits DESC").
		Order("uid").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return users, nil
}
