// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"educycle_backend/internal/common"

	"gorm.io/gorm"
)

// Repository defines the interface for user data operations.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByUID(ctx context.Context, uid string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateReputation(ctx context.Context, uid string, reputation float64) error
	FindPickupCandidates(ctx context.Context) ([]User, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new user record into the database.
func (r *gormRepository) Create(ctx context.Context, user *User) error {
	user.Email = normalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("User already exists.")
		}
		return fmt.Errorf("failed to create user %s: %w", user.UID, err)
	}
	return nil
}

// FindByUID retrieves a user by identity-provider UID.
func (r *gormRepository) FindByUID(ctx context.Context, uid string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User profile not found.")
		}
		return nil, fmt.Errorf("failed to find user %s: %w", uid, err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by their email address.
func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User with this email not found.")
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// Update saves all fields of the user. EduCredits is excluded; only the credit ledger moves it.
func (r *gormRepository) Update(ctx context.Context, user *User) error {
	user.Email = normalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Model(user).Select("*").Omit("edu_credits", "created_at").Updates(user).Error; err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.UID, err)
	}
	return nil
}

func (r *gormRepository) UpdateReputation(ctx context.Context, uid string, reputation float64) error {
	result := r.db.WithContext(ctx).Model(&User{}).Where("uid = ?", uid).Update("reputation", reputation)
	if result.Error != nil {
		return fmt.Errorf("failed to update reputation for %s: %w", uid, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("User profile not found.")
	}
	return nil
}

// FindPickupCandidates returns verified NGOs that have coordinates.
func (r *gormRepository) FindPickupCandidates(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("role = ? AND verified = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", common.RoleNGO, true).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pickup candidates: %w", err)
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
