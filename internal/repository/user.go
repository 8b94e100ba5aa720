package repository

import (
	"context"
	"errors"
	"strings"

	"travelbuddy/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for login accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateStatus(ctx context.Context, id uint, status models.UserStatus) error
	UpdateRole(ctx context.Context, id uint, role models.UserRole) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	ListByRole(ctx context.Context, roles ...models.UserRole) ([]models.User, error)
}

type userRepository struct {
	db     *gorm.DB
	reader *gorm.DB
}

// NewUserRepository returns a UserRepository outside of any Store.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, reader: readDB(db)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return createError(err, "An account with this email already exists")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no account uses the email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, id uint, status models.UserStatus) error {
	return r.updateColumn(ctx, id, "status", status)
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role models.UserRole) error {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumn(ctx, id, "password", hash)
}

func (r *userRepository) ListByRole(ctx context.Context, roles ...models.UserRole) ([]models.User, error) {
	var users []models.User
	if err := r.reader.WithContext(ctx).
		Where("role IN ?", roles).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
