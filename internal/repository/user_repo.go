package repository

import (
	"context"

	"authcore/internal/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUserName(ctx context.Context, userName string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]entity.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return translateUnique(r.db.WithContext(ctx).Create(user).Error, "create user")
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) FindByUserName(ctx context.Context, userName string) (*entity.User, error) {
	return r.findOne(ctx, "user_name = ?", userName)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where(query, arg).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return &user, nil
}

// Update writes every column, so is_active=false is persisted too. It never
// inserts: a user deleted in the meantime yields ErrNotFound.
func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	result := r.db.WithContext(ctx).Model(user).Select("*").Updates(user)
	if result.Error != nil {
		return translateUnique(result.Error, "update user")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entity.User{}, "id = ?", id)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "delete user")
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	var users []entity.User
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}
