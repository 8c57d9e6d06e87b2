package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

var (
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotCreated        = errors.New("user not created")
	ErrUserNotUpdated        = errors.New("user not updated")
	ErrUserNotDeleted        = errors.New("user not deleted")
	ErrUnresponsiveDatabase  = errors.New("error occurred during writing to users table")
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	ReadByUsername(ctx context.Context, username string) (*User, error)
	ReadByID(ctx context.Context, id uint) (*User, error)
	ReadAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if isUsernameConflict(err) {
			return ErrUsernameAlreadyExists
		}
		return ErrUserNotCreated
	}
	return nil
}

func (r *userRepository) ReadByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Where("deleted_at IS NULL").
		First(&user).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return &user, nil
}

func (r *userRepository) ReadByID(ctx context.Context, id uint) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&user, id).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return &user, nil
}

func (r *userRepository) ReadAll(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Find(&users).
		Error
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		if isUsernameConflict(err) {
			return ErrUsernameAlreadyExists
		}
		return ErrUserNotUpdated
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Delete(&User{}, id).
		Error; err != nil {
		return ErrUserNotDeleted
	}
	return nil
}

func isUsernameConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" &&
		strings.Contains(pgErr.ConstraintName, "username")
}
