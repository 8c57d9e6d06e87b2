package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

var (
	ErrTokenIDConflict      = errors.New("token id already exists")
	ErrUnresponsiveDatabase = errors.New("error occurred during writing to tokens table")
)

type TokenRepository interface {
	Create(ctx context.Context, token *Token) error
	ExistsByID(ctx context.Context, id string) (bool, error)
	// DeleteByID removes a single ledger row. Deleting an already absent
	// row is not an error; lazy eviction may race with other revocations.
	DeleteByID(ctx context.Context, id string) error
	// DeleteAllByUserID revokes every session of a user. Idempotent.
	DeleteAllByUserID(ctx context.Context, userID uint) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *Token) error {
	err := r.db.WithContext(ctx).Create(token).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrTokenIDConflict
		}
		return ErrUnresponsiveDatabase
	}
	return nil
}

func (r *tokenRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Token{}).
		Where("id = ?", id).
		Count(&count).
		Error
	if err != nil {
		return false, ErrUnresponsiveDatabase
	}
	return count > 0, nil
}

func (r *tokenRepository) DeleteByID(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&Token{})
	if res.Error != nil {
		return ErrUnresponsiveDatabase
	}
	return nil
}

func (r *tokenRepository) DeleteAllByUserID(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&Token{})
	if res.Error != nil {
		return ErrUnresponsiveDatabase
	}
	return nil
}
