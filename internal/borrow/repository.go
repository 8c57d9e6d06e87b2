package borrow

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrHistoryNotFound      = errors.New("borrow history entry not found")
	ErrUnresponsiveDatabase = errors.New("error occurred during access to borrows table")
)

type BorrowRepository interface {
	ReadAllByUserID(ctx context.Context, userID uint) ([]Borrow, error)
	ReadHistoryByUserID(ctx context.Context, userID uint, showHidden bool) ([]History, error)
	// SetHistoryHidden flips the hidden flag of a history entry owned by
	// the given user. A missing or foreign entry is ErrHistoryNotFound.
	SetHistoryHidden(ctx context.Context, historyID, userID uint, hidden bool) error
}

type borrowRepository struct {
	db *gorm.DB
}

func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

func (r *borrowRepository) ReadAllByUserID(ctx context.Context, userID uint) ([]Borrow, error) {
	var borrows []Borrow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&borrows).
		Error
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return borrows, nil
}

func (r *borrowRepository) ReadHistoryByUserID(ctx context.Context, userID uint, showHidden bool) ([]History, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !showHidden {
		q = q.Where("hidden = ?", false)
	}

	var entries []History
	if err := q.Find(&entries).Error; err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return entries, nil
}

func (r *borrowRepository) SetHistoryHidden(ctx context.Context, historyID, userID uint, hidden bool) error {
	res := r.db.WithContext(ctx).
		Model(&History{}).
		Where("id = ? AND user_id = ?", historyID, userID).
		Update("hidden", hidden)
	if res.Error != nil {
		return ErrUnresponsiveDatabase
	}
	if res.RowsAffected == 0 {
		return ErrHistoryNotFound
	}
	return nil
}
