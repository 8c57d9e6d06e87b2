package borrow

import (
	"context"

	"go.uber.org/zap"
)

type BorrowService interface {
	GetBorrowsByUserID(ctx context.Context, userID uint) ([]Borrow, error)
	GetHistoryByUserID(ctx context.Context, userID uint, showHidden bool) ([]History, error)
	HideHistory(ctx context.Context, historyID, userID uint) error
	UnhideHistory(ctx context.Context, historyID, userID uint) error
}

type borrowService struct {
	repo   BorrowRepository
	logger *zap.Logger
}

func NewBorrowService(repo BorrowRepository, logger *zap.Logger) BorrowService {
	return &borrowService{
		repo:   repo,
		logger: logger,
	}
}

func (s *borrowService) GetBorrowsByUserID(ctx context.Context, userID uint) ([]Borrow, error) {
	borrows, err := s.repo.ReadAllByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list borrows", zap.Uint("userID", userID), zap.Error(err))
		return nil, err
	}
	return borrows, nil
}

func (s *borrowService) GetHistoryByUserID(ctx context.Context, userID uint, showHidden bool) ([]History, error) {
	entries, err := s.repo.ReadHistoryByUserID(ctx, userID, showHidden)
	if err != nil {
		s.logger.Error("failed to list borrow history", zap.Uint("userID", userID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func (s *borrowService) HideHistory(ctx context.Context, historyID, userID uint) error {
	if err := s.repo.SetHistoryHidden(ctx, historyID, userID, true); err != nil {
		s.logger.Error("failed to hide history entry", zap.Uint("historyID", historyID), zap.Error(err))
		return err
	}
	return nil
}

func (s *borrowService) UnhideHistory(ctx context.Context, historyID, userID uint) error {
	if err := s.repo.SetHistoryHidden(ctx, historyID, userID, false); err != nil {
		s.logger.Error("failed to unhide history entry", zap.Uint("historyID", historyID), zap.Error(err))
		return err
	}
	return nil
}
