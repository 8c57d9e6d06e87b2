package borrow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockBorrowRepository struct {
	mock.Mock
}

func (m *MockBorrowRepository) ReadAllByUserID(ctx context.Context, userID uint) ([]Borrow, error) {
	args := m.Called(ctx, userID)
	borrows, _ := args.Get(0).([]Borrow)
	return borrows, args.Error(1)
}

func (m *MockBorrowRepository) ReadHistoryByUserID(ctx context.Context, userID uint, showHidden bool) ([]History, error) {
	args := m.Called(ctx, userID, showHidden)
	entries, _ := args.Get(0).([]History)
	return entries, args.Error(1)
}

func (m *MockBorrowRepository) SetHistoryHidden(ctx context.Context, historyID, userID uint, hidden bool) error {
	args := m.Called(ctx, historyID, userID, hidden)
	return args.Error(0)
}

func TestGetHistoryByUserID_PassesHiddenFlag(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBorrowRepository)
	svc := NewBorrowService(repo, zap.NewNop())

	repo.On("ReadHistoryByUserID", ctx, uint(42), true).Return([]History{{UserID: 42, BookID: 7, Hidden: true}}, nil)

	entries, err := svc.GetHistoryByUserID(ctx, 42, true)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	repo.AssertExpectations(t)
}

func TestHideHistory_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBorrowRepository)
	svc := NewBorrowService(repo, zap.NewNop())

	repo.On("SetHistoryHidden", ctx, uint(9), uint(42), true).Return(ErrHistoryNotFound)

	err := svc.HideHistory(ctx, 9, 42)
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestUnhideHistory_ClearsFlag(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBorrowRepository)
	svc := NewBorrowService(repo, zap.NewNop())

	repo.On("SetHistoryHidden", ctx, uint(9), uint(42), false).Return(nil)

	err := svc.UnhideHistory(ctx, 9, 42)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
