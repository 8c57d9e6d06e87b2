package category

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrEmptyName = errors.New("category name must not be empty")

type CategoryService interface {
	CreateCategory(ctx context.Context, name string) (*Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*Category, error)
	GetAllCategories(ctx context.Context) ([]Category, error)
	RenameCategory(ctx context.Context, id uint, name string) error
	DeleteCategory(ctx context.Context, id uint) error
}

type categoryService struct {
	repo   CategoryRepository
	logger *zap.Logger
}

func NewCategoryService(repo CategoryRepository, logger *zap.Logger) CategoryService {
	return &categoryService{
		repo:   repo,
		logger: logger,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, name string) (*Category, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	category := &Category{Name: name}
	if err := s.repo.Create(ctx, category); err != nil {
		s.logger.Error("failed to create category", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uint) (*Category, error) {
	category, err := s.repo.ReadByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.ReadAll(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", zap.Error(err))
		return nil, err
	}
	return categories, nil
}

func (s *categoryService) RenameCategory(ctx context.Context, id uint, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	category, err := s.repo.ReadByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to rename category, not found", zap.Uint("id", id), zap.Error(err))
		return err
	}
	category.Name = name
	if err := s.repo.Update(ctx, category); err != nil {
		s.logger.Error("failed to rename category", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete category", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}
