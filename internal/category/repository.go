package category

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

var (
	ErrCategoryNameTaken    = errors.New("category name already exists")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrUnresponsiveDatabase = errors.New("error occurred during writing to categories table")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	ReadByID(ctx context.Context, id uint) (*Category, error)
	ReadAll(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *Category) error {
	err := r.db.WithContext(ctx).Create(category).Error
	if err != nil {
		if isNameConflict(err) {
			return ErrCategoryNameTaken
		}
		return ErrUnresponsiveDatabase
	}
	return nil
}

func (r *categoryRepository) ReadByID(ctx context.Context, id uint) (*Category, error) {
	var category Category
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&category, id).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return &category, nil
}

func (r *categoryRepository) ReadAll(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Find(&categories).
		Error
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *Category) error {
	err := r.db.WithContext(ctx).Save(category).Error
	if err != nil {
		if isNameConflict(err) {
			return ErrCategoryNameTaken
		}
		return ErrUnresponsiveDatabase
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Category{}, id)
	if res.Error != nil {
		return ErrUnresponsiveDatabase
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func isNameConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
