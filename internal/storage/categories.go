package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lurkingpods/backend/internal/domain"
)

const categoryColumns = `
	id, name, display_name_en, display_name_tr, description_en, description_tr,
	icon_url, color_hex, is_active, sort_order, created_at
`

// CreateCategory inserts a new category.
func (s *Storage) CreateCategory(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (
			id, name, display_name_en, display_name_tr, description_en, description_tr,
			icon_url, color_hex, is_active, sort_order, created_at
		) VALUES (
			:id, :name, :display_name_en, :display_name_tr, :description_en, :description_tr,
			:icon_url, :color_hex, :is_active, :sort_order, :created_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetCategoryByID retrieves a category by its id.
func (s *Storage) GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var category domain.Category
	if err := s.db.GetContext(ctx, &category, query, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

// ListActiveCategories retrieves active categories in sort order.
func (s *Storage) ListActiveCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE is_active = TRUE ORDER BY sort_order ASC`

	var categories []domain.Category
	if err := s.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// CountActiveCategories returns the active category count for the admin stats endpoint.
func (s *Storage) CountActiveCategories(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM categories WHERE is_active = TRUE`); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}
