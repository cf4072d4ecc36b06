package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/marketplace/app/models"
	"gorm.io/gorm"
)

// CategoryRepository persists the category forest and keeps it acyclic.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// parents loads the id → parent id arena used for cycle checks.
func (r *CategoryRepository) parents(ctx context.Context) (map[uint]uint, error) {
	var rows []struct {
		ID       uint
		ParentID *uint
	}
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Select("id", "parent_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load category tree: %w", err)
	}
	out := make(map[uint]uint, len(rows))
	for _, row := range rows {
		if row.ParentID != nil {
			out[row.ID] = *row.ParentID
		} else {
			out[row.ID] = 0
		}
	}
	return out, nil
}

func (r *CategoryRepository) checkParent(ctx context.Context, id uint, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	arena, err := r.parents(ctx)
	if err != nil {
		return err
	}
	if _, ok := arena[*parentID]; !ok {
		return fmt.Errorf("parent category %d: %w", *parentID, gorm.ErrRecordNotFound)
	}
	return models.ValidateCategoryParent(arena, id, *parentID)
}

// Create inserts a category after checking its parent exists.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	if err := r.checkParent(ctx, 0, c.ParentID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit("Parent").Create(c).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// SetParent re-parents a category, rejecting links that would form a cycle.
func (r *CategoryRepository) SetParent(ctx context.Context, id uint, parentID *uint) error {
	if err := r.checkParent(ctx, id, parentID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		UpdateColumn("parent_id", parentID).Error
	if err != nil {
		return fmt.Errorf("set parent of category %d: %w", id, err)
	}
	return nil
}

// FindBySlug looks a category up by its slug.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, fmt.Errorf("find category %q: %w", slug, err)
	}
	return &c, nil
}

// All lists every category ordered by name.
func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}
