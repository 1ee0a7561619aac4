package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-erp/backend/internal/domain/catalog"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ITEM_NOT_FOUND", "Item not found")
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDs finds multiple items by their IDs. Unknown IDs are simply absent
// from the result.
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Item, error) {
	if len(ids) == 0 {
		return []*catalog.Item{}, nil
	}

	var items []*catalog.Item
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

var _ catalog.ItemRepository = (*GormItemRepository)(nil)
