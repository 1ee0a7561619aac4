package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-erp/backend/internal/domain/production"
)

// GormBOMRepository implements production.BOMRepository using GORM
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new GormBOMRepository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

// FindByFinishedItem returns the material lines for one finished item.
// An item without BOM rows yields an empty slice, not an error.
func (r *GormBOMRepository) FindByFinishedItem(ctx context.Context, finishedItemID uuid.UUID) ([]*production.BOMEntry, error) {
	var entries []*production.BOMEntry
	if err := r.db.WithContext(ctx).
		Where("finished_item_id = ?", finishedItemID).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByFinishedItems batch-loads BOM rows for several finished items,
// keyed by finished item ID
func (r *GormBOMRepository) FindByFinishedItems(ctx context.Context, finishedItemIDs []uuid.UUID) (map[uuid.UUID][]*production.BOMEntry, error) {
	result := make(map[uuid.UUID][]*production.BOMEntry)
	if len(finishedItemIDs) == 0 {
		return result, nil
	}

	var entries []*production.BOMEntry
	if err := r.db.WithContext(ctx).
		Where("finished_item_id IN ?", finishedItemIDs).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	for _, entry := range entries {
		result[entry.FinishedItemID] = append(result[entry.FinishedItemID], entry)
	}
	return result, nil
}

var _ production.BOMRepository = (*GormBOMRepository)(nil)
