package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-erp/backend/internal/domain/inventory"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// GormWarehouseRepository implements inventory.WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Warehouse, error) {
	var warehouse inventory.Warehouse
	if err := r.db.WithContext(ctx).First(&warehouse, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
		}
		return nil, err
	}
	return &warehouse, nil
}

// FindAll finds warehouses with pagination
func (r *GormWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*inventory.Warehouse, error) {
	var warehouses []*inventory.Warehouse
	query := r.db.WithContext(ctx).Model(&inventory.Warehouse{})

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("name ASC")

	if err := query.Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// FindFinishedGoods finds the warehouses that can hold finished goods, the
// ones order fulfillment evaluates against
func (r *GormWarehouseRepository) FindFinishedGoods(ctx context.Context) ([]*inventory.Warehouse, error) {
	var warehouses []*inventory.Warehouse
	if err := r.db.WithContext(ctx).
		Where("type IN ?", []inventory.WarehouseType{
			inventory.WarehouseTypeFinishedGoods,
			inventory.WarehouseTypeMixed,
		}).
		Order("name ASC").
		Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// Save creates or updates a warehouse
func (r *GormWarehouseRepository) Save(ctx context.Context, warehouse *inventory.Warehouse) error {
	return r.db.WithContext(ctx).Save(warehouse).Error
}

var _ inventory.WarehouseRepository = (*GormWarehouseRepository)(nil)
