package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-erp/backend/internal/domain/inventory"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// GormInventoryBalanceRepository implements inventory.InventoryBalanceRepository using GORM
type GormInventoryBalanceRepository struct {
	db *gorm.DB
}

// NewGormInventoryBalanceRepository creates a new GormInventoryBalanceRepository
func NewGormInventoryBalanceRepository(db *gorm.DB) *GormInventoryBalanceRepository {
	return &GormInventoryBalanceRepository{db: db}
}

// FindByID finds a balance row by its ID
func (r *GormInventoryBalanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryBalance, error) {
	var balance inventory.InventoryBalance
	if err := r.db.WithContext(ctx).First(&balance, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("BALANCE_NOT_FOUND", "Inventory balance not found")
		}
		return nil, err
	}
	return &balance, nil
}

// FindByItemAndWarehouse finds the balance row for an item-warehouse pair.
// An absent row is a NotFound error; callers treat it as available zero.
func (r *GormInventoryBalanceRepository) FindByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) (*inventory.InventoryBalance, error) {
	var balance inventory.InventoryBalance
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("BALANCE_NOT_FOUND", "Inventory balance not found")
		}
		return nil, err
	}
	return &balance, nil
}

// FindByWarehouse finds all balance rows in a warehouse
func (r *GormInventoryBalanceRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*inventory.InventoryBalance, error) {
	var balances []*inventory.InventoryBalance
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// FindByItems finds the balance rows for the given items across the given
// warehouses. Pairs without a row are simply absent from the result.
func (r *GormInventoryBalanceRepository) FindByItems(ctx context.Context, itemIDs []uuid.UUID, warehouseIDs []uuid.UUID) ([]*inventory.InventoryBalance, error) {
	if len(itemIDs) == 0 || len(warehouseIDs) == 0 {
		return []*inventory.InventoryBalance{}, nil
	}

	var balances []*inventory.InventoryBalance
	if err := r.db.WithContext(ctx).
		Where("item_id IN ? AND warehouse_id IN ?", itemIDs, warehouseIDs).
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// Save creates or updates a balance row
func (r *GormInventoryBalanceRepository) Save(ctx context.Context, balance *inventory.InventoryBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

// SaveWithLock saves with optimistic locking. The aggregate incremented its
// version when it mutated, so the row must still hold the previous version.
func (r *GormInventoryBalanceRepository) SaveWithLock(ctx context.Context, balance *inventory.InventoryBalance) error {
	balance.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&inventory.InventoryBalance{}).
		Where("id = ? AND version = ?", balance.ID, balance.Version-1).
		Updates(map[string]interface{}{
			"quantity":   balance.Quantity,
			"version":    balance.Version,
			"updated_at": balance.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ inventory.InventoryBalanceRepository = (*GormInventoryBalanceRepository)(nil)
