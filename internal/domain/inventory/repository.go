package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

// InventoryBalanceRepository persists per-(item, warehouse) balance rows
type InventoryBalanceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryBalance, error)
	FindByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) (*InventoryBalance, error)
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*InventoryBalance, error)
	FindByItems(ctx context.Context, itemIDs []uuid.UUID, warehouseIDs []uuid.UUID) ([]*InventoryBalance, error)
	Save(ctx context.Context, balance *InventoryBalance) error
	// SaveWithLock persists the balance guarded by its version and returns
	// shared.ErrConcurrencyConflict when another writer got there first.
	SaveWithLock(ctx context.Context, balance *InventoryBalance) error
}

// WarehouseRepository reads the warehouse registry
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Warehouse, error)
	FindFinishedGoods(ctx context.Context) ([]*Warehouse, error)
	Save(ctx context.Context, warehouse *Warehouse) error
}

// ExportTransactionRepository appends export records. There is no update or
// delete: export history is immutable.
type ExportTransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ExportTransaction, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*ExportTransaction, error)
	Save(ctx context.Context, tx *ExportTransaction) error
}
