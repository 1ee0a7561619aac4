package inventory

import (
	"time"

	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryBalance is the on-hand quantity of one item in one warehouse.
// It is the aggregate root for stock mutations; the composite business key
// is (ItemID, WarehouseID) and the quantity can never go negative.
type InventoryBalance struct {
	shared.BaseAggregateRoot
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_balance_item_warehouse,priority:1"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_balance_item_warehouse,priority:2"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryBalance) TableName() string {
	return "inventory_balances"
}

// NewInventoryBalance creates a new zero balance for an item-warehouse pair
func NewInventoryBalance(itemID, warehouseID uuid.UUID) (*InventoryBalance, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &InventoryBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemID:            itemID,
		WarehouseID:       warehouseID,
		Quantity:          decimal.Zero,
	}, nil
}

// Increase adds stock. Purchasing-side imports and transfers are external
// collaborators but share this contract.
func (b *InventoryBalance) Increase(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	b.Quantity = b.Quantity.Add(quantity)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	b.AddDomainEvent(NewStockIncreasedEvent(b, quantity))

	return nil
}

// Decrease removes stock for an export. Rejects any decrement that would
// drive the balance negative.
func (b *InventoryBalance) Decrease(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if b.Quantity.LessThan(quantity) {
		return NewInsufficientStockError([]Shortage{{
			ItemID:    b.ItemID,
			Required:  quantity,
			Available: b.Quantity,
		}})
	}

	b.Quantity = b.Quantity.Sub(quantity)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	b.AddDomainEvent(NewStockDecreasedEvent(b, quantity))

	return nil
}

// CanCover returns true if the balance covers the required quantity
func (b *InventoryBalance) CanCover(required decimal.Decimal) bool {
	return b.Quantity.GreaterThanOrEqual(required)
}
