package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

const (
	AggregateTypeInventoryBalance  = "InventoryBalance"
	AggregateTypeExportTransaction = "ExportTransaction"

	EventTypeStockIncreased = "StockIncreased"
	EventTypeStockDecreased = "StockDecreased"
	EventTypeStockExported  = "StockExported"
)

// StockIncreasedEvent is emitted when a balance row gains quantity
type StockIncreasedEvent struct {
	shared.BaseDomainEvent
	ItemID      uuid.UUID       `json:"item_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	NewBalance  decimal.Decimal `json:"new_balance"`
}

func NewStockIncreasedEvent(b *InventoryBalance, quantity decimal.Decimal) *StockIncreasedEvent {
	return &StockIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIncreased, AggregateTypeInventoryBalance, b.ID),
		ItemID:          b.ItemID,
		WarehouseID:     b.WarehouseID,
		Quantity:        quantity,
		NewBalance:      b.Quantity,
	}
}

// StockDecreasedEvent is emitted when a balance row loses quantity
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	ItemID      uuid.UUID       `json:"item_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	NewBalance  decimal.Decimal `json:"new_balance"`
}

func NewStockDecreasedEvent(b *InventoryBalance, quantity decimal.Decimal) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, AggregateTypeInventoryBalance, b.ID),
		ItemID:          b.ItemID,
		WarehouseID:     b.WarehouseID,
		Quantity:        quantity,
		NewBalance:      b.Quantity,
	}
}

// StockExportedEvent is emitted when an export transaction is recorded
type StockExportedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID    `json:"order_id"`
	WarehouseID uuid.UUID    `json:"warehouse_id"`
	Lines       []ExportInfo `json:"lines"`
}

// ExportInfo is one exported item inside a StockExportedEvent
type ExportInfo struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

func NewStockExportedEvent(tx *ExportTransaction) *StockExportedEvent {
	lines := make([]ExportInfo, 0, len(tx.Lines))
	for _, l := range tx.Lines {
		lines = append(lines, ExportInfo{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return &StockExportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockExported, AggregateTypeExportTransaction, tx.ID),
		OrderID:         tx.OrderID,
		WarehouseID:     tx.WarehouseID,
		Lines:           lines,
	}
}
