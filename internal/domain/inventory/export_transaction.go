package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

// ExportTransaction is the append-only record of finished goods leaving a
// warehouse against an exported sales order. Rows are never updated or
// deleted after creation.
type ExportTransaction struct {
	shared.BaseEntity
	OrderID     uuid.UUID             `json:"order_id" gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID             `json:"warehouse_id" gorm:"type:uuid;not null;index"`
	Lines       []ExportLine          `json:"lines" gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	ExportedBy  uuid.UUID             `json:"exported_by" gorm:"type:uuid;not null"`
	ExportedAt  time.Time             `json:"exported_at" gorm:"not null"`
	events      []shared.DomainEvent  `gorm:"-"`
}

// ExportLine is one item movement inside an export transaction
type ExportLine struct {
	shared.BaseEntity
	TransactionID uuid.UUID       `json:"transaction_id" gorm:"type:uuid;not null;index"`
	ItemID        uuid.UUID       `json:"item_id" gorm:"type:uuid;not null"`
	Quantity      decimal.Decimal `json:"quantity" gorm:"type:decimal(15,3);not null"`
}

func (ExportTransaction) TableName() string { return "export_transactions" }
func (ExportLine) TableName() string        { return "export_transaction_lines" }

// NewExportTransaction records the movement of the given items out of the
// warehouse. Every line must carry a positive quantity.
func NewExportTransaction(orderID, warehouseID, exportedBy uuid.UUID, requirements []ItemRequirement) (*ExportTransaction, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER_ID", "order id is required")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE_ID", "warehouse id is required")
	}
	if len(requirements) == 0 {
		return nil, shared.NewDomainError("EMPTY_EXPORT", "export must move at least one item")
	}

	tx := &ExportTransaction{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     orderID,
		WarehouseID: warehouseID,
		ExportedBy:  exportedBy,
		ExportedAt:  time.Now(),
	}
	for _, req := range requirements {
		if !req.Required.IsPositive() {
			return nil, shared.NewDomainError("INVALID_EXPORT_QUANTITY", "export quantity must be positive")
		}
		tx.Lines = append(tx.Lines, ExportLine{
			BaseEntity:    shared.NewBaseEntity(),
			TransactionID: tx.ID,
			ItemID:        req.ItemID,
			Quantity:      req.Required,
		})
	}
	tx.events = append(tx.events, NewStockExportedEvent(tx))
	return tx, nil
}

// GetDomainEvents returns events recorded at creation time
func (t *ExportTransaction) GetDomainEvents() []shared.DomainEvent {
	return t.events
}

// ClearDomainEvents drops recorded events after publishing
func (t *ExportTransaction) ClearDomainEvents() {
	t.events = nil
}
