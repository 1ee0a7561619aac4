package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

// ItemKind separates sellable finished goods from raw materials that may
// also be sold directly
type ItemKind string

const (
	ItemKindFinished    ItemKind = "FINISHED"
	ItemKindRawMaterial ItemKind = "RAW_MATERIAL"
)

// IsValid checks if the kind is a valid ItemKind
func (k ItemKind) IsValid() bool {
	return k == ItemKindFinished || k == ItemKindRawMaterial
}

// String returns the string representation of ItemKind
func (k ItemKind) String() string {
	return string(k)
}

// Item is a read-only catalog entry. The catalog is owned by an external
// collaborator; this core reads items by id and never writes them.
type Item struct {
	shared.BaseEntity
	Code      string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Kind      ItemKind        `gorm:"type:varchar(20);not null"`
	Unit      string          `gorm:"type:varchar(20);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "catalog_items"
}

// ItemRepository reads the catalog registry
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Item, error)
}
