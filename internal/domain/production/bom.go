package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

// BOMEntry is one material requirement for producing a unit of a finished
// item. The BOM table is maintained by an external collaborator; this core
// only reads it during material resolution.
type BOMEntry struct {
	shared.BaseEntity
	FinishedItemID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialItemID  uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(15,4);not null"`
}

// TableName returns the table name for GORM
func (BOMEntry) TableName() string {
	return "bom_entries"
}

// BOMRepository reads the bill-of-materials table
type BOMRepository interface {
	FindByFinishedItem(ctx context.Context, finishedItemID uuid.UUID) ([]*BOMEntry, error)
	FindByFinishedItems(ctx context.Context, finishedItemIDs []uuid.UUID) (map[uuid.UUID][]*BOMEntry, error)
}
