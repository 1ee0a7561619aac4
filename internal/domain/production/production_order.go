package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

// ProductionStatus tracks a production order through the shop-floor handoff
type ProductionStatus string

const (
	ProductionStatusCreated    ProductionStatus = "CREATED"
	ProductionStatusInProgress ProductionStatus = "IN_PROGRESS"
	ProductionStatusFinished   ProductionStatus = "FINISHED"
)

// IsValid checks if the status is a valid ProductionStatus
func (s ProductionStatus) IsValid() bool {
	switch s {
	case ProductionStatusCreated, ProductionStatusInProgress, ProductionStatusFinished:
		return true
	}
	return false
}

// String returns the string representation of ProductionStatus
func (s ProductionStatus) String() string {
	return string(s)
}

// MaterialLine is one persisted requirement row of a production order
type MaterialLine struct {
	shared.BaseEntity
	ProductionOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialItemID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity          decimal.Decimal `gorm:"type:decimal(15,4);not null"`
}

// TableName returns the table name for GORM
func (MaterialLine) TableName() string {
	return "production_order_materials"
}

// ProductionOrder is created when a paid sales order needs manufacturing.
// It carries the aggregated material requirements; actual material
// consumption happens in a downstream shop-floor process, never here.
type ProductionOrder struct {
	shared.BaseAggregateRoot
	Code          string           `gorm:"type:varchar(50);uniqueIndex;not null"`
	SourceOrderID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status        ProductionStatus `gorm:"type:varchar(20);not null"`
	Materials     []MaterialLine   `gorm:"foreignKey:ProductionOrderID;constraint:OnDelete:CASCADE"`
	StartedAt     *time.Time       `gorm:""`
	FinishedAt    *time.Time       `gorm:""`
}

// TableName returns the table name for GORM
func (ProductionOrder) TableName() string {
	return "production_orders"
}

// NewProductionOrder creates a production order for a source sales order
// with its aggregated material requirements
func NewProductionOrder(code string, sourceOrderID uuid.UUID, requirements []MaterialRequirement) (*ProductionOrder, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Production order code cannot be empty")
	}
	if sourceOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE_ORDER", "Source order ID cannot be empty")
	}

	po := &ProductionOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		SourceOrderID:     sourceOrderID,
		Status:            ProductionStatusCreated,
	}
	for _, req := range requirements {
		if !req.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_MATERIAL_QUANTITY", "Material quantity must be positive")
		}
		po.Materials = append(po.Materials, MaterialLine{
			BaseEntity:        shared.NewBaseEntity(),
			ProductionOrderID: po.ID,
			MaterialItemID:    req.MaterialItemID,
			Quantity:          req.Quantity,
		})
	}

	po.AddDomainEvent(NewProductionOrderCreatedEvent(po))
	return po, nil
}

// Start marks the order picked up by the shop floor
func (p *ProductionOrder) Start() error {
	if p.Status != ProductionStatusCreated {
		return shared.NewStateConflictError("INVALID_PRODUCTION_STATE", "Production order can only start from CREATED")
	}
	now := time.Now()
	p.Status = ProductionStatusInProgress
	p.StartedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// Finish marks manufacturing done so the sales order can move to export
func (p *ProductionOrder) Finish() error {
	if p.Status != ProductionStatusInProgress {
		return shared.NewStateConflictError("INVALID_PRODUCTION_STATE", "Production order can only finish from IN_PROGRESS")
	}
	now := time.Now()
	p.Status = ProductionStatusFinished
	p.FinishedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewProductionOrderFinishedEvent(p))
	return nil
}

// RequirementFor returns the aggregated quantity for one material, zero if
// the material is not required
func (p *ProductionOrder) RequirementFor(materialID uuid.UUID) decimal.Decimal {
	for _, line := range p.Materials {
		if line.MaterialItemID == materialID {
			return line.Quantity
		}
	}
	return decimal.Zero
}
