package production

import (
	"github.com/google/uuid"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

const (
	AggregateTypeProductionOrder = "ProductionOrder"

	EventTypeProductionOrderCreated  = "ProductionOrderCreated"
	EventTypeProductionOrderFinished = "ProductionOrderFinished"
)

// ProductionOrderCreatedEvent is emitted when a paid sales order triggers
// manufacturing
type ProductionOrderCreatedEvent struct {
	shared.BaseDomainEvent
	Code          string                `json:"code"`
	SourceOrderID uuid.UUID             `json:"source_order_id"`
	Materials     []MaterialRequirement `json:"materials"`
}

func NewProductionOrderCreatedEvent(po *ProductionOrder) *ProductionOrderCreatedEvent {
	materials := make([]MaterialRequirement, 0, len(po.Materials))
	for _, line := range po.Materials {
		materials = append(materials, MaterialRequirement{
			MaterialItemID: line.MaterialItemID,
			Quantity:       line.Quantity,
		})
	}
	return &ProductionOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductionOrderCreated, AggregateTypeProductionOrder, po.ID),
		Code:            po.Code,
		SourceOrderID:   po.SourceOrderID,
		Materials:       materials,
	}
}

// ProductionOrderFinishedEvent is emitted when manufacturing completes
type ProductionOrderFinishedEvent struct {
	shared.BaseDomainEvent
	Code          string    `json:"code"`
	SourceOrderID uuid.UUID `json:"source_order_id"`
}

func NewProductionOrderFinishedEvent(po *ProductionOrder) *ProductionOrderFinishedEvent {
	return &ProductionOrderFinishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductionOrderFinished, AggregateTypeProductionOrder, po.ID),
		Code:            po.Code,
		SourceOrderID:   po.SourceOrderID,
	}
}
