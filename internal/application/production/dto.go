package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/production"
)

// MaterialLineResponse is one material requirement row
type MaterialLineResponse struct {
	MaterialItemID uuid.UUID       `json:"material_item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// ProductionOrderResponse represents a production order in responses
type ProductionOrderResponse struct {
	ID            uuid.UUID                   `json:"id"`
	Code          string                      `json:"code"`
	SourceOrderID uuid.UUID                   `json:"source_order_id"`
	Status        production.ProductionStatus `json:"status"`
	Materials     []MaterialLineResponse      `json:"materials"`
	StartedAt     *time.Time                  `json:"started_at,omitempty"`
	FinishedAt    *time.Time                  `json:"finished_at,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// ToProductionOrderResponse converts a domain production order
func ToProductionOrderResponse(po *production.ProductionOrder) ProductionOrderResponse {
	materials := make([]MaterialLineResponse, 0, len(po.Materials))
	for _, line := range po.Materials {
		materials = append(materials, MaterialLineResponse{
			MaterialItemID: line.MaterialItemID,
			Quantity:       line.Quantity,
		})
	}
	return ProductionOrderResponse{
		ID:            po.ID,
		Code:          po.Code,
		SourceOrderID: po.SourceOrderID,
		Status:        po.Status,
		Materials:     materials,
		StartedAt:     po.StartedAt,
		FinishedAt:    po.FinishedAt,
		CreatedAt:     po.CreatedAt,
	}
}
