package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/inventory"
)

// EvaluateItemInput is one (item, required quantity) pair to evaluate
type EvaluateItemInput struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// EvaluateStockRequest asks for a fulfillment report. A nil WarehouseID
// means all warehouses.
type EvaluateStockRequest struct {
	Items       []EvaluateItemInput `json:"items" binding:"required,min=1,dive"`
	WarehouseID *uuid.UUID          `json:"warehouse_id"`
}

// ItemAvailabilityResponse is the per-item breakdown in one warehouse
type ItemAvailabilityResponse struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Covered   bool            `json:"covered"`
}

// WarehouseFulfillmentResponse is the evaluation result for one warehouse
type WarehouseFulfillmentResponse struct {
	WarehouseID uuid.UUID                  `json:"warehouse_id"`
	CanFulfill  bool                       `json:"can_fulfill"`
	Items       []ItemAvailabilityResponse `json:"items"`
}

// FulfillmentReportResponse is the evaluation result across warehouses
type FulfillmentReportResponse struct {
	Warehouses    []WarehouseFulfillmentResponse `json:"warehouses"`
	AnyCanFulfill bool                           `json:"any_can_fulfill"`
}

// ExportLineResponse is one exported item in an export transaction
type ExportLineResponse struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ExportTransactionResponse represents a recorded export
type ExportTransactionResponse struct {
	ID          uuid.UUID            `json:"id"`
	OrderID     uuid.UUID            `json:"order_id"`
	WarehouseID uuid.UUID            `json:"warehouse_id"`
	Lines       []ExportLineResponse `json:"lines"`
	ExportedBy  uuid.UUID            `json:"exported_by"`
	ExportedAt  time.Time            `json:"exported_at"`
}

// BalanceResponse represents one inventory balance row
type BalanceResponse struct {
	ItemID      uuid.UUID       `json:"item_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ToFulfillmentReportResponse converts a domain report to a response DTO
func ToFulfillmentReportResponse(report inventory.FulfillmentReport) FulfillmentReportResponse {
	warehouses := make([]WarehouseFulfillmentResponse, 0, len(report.Warehouses))
	for _, w := range report.Warehouses {
		items := make([]ItemAvailabilityResponse, 0, len(w.Items))
		for _, item := range w.Items {
			items = append(items, ItemAvailabilityResponse{
				ItemID:    item.ItemID,
				Required:  item.Required,
				Available: item.Available,
				Covered:   item.Covered,
			})
		}
		warehouses = append(warehouses, WarehouseFulfillmentResponse{
			WarehouseID: w.WarehouseID,
			CanFulfill:  w.CanFulfill,
			Items:       items,
		})
	}
	return FulfillmentReportResponse{
		Warehouses:    warehouses,
		AnyCanFulfill: report.AnyCanFulfill(),
	}
}

// ToExportTransactionResponse converts a domain export transaction
func ToExportTransactionResponse(tx *inventory.ExportTransaction) ExportTransactionResponse {
	lines := make([]ExportLineResponse, 0, len(tx.Lines))
	for _, line := range tx.Lines {
		lines = append(lines, ExportLineResponse{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		})
	}
	return ExportTransactionResponse{
		ID:          tx.ID,
		OrderID:     tx.OrderID,
		WarehouseID: tx.WarehouseID,
		Lines:       lines,
		ExportedBy:  tx.ExportedBy,
		ExportedAt:  tx.ExportedAt,
	}
}
