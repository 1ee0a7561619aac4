package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/inventory"
	"github.com/atelier-erp/backend/internal/domain/sales"
)

// MeasurementsInput carries the made-to-order dimensions of a line
type MeasurementsInput struct {
	Width  decimal.Decimal `json:"width" binding:"required"`
	Height decimal.Decimal `json:"height" binding:"required"`
	Depth  decimal.Decimal `json:"depth"`
	Note   string          `json:"note" binding:"max=500"`
}

// OrderLineInput represents a line in the create order request
type OrderLineInput struct {
	ItemID       uuid.UUID          `json:"item_id" binding:"required"`
	Quantity     decimal.Decimal    `json:"quantity" binding:"required"`
	UnitPrice    decimal.Decimal    `json:"unit_price" binding:"required"`
	CostPrice    decimal.Decimal    `json:"cost_price"`
	Measurements *MeasurementsInput `json:"measurements"`
}

// CreateOrderRequest represents a request to create a sales order
type CreateOrderRequest struct {
	CustomerID uuid.UUID        `json:"customer_id" binding:"required"`
	BranchID   uuid.UUID        `json:"branch_id" binding:"required"`
	OrderDate  *time.Time       `json:"order_date"`
	Lines      []OrderLineInput `json:"lines" binding:"required,min=1,dive"`
	Discount   *decimal.Decimal `json:"discount"`
	OtherCosts *decimal.Decimal `json:"other_costs"`
}

// CancelOrderRequest represents a request to cancel a pending order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ExportOrderRequest represents a request to export a settled order
type ExportOrderRequest struct {
	WarehouseID uuid.UUID `json:"warehouse_id" binding:"required"`
}

// OrderListFilter represents filter criteria for listing orders
type OrderListFilter struct {
	Page       int                `form:"page"`
	PageSize   int                `form:"page_size"`
	CustomerID *uuid.UUID         `form:"customer_id"`
	Status     *sales.OrderStatus `form:"status"`
	Search     string             `form:"search"`
}

// OrderLineResponse represents an order line in responses
type OrderLineResponse struct {
	ID           uuid.UUID           `json:"id"`
	ItemID       uuid.UUID           `json:"item_id"`
	Quantity     decimal.Decimal     `json:"quantity"`
	UnitPrice    decimal.Decimal     `json:"unit_price"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Measurements *sales.Measurements `json:"measurements,omitempty"`
	CustomMade   bool                `json:"custom_made"`
}

// OrderResponse represents a sales order in responses
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	Code           string              `json:"code"`
	CustomerID     uuid.UUID           `json:"customer_id"`
	BranchID       uuid.UUID           `json:"branch_id"`
	OrderDate      time.Time           `json:"order_date"`
	Status         sales.OrderStatus   `json:"status"`
	Lines          []OrderLineResponse `json:"lines"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	OtherCosts     decimal.Decimal     `json:"other_costs"`
	FinalAmount    decimal.Decimal     `json:"final_amount"`
	DepositAmount  decimal.Decimal     `json:"deposit_amount"`
	PaidAmount     decimal.Decimal     `json:"paid_amount"`
	Remaining      decimal.Decimal     `json:"remaining"`
	PaymentStatus  sales.PaymentStatus `json:"payment_status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ProductionNeedResponse is the outcome of evaluating whether an order
// needs manufacturing before it can ship
type ProductionNeedResponse struct {
	NeedsProduction bool                        `json:"needs_production"`
	HasCustomLines  bool                        `json:"has_custom_lines"`
	StockReport     inventory.FulfillmentReport `json:"stock_report"`
}

// StartProductionResponse reports the created production order and any
// lines skipped for lack of a bill of materials
type StartProductionResponse struct {
	Order             OrderResponse `json:"order"`
	ProductionOrderID uuid.UUID     `json:"production_order_id"`
	SkippedItems      []uuid.UUID   `json:"skipped_items,omitempty"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(order *sales.SalesOrder) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLineResponse{
			ID:           line.ID,
			ItemID:       line.ItemID,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			TotalAmount:  line.TotalAmount,
			Measurements: line.Measurements,
			CustomMade:   line.IsCustomMade(),
		})
	}
	return OrderResponse{
		ID:             order.ID,
		Code:           order.Code,
		CustomerID:     order.CustomerID,
		BranchID:       order.BranchID,
		OrderDate:      order.OrderDate,
		Status:         order.Status,
		Lines:          lines,
		TotalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		OtherCosts:     order.OtherCosts,
		FinalAmount:    order.FinalAmount,
		DepositAmount:  order.DepositAmount,
		PaidAmount:     order.PaidAmount,
		Remaining:      order.Remaining(),
		PaymentStatus:  order.PaymentStatus,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(orders []sales.SalesOrder) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses
}
