package sales

import (
	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSalesOrder = "SalesOrder"

// Event type constants
const (
	EventTypeOrderCreated           = "SalesOrderCreated"
	EventTypeOrderConfirmed         = "SalesOrderConfirmed"
	EventTypeOrderCancelled         = "SalesOrderCancelled"
	EventTypeOrderPaid              = "SalesOrderPaid"
	EventTypeOrderPaymentApplied    = "SalesOrderPaymentApplied"
	EventTypeOrderProductionStarted = "SalesOrderProductionStarted"
	EventTypeOrderReadyToExport     = "SalesOrderReadyToExport"
	EventTypeOrderExported          = "SalesOrderExported"
	EventTypeOrderCompleted         = "SalesOrderCompleted"
)

// OrderCreatedEvent is raised when a new sales order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	Code       string    `json:"code"`
	CustomerID uuid.UUID `json:"customer_id"`
	BranchID   uuid.UUID `json:"branch_id"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *SalesOrder) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		Code:            order.Code,
		CustomerID:      order.CustomerID,
		BranchID:        order.BranchID,
	}
}

// OrderLineInfo represents line information carried by order events
type OrderLineInfo struct {
	LineID   uuid.UUID       `json:"line_id"`
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Custom   bool            `json:"custom"`
}

func lineInfos(order *SalesOrder) []OrderLineInfo {
	infos := make([]OrderLineInfo, len(order.Lines))
	for i := range order.Lines {
		infos[i] = OrderLineInfo{
			LineID:   order.Lines[i].ID,
			ItemID:   order.Lines[i].ItemID,
			Quantity: order.Lines[i].Quantity,
			Custom:   order.Lines[i].IsCustomMade(),
		}
	}
	return infos
}

// OrderConfirmedEvent is raised when a sales order is confirmed.
// A customer debt row for the final amount is opened in the finance context.
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	Code        string          `json:"code"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Lines       []OrderLineInfo `json:"lines"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(order *SalesOrder) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		Code:            order.Code,
		CustomerID:      order.CustomerID,
		FinalAmount:     order.FinalAmount,
		Lines:           lineInfos(order),
	}
}

// OrderCancelledEvent is raised when a pending sales order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	Code    string    `json:"code"`
	Reason  string    `json:"reason"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *SalesOrder) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		Code:            order.Code,
		Reason:          order.CancelReason,
	}
}

// OrderPaidEvent is raised when the deposit is recorded and the order enters
// PAID. Stock evaluation and production triggering key off this event.
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	Code          string          `json:"code"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Remaining     decimal.Decimal `json:"remaining"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(order *SalesOrder, deposit decimal.Decimal) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		Code:            order.Code,
		DepositAmount:   deposit,
		Remaining:       order.Remaining(),
	}
}

// OrderPaymentAppliedEvent is raised when a remainder payment is applied
type OrderPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID       `json:"order_id"`
	Code      string          `json:"code"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
}

// NewOrderPaymentAppliedEvent creates a new OrderPaymentAppliedEvent
func NewOrderPaymentAppliedEvent(order *SalesOrder, amount decimal.Decimal) *OrderPaymentAppliedEvent {
	return &OrderPaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentApplied, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		Code:            order.Code,
		Amount:          amount,
		Remaining:       order.Remaining(),
	}
}

// OrderProductionStartedEvent is raised when production is triggered
type OrderProductionStartedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID       `json:"order_id"`
	Code    string          `json:"code"`
	Lines   []OrderLineInfo `json:"lines"`
}

// NewOrderProductionStartedEvent creates a new OrderProductionStartedEvent
func NewOrderProductionStartedEvent(order *SalesOrder) *OrderProductionStartedEvent {
	return &OrderProductionStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderProductionStarted, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		Code:            order.Code,
		Lines:           lineInfos(order),
	}
}

// OrderReadyToExportEvent is raised when an order becomes ready to export
type OrderReadyToExportEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	Code    string    `json:"code"`
}

// NewOrderReadyToExportEvent creates a new OrderReadyToExportEvent
func NewOrderReadyToExportEvent(order *SalesOrder) *OrderReadyToExportEvent {
	return &OrderReadyToExportEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderReadyToExport, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		Code:            order.Code,
	}
}

// OrderExportedEvent is raised when the export transaction has been committed
type OrderExportedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	Code        string    `json:"code"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
}

// NewOrderExportedEvent creates a new OrderExportedEvent
func NewOrderExportedEvent(order *SalesOrder, warehouseID uuid.UUID) *OrderExportedEvent {
	return &OrderExportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderExported, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		Code:            order.Code,
		WarehouseID:     warehouseID,
	}
}

// OrderCompletedEvent is raised when the order reaches its terminal state
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	Code    string    `json:"code"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(order *SalesOrder) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		Code:            order.Code,
	}
}
