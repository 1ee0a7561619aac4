package sales

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/atelier-erp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfillment status of a sales order
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusConfirmed     OrderStatus = "CONFIRMED"
	OrderStatusPaid          OrderStatus = "PAID"
	OrderStatusInProduction  OrderStatus = "IN_PRODUCTION"
	OrderStatusReadyToExport OrderStatus = "READY_TO_EXPORT"
	OrderStatusExported      OrderStatus = "EXPORTED"
	OrderStatusCompleted     OrderStatus = "COMPLETED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPaid,
		OrderStatusInProduction, OrderStatusReadyToExport,
		OrderStatusExported, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for terminal states
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// PAID marks "a deposit or full payment has been recorded", not full
// settlement; the EXPORTED gate is what requires a zero remainder.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusPaid
	case OrderStatusPaid:
		return target == OrderStatusInProduction || target == OrderStatusReadyToExport
	case OrderStatusInProduction:
		return target == OrderStatusReadyToExport
	case OrderStatusReadyToExport:
		return target == OrderStatusExported
	case OrderStatusExported:
		return target == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return false
	}
	return false
}

// PaymentStatus is the settlement status derived from the order amounts
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// Measurements carries the customer-specific dimensions of a made-to-order
// line. Its presence on a line means the item must be produced for this
// order regardless of finished stock.
type Measurements struct {
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Depth  decimal.Decimal `json:"depth,omitempty"`
	Note   string          `json:"note,omitempty"`
}

// Value implements driver.Valuer for JSONB storage
func (m Measurements) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB retrieval
func (m *Measurements) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Measurements: unsupported type")
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// OrderLine represents a line in a sales order
type OrderLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Measurements *Measurements   `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "sales_order_lines"
}

// NewOrderLine creates a new order line
func NewOrderLine(orderID, itemID uuid.UUID, quantity decimal.Decimal, unitPrice, costPrice valueobject.Money, measurements *Measurements) (*OrderLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if costPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost price cannot be negative")
	}

	now := time.Now()
	return &OrderLine{
		ID:           uuid.New(),
		OrderID:      orderID,
		ItemID:       itemID,
		Quantity:     quantity,
		UnitPrice:    unitPrice.Amount(),
		CostPrice:    costPrice.Amount(),
		TotalAmount:  quantity.Mul(unitPrice.Amount()),
		Measurements: measurements,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsCustomMade returns true if the line carries customer measurements,
// which forces production regardless of finished stock
func (l *OrderLine) IsCustomMade() bool {
	return l.Measurements != nil
}

// GetTotalAmountMoney returns the line total as Money
func (l *OrderLine) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVND(l.TotalAmount)
}

// SalesOrder is the aggregate root of the fulfillment workflow. It owns its
// lines exclusively and gates every downstream action (production trigger,
// payment application, export) behind explicit state transitions.
type SalesOrder struct {
	shared.BaseAggregateRoot
	Code           string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderDate      time.Time       `gorm:"not null"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Lines          []OrderLine     `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OtherCosts     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FinalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DepositAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus  PaymentStatus   `gorm:"type:varchar(20);not null;default:'UNPAID'"`
	ConfirmedAt    *time.Time      `gorm:"index"`
	PaidAt         *time.Time
	ExportedAt     *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a new sales order in PENDING state
func NewSalesOrder(code string, customerID, branchID uuid.UUID, orderDate time.Time) (*SalesOrder, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Order code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Order code cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	order := &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		CustomerID:        customerID,
		BranchID:          branchID,
		OrderDate:         orderDate,
		Status:            OrderStatusPending,
		Lines:             make([]OrderLine, 0),
		TotalAmount:       decimal.Zero,
		DiscountAmount:    decimal.Zero,
		OtherCosts:        decimal.Zero,
		FinalAmount:       decimal.Zero,
		DepositAmount:     decimal.Zero,
		PaidAmount:        decimal.Zero,
		PaymentStatus:     PaymentStatusUnpaid,
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// AddLine adds a line to the order. Only allowed in PENDING status.
func (o *SalesOrder) AddLine(itemID uuid.UUID, quantity decimal.Decimal, unitPrice, costPrice valueobject.Money, measurements *Measurements) (*OrderLine, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.NewStateConflictError("INVALID_STATE", "Cannot add lines to a non-pending order")
	}

	line, err := NewOrderLine(o.ID, itemID, quantity, unitPrice, costPrice, measurements)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return line, nil
}

// RemoveLine removes a line from the order. Only allowed in PENDING status.
func (o *SalesOrder) RemoveLine(lineID uuid.UUID) error {
	if o.Status != OrderStatusPending {
		return shared.NewStateConflictError("INVALID_STATE", "Cannot remove lines from a non-pending order")
	}

	for idx, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewNotFoundError("LINE_NOT_FOUND", "Order line not found")
}

// ApplyDiscount applies an order-level discount. Only allowed in PENDING status.
func (o *SalesOrder) ApplyDiscount(discount valueobject.Money) error {
	if o.Status != OrderStatusPending {
		return shared.NewStateConflictError("INVALID_STATE", "Cannot apply discount to a non-pending order")
	}
	if discount.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.Amount().GreaterThan(o.TotalAmount.Add(o.OtherCosts)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed total amount plus other costs")
	}

	o.DiscountAmount = discount.Amount()
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return nil
}

// SetOtherCosts sets delivery/installation surcharges. Only allowed in PENDING status.
func (o *SalesOrder) SetOtherCosts(costs valueobject.Money) error {
	if o.Status != OrderStatusPending {
		return shared.NewStateConflictError("INVALID_STATE", "Cannot change costs of a non-pending order")
	}
	if costs.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_COSTS", "Other costs cannot be negative")
	}

	o.OtherCosts = costs.Amount()
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return nil
}

// Confirm transitions the order from PENDING to CONFIRMED.
// Requires at least one line.
func (o *SalesOrder) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewStateConflictError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot confirm order without lines")
	}
	if o.FinalAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Order final amount must be positive")
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderConfirmedEvent(o))

	return nil
}

// Cancel cancels the order. Reachable only from PENDING; nothing has been
// committed downstream yet, so no compensating action is needed.
func (o *SalesOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewStateConflictError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o))

	return nil
}

// RecordDeposit applies a deposit payment and advances CONFIRMED -> PAID.
// The amount must be positive and must not exceed the current remainder.
func (o *SalesOrder) RecordDeposit(amount valueobject.Money) error {
	if !o.Status.CanTransitionTo(OrderStatusPaid) {
		return shared.NewStateConflictError("INVALID_STATE", fmt.Sprintf("Cannot record deposit for order in %s status", o.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Deposit amount must be positive")
	}
	if amount.Amount().GreaterThan(o.Remaining()) {
		return shared.NewDomainError("AMOUNT_EXCEEDS_REMAINING", fmt.Sprintf("Deposit %s exceeds remaining %s", amount.Amount(), o.Remaining()))
	}

	now := time.Now()
	o.DepositAmount = o.DepositAmount.Add(amount.Amount())
	o.Status = OrderStatusPaid
	o.PaidAt = &now
	o.refreshPaymentStatus()
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPaidEvent(o, amount.Amount()))

	return nil
}

// ApplyPayment applies a remainder payment. Valid whenever the remainder is
// positive, independent of fulfillment status; it never changes Status.
func (o *SalesOrder) ApplyPayment(amount valueobject.Money) error {
	if o.Status == OrderStatusCancelled {
		return shared.NewStateConflictError("INVALID_STATE", "Cannot apply payment to a cancelled order")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	remaining := o.Remaining()
	if remaining.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("ALREADY_SETTLED", "Order has no outstanding remainder")
	}
	if amount.Amount().GreaterThan(remaining) {
		return shared.NewDomainError("AMOUNT_EXCEEDS_REMAINING", fmt.Sprintf("Payment %s exceeds remaining %s", amount.Amount(), remaining))
	}

	o.PaidAmount = o.PaidAmount.Add(amount.Amount())
	o.refreshPaymentStatus()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPaymentAppliedEvent(o, amount.Amount()))

	return nil
}

// StartProduction transitions PAID -> IN_PRODUCTION
func (o *SalesOrder) StartProduction() error {
	if !o.Status.CanTransitionTo(OrderStatusInProduction) {
		return shared.NewStateConflictError("INVALID_STATE", fmt.Sprintf("Cannot start production for order in %s status", o.Status))
	}

	o.Status = OrderStatusInProduction
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderProductionStartedEvent(o))

	return nil
}

// MarkReadyToExport transitions PAID or IN_PRODUCTION -> READY_TO_EXPORT
func (o *SalesOrder) MarkReadyToExport() error {
	if o.Status != OrderStatusPaid && o.Status != OrderStatusInProduction {
		return shared.NewStateConflictError("INVALID_STATE", fmt.Sprintf("Cannot mark order ready to export in %s status", o.Status))
	}

	o.Status = OrderStatusReadyToExport
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderReadyToExportEvent(o))

	return nil
}

// MarkExported transitions READY_TO_EXPORT -> EXPORTED.
// The full remainder must be settled before goods leave the warehouse.
func (o *SalesOrder) MarkExported(warehouseID uuid.UUID) error {
	if !o.Status.CanTransitionTo(OrderStatusExported) {
		return shared.NewStateConflictError("INVALID_STATE", fmt.Sprintf("Cannot export order in %s status", o.Status))
	}
	if !o.Remaining().IsZero() {
		return shared.NewStateConflictError("UNSETTLED_REMAINDER", fmt.Sprintf("Cannot export order with outstanding remainder %s", o.Remaining()))
	}

	now := time.Now()
	o.Status = OrderStatusExported
	o.ExportedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderExportedEvent(o, warehouseID))

	return nil
}

// Complete transitions EXPORTED -> COMPLETED (terminal)
func (o *SalesOrder) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewStateConflictError("INVALID_STATE", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCompletedEvent(o))

	return nil
}

// Remaining returns finalAmount - depositAmount - paidAmount
func (o *SalesOrder) Remaining() decimal.Decimal {
	return o.FinalAmount.Sub(o.DepositAmount).Sub(o.PaidAmount)
}

// HasCustomLines returns true if any line carries measurements
func (o *SalesOrder) HasCustomLines() bool {
	for idx := range o.Lines {
		if o.Lines[idx].IsCustomMade() {
			return true
		}
	}
	return false
}

// recalculateTotals recalculates the derived amounts.
// finalAmount = totalAmount - discountAmount + otherCosts, never negative.
func (o *SalesOrder) recalculateTotals() {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.TotalAmount)
	}
	o.TotalAmount = total
	o.FinalAmount = o.TotalAmount.Sub(o.DiscountAmount).Add(o.OtherCosts)

	if o.FinalAmount.IsNegative() {
		o.DiscountAmount = o.TotalAmount.Add(o.OtherCosts)
		o.FinalAmount = decimal.Zero
	}

	o.refreshPaymentStatus()
}

// refreshPaymentStatus derives PaymentStatus from the amounts
func (o *SalesOrder) refreshPaymentStatus() {
	paid := o.DepositAmount.Add(o.PaidAmount)
	switch {
	case o.FinalAmount.IsPositive() && paid.GreaterThanOrEqual(o.FinalAmount):
		o.PaymentStatus = PaymentStatusPaid
	case paid.IsPositive():
		o.PaymentStatus = PaymentStatusPartial
	default:
		o.PaymentStatus = PaymentStatusUnpaid
	}
}

// GetFinalAmountMoney returns the final amount as Money
func (o *SalesOrder) GetFinalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVND(o.FinalAmount)
}

// GetRemainingMoney returns the outstanding remainder as Money
func (o *SalesOrder) GetRemainingMoney() valueobject.Money {
	return valueobject.NewMoneyVND(o.Remaining())
}

// IsSettled returns true if nothing remains to be paid
func (o *SalesOrder) IsSettled() bool {
	return o.Remaining().IsZero()
}

// GetLine returns a line by its ID
func (o *SalesOrder) GetLine(lineID uuid.UUID) *OrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}
