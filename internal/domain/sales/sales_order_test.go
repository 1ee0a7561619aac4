package sales

import (
	"testing"
	"time"

	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/atelier-erp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func timeNowForTest() time.Time {
	return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func createTestOrder(t *testing.T) *SalesOrder {
	order, err := NewSalesOrder("SO-2025-001", uuid.New(), uuid.New(), timeNowForTest())
	require.NoError(t, err)
	return order
}

func addTestLine(t *testing.T, order *SalesOrder, quantity, price float64) *OrderLine {
	line, err := order.AddLine(
		uuid.New(),
		decimal.NewFromFloat(quantity),
		valueobject.NewMoneyVNDFromFloat(price),
		valueobject.NewMoneyVNDFromFloat(price*0.6),
		nil,
	)
	require.NoError(t, err)
	return line
}

func addCustomLine(t *testing.T, order *SalesOrder, quantity, price float64) *OrderLine {
	line, err := order.AddLine(
		uuid.New(),
		decimal.NewFromFloat(quantity),
		valueobject.NewMoneyVNDFromFloat(price),
		valueobject.NewMoneyVNDFromFloat(price*0.6),
		&Measurements{Width: decimal.NewFromInt(120), Height: decimal.NewFromInt(200)},
	)
	require.NoError(t, err)
	return line
}

// ============================================
// OrderStatus Tests
// ============================================

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusPending, true},
		{OrderStatusConfirmed, true},
		{OrderStatusPaid, true},
		{OrderStatusInProduction, true},
		{OrderStatusReadyToExport, true},
		{OrderStatusExported, true},
		{OrderStatusCompleted, true},
		{OrderStatusCancelled, true},
		{OrderStatus("INVALID"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		// From PENDING
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusPaid, false},
		{OrderStatusPending, OrderStatusExported, false},
		// From CONFIRMED
		{OrderStatusConfirmed, OrderStatusPaid, true},
		{OrderStatusConfirmed, OrderStatusCancelled, false},
		{OrderStatusConfirmed, OrderStatusReadyToExport, false},
		// From PAID
		{OrderStatusPaid, OrderStatusInProduction, true},
		{OrderStatusPaid, OrderStatusReadyToExport, true},
		{OrderStatusPaid, OrderStatusExported, false},
		{OrderStatusPaid, OrderStatusCancelled, false},
		// From IN_PRODUCTION
		{OrderStatusInProduction, OrderStatusReadyToExport, true},
		{OrderStatusInProduction, OrderStatusExported, false},
		// From READY_TO_EXPORT
		{OrderStatusReadyToExport, OrderStatusExported, true},
		{OrderStatusReadyToExport, OrderStatusCompleted, false},
		// From EXPORTED
		{OrderStatusExported, OrderStatusCompleted, true},
		{OrderStatusExported, OrderStatusReadyToExport, false},
		// Terminal states
		{OrderStatusCompleted, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// SalesOrder Tests
// ============================================

func TestNewSalesOrder(t *testing.T) {
	order := createTestOrder(t)

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, PaymentStatusUnpaid, order.PaymentStatus)
	assert.True(t, order.FinalAmount.IsZero())
	assert.Len(t, order.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeOrderCreated, order.GetDomainEvents()[0].EventType())
}

func TestNewSalesOrder_Validation(t *testing.T) {
	_, err := NewSalesOrder("", uuid.New(), uuid.New(), timeNowForTest())
	assert.Error(t, err)
	assert.True(t, shared.IsValidation(err))

	_, err = NewSalesOrder("SO-1", uuid.Nil, uuid.New(), timeNowForTest())
	assert.Error(t, err)

	_, err = NewSalesOrder("SO-1", uuid.New(), uuid.Nil, timeNowForTest())
	assert.Error(t, err)
}

func TestSalesOrder_AddLine(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 2, 100)

	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, order.FinalAmount.Equal(decimal.NewFromInt(200)))
}

func TestSalesOrder_AddLine_RejectsNonPositiveQuantity(t *testing.T) {
	order := createTestOrder(t)
	_, err := order.AddLine(uuid.New(), decimal.Zero, valueobject.NewMoneyVNDFromFloat(100), valueobject.ZeroVND(), nil)
	assert.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestSalesOrder_FinalAmountDerivation(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 2, 100)

	require.NoError(t, order.SetOtherCosts(valueobject.NewMoneyVNDFromFloat(30)))
	require.NoError(t, order.ApplyDiscount(valueobject.NewMoneyVNDFromFloat(50)))

	// finalAmount = 200 - 50 + 30
	assert.True(t, order.FinalAmount.Equal(decimal.NewFromInt(180)))
	assert.True(t, order.Remaining().Equal(decimal.NewFromInt(180)))
}

func TestSalesOrder_DiscountCannotMakeFinalNegative(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 1, 100)

	err := order.ApplyDiscount(valueobject.NewMoneyVNDFromFloat(150))
	assert.Error(t, err)
}

func TestSalesOrder_Confirm(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 2, 100)

	require.NoError(t, order.Confirm())
	assert.Equal(t, OrderStatusConfirmed, order.Status)
	assert.NotNil(t, order.ConfirmedAt)
}

func TestSalesOrder_ConfirmWithoutLines(t *testing.T) {
	order := createTestOrder(t)
	err := order.Confirm()
	assert.Error(t, err)
}

func TestSalesOrder_Cancel_OnlyFromPending(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 1, 100)

	require.NoError(t, order.Confirm())
	err := order.Cancel("customer withdrew")
	assert.Error(t, err)
	assert.True(t, shared.IsStateConflict(err))

	pending := createTestOrder(t)
	require.NoError(t, pending.Cancel("customer withdrew"))
	assert.Equal(t, OrderStatusCancelled, pending.Status)
}

func TestSalesOrder_RecordDeposit(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 2, 100)
	require.NoError(t, order.Confirm())

	require.NoError(t, order.RecordDeposit(valueobject.NewMoneyVNDFromFloat(50)))

	assert.Equal(t, OrderStatusPaid, order.Status)
	assert.Equal(t, PaymentStatusPartial, order.PaymentStatus)
	assert.True(t, order.Remaining().Equal(decimal.NewFromInt(150)))
}

func TestSalesOrder_RecordDeposit_Validation(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 2, 100)

	// not confirmed yet
	err := order.RecordDeposit(valueobject.NewMoneyVNDFromFloat(50))
	assert.True(t, shared.IsStateConflict(err))

	require.NoError(t, order.Confirm())

	err = order.RecordDeposit(valueobject.ZeroVND())
	assert.True(t, shared.IsValidation(err))

	err = order.RecordDeposit(valueobject.NewMoneyVNDFromFloat(500))
	assert.True(t, shared.IsValidation(err))
}

func TestSalesOrder_ApplyPayment_CapsAtRemaining(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 2, 100)
	require.NoError(t, order.Confirm())
	require.NoError(t, order.RecordDeposit(valueobject.NewMoneyVNDFromFloat(50)))

	err := order.ApplyPayment(valueobject.NewMoneyVNDFromFloat(200))
	assert.Error(t, err)

	require.NoError(t, order.ApplyPayment(valueobject.NewMoneyVNDFromFloat(150)))
	assert.True(t, order.Remaining().IsZero())
	assert.Equal(t, PaymentStatusPaid, order.PaymentStatus)
	// settling the remainder never moves the fulfillment status
	assert.Equal(t, OrderStatusPaid, order.Status)
}

func TestSalesOrder_ApplyPayment_StatusIndependent(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 2, 100)
	require.NoError(t, order.Confirm())
	require.NoError(t, order.RecordDeposit(valueobject.NewMoneyVNDFromFloat(50)))
	require.NoError(t, order.MarkReadyToExport())

	require.NoError(t, order.ApplyPayment(valueobject.NewMoneyVNDFromFloat(150)))
	assert.Equal(t, OrderStatusReadyToExport, order.Status)
	assert.True(t, order.IsSettled())
}

func TestSalesOrder_ExportRequiresSettlement(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 2, 100)
	require.NoError(t, order.Confirm())
	require.NoError(t, order.RecordDeposit(valueobject.NewMoneyVNDFromFloat(50)))
	require.NoError(t, order.MarkReadyToExport())

	err := order.MarkExported(uuid.New())
	assert.Error(t, err)
	assert.True(t, shared.IsStateConflict(err))
	assert.Equal(t, OrderStatusReadyToExport, order.Status)

	require.NoError(t, order.ApplyPayment(valueobject.NewMoneyVNDFromFloat(150)))
	require.NoError(t, order.MarkExported(uuid.New()))
	assert.Equal(t, OrderStatusExported, order.Status)
}

func TestSalesOrder_ProductionPath(t *testing.T) {
	order := createTestOrder(t)
	addCustomLine(t, order, 1, 500)
	require.NoError(t, order.Confirm())
	require.NoError(t, order.RecordDeposit(valueobject.NewMoneyVNDFromFloat(500)))

	require.NoError(t, order.StartProduction())
	assert.Equal(t, OrderStatusInProduction, order.Status)

	require.NoError(t, order.MarkReadyToExport())
	require.NoError(t, order.MarkExported(uuid.New()))
	require.NoError(t, order.Complete())
	assert.Equal(t, OrderStatusCompleted, order.Status)
}

func TestSalesOrder_DoubleExportRejected(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 2, 100)
	require.NoError(t, order.Confirm())
	require.NoError(t, order.RecordDeposit(valueobject.NewMoneyVNDFromFloat(200)))
	require.NoError(t, order.MarkReadyToExport())
	require.NoError(t, order.MarkExported(uuid.New()))

	err := order.MarkExported(uuid.New())
	assert.Error(t, err)
	assert.True(t, shared.IsStateConflict(err))
}

func TestSalesOrder_HasCustomLines(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 1, 100)
	assert.False(t, order.HasCustomLines())

	addCustomLine(t, order, 1, 100)
	assert.True(t, order.HasCustomLines())
}

func TestSalesOrder_RemainingInvariant(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, 3, 100)
	require.NoError(t, order.Confirm())

	require.NoError(t, order.RecordDeposit(valueobject.NewMoneyVNDFromFloat(120)))
	require.NoError(t, order.ApplyPayment(valueobject.NewMoneyVNDFromFloat(80)))

	expected := order.FinalAmount.Sub(order.DepositAmount).Sub(order.PaidAmount)
	assert.True(t, order.Remaining().Equal(expected))
	assert.False(t, order.Remaining().IsNegative())
}
