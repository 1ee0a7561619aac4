package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atelier-erp/backend/internal/domain/inventory"
	"github.com/atelier-erp/backend/internal/domain/sales"
	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/atelier-erp/backend/internal/domain/shared/valueobject"
)

// MockBalanceRepository is a mock implementation of InventoryBalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryBalance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryBalance), args.Error(1)
}

func (m *MockBalanceRepository) FindByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) (*inventory.InventoryBalance, error) {
	args := m.Called(ctx, itemID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryBalance), args.Error(1)
}

func (m *MockBalanceRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*inventory.InventoryBalance, error) {
	args := m.Called(ctx, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.InventoryBalance), args.Error(1)
}

func (m *MockBalanceRepository) FindByItems(ctx context.Context, itemIDs []uuid.UUID, warehouseIDs []uuid.UUID) ([]*inventory.InventoryBalance, error) {
	args := m.Called(ctx, itemIDs, warehouseIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.InventoryBalance), args.Error(1)
}

func (m *MockBalanceRepository) Save(ctx context.Context, balance *inventory.InventoryBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockBalanceRepository) SaveWithLock(ctx context.Context, balance *inventory.InventoryBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

// MockWarehouseRepository is a mock implementation of WarehouseRepository
type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*inventory.Warehouse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) FindFinishedGoods(ctx context.Context) ([]*inventory.Warehouse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) Save(ctx context.Context, warehouse *inventory.Warehouse) error {
	args := m.Called(ctx, warehouse)
	return args.Error(0)
}

// MockExportRepository is a mock implementation of ExportTransactionRepository
type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ExportTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ExportTransaction), args.Error(1)
}

func (m *MockExportRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*inventory.ExportTransaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.ExportTransaction), args.Error(1)
}

func (m *MockExportRepository) Save(ctx context.Context, tx *inventory.ExportTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of sales.SalesOrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByCode(ctx context.Context, code string) (*sales.SalesOrder, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]sales.SalesOrder, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, status sales.OrderStatus, filter shared.Filter) ([]sales.SalesOrder, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SalesOrder), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *sales.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *sales.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GenerateCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type stockFixture struct {
	balanceRepo   *MockBalanceRepository
	warehouseRepo *MockWarehouseRepository
	exportRepo    *MockExportRepository
	orderRepo     *MockOrderRepository
	service       *StockService
}

func newStockFixture() *stockFixture {
	f := &stockFixture{
		balanceRepo:   new(MockBalanceRepository),
		warehouseRepo: new(MockWarehouseRepository),
		exportRepo:    new(MockExportRepository),
		orderRepo:     new(MockOrderRepository),
	}
	scope := NewNoOpTransactionScope(f.balanceRepo, f.exportRepo, f.orderRepo)
	f.service = NewStockService(f.balanceRepo, f.warehouseRepo, scope, zap.NewNop())
	return f
}

func readyOrder(t *testing.T, itemID uuid.UUID, quantity, price int64, settle bool) *sales.SalesOrder {
	t.Helper()
	order, err := sales.NewSalesOrder("SO-2025-0001", uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)
	_, err = order.AddLine(itemID, decimal.NewFromInt(quantity),
		valueobject.NewMoneyVND(decimal.NewFromInt(price)), valueobject.ZeroVND(), nil)
	require.NoError(t, err)
	require.NoError(t, order.Confirm())
	require.NoError(t, order.RecordDeposit(valueobject.NewMoneyVND(decimal.NewFromInt(50))))
	require.NoError(t, order.MarkReadyToExport())
	if settle {
		require.NoError(t, order.ApplyPayment(valueobject.NewMoneyVND(order.Remaining())))
	}
	order.ClearDomainEvents()
	return order
}

func balanceWith(t *testing.T, itemID, warehouseID uuid.UUID, qty int64) *inventory.InventoryBalance {
	t.Helper()
	balance, err := inventory.NewInventoryBalance(itemID, warehouseID)
	require.NoError(t, err)
	require.NoError(t, balance.Increase(decimal.NewFromInt(qty)))
	balance.ClearDomainEvents()
	return balance
}

func TestStockService_EvaluateStock(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()
	warehouseID := uuid.New()

	t.Run("single warehouse", func(t *testing.T) {
		f := newStockFixture()
		warehouse := &inventory.Warehouse{BaseEntity: shared.NewBaseEntity(), Name: "FG", Type: inventory.WarehouseTypeFinishedGoods, BranchID: uuid.New()}
		warehouse.ID = warehouseID
		f.warehouseRepo.On("FindByID", ctx, warehouseID).Return(warehouse, nil)
		f.balanceRepo.On("FindByItems", ctx, mock.Anything, []uuid.UUID{warehouseID}).
			Return([]*inventory.InventoryBalance{balanceWith(t, itemID, warehouseID, 5)}, nil)

		report, err := f.service.EvaluateStock(ctx, EvaluateStockRequest{
			Items:       []EvaluateItemInput{{ItemID: itemID, Quantity: decimal.NewFromInt(5)}},
			WarehouseID: &warehouseID,
		})
		require.NoError(t, err)
		assert.True(t, report.AnyCanFulfill)

		short, err := f.service.EvaluateStock(ctx, EvaluateStockRequest{
			Items:       []EvaluateItemInput{{ItemID: itemID, Quantity: decimal.NewFromInt(6)}},
			WarehouseID: &warehouseID,
		})
		require.NoError(t, err)
		assert.False(t, short.AnyCanFulfill)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		f := newStockFixture()
		_, err := f.service.EvaluateStock(ctx, EvaluateStockRequest{
			Items: []EvaluateItemInput{{ItemID: itemID, Quantity: decimal.Zero}},
		})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestStockService_Export(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()
	warehouseID := uuid.New()
	actorID := uuid.New()

	t.Run("unsettled remainder rejected, balance untouched", func(t *testing.T) {
		f := newStockFixture()
		order := readyOrder(t, itemID, 2, 100, false)
		f.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.service.Export(ctx, order.ID, warehouseID, actorID)
		require.Error(t, err)
		assert.True(t, shared.IsStateConflict(err))
		assert.Equal(t, sales.OrderStatusReadyToExport, order.Status)
		f.balanceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("settled order exports and decrements balance", func(t *testing.T) {
		f := newStockFixture()
		order := readyOrder(t, itemID, 2, 100, true)
		balance := balanceWith(t, itemID, warehouseID, 10)

		f.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orderRepo.On("SaveWithLock", ctx, order).Return(nil)
		f.balanceRepo.On("FindByItemAndWarehouse", ctx, itemID, warehouseID).Return(balance, nil)
		f.balanceRepo.On("SaveWithLock", ctx, balance).Return(nil)
		f.exportRepo.On("Save", ctx, mock.AnythingOfType("*inventory.ExportTransaction")).Return(nil)

		response, err := f.service.Export(ctx, order.ID, warehouseID, actorID)
		require.NoError(t, err)
		assert.Equal(t, sales.OrderStatusExported, response.Status)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(8)))
		f.exportRepo.AssertExpectations(t)
	})

	t.Run("shortfall aborts with itemized error", func(t *testing.T) {
		f := newStockFixture()
		order := readyOrder(t, itemID, 2, 100, true)
		balance := balanceWith(t, itemID, warehouseID, 1)

		f.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		f.balanceRepo.On("FindByItemAndWarehouse", ctx, itemID, warehouseID).Return(balance, nil)

		_, err := f.service.Export(ctx, order.ID, warehouseID, actorID)
		require.Error(t, err)

		var stockErr *inventory.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		require.Len(t, stockErr.Shortages, 1)
		assert.True(t, stockErr.Shortages[0].Required.Equal(decimal.NewFromInt(2)))
		assert.True(t, stockErr.Shortages[0].Available.Equal(decimal.NewFromInt(1)))
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(1)))
		f.balanceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.exportRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing ledger row reads as zero", func(t *testing.T) {
		f := newStockFixture()
		order := readyOrder(t, itemID, 2, 100, true)

		f.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		f.balanceRepo.On("FindByItemAndWarehouse", ctx, itemID, warehouseID).
			Return(nil, shared.NewNotFoundError("BALANCE_NOT_FOUND", "no balance"))

		_, err := f.service.Export(ctx, order.ID, warehouseID, actorID)
		require.Error(t, err)

		var stockErr *inventory.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.True(t, stockErr.Shortages[0].Available.IsZero())
	})

	t.Run("second export rejected", func(t *testing.T) {
		f := newStockFixture()
		order := readyOrder(t, itemID, 2, 100, true)
		balance := balanceWith(t, itemID, warehouseID, 10)

		f.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orderRepo.On("SaveWithLock", ctx, order).Return(nil)
		f.balanceRepo.On("FindByItemAndWarehouse", ctx, itemID, warehouseID).Return(balance, nil)
		f.balanceRepo.On("SaveWithLock", ctx, balance).Return(nil)
		f.exportRepo.On("Save", ctx, mock.AnythingOfType("*inventory.ExportTransaction")).Return(nil)

		_, err := f.service.Export(ctx, order.ID, warehouseID, actorID)
		require.NoError(t, err)

		_, err = f.service.Export(ctx, order.ID, warehouseID, actorID)
		require.Error(t, err)
		assert.True(t, shared.IsStateConflict(err))
		// balance changed exactly once
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(8)))
	})
}

func TestStockService_ReceiveStock(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()
	warehouseID := uuid.New()

	f := newStockFixture()
	warehouse := &inventory.Warehouse{BaseEntity: shared.NewBaseEntity(), Name: "RM", Type: inventory.WarehouseTypeRawMaterial, BranchID: uuid.New()}
	warehouse.ID = warehouseID
	f.warehouseRepo.On("FindByID", ctx, warehouseID).Return(warehouse, nil)
	f.balanceRepo.On("FindByItemAndWarehouse", ctx, itemID, warehouseID).
		Return(nil, shared.NewNotFoundError("BALANCE_NOT_FOUND", "no balance")).Once()
	f.balanceRepo.On("Save", ctx, mock.AnythingOfType("*inventory.InventoryBalance")).Return(nil)

	response, err := f.service.ReceiveStock(ctx, itemID, warehouseID, decimal.NewFromInt(7))
	require.NoError(t, err)
	assert.True(t, response.Quantity.Equal(decimal.NewFromInt(7)))
}
