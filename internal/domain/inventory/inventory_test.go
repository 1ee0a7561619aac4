package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

func newTestBalance(t *testing.T, quantity int64) *InventoryBalance {
	t.Helper()
	balance, err := NewInventoryBalance(uuid.New(), uuid.New())
	require.NoError(t, err)
	if quantity > 0 {
		require.NoError(t, balance.Increase(decimal.NewFromInt(quantity)))
	}
	balance.ClearDomainEvents()
	return balance
}

func TestNewInventoryBalance(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		balance, err := NewInventoryBalance(uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.True(t, balance.Quantity.IsZero())
		assert.Equal(t, 1, balance.GetVersion())
	})

	t.Run("missing item", func(t *testing.T) {
		_, err := NewInventoryBalance(uuid.Nil, uuid.New())
		assert.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("missing warehouse", func(t *testing.T) {
		_, err := NewInventoryBalance(uuid.New(), uuid.Nil)
		assert.Error(t, err)
	})
}

func TestInventoryBalance_Increase(t *testing.T) {
	balance := newTestBalance(t, 0)

	err := balance.Increase(decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(10)))

	events := balance.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeStockIncreased, events[0].EventType())

	t.Run("rejects non-positive", func(t *testing.T) {
		assert.Error(t, balance.Increase(decimal.Zero))
		assert.Error(t, balance.Increase(decimal.NewFromInt(-5)))
	})
}

func TestInventoryBalance_Decrease(t *testing.T) {
	t.Run("within balance", func(t *testing.T) {
		balance := newTestBalance(t, 10)
		err := balance.Decrease(decimal.NewFromInt(4))
		require.NoError(t, err)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(6)))
	})

	t.Run("to exactly zero", func(t *testing.T) {
		balance := newTestBalance(t, 5)
		require.NoError(t, balance.Decrease(decimal.NewFromInt(5)))
		assert.True(t, balance.Quantity.IsZero())
	})

	t.Run("below zero is rejected with itemized shortage", func(t *testing.T) {
		balance := newTestBalance(t, 5)
		err := balance.Decrease(decimal.NewFromInt(6))
		require.Error(t, err)

		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		require.Len(t, stockErr.Shortages, 1)
		assert.Equal(t, balance.ItemID, stockErr.Shortages[0].ItemID)
		assert.True(t, stockErr.Shortages[0].Required.Equal(decimal.NewFromInt(6)))
		assert.True(t, stockErr.Shortages[0].Available.Equal(decimal.NewFromInt(5)))

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		// balance untouched on failure
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(5)))
	})
}

func TestInventoryBalance_CanCover(t *testing.T) {
	balance := newTestBalance(t, 5)

	assert.True(t, balance.CanCover(decimal.NewFromInt(5)))
	assert.False(t, balance.CanCover(decimal.NewFromInt(6)))
}

func TestEvaluate(t *testing.T) {
	itemA := uuid.New()
	itemB := uuid.New()
	warehouse1 := uuid.New()
	warehouse2 := uuid.New()

	makeBalance := func(itemID, warehouseID uuid.UUID, qty int64) InventoryBalance {
		b, err := NewInventoryBalance(itemID, warehouseID)
		require.NoError(t, err)
		b.Quantity = decimal.NewFromInt(qty)
		return *b
	}

	t.Run("single warehouse exact cover", func(t *testing.T) {
		report := Evaluate(
			[]ItemRequirement{{ItemID: itemA, Required: decimal.NewFromInt(5)}},
			[]uuid.UUID{warehouse1},
			[]InventoryBalance{makeBalance(itemA, warehouse1, 5)},
		)
		require.Len(t, report.Warehouses, 1)
		assert.True(t, report.Warehouses[0].CanFulfill)
		assert.True(t, report.AnyCanFulfill())
	})

	t.Run("single warehouse short by one", func(t *testing.T) {
		report := Evaluate(
			[]ItemRequirement{{ItemID: itemA, Required: decimal.NewFromInt(6)}},
			[]uuid.UUID{warehouse1},
			[]InventoryBalance{makeBalance(itemA, warehouse1, 5)},
		)
		require.Len(t, report.Warehouses, 1)
		assert.False(t, report.Warehouses[0].CanFulfill)

		shortages := report.Warehouses[0].Shortages()
		require.Len(t, shortages, 1)
		assert.True(t, shortages[0].Available.Equal(decimal.NewFromInt(5)))
	})

	t.Run("absent ledger row counts as zero", func(t *testing.T) {
		report := Evaluate(
			[]ItemRequirement{{ItemID: itemA, Required: decimal.NewFromInt(1)}},
			[]uuid.UUID{warehouse1},
			nil,
		)
		require.Len(t, report.Warehouses, 1)
		assert.False(t, report.Warehouses[0].CanFulfill)
		assert.True(t, report.Warehouses[0].Items[0].Available.IsZero())
	})

	t.Run("fulfillment requires all items in one warehouse", func(t *testing.T) {
		// warehouse1 has A but not B, warehouse2 has B but not A:
		// neither can fulfill alone even though the totals would cover
		report := Evaluate(
			[]ItemRequirement{
				{ItemID: itemA, Required: decimal.NewFromInt(2)},
				{ItemID: itemB, Required: decimal.NewFromInt(3)},
			},
			[]uuid.UUID{warehouse1, warehouse2},
			[]InventoryBalance{
				makeBalance(itemA, warehouse1, 10),
				makeBalance(itemB, warehouse2, 10),
			},
		)
		require.Len(t, report.Warehouses, 2)
		assert.False(t, report.Warehouses[0].CanFulfill)
		assert.False(t, report.Warehouses[1].CanFulfill)
		assert.False(t, report.AnyCanFulfill())
	})

	t.Run("second warehouse fulfills", func(t *testing.T) {
		report := Evaluate(
			[]ItemRequirement{{ItemID: itemA, Required: decimal.NewFromInt(4)}},
			[]uuid.UUID{warehouse1, warehouse2},
			[]InventoryBalance{
				makeBalance(itemA, warehouse1, 1),
				makeBalance(itemA, warehouse2, 8),
			},
		)
		assert.False(t, report.Warehouses[0].CanFulfill)
		assert.True(t, report.Warehouses[1].CanFulfill)
		assert.True(t, report.AnyCanFulfill())

		w2 := report.ForWarehouse(warehouse2)
		require.NotNil(t, w2)
		assert.True(t, w2.Items[0].Available.Equal(decimal.NewFromInt(8)))
	})
}

func TestNewExportTransaction(t *testing.T) {
	orderID := uuid.New()
	warehouseID := uuid.New()
	actorID := uuid.New()

	t.Run("valid", func(t *testing.T) {
		tx, err := NewExportTransaction(orderID, warehouseID, actorID, []ItemRequirement{
			{ItemID: uuid.New(), Required: decimal.NewFromInt(2)},
			{ItemID: uuid.New(), Required: decimal.NewFromInt(1)},
		})
		require.NoError(t, err)
		assert.Len(t, tx.Lines, 2)
		assert.Equal(t, orderID, tx.OrderID)

		events := tx.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeStockExported, events[0].EventType())
	})

	t.Run("empty lines rejected", func(t *testing.T) {
		_, err := NewExportTransaction(orderID, warehouseID, actorID, nil)
		assert.Error(t, err)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		_, err := NewExportTransaction(orderID, warehouseID, actorID, []ItemRequirement{
			{ItemID: uuid.New(), Required: decimal.Zero},
		})
		assert.Error(t, err)
	})
}

func TestWarehouseType(t *testing.T) {
	assert.True(t, WarehouseTypeFinishedGoods.HoldsFinishedGoods())
	assert.True(t, WarehouseTypeMixed.HoldsFinishedGoods())
	assert.False(t, WarehouseTypeRawMaterial.HoldsFinishedGoods())
	assert.False(t, WarehouseType("UNKNOWN").IsValid())
}
