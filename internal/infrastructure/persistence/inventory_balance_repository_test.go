package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/atelier-erp/backend/internal/domain/inventory"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// newMockBalanceRepository creates a GormInventoryBalanceRepository with a mocked SQL connection
func newMockBalanceRepository(t *testing.T) (*GormInventoryBalanceRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormInventoryBalanceRepository(gormDB), mock, mockDB
}

func TestGormInventoryBalanceRepository_FindByItemAndWarehouse(t *testing.T) {
	t.Run("finds existing balance row", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceRepository(t)
		defer mockDB.Close()

		balanceID := uuid.New()
		itemID := uuid.New()
		warehouseID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "item_id", "warehouse_id", "quantity", "version"}).
			AddRow(balanceID, itemID, warehouseID, decimal.NewFromInt(40), 1)

		mock.ExpectQuery(`SELECT \* FROM "inventory_balances" WHERE item_id = \$1 AND warehouse_id = \$2`).
			WithArgs(itemID, warehouseID, 1).
			WillReturnRows(rows)

		balance, err := repo.FindByItemAndWarehouse(context.Background(), itemID, warehouseID)

		assert.NoError(t, err)
		require.NotNil(t, balance)
		assert.Equal(t, itemID, balance.ItemID)
		assert.Equal(t, warehouseID, balance.WarehouseID)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(40)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_balances" WHERE item_id = \$1 AND warehouse_id = \$2`).
			WithArgs(itemID, warehouseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		balance, err := repo.FindByItemAndWarehouse(context.Background(), itemID, warehouseID)

		assert.Nil(t, balance)
		assert.True(t, shared.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInventoryBalanceRepository_FindByItems(t *testing.T) {
	t.Run("empty input returns empty without querying", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceRepository(t)
		defer mockDB.Close()

		balances, err := repo.FindByItems(context.Background(), nil, []uuid.UUID{uuid.New()})

		assert.NoError(t, err)
		assert.Empty(t, balances)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("loads rows for the requested pairs", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		warehouseID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "item_id", "warehouse_id", "quantity", "version"}).
			AddRow(uuid.New(), itemID, warehouseID, decimal.NewFromInt(7), 1)

		mock.ExpectQuery(`SELECT \* FROM "inventory_balances" WHERE item_id IN`).
			WillReturnRows(rows)

		balances, err := repo.FindByItems(context.Background(), []uuid.UUID{itemID}, []uuid.UUID{warehouseID})

		assert.NoError(t, err)
		require.Len(t, balances, 1)
		assert.Equal(t, itemID, balances[0].ItemID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInventoryBalanceRepository_SaveWithLock(t *testing.T) {
	newBalance := func(t *testing.T) *inventory.InventoryBalance {
		t.Helper()
		balance, err := inventory.NewInventoryBalance(uuid.New(), uuid.New())
		require.NoError(t, err)
		return balance
	}

	t.Run("updates row when version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceRepository(t)
		defer mockDB.Close()

		balance := newBalance(t)
		balance.Version = 2

		mock.ExpectExec(`UPDATE "inventory_balances" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), balance)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version yields concurrency conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceRepository(t)
		defer mockDB.Close()

		balance := newBalance(t)
		balance.Version = 2

		mock.ExpectExec(`UPDATE "inventory_balances" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), balance)

		assert.True(t, shared.IsConcurrencyConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceRepository(t)
		defer mockDB.Close()

		balance := newBalance(t)
		balance.Version = 2

		mock.ExpectExec(`UPDATE "inventory_balances" SET`).
			WillReturnError(assert.AnError)

		err := repo.SaveWithLock(context.Background(), balance)

		require.Error(t, err)
		assert.False(t, shared.IsConcurrencyConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
