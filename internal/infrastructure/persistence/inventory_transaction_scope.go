package persistence

import (
	"context"

	"gorm.io/gorm"

	appinventory "github.com/atelier-erp/backend/internal/application/inventory"
	"github.com/atelier-erp/backend/internal/domain/inventory"
	"github.com/atelier-erp/backend/internal/domain/sales"
)

// GormInventoryTransactionScope runs export operations inside one GORM
// transaction so stock decrements, the export record, and the order status
// commit or roll back together.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. The repositories handed to
// fn are bound to that transaction.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormInventoryTxRepositories{tx: tx})
	})
}

type gormInventoryTxRepositories struct {
	tx *gorm.DB
}

func (r *gormInventoryTxRepositories) BalanceRepo() inventory.InventoryBalanceRepository {
	return NewGormInventoryBalanceRepository(r.tx)
}

func (r *gormInventoryTxRepositories) ExportRepo() inventory.ExportTransactionRepository {
	return NewGormExportTransactionRepository(r.tx)
}

func (r *gormInventoryTxRepositories) OrderRepo() sales.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

var _ appinventory.TransactionScope = (*GormInventoryTransactionScope)(nil)
var _ appinventory.TransactionalRepositories = (*gormInventoryTxRepositories)(nil)
