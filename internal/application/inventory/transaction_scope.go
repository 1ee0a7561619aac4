package inventory

import (
	"context"

	"github.com/atelier-erp/backend/internal/domain/inventory"
	"github.com/atelier-erp/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories the
// export processor touches. All repository operations inside Execute share
// one database transaction and commit or roll back together: a failed
// export leaves balances, the export record, and the order untouched.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the export-side
// repositories within one transaction.
type TransactionalRepositories interface {
	// BalanceRepo returns the inventory balance repository scoped to the
	// current transaction
	BalanceRepo() inventory.InventoryBalanceRepository
	// ExportRepo returns the export transaction repository scoped to the
	// current transaction
	ExportRepo() inventory.ExportTransactionRepository
	// OrderRepo returns the sales order repository scoped to the current
	// transaction
	OrderRepo() sales.SalesOrderRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	balanceRepo inventory.InventoryBalanceRepository
	exportRepo  inventory.ExportTransactionRepository
	orderRepo   sales.SalesOrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given
// repositories
func NewNoOpTransactionScope(
	balanceRepo inventory.InventoryBalanceRepository,
	exportRepo inventory.ExportTransactionRepository,
	orderRepo sales.SalesOrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		balanceRepo: balanceRepo,
		exportRepo:  exportRepo,
		orderRepo:   orderRepo,
	}
}

// Execute runs the function without transactional guarantees
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BalanceRepo returns the inventory balance repository
func (s *NoOpTransactionScope) BalanceRepo() inventory.InventoryBalanceRepository {
	return s.balanceRepo
}

// ExportRepo returns the export transaction repository
func (s *NoOpTransactionScope) ExportRepo() inventory.ExportTransactionRepository {
	return s.exportRepo
}

// OrderRepo returns the sales order repository
func (s *NoOpTransactionScope) OrderRepo() sales.SalesOrderRepository {
	return s.orderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
