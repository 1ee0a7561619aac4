package production

import (
	"context"

	"github.com/atelier-erp/backend/internal/domain/production"
	"github.com/atelier-erp/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories the
// start-production flow touches. The order's status change and the new
// production order commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the production-side
// repositories within one transaction.
type TransactionalRepositories interface {
	// ProductionRepo returns the production order repository scoped to the
	// current transaction
	ProductionRepo() production.ProductionOrderRepository
	// OrderRepo returns the sales order repository scoped to the current
	// transaction
	OrderRepo() sales.SalesOrderRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	productionRepo production.ProductionOrderRepository
	orderRepo      sales.SalesOrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given
// repositories
func NewNoOpTransactionScope(productionRepo production.ProductionOrderRepository, orderRepo sales.SalesOrderRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productionRepo: productionRepo,
		orderRepo:      orderRepo,
	}
}

// Execute runs the function without transactional guarantees
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductionRepo returns the production order repository
func (s *NoOpTransactionScope) ProductionRepo() production.ProductionOrderRepository {
	return s.productionRepo
}

// OrderRepo returns the sales order repository
func (s *NoOpTransactionScope) OrderRepo() sales.SalesOrderRepository {
	return s.orderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
