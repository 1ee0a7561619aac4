package sales

import (
	"context"

	"github.com/atelier-erp/backend/internal/domain/finance"
	"github.com/atelier-erp/backend/internal/domain/sales"
)

// ConfirmationScope provides transactional access to the repositories the
// order confirmation touches. The status transition and the customer debt
// row backing it commit or roll back together: a confirmed order always
// has its debt row.
type ConfirmationScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos ConfirmationRepositories) error) error
}

// ConfirmationRepositories provides access to the confirmation-side
// repositories within one transaction.
type ConfirmationRepositories interface {
	// OrderRepo returns the sales order repository scoped to the current
	// transaction
	OrderRepo() sales.SalesOrderRepository
	// DebtRepo returns the partner debt repository scoped to the current
	// transaction
	DebtRepo() finance.PartnerDebtRepository
}

// NoOpConfirmationScope runs the function without a real transaction.
// Useful for tests.
type NoOpConfirmationScope struct {
	orderRepo sales.SalesOrderRepository
	debtRepo  finance.PartnerDebtRepository
}

// NewNoOpConfirmationScope creates a NoOpConfirmationScope with the given
// repositories
func NewNoOpConfirmationScope(orderRepo sales.SalesOrderRepository, debtRepo finance.PartnerDebtRepository) *NoOpConfirmationScope {
	return &NoOpConfirmationScope{
		orderRepo: orderRepo,
		debtRepo:  debtRepo,
	}
}

// Execute runs the function without transactional guarantees
func (s *NoOpConfirmationScope) Execute(_ context.Context, fn func(repos ConfirmationRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the sales order repository
func (s *NoOpConfirmationScope) OrderRepo() sales.SalesOrderRepository {
	return s.orderRepo
}

// DebtRepo returns the partner debt repository
func (s *NoOpConfirmationScope) DebtRepo() finance.PartnerDebtRepository {
	return s.debtRepo
}

var _ ConfirmationScope = (*NoOpConfirmationScope)(nil)
var _ ConfirmationRepositories = (*NoOpConfirmationScope)(nil)
