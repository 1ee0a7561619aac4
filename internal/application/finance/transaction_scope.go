package finance

import (
	"context"

	"github.com/atelier-erp/backend/internal/domain/finance"
	"github.com/atelier-erp/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories a
// payment application touches. Ledger row, order, account balance, and
// audit record commit or roll back together: a failed payment leaves all
// four unchanged.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the payment-side
// repositories within one transaction.
type TransactionalRepositories interface {
	// AccountRepo returns the account repository scoped to the current
	// transaction
	AccountRepo() finance.AccountRepository
	// PaymentRepo returns the payment repository scoped to the current
	// transaction
	PaymentRepo() finance.PaymentRepository
	// DebtRepo returns the partner debt repository scoped to the current
	// transaction
	DebtRepo() finance.PartnerDebtRepository
	// OrderRepo returns the sales order repository scoped to the current
	// transaction
	OrderRepo() sales.SalesOrderRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	accountRepo finance.AccountRepository
	paymentRepo finance.PaymentRepository
	debtRepo    finance.PartnerDebtRepository
	orderRepo   sales.SalesOrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given
// repositories
func NewNoOpTransactionScope(
	accountRepo finance.AccountRepository,
	paymentRepo finance.PaymentRepository,
	debtRepo finance.PartnerDebtRepository,
	orderRepo sales.SalesOrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		accountRepo: accountRepo,
		paymentRepo: paymentRepo,
		debtRepo:    debtRepo,
		orderRepo:   orderRepo,
	}
}

// Execute runs the function without transactional guarantees
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// AccountRepo returns the account repository
func (s *NoOpTransactionScope) AccountRepo() finance.AccountRepository {
	return s.accountRepo
}

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() finance.PaymentRepository {
	return s.paymentRepo
}

// DebtRepo returns the partner debt repository
func (s *NoOpTransactionScope) DebtRepo() finance.PartnerDebtRepository {
	return s.debtRepo
}

// OrderRepo returns the sales order repository
func (s *NoOpTransactionScope) OrderRepo() sales.SalesOrderRepository {
	return s.orderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
