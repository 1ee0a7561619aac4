package persistence

import (
	"context"

	"gorm.io/gorm"

	appfinance "github.com/atelier-erp/backend/internal/application/finance"
	"github.com/atelier-erp/backend/internal/domain/finance"
	"github.com/atelier-erp/backend/internal/domain/sales"
)

// GormFinanceTransactionScope runs payment applications inside one GORM
// transaction so the payment record, ledger rows, account balance, and
// order commit or roll back together.
type GormFinanceTransactionScope struct {
	db *gorm.DB
}

// NewGormFinanceTransactionScope creates a new GormFinanceTransactionScope
func NewGormFinanceTransactionScope(db *gorm.DB) *GormFinanceTransactionScope {
	return &GormFinanceTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. The repositories handed to
// fn are bound to that transaction.
func (s *GormFinanceTransactionScope) Execute(ctx context.Context, fn func(repos appfinance.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormFinanceTxRepositories{tx: tx})
	})
}

type gormFinanceTxRepositories struct {
	tx *gorm.DB
}

func (r *gormFinanceTxRepositories) AccountRepo() finance.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormFinanceTxRepositories) PaymentRepo() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormFinanceTxRepositories) DebtRepo() finance.PartnerDebtRepository {
	return NewGormPartnerDebtRepository(r.tx)
}

func (r *gormFinanceTxRepositories) OrderRepo() sales.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

var _ appfinance.TransactionScope = (*GormFinanceTransactionScope)(nil)
var _ appfinance.TransactionalRepositories = (*gormFinanceTxRepositories)(nil)
