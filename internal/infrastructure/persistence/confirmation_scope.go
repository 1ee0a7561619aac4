package persistence

import (
	"context"

	"gorm.io/gorm"

	appsales "github.com/atelier-erp/backend/internal/application/sales"
	"github.com/atelier-erp/backend/internal/domain/finance"
	"github.com/atelier-erp/backend/internal/domain/sales"
)

// GormConfirmationScope runs the order confirmation inside one GORM
// transaction so the status change and the customer debt row commit or
// roll back together.
type GormConfirmationScope struct {
	db *gorm.DB
}

// NewGormConfirmationScope creates a new GormConfirmationScope
func NewGormConfirmationScope(db *gorm.DB) *GormConfirmationScope {
	return &GormConfirmationScope{db: db}
}

// Execute runs fn inside a database transaction. The repositories handed to
// fn are bound to that transaction.
func (s *GormConfirmationScope) Execute(ctx context.Context, fn func(repos appsales.ConfirmationRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormConfirmationRepositories{tx: tx})
	})
}

type gormConfirmationRepositories struct {
	tx *gorm.DB
}

func (r *gormConfirmationRepositories) OrderRepo() sales.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

func (r *gormConfirmationRepositories) DebtRepo() finance.PartnerDebtRepository {
	return NewGormPartnerDebtRepository(r.tx)
}

var _ appsales.ConfirmationScope = (*GormConfirmationScope)(nil)
var _ appsales.ConfirmationRepositories = (*gormConfirmationRepositories)(nil)
