package persistence

import (
	"context"

	"gorm.io/gorm"

	appproduction "github.com/atelier-erp/backend/internal/application/production"
	"github.com/atelier-erp/backend/internal/domain/production"
	"github.com/atelier-erp/backend/internal/domain/sales"
)

// GormProductionTransactionScope runs the start-production flow inside one
// GORM transaction so the order status change and the new production order
// commit or roll back together.
type GormProductionTransactionScope struct {
	db *gorm.DB
}

// NewGormProductionTransactionScope creates a new GormProductionTransactionScope
func NewGormProductionTransactionScope(db *gorm.DB) *GormProductionTransactionScope {
	return &GormProductionTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. The repositories handed to
// fn are bound to that transaction.
func (s *GormProductionTransactionScope) Execute(ctx context.Context, fn func(repos appproduction.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormProductionTxRepositories{tx: tx})
	})
}

type gormProductionTxRepositories struct {
	tx *gorm.DB
}

func (r *gormProductionTxRepositories) ProductionRepo() production.ProductionOrderRepository {
	return NewGormProductionOrderRepository(r.tx)
}

func (r *gormProductionTxRepositories) OrderRepo() sales.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

var _ appproduction.TransactionScope = (*GormProductionTransactionScope)(nil)
var _ appproduction.TransactionalRepositories = (*gormProductionTxRepositories)(nil)
