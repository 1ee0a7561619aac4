package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-erp/backend/internal/domain/inventory"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// GormExportTransactionRepository implements inventory.ExportTransactionRepository
// using GORM. Export records are append-only; there is no update or delete.
type GormExportTransactionRepository struct {
	db *gorm.DB
}

// NewGormExportTransactionRepository creates a new GormExportTransactionRepository
func NewGormExportTransactionRepository(db *gorm.DB) *GormExportTransactionRepository {
	return &GormExportTransactionRepository{db: db}
}

// FindByID finds an export transaction with its lines
func (r *GormExportTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ExportTransaction, error) {
	var tx inventory.ExportTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("EXPORT_NOT_FOUND", "Export transaction not found")
		}
		return nil, err
	}
	return &tx, nil
}

// FindByOrder finds the export transactions recorded for an order
func (r *GormExportTransactionRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*inventory.ExportTransaction, error) {
	var txs []*inventory.ExportTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_id = ?", orderID).
		Order("exported_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Save appends an export transaction with its lines
func (r *GormExportTransactionRepository) Save(ctx context.Context, exportTx *inventory.ExportTransaction) error {
	return r.db.WithContext(ctx).Create(exportTx).Error
}

var _ inventory.ExportTransactionRepository = (*GormExportTransactionRepository)(nil)
