package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-erp/backend/internal/domain/production"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// GormProductionOrderRepository implements production.ProductionOrderRepository using GORM
type GormProductionOrderRepository struct {
	db *gorm.DB
}

// NewGormProductionOrderRepository creates a new GormProductionOrderRepository
func NewGormProductionOrderRepository(db *gorm.DB) *GormProductionOrderRepository {
	return &GormProductionOrderRepository{db: db}
}

// FindByID finds a production order with its material lines
func (r *GormProductionOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	var po production.ProductionOrder
	if err := r.db.WithContext(ctx).
		Preload("Materials").
		First(&po, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("PRODUCTION_ORDER_NOT_FOUND", "Production order not found")
		}
		return nil, err
	}
	return &po, nil
}

// FindBySourceOrder finds the production orders created for a sales order
func (r *GormProductionOrderRepository) FindBySourceOrder(ctx context.Context, sourceOrderID uuid.UUID) ([]*production.ProductionOrder, error) {
	var orders []*production.ProductionOrder
	if err := r.db.WithContext(ctx).
		Preload("Materials").
		Where("source_order_id = ?", sourceOrderID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll finds production orders with pagination
func (r *GormProductionOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*production.ProductionOrder, error) {
	var orders []*production.ProductionOrder
	query := r.db.WithContext(ctx).Model(&production.ProductionOrder{}).Preload("Materials")

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates a production order with its material lines
func (r *GormProductionOrderRepository) Save(ctx context.Context, po *production.ProductionOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(po).Error; err != nil {
			return err
		}
		for i := range po.Materials {
			po.Materials[i].ProductionOrderID = po.ID
			if err := tx.Save(&po.Materials[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking. The aggregate incremented its
// version when it mutated, so the row must still hold the previous version.
func (r *GormProductionOrderRepository) SaveWithLock(ctx context.Context, po *production.ProductionOrder) error {
	po.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&production.ProductionOrder{}).
		Where("id = ? AND version = ?", po.ID, po.Version-1).
		Updates(map[string]interface{}{
			"status":      po.Status,
			"started_at":  po.StartedAt,
			"finished_at": po.FinishedAt,
			"version":     po.Version,
			"updated_at":  po.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GenerateCode generates the next unique production order code of the form
// PO-YYYY-NNNNN
func (r *GormProductionOrderRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("PO-%d-", year)

	var lastOrder production.ProductionOrder
	err := r.db.WithContext(ctx).
		Model(&production.ProductionOrder{}).
		Where("code LIKE ?", prefix+"%").
		Order("code DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.Code != "" {
		parts := strings.Split(lastOrder.Code, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

var _ production.ProductionOrderRepository = (*GormProductionOrderRepository)(nil)
