package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-erp/backend/internal/domain/sales"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// GormSalesOrderRepository implements sales.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order by ID with its lines
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesOrder, error) {
	var order sales.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ORDER_NOT_FOUND", "Sales order not found")
		}
		return nil, err
	}
	return &order, nil
}

// FindByCode finds a sales order by its unique code
func (r *GormSalesOrderRepository) FindByCode(ctx context.Context, code string) (*sales.SalesOrder, error) {
	var order sales.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ORDER_NOT_FOUND", "Sales order not found")
		}
		return nil, err
	}
	return &order, nil
}

// FindByCustomer finds sales orders for a customer
func (r *GormSalesOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]sales.SalesOrder, error) {
	var orders []sales.SalesOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sales.SalesOrder{}).
			Preload("Lines").
			Where("customer_id = ?", customerID),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds sales orders by status
func (r *GormSalesOrderRepository) FindByStatus(ctx context.Context, status sales.OrderStatus, filter shared.Filter) ([]sales.SalesOrder, error) {
	var orders []sales.SalesOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sales.SalesOrder{}).
			Preload("Lines").
			Where("status = ?", status),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll finds sales orders with filtering
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesOrder, error) {
	var orders []sales.SalesOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sales.SalesOrder{}).Preload("Lines"),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates a sales order with its lines
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *sales.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			if err := tx.Save(&order.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking. The aggregate incremented its
// version when it mutated, so the row must still hold the previous version.
func (r *GormSalesOrderRepository) SaveWithLock(ctx context.Context, order *sales.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.UpdatedAt = time.Now()
		result := tx.Model(&sales.SalesOrder{}).
			Where("id = ? AND version = ?", order.ID, order.Version-1).
			Updates(map[string]interface{}{
				"status":          order.Status,
				"total_amount":    order.TotalAmount,
				"discount_amount": order.DiscountAmount,
				"other_costs":     order.OtherCosts,
				"final_amount":    order.FinalAmount,
				"deposit_amount":  order.DepositAmount,
				"paid_amount":     order.PaidAmount,
				"payment_status":  order.PaymentStatus,
				"confirmed_at":    order.ConfirmedAt,
				"paid_at":         order.PaidAt,
				"exported_at":     order.ExportedAt,
				"completed_at":    order.CompletedAt,
				"cancelled_at":    order.CancelledAt,
				"cancel_reason":   order.CancelReason,
				"version":         order.Version,
				"updated_at":      order.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			if err := tx.Save(&order.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Count counts sales orders matching the filter
func (r *GormSalesOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&sales.SalesOrder{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if an order code is already taken
func (r *GormSalesOrderRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&sales.SalesOrder{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateCode generates the next unique order code of the form SO-YYYY-NNNNN
func (r *GormSalesOrderRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("SO-%d-", year)

	var lastOrder sales.SalesOrder
	err := r.db.WithContext(ctx).
		Model(&sales.SalesOrder{}).
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

	code := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.ExistsByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			code = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByCode(ctx, code)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return code, nil
}

// applyFilter applies filter options to the query
func (r *GormSalesOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormSalesOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("code ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date <= ?", t)
			}
		}
	}

	return query
}

var _ sales.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
