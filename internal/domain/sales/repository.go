package sales

import (
	"context"

	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SalesOrderRepository defines the interface for sales order persistence.
// All mutating saves go through SaveWithLock: order operations serialize on
// the order id via the aggregate version.
type SalesOrderRepository interface {
	// FindByID finds a sales order by ID with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByCode finds a sales order by its unique code
	FindByCode(ctx context.Context, code string) (*SalesOrder, error)

	// FindByCustomer finds sales orders for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]SalesOrder, error)

	// FindByStatus finds sales orders by status
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]SalesOrder, error)

	// FindAll finds sales orders with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]SalesOrder, error)

	// Save creates a sales order (initial persist, no version check)
	Save(ctx context.Context, order *SalesOrder) error

	// SaveWithLock saves with optimistic locking; returns
	// shared.ErrConcurrencyConflict when the stored version moved on
	SaveWithLock(ctx context.Context, order *SalesOrder) error

	// Count counts sales orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCode checks if an order code is already taken
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// GenerateCode generates the next unique order code
	GenerateCode(ctx context.Context) (string, error)
}
