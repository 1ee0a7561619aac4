package production

import (
	"context"

	"github.com/google/uuid"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

// ProductionOrderRepository persists production orders
type ProductionOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	FindBySourceOrder(ctx context.Context, sourceOrderID uuid.UUID) ([]*ProductionOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*ProductionOrder, error)
	Save(ctx context.Context, po *ProductionOrder) error
	SaveWithLock(ctx context.Context, po *ProductionOrder) error
	GenerateCode(ctx context.Context) (string, error)
}
