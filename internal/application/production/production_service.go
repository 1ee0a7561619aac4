package production

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appsales "github.com/atelier-erp/backend/internal/application/sales"
	"github.com/atelier-erp/backend/internal/domain/catalog"
	"github.com/atelier-erp/backend/internal/domain/production"
	"github.com/atelier-erp/backend/internal/domain/sales"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// ProductionService creates and tracks production orders triggered by paid
// sales orders
type ProductionService struct {
	productionRepo production.ProductionOrderRepository
	bomRepo        production.BOMRepository
	itemRepo       catalog.ItemRepository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductionService creates a new ProductionService
func NewProductionService(productionRepo production.ProductionOrderRepository, bomRepo production.BOMRepository, itemRepo catalog.ItemRepository, scope TransactionScope, logger *zap.Logger) *ProductionService {
	return &ProductionService{
		productionRepo: productionRepo,
		bomRepo:        bomRepo,
		itemRepo:       itemRepo,
		scope:          scope,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// StartForOrder moves a paid sales order into production. Inside one
// transaction it transitions the order, resolves every line into material
// requirements, and persists one production order for the whole sales
// order; the status change and the production order commit together.
// Lines whose finished item has no bill of materials are skipped and
// reported back rather than aborting the trigger. Inventory is not
// decremented here; material consumption is a downstream shop-floor
// process.
func (s *ProductionService) StartForOrder(ctx context.Context, orderID, actorID uuid.UUID) (*appsales.StartProductionResult, error) {
	var (
		order *sales.SalesOrder
		po    *production.ProductionOrder
	)
	result := production.ResolutionResult{}

	attempt := func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			order, err = repos.OrderRepo().FindByID(ctx, orderID)
			if err != nil {
				return err
			}
			if err := order.StartProduction(); err != nil {
				return err
			}

			result, err = s.resolveOrder(ctx, order)
			if err != nil {
				return err
			}

			code, err := repos.ProductionRepo().GenerateCode(ctx)
			if err != nil {
				return err
			}
			po, err = production.NewProductionOrder(code, order.ID, result.Requirements)
			if err != nil {
				return err
			}
			if err := repos.ProductionRepo().Save(ctx, po); err != nil {
				return err
			}
			return repos.OrderRepo().SaveWithLock(ctx, order)
		})
	}

	err := attempt()
	if shared.IsConcurrencyConflict(err) {
		err = attempt()
	}
	if err != nil {
		return nil, err
	}

	for _, skipped := range result.SkippedItems {
		s.logger.Warn("order line skipped in material resolution: no released BOM",
			zap.String("order_id", order.ID.String()),
			zap.String("item_id", skipped.String()))
	}
	s.publishEvents(ctx, po)

	return &appsales.StartProductionResult{
		Order:             order,
		ProductionOrderID: po.ID,
		SkippedItems:      result.SkippedItems,
	}, nil
}

// resolveOrder turns the order lines into aggregated material requirements
// via the BOM resolver
func (s *ProductionService) resolveOrder(ctx context.Context, order *sales.SalesOrder) (production.ResolutionResult, error) {
	demands := make([]production.LineDemand, 0, len(order.Lines))
	itemIDs := make([]uuid.UUID, 0, len(order.Lines))
	for _, line := range order.Lines {
		demands = append(demands, production.LineDemand{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		})
		itemIDs = append(itemIDs, line.ItemID)
	}

	items, err := s.itemRepo.FindByIDs(ctx, itemIDs)
	if err != nil {
		return production.ResolutionResult{}, err
	}
	kinds := make(map[uuid.UUID]catalog.ItemKind, len(items))
	finishedIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		kinds[item.ID] = item.Kind
		if item.Kind == catalog.ItemKindFinished {
			finishedIDs = append(finishedIDs, item.ID)
		}
	}

	bom, err := s.bomRepo.FindByFinishedItems(ctx, finishedIDs)
	if err != nil {
		return production.ResolutionResult{}, err
	}
	bomByItem := make(map[uuid.UUID][]*production.BOMEntry, len(bom))
	for itemID, entries := range bom {
		bomByItem[itemID] = entries
	}

	return production.ResolveMaterials(demands, kinds, bomByItem), nil
}

// GetByID retrieves a production order with its material lines
func (s *ProductionService) GetByID(ctx context.Context, id uuid.UUID) (*ProductionOrderResponse, error) {
	po, err := s.productionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductionOrderResponse(po)
	return &response, nil
}

// GetBySourceOrder retrieves the production orders created for a sales
// order
func (s *ProductionService) GetBySourceOrder(ctx context.Context, sourceOrderID uuid.UUID) ([]ProductionOrderResponse, error) {
	orders, err := s.productionRepo.FindBySourceOrder(ctx, sourceOrderID)
	if err != nil {
		return nil, err
	}
	responses := make([]ProductionOrderResponse, 0, len(orders))
	for _, po := range orders {
		responses = append(responses, ToProductionOrderResponse(po))
	}
	return responses, nil
}

// Start marks a production order picked up by the shop floor
func (s *ProductionService) Start(ctx context.Context, id uuid.UUID) (*ProductionOrderResponse, error) {
	return s.transition(ctx, id, func(po *production.ProductionOrder) error {
		return po.Start()
	})
}

// Finish marks a production order done
func (s *ProductionService) Finish(ctx context.Context, id uuid.UUID) (*ProductionOrderResponse, error) {
	return s.transition(ctx, id, func(po *production.ProductionOrder) error {
		return po.Finish()
	})
}

func (s *ProductionService) transition(ctx context.Context, id uuid.UUID, mutate func(*production.ProductionOrder) error) (*ProductionOrderResponse, error) {
	var po *production.ProductionOrder
	attempt := func() error {
		var err error
		po, err = s.productionRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(po); err != nil {
			return err
		}
		return s.productionRepo.SaveWithLock(ctx, po)
	}

	err := attempt()
	if shared.IsConcurrencyConflict(err) {
		err = attempt()
	}
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, po)
	response := ToProductionOrderResponse(po)
	return &response, nil
}

func (s *ProductionService) publishEvents(ctx context.Context, po *production.ProductionOrder) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range po.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish production event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	po.ClearDomainEvents()
}

var _ appsales.ProductionTrigger = (*ProductionService)(nil)
