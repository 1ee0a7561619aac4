package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appsales "github.com/atelier-erp/backend/internal/application/sales"
	"github.com/atelier-erp/backend/internal/domain/inventory"
	"github.com/atelier-erp/backend/internal/domain/sales"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// StockService answers stock availability queries and runs the export
// processor. Export is the only inventory-mutating operation in this core;
// purchasing-side imports and transfers are external collaborators sharing
// the InventoryBalance contract through ReceiveStock.
type StockService struct {
	balanceRepo    inventory.InventoryBalanceRepository
	warehouseRepo  inventory.WarehouseRepository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(balanceRepo inventory.InventoryBalanceRepository, warehouseRepo inventory.WarehouseRepository, scope TransactionScope, logger *zap.Logger) *StockService {
	return &StockService{
		balanceRepo:   balanceRepo,
		warehouseRepo: warehouseRepo,
		scope:         scope,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// EvaluateStock computes a fulfillment report for the requested items,
// against one warehouse or all of them. Read-only; runs against latest
// committed state without coordination.
func (s *StockService) EvaluateStock(ctx context.Context, req EvaluateStockRequest) (*FulfillmentReportResponse, error) {
	requirements := make([]inventory.ItemRequirement, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Required quantity must be positive")
		}
		requirements = append(requirements, inventory.ItemRequirement{
			ItemID:   item.ItemID,
			Required: item.Quantity,
		})
	}

	var warehouseIDs []uuid.UUID
	if req.WarehouseID != nil {
		if _, err := s.warehouseRepo.FindByID(ctx, *req.WarehouseID); err != nil {
			return nil, err
		}
		warehouseIDs = []uuid.UUID{*req.WarehouseID}
	} else {
		warehouses, err := s.warehouseRepo.FindAll(ctx, shared.DefaultFilter())
		if err != nil {
			return nil, err
		}
		for _, w := range warehouses {
			warehouseIDs = append(warehouseIDs, w.ID)
		}
	}

	report, err := s.evaluate(ctx, requirements, warehouseIDs)
	if err != nil {
		return nil, err
	}
	response := ToFulfillmentReportResponse(report)
	return &response, nil
}

// EvaluateFinishedGoods evaluates the requirements against every warehouse
// that can hold sellable finished items. This is the production-need gate.
func (s *StockService) EvaluateFinishedGoods(ctx context.Context, requirements []inventory.ItemRequirement) (inventory.FulfillmentReport, error) {
	warehouses, err := s.warehouseRepo.FindFinishedGoods(ctx)
	if err != nil {
		return inventory.FulfillmentReport{}, err
	}
	warehouseIDs := make([]uuid.UUID, 0, len(warehouses))
	for _, w := range warehouses {
		warehouseIDs = append(warehouseIDs, w.ID)
	}
	return s.evaluate(ctx, requirements, warehouseIDs)
}

func (s *StockService) evaluate(ctx context.Context, requirements []inventory.ItemRequirement, warehouseIDs []uuid.UUID) (inventory.FulfillmentReport, error) {
	itemIDs := make([]uuid.UUID, 0, len(requirements))
	for _, req := range requirements {
		itemIDs = append(itemIDs, req.ItemID)
	}
	balances, err := s.balanceRepo.FindByItems(ctx, itemIDs, warehouseIDs)
	if err != nil {
		return inventory.FulfillmentReport{}, err
	}
	snapshot := make([]inventory.InventoryBalance, 0, len(balances))
	for _, b := range balances {
		snapshot = append(snapshot, *b)
	}
	return inventory.Evaluate(requirements, warehouseIDs, snapshot), nil
}

// ReceiveStock adds quantity to an item's balance in a warehouse, creating
// the balance row on first receipt. Inbound contract for purchasing-side
// collaborators.
func (s *StockService) ReceiveStock(ctx context.Context, itemID, warehouseID uuid.UUID, quantity decimal.Decimal) (*BalanceResponse, error) {
	if _, err := s.warehouseRepo.FindByID(ctx, warehouseID); err != nil {
		return nil, err
	}

	apply := func() (*inventory.InventoryBalance, error) {
		balance, err := s.balanceRepo.FindByItemAndWarehouse(ctx, itemID, warehouseID)
		if shared.IsNotFound(err) {
			balance, err = inventory.NewInventoryBalance(itemID, warehouseID)
			if err != nil {
				return nil, err
			}
			if err := balance.Increase(quantity); err != nil {
				return nil, err
			}
			return balance, s.balanceRepo.Save(ctx, balance)
		}
		if err != nil {
			return nil, err
		}
		if err := balance.Increase(quantity); err != nil {
			return nil, err
		}
		return balance, s.balanceRepo.SaveWithLock(ctx, balance)
	}

	balance, err := apply()
	if shared.IsConcurrencyConflict(err) {
		balance, err = apply()
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, balance.GetDomainEvents())
	balance.ClearDomainEvents()

	return &BalanceResponse{
		ItemID:      balance.ItemID,
		WarehouseID: balance.WarehouseID,
		Quantity:    balance.Quantity,
	}, nil
}

// GetWarehouseBalances lists the balance rows of one warehouse
func (s *StockService) GetWarehouseBalances(ctx context.Context, warehouseID uuid.UUID) ([]BalanceResponse, error) {
	balances, err := s.balanceRepo.FindByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	responses := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		responses = append(responses, BalanceResponse{
			ItemID:      b.ItemID,
			WarehouseID: b.WarehouseID,
			Quantity:    b.Quantity,
		})
	}
	return responses, nil
}

// Export runs the export processor for a settled, ready order. Inside one
// transaction it re-checks stock in the target warehouse, decrements every
// line's balance, appends the export record, and marks the order EXPORTED.
// Any shortfall aborts the whole transaction with an itemized error and
// the order stays READY_TO_EXPORT.
func (s *StockService) Export(ctx context.Context, orderID, warehouseID, actorID uuid.UUID) (*appsales.OrderResponse, error) {
	var (
		order    *sales.SalesOrder
		exportTx *inventory.ExportTransaction
	)

	attempt := func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			order, err = repos.OrderRepo().FindByID(ctx, orderID)
			if err != nil {
				return err
			}

			requirements := appsales.AggregateLineRequirements(order)

			// status and settlement gate first, then the stock re-check
			if err := order.MarkExported(warehouseID); err != nil {
				return err
			}

			var shortages []inventory.Shortage
			balances := make(map[uuid.UUID]*inventory.InventoryBalance, len(requirements))
			for _, req := range requirements {
				balance, err := repos.BalanceRepo().FindByItemAndWarehouse(ctx, req.ItemID, warehouseID)
				if shared.IsNotFound(err) {
					shortages = append(shortages, inventory.Shortage{
						ItemID:    req.ItemID,
						Required:  req.Required,
						Available: decimal.Zero,
					})
					continue
				}
				if err != nil {
					return err
				}
				if !balance.CanCover(req.Required) {
					shortages = append(shortages, inventory.Shortage{
						ItemID:    req.ItemID,
						Required:  req.Required,
						Available: balance.Quantity,
					})
					continue
				}
				balances[req.ItemID] = balance
			}
			if len(shortages) > 0 {
				return inventory.NewInsufficientStockError(shortages)
			}

			for _, req := range requirements {
				balance := balances[req.ItemID]
				if err := balance.Decrease(req.Required); err != nil {
					return err
				}
				if err := repos.BalanceRepo().SaveWithLock(ctx, balance); err != nil {
					return err
				}
			}

			exportTx, err = inventory.NewExportTransaction(order.ID, warehouseID, actorID, requirements)
			if err != nil {
				return err
			}
			if err := repos.ExportRepo().Save(ctx, exportTx); err != nil {
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

	s.logger.Info("order exported",
		zap.String("order_id", order.ID.String()),
		zap.String("warehouse_id", warehouseID.String()),
		zap.Int("lines", len(exportTx.Lines)))

	s.publish(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()
	s.publish(ctx, exportTx.GetDomainEvents())
	exportTx.ClearDomainEvents()

	response := appsales.ToOrderResponse(order)
	return &response, nil
}

// GetExportsByOrder lists the export transactions recorded for an order
func (s *StockService) GetExportsByOrder(ctx context.Context, orderID uuid.UUID) ([]ExportTransactionResponse, error) {
	var out []ExportTransactionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txs, err := repos.ExportRepo().FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		for _, tx := range txs {
			out = append(out, ToExportTransactionResponse(tx))
		}
		return nil
	})
	return out, err
}

func (s *StockService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish inventory event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}

var _ appsales.StockGateway = (*StockService)(nil)
var _ appsales.OrderExporter = (*StockService)(nil)
