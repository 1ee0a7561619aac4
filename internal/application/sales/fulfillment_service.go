package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atelier-erp/backend/internal/domain/finance"
	"github.com/atelier-erp/backend/internal/domain/inventory"
	"github.com/atelier-erp/backend/internal/domain/sales"
	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/atelier-erp/backend/internal/domain/shared/valueobject"
)

// StockGateway evaluates fulfillment for a set of requirements across the
// finished-goods warehouses. Read-only; staleness is acceptable because the
// export path re-checks inside its transaction.
type StockGateway interface {
	EvaluateFinishedGoods(ctx context.Context, requirements []inventory.ItemRequirement) (inventory.FulfillmentReport, error)
}

// ProductionTrigger transitions a paid order into production and creates
// its production order, atomically
type ProductionTrigger interface {
	StartForOrder(ctx context.Context, orderID, actorID uuid.UUID) (*StartProductionResult, error)
}

// StartProductionResult carries the outcome of starting production
type StartProductionResult struct {
	Order             *sales.SalesOrder
	ProductionOrderID uuid.UUID
	SkippedItems      []uuid.UUID
}

// OrderExporter moves stock out of a warehouse and marks the order
// exported, atomically
type OrderExporter interface {
	Export(ctx context.Context, orderID, warehouseID, actorID uuid.UUID) (*OrderResponse, error)
}

// FulfillmentService drives a sales order through its lifecycle from
// creation to completion
type FulfillmentService struct {
	orderRepo      sales.SalesOrderRepository
	confirmScope   ConfirmationScope
	stock          StockGateway
	production     ProductionTrigger
	exporter       OrderExporter
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(orderRepo sales.SalesOrderRepository, confirmScope ConfirmationScope, stock StockGateway, production ProductionTrigger, exporter OrderExporter, logger *zap.Logger) *FulfillmentService {
	return &FulfillmentService{
		orderRepo:    orderRepo,
		confirmScope: confirmScope,
		stock:        stock,
		production:   production,
		exporter:     exporter,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *FulfillmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new sales order in PENDING state
func (s *FulfillmentService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	code, err := s.orderRepo.GenerateCode(ctx)
	if err != nil {
		return nil, err
	}

	orderDate := time.Time{}
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	order, err := sales.NewSalesOrder(code, req.CustomerID, req.BranchID, orderDate)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		var measurements *sales.Measurements
		if line.Measurements != nil {
			measurements = &sales.Measurements{
				Width:  line.Measurements.Width,
				Height: line.Measurements.Height,
				Depth:  line.Measurements.Depth,
				Note:   line.Measurements.Note,
			}
		}
		unitPrice := valueobject.NewMoneyVND(line.UnitPrice)
		costPrice := valueobject.NewMoneyVND(line.CostPrice)
		if _, err := order.AddLine(line.ItemID, line.Quantity, unitPrice, costPrice, measurements); err != nil {
			return nil, err
		}
	}

	if req.Discount != nil {
		if err := order.ApplyDiscount(valueobject.NewMoneyVND(*req.Discount)); err != nil {
			return nil, err
		}
	}
	if req.OtherCosts != nil {
		if err := order.SetOtherCosts(valueobject.NewMoneyVND(*req.OtherCosts)); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a sales order by ID
func (s *FulfillmentService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves sales orders with filtering and pagination
func (s *FulfillmentService) List(ctx context.Context, filter OrderListFilter) (shared.Paginated[OrderResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = filter.Status.String()
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}

	return shared.NewPaginated(ToOrderResponses(orders), total, domainFilter.Page, domainFilter.PageSize), nil
}

// Confirm transitions the order PENDING -> CONFIRMED and opens the
// customer debt row for the order total in the same transaction
func (s *FulfillmentService) Confirm(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var order *sales.SalesOrder
	attempt := func() error {
		return s.confirmScope.Execute(ctx, func(repos ConfirmationRepositories) error {
			var err error
			order, err = repos.OrderRepo().FindByID(ctx, orderID)
			if err != nil {
				return err
			}
			if err := order.Confirm(); err != nil {
				return err
			}
			if err := openDebtRow(ctx, repos.DebtRepo(), order); err != nil {
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

	s.publishEvents(ctx, order)
	response := ToOrderResponse(order)
	return &response, nil
}

// openDebtRow creates the debt row mirroring the confirmed order's final
// amount, unless one already exists for the order
func openDebtRow(ctx context.Context, debtRepo finance.PartnerDebtRepository, order *sales.SalesOrder) error {
	_, err := debtRepo.FindBySourceOrder(ctx, order.ID)
	if err == nil {
		return nil
	}
	if !shared.IsNotFound(err) {
		return err
	}
	debt, err := finance.NewPartnerDebt(order.CustomerID, finance.PartnerTypeCustomer, &order.ID, valueobject.NewMoneyVND(order.FinalAmount), nil)
	if err != nil {
		return err
	}
	return debtRepo.Save(ctx, debt)
}

// Cancel transitions the order PENDING -> CANCELLED
func (s *FulfillmentService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(order *sales.SalesOrder) error {
		return order.Cancel(req.Reason)
	})
}

// EvaluateProductionNeed decides whether the order must be manufactured
// before it can ship. Pure over the order snapshot and a stock report:
// any line with measurements forces production; otherwise production is
// needed only when no finished-goods warehouse can cover every line at
// once. Read-only and re-callable at any time.
func (s *FulfillmentService) EvaluateProductionNeed(ctx context.Context, orderID uuid.UUID) (*ProductionNeedResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	report, err := s.stock.EvaluateFinishedGoods(ctx, AggregateLineRequirements(order))
	if err != nil {
		return nil, err
	}

	return &ProductionNeedResponse{
		NeedsProduction: NeedsProduction(order, report),
		HasCustomLines:  order.HasCustomLines(),
		StockReport:     report,
	}, nil
}

// NeedsProduction is the production-need decision over an order snapshot
// and a stock report
func NeedsProduction(order *sales.SalesOrder, report inventory.FulfillmentReport) bool {
	if order.HasCustomLines() {
		return true
	}
	return !report.AnyCanFulfill()
}

// StartProduction transitions PAID -> IN_PRODUCTION and creates the
// production order with the aggregated material requirements. The status
// change and the production order commit together.
func (s *FulfillmentService) StartProduction(ctx context.Context, orderID, actorID uuid.UUID) (*StartProductionResponse, error) {
	result, err := s.production.StartForOrder(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, result.Order)

	return &StartProductionResponse{
		Order:             ToOrderResponse(result.Order),
		ProductionOrderID: result.ProductionOrderID,
		SkippedItems:      result.SkippedItems,
	}, nil
}

// SkipToReadyToExport transitions PAID or IN_PRODUCTION ->
// READY_TO_EXPORT. From PAID this is the no-production path or a manual
// override; from IN_PRODUCTION it marks manufacturing done.
func (s *FulfillmentService) SkipToReadyToExport(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(order *sales.SalesOrder) error {
		return order.MarkReadyToExport()
	})
}

// Export moves the order's goods out of the given warehouse and marks it
// EXPORTED. Requires a fully settled remainder; a stock shortfall aborts
// with an itemized error and the order stays READY_TO_EXPORT.
func (s *FulfillmentService) Export(ctx context.Context, orderID uuid.UUID, req ExportOrderRequest, actorID uuid.UUID) (*OrderResponse, error) {
	return s.exporter.Export(ctx, orderID, req.WarehouseID, actorID)
}

// Complete transitions EXPORTED -> COMPLETED
func (s *FulfillmentService) Complete(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(order *sales.SalesOrder) error {
		return order.Complete()
	})
}

// transition loads the order, applies the mutation, and saves with
// optimistic locking, retrying once on a lost version race
func (s *FulfillmentService) transition(ctx context.Context, orderID uuid.UUID, mutate func(*sales.SalesOrder) error) (*OrderResponse, error) {
	var order *sales.SalesOrder
	attempt := func() error {
		var err error
		order, err = s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := mutate(order); err != nil {
			return err
		}
		return s.orderRepo.SaveWithLock(ctx, order)
	}

	err := attempt()
	if shared.IsConcurrencyConflict(err) {
		err = attempt()
	}
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	response := ToOrderResponse(order)
	return &response, nil
}

func (s *FulfillmentService) publishEvents(ctx context.Context, order *sales.SalesOrder) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range order.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish order event",
				zap.String("event_type", event.EventType()),
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}
	order.ClearDomainEvents()
}

// AggregateLineRequirements sums order line quantities per item, keeping
// first-seen line order. The production-need gate and the export processor
// both evaluate stock against these totals, so an item split across lines
// is checked against its full demand.
func AggregateLineRequirements(order *sales.SalesOrder) []inventory.ItemRequirement {
	totals := make(map[uuid.UUID]decimal.Decimal)
	var ordered []uuid.UUID
	for _, line := range order.Lines {
		if _, seen := totals[line.ItemID]; !seen {
			ordered = append(ordered, line.ItemID)
		}
		totals[line.ItemID] = totals[line.ItemID].Add(line.Quantity)
	}
	requirements := make([]inventory.ItemRequirement, 0, len(ordered))
	for _, itemID := range ordered {
		requirements = append(requirements, inventory.ItemRequirement{
			ItemID:   itemID,
			Required: totals[itemID],
		})
	}
	return requirements
}
