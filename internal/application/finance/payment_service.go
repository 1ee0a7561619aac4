package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appsales "github.com/atelier-erp/backend/internal/application/sales"
	"github.com/atelier-erp/backend/internal/domain/finance"
	"github.com/atelier-erp/backend/internal/domain/sales"
	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/atelier-erp/backend/internal/domain/shared/valueobject"
)

// PaymentService applies payments to orders and debts. Every application
// runs in one transaction covering the target ledger, the source order,
// the account balance, and the immutable audit record; a lost optimistic
// lock race is retried once before surfacing.
type PaymentService struct {
	scope          TransactionScope
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		scope:          scope,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables duplicate-payment suppression for client
// retries carrying an idempotency key
func (s *PaymentService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idempotencyCfg = cfg
}

// paymentOutcome collects everything a payment touched inside the
// transaction
type paymentOutcome struct {
	partnerType finance.PartnerType
	isDeposit   bool
	order       *sales.SalesOrder
	debts       []*finance.PartnerDebt
	account     *finance.Account
	payment     *finance.Payment
}

// RecordPayment validates and applies a payment to its target. For an
// order target in CONFIRMED status the payment is recorded as the deposit
// and advances the order to PAID; otherwise it settles the remainder
// without changing fulfillment status. Partner and debt-row targets also
// update the backing source orders so that the sum of order remainders
// stays equal to the partner's aggregate remainder.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest, actorID uuid.UUID) (*RecordPaymentResponse, error) {
	target := req.Target()
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !req.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}

	// reserve the key before applying so concurrent retries cannot both
	// pass the duplicate check
	reserved := false
	if s.idempotency != nil && s.idempotencyCfg.Enabled && req.IdempotencyKey != "" {
		first, err := s.idempotency.MarkProcessed(ctx, req.IdempotencyKey, s.idempotencyCfg.TTL)
		if err != nil {
			return nil, err
		}
		if !first {
			return nil, shared.NewDomainError("DUPLICATE_PAYMENT", "Payment with this idempotency key was already recorded")
		}
		reserved = true
	}

	var outcome *paymentOutcome
	attempt := func() error {
		var err error
		outcome, err = s.apply(ctx, target, req, actorID)
		return err
	}
	err := attempt()
	if shared.IsConcurrencyConflict(err) {
		err = attempt()
	}
	if err != nil {
		if reserved {
			if releaseErr := s.idempotency.Release(ctx, req.IdempotencyKey); releaseErr != nil {
				s.logger.Warn("failed to release payment idempotency key",
					zap.String("key", req.IdempotencyKey),
					zap.Error(releaseErr))
			}
		}
		return nil, err
	}

	s.publishOutcome(ctx, outcome)

	s.logger.Info("payment recorded",
		zap.String("target_type", target.Type.String()),
		zap.String("target_id", target.ID.String()),
		zap.String("amount", req.Amount.String()))

	response := &RecordPaymentResponse{
		Payment:        ToPaymentResponse(outcome.payment),
		AccountBalance: outcome.account.Balance,
	}
	if outcome.order != nil && target.Type == finance.PaymentTargetOrder {
		orderResponse := appsales.ToOrderResponse(outcome.order)
		response.Order = &orderResponse
	}
	for _, debt := range outcome.debts {
		response.Debts = append(response.Debts, ToDebtResponse(debt))
	}
	return response, nil
}

func (s *PaymentService) apply(ctx context.Context, target finance.PaymentTarget, req RecordPaymentRequest, actorID uuid.UUID) (*paymentOutcome, error) {
	outcome := &paymentOutcome{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		switch target.Type {
		case finance.PaymentTargetOrder:
			err = s.applyToOrder(ctx, repos, target.ID, req.Amount, outcome)
		case finance.PaymentTargetPartnerDebt:
			err = s.applyToPartner(ctx, repos, target.ID, req.Amount, outcome)
		case finance.PaymentTargetDebtRow:
			err = s.applyToDebtRow(ctx, repos, target.ID, req.Amount, outcome)
		}
		if err != nil {
			return err
		}

		account, err := repos.AccountRepo().FindByID(ctx, req.AccountID)
		if err != nil {
			return err
		}
		amount := valueobject.NewMoneyVND(req.Amount)
		if outcome.partnerType == finance.PartnerTypeSupplier {
			err = account.Debit(amount)
		} else {
			err = account.Credit(amount)
		}
		if err != nil {
			return err
		}
		if err := repos.AccountRepo().SaveWithLock(ctx, account); err != nil {
			return err
		}
		outcome.account = account

		payment, err := finance.NewPayment(target, amount, req.Method, req.AccountID, actorID, outcome.isDeposit, req.Note)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return err
		}
		outcome.payment = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// applyToOrder settles an order's deposit or remainder, mirroring the
// amount onto the order's debt row when one exists
func (s *PaymentService) applyToOrder(ctx context.Context, repos TransactionalRepositories, orderID uuid.UUID, amount decimal.Decimal, outcome *paymentOutcome) error {
	order, err := repos.OrderRepo().FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	money := valueobject.NewMoneyVND(amount)
	outcome.isDeposit = order.Status == sales.OrderStatusConfirmed
	if outcome.isDeposit {
		err = order.RecordDeposit(money)
	} else {
		err = order.ApplyPayment(money)
	}
	if err != nil {
		return err
	}
	if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
		return err
	}
	outcome.order = order
	outcome.partnerType = finance.PartnerTypeCustomer

	debt, err := repos.DebtRepo().FindBySourceOrder(ctx, orderID)
	if shared.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := debt.ApplyPayment(money); err != nil {
		return err
	}
	if err := repos.DebtRepo().SaveWithLock(ctx, debt); err != nil {
		return err
	}
	outcome.debts = append(outcome.debts, debt)
	return nil
}

// applyToPartner allocates a general payment across the partner's
// outstanding rows oldest first, updating each row's source order with it
func (s *PaymentService) applyToPartner(ctx context.Context, repos TransactionalRepositories, partnerID uuid.UUID, amount decimal.Decimal, outcome *paymentOutcome) error {
	rows, err := repos.DebtRepo().FindOutstandingByPartner(ctx, partnerID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return shared.NewNotFoundError("NO_OUTSTANDING_DEBT", "Partner has no outstanding debt")
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Remaining())
	}
	if amount.GreaterThan(total) {
		return shared.NewDomainError("AMOUNT_EXCEEDS_REMAINING", fmt.Sprintf("Payment %s exceeds partner outstanding %s", amount, total))
	}

	outcome.partnerType = rows[0].PartnerType
	remainder := amount
	for _, row := range rows {
		if remainder.LessThanOrEqual(decimal.Zero) {
			break
		}
		slice := decimal.Min(remainder, row.Remaining())
		if err := s.settleRow(ctx, repos, row, slice, outcome); err != nil {
			return err
		}
		remainder = remainder.Sub(slice)
	}
	return nil
}

// applyToDebtRow settles one specific debt row and its source order
func (s *PaymentService) applyToDebtRow(ctx context.Context, repos TransactionalRepositories, debtID uuid.UUID, amount decimal.Decimal, outcome *paymentOutcome) error {
	row, err := repos.DebtRepo().FindByID(ctx, debtID)
	if err != nil {
		return err
	}
	outcome.partnerType = row.PartnerType
	return s.settleRow(ctx, repos, row, amount, outcome)
}

// settleRow applies the amount to a debt row and mirrors it onto the
// row's source order so both ledgers stay consistent
func (s *PaymentService) settleRow(ctx context.Context, repos TransactionalRepositories, row *finance.PartnerDebt, amount decimal.Decimal, outcome *paymentOutcome) error {
	money := valueobject.NewMoneyVND(amount)
	if err := row.ApplyPayment(money); err != nil {
		return err
	}
	if err := repos.DebtRepo().SaveWithLock(ctx, row); err != nil {
		return err
	}
	outcome.debts = append(outcome.debts, row)

	if row.SourceOrderID == nil {
		return nil
	}
	order, err := repos.OrderRepo().FindByID(ctx, *row.SourceOrderID)
	if err != nil {
		return err
	}
	if order.Status == sales.OrderStatusConfirmed {
		err = order.RecordDeposit(money)
	} else {
		err = order.ApplyPayment(money)
	}
	if err != nil {
		return err
	}
	if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
		return err
	}
	outcome.order = order
	return nil
}

// GetDebtSummary aggregates a partner's debt rows into one position
func (s *PaymentService) GetDebtSummary(ctx context.Context, partnerID uuid.UUID) (*DebtSummaryResponse, error) {
	var rows []*finance.PartnerDebt
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		rows, err = repos.DebtRepo().FindByPartner(ctx, partnerID, shared.DefaultFilter())
		return err
	})
	if err != nil {
		return nil, err
	}

	summary := &DebtSummaryResponse{
		PartnerID:      partnerID,
		TotalOriginal:  decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalRemaining: decimal.Zero,
	}
	for _, row := range rows {
		summary.TotalOriginal = summary.TotalOriginal.Add(row.OriginalAmount)
		summary.TotalPaid = summary.TotalPaid.Add(row.PaidAmount)
		summary.TotalRemaining = summary.TotalRemaining.Add(row.Remaining())
		summary.Debts = append(summary.Debts, ToDebtResponse(row))
	}
	return summary, nil
}

// GetPaymentsByTarget lists the audit records appended for one target
func (s *PaymentService) GetPaymentsByTarget(ctx context.Context, target finance.PaymentTarget) ([]PaymentResponse, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	var payments []*finance.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payments, err = repos.PaymentRepo().FindByTarget(ctx, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, ToPaymentResponse(p))
	}
	return responses, nil
}

func (s *PaymentService) publishOutcome(ctx context.Context, outcome *paymentOutcome) {
	if s.eventPublisher == nil {
		return
	}
	publish := func(events []shared.DomainEvent) {
		for _, event := range events {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("failed to publish payment event",
					zap.String("event_type", event.EventType()),
					zap.Error(err))
			}
		}
	}
	if outcome.order != nil {
		publish(outcome.order.GetDomainEvents())
		outcome.order.ClearDomainEvents()
	}
	for _, debt := range outcome.debts {
		publish(debt.GetDomainEvents())
		debt.ClearDomainEvents()
	}
	if outcome.account != nil {
		publish(outcome.account.GetDomainEvents())
		outcome.account.ClearDomainEvents()
	}
}
