package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

const (
	AggregateTypeAccount     = "Account"
	AggregateTypePartnerDebt = "PartnerDebt"

	EventTypeAccountCredited     = "AccountCredited"
	EventTypeAccountDebited      = "AccountDebited"
	EventTypeDebtCreated         = "DebtCreated"
	EventTypeDebtPaymentApplied  = "DebtPaymentApplied"
)

// AccountCreditedEvent is emitted when incoming money lands on an account
type AccountCreditedEvent struct {
	shared.BaseDomainEvent
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

func NewAccountCreditedEvent(a *Account, amount decimal.Decimal) *AccountCreditedEvent {
	return &AccountCreditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCredited, AggregateTypeAccount, a.ID),
		Amount:          amount,
		NewBalance:      a.Balance,
	}
}

// AccountDebitedEvent is emitted when outgoing money leaves an account
type AccountDebitedEvent struct {
	shared.BaseDomainEvent
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

func NewAccountDebitedEvent(a *Account, amount decimal.Decimal) *AccountDebitedEvent {
	return &AccountDebitedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountDebited, AggregateTypeAccount, a.ID),
		Amount:          amount,
		NewBalance:      a.Balance,
	}
}

// DebtCreatedEvent is emitted when an outstanding debt row is recorded
type DebtCreatedEvent struct {
	shared.BaseDomainEvent
	PartnerID      uuid.UUID       `json:"partner_id"`
	PartnerType    PartnerType     `json:"partner_type"`
	SourceOrderID  *uuid.UUID      `json:"source_order_id,omitempty"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
}

func NewDebtCreatedEvent(d *PartnerDebt) *DebtCreatedEvent {
	return &DebtCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtCreated, AggregateTypePartnerDebt, d.ID),
		PartnerID:       d.PartnerID,
		PartnerType:     d.PartnerType,
		SourceOrderID:   d.SourceOrderID,
		OriginalAmount:  d.OriginalAmount,
	}
}

// DebtPaymentAppliedEvent is emitted when a payment reduces a debt row
type DebtPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PartnerID uuid.UUID       `json:"partner_id"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    DebtStatus      `json:"status"`
}

func NewDebtPaymentAppliedEvent(d *PartnerDebt, amount decimal.Decimal) *DebtPaymentAppliedEvent {
	return &DebtPaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtPaymentApplied, AggregateTypePartnerDebt, d.ID),
		PartnerID:       d.PartnerID,
		Amount:          amount,
		Remaining:       d.Remaining(),
		Status:          d.Status,
	}
}
