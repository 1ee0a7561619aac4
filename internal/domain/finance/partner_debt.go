package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/atelier-erp/backend/internal/domain/shared/valueobject"
)

// PartnerType tells which side of the ledger a partner sits on
type PartnerType string

const (
	PartnerTypeCustomer PartnerType = "CUSTOMER"
	PartnerTypeSupplier PartnerType = "SUPPLIER"
)

// IsValid checks if the type is a valid PartnerType
func (t PartnerType) IsValid() bool {
	return t == PartnerTypeCustomer || t == PartnerTypeSupplier
}

// String returns the string representation of PartnerType
func (t PartnerType) String() string {
	return string(t)
}

// DebtStatus is derived from the remaining amount and the due date
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "PENDING"
	DebtStatusPartial DebtStatus = "PARTIAL"
	DebtStatusSettled DebtStatus = "SETTLED"
	DebtStatusOverdue DebtStatus = "OVERDUE"
)

// IsValid checks if the status is a valid DebtStatus
func (s DebtStatus) IsValid() bool {
	switch s {
	case DebtStatusPending, DebtStatusPartial, DebtStatusSettled, DebtStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of DebtStatus
func (s DebtStatus) String() string {
	return string(s)
}

// PartnerDebt is one outstanding obligation between the business and a
// partner. Customer-order debts keep one row per source order so that the
// sum of order remainders always equals the partner's aggregate remainder.
type PartnerDebt struct {
	shared.BaseAggregateRoot
	PartnerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartnerType    PartnerType     `gorm:"type:varchar(20);not null"`
	SourceOrderID  *uuid.UUID      `gorm:"type:uuid;index"`
	OriginalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status         DebtStatus      `gorm:"type:varchar(20);not null;default:'PENDING'"`
	DueDate        *time.Time      `gorm:"index"`
	Note           string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PartnerDebt) TableName() string {
	return "partner_debts"
}

// NewPartnerDebt creates an outstanding debt row
func NewPartnerDebt(partnerID uuid.UUID, partnerType PartnerType, sourceOrderID *uuid.UUID, amount valueobject.Money, dueDate *time.Time) (*PartnerDebt, error) {
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if !partnerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PARTNER_TYPE", "Unknown partner type")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Debt amount must be positive")
	}

	debt := &PartnerDebt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartnerID:         partnerID,
		PartnerType:       partnerType,
		SourceOrderID:     sourceOrderID,
		OriginalAmount:    amount.Amount(),
		PaidAmount:        decimal.Zero,
		DueDate:           dueDate,
	}
	debt.refreshStatus(time.Now())

	debt.AddDomainEvent(NewDebtCreatedEvent(debt))

	return debt, nil
}

// Remaining is the unpaid portion of the debt
func (d *PartnerDebt) Remaining() decimal.Decimal {
	return d.OriginalAmount.Sub(d.PaidAmount)
}

// IsSettled returns true once nothing remains
func (d *PartnerDebt) IsSettled() bool {
	return d.Remaining().IsZero()
}

// ApplyPayment reduces the debt by the paid amount. The amount must be
// positive and must not exceed the current remainder.
func (d *PartnerDebt) ApplyPayment(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	remaining := d.Remaining()
	if remaining.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("ALREADY_SETTLED", "Debt has no outstanding remainder")
	}
	if amount.Amount().GreaterThan(remaining) {
		return shared.NewDomainError("AMOUNT_EXCEEDS_REMAINING", fmt.Sprintf("Payment %s exceeds remaining %s", amount.Amount(), remaining))
	}

	now := time.Now()
	d.PaidAmount = d.PaidAmount.Add(amount.Amount())
	d.refreshStatus(now)
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDebtPaymentAppliedEvent(d, amount.Amount()))

	return nil
}

func (d *PartnerDebt) refreshStatus(now time.Time) {
	remaining := d.Remaining()
	switch {
	case remaining.IsZero():
		d.Status = DebtStatusSettled
	case d.DueDate != nil && now.After(*d.DueDate):
		d.Status = DebtStatusOverdue
	case d.PaidAmount.IsPositive():
		d.Status = DebtStatusPartial
	default:
		d.Status = DebtStatusPending
	}
}
