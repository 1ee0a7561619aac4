package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/atelier-erp/backend/internal/domain/shared/valueobject"
)

// PaymentMethod is how the money moved
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodBank     PaymentMethod = "BANK"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodTransfer:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment is an append-only audit record of money applied to a target.
// Rows are immutable after creation; corrections require compensating
// entries, never updates.
type Payment struct {
	shared.BaseEntity
	TargetType PaymentTargetType `gorm:"type:varchar(20);not null;index:idx_payments_target,priority:1"`
	TargetID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_payments_target,priority:2"`
	Amount     decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Method     PaymentMethod     `gorm:"type:varchar(20);not null"`
	AccountID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	ActorID    uuid.UUID         `gorm:"type:uuid;not null"`
	IsDeposit  bool              `gorm:"not null;default:false"`
	Note       string            `gorm:"type:varchar(500)"`
	PaidAt     time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates an immutable payment record
func NewPayment(target PaymentTarget, amount valueobject.Money, method PaymentMethod, accountID, actorID uuid.UUID, isDeposit bool, note string) (*Payment, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		TargetType: target.Type,
		TargetID:   target.ID,
		Amount:     amount.Amount(),
		Method:     method,
		AccountID:  accountID,
		ActorID:    actorID,
		IsDeposit:  isDeposit,
		Note:       note,
		PaidAt:     time.Now(),
	}, nil
}

// Target reconstructs the tagged target variant from the stored columns
func (p *Payment) Target() PaymentTarget {
	return PaymentTarget{Type: p.TargetType, ID: p.TargetID}
}
