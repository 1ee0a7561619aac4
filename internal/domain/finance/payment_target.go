package finance

import (
	"github.com/google/uuid"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

// PaymentTargetType discriminates what a payment settles
type PaymentTargetType string

const (
	// PaymentTargetOrder settles a sales order's deposit or remainder
	PaymentTargetOrder PaymentTargetType = "ORDER"
	// PaymentTargetPartnerDebt settles a partner's general outstanding debt
	PaymentTargetPartnerDebt PaymentTargetType = "PARTNER_DEBT"
	// PaymentTargetDebtRow settles one specific debt row
	PaymentTargetDebtRow PaymentTargetType = "DEBT_ROW"
)

// IsValid checks if the type is a valid PaymentTargetType
func (t PaymentTargetType) IsValid() bool {
	switch t {
	case PaymentTargetOrder, PaymentTargetPartnerDebt, PaymentTargetDebtRow:
		return true
	}
	return false
}

// String returns the string representation of PaymentTargetType
func (t PaymentTargetType) String() string {
	return string(t)
}

// PaymentTarget is a tagged variant naming what a payment settles. Account
// and audit side effects are identical across all three variants, so every
// payment flows through one code path keyed by this type.
type PaymentTarget struct {
	Type PaymentTargetType `json:"type"`
	// ID is the order, partner, or debt row id depending on Type
	ID uuid.UUID `json:"id"`
}

// NewOrderTarget targets a sales order's deposit or remainder
func NewOrderTarget(orderID uuid.UUID) PaymentTarget {
	return PaymentTarget{Type: PaymentTargetOrder, ID: orderID}
}

// NewPartnerDebtTarget targets a partner's oldest outstanding debt rows
func NewPartnerDebtTarget(partnerID uuid.UUID) PaymentTarget {
	return PaymentTarget{Type: PaymentTargetPartnerDebt, ID: partnerID}
}

// NewDebtRowTarget targets one specific debt row
func NewDebtRowTarget(debtID uuid.UUID) PaymentTarget {
	return PaymentTarget{Type: PaymentTargetDebtRow, ID: debtID}
}

// Validate checks the target is well formed
func (t PaymentTarget) Validate() error {
	if !t.Type.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_TARGET", "Unknown payment target type")
	}
	if t.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAYMENT_TARGET", "Payment target ID cannot be empty")
	}
	return nil
}
