package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appsales "github.com/atelier-erp/backend/internal/application/sales"
	"github.com/atelier-erp/backend/internal/domain/finance"
)

// RecordPaymentRequest applies money to an order, a partner's general
// debt, or a specific debt row
type RecordPaymentRequest struct {
	TargetType     finance.PaymentTargetType `json:"target_type" binding:"required"`
	TargetID       uuid.UUID                 `json:"target_id" binding:"required"`
	Amount         decimal.Decimal           `json:"amount" binding:"required"`
	Method         finance.PaymentMethod     `json:"method" binding:"required"`
	AccountID      uuid.UUID                 `json:"account_id" binding:"required"`
	Note           string                    `json:"note" binding:"max=500"`
	IdempotencyKey string                    `json:"idempotency_key" binding:"max=100"`
}

// Target builds the tagged variant from the request fields
func (r RecordPaymentRequest) Target() finance.PaymentTarget {
	return finance.PaymentTarget{Type: r.TargetType, ID: r.TargetID}
}

// PaymentResponse represents an appended payment audit record
type PaymentResponse struct {
	ID         uuid.UUID                 `json:"id"`
	TargetType finance.PaymentTargetType `json:"target_type"`
	TargetID   uuid.UUID                 `json:"target_id"`
	Amount     decimal.Decimal           `json:"amount"`
	Method     finance.PaymentMethod     `json:"method"`
	AccountID  uuid.UUID                 `json:"account_id"`
	IsDeposit  bool                      `json:"is_deposit"`
	Note       string                    `json:"note,omitempty"`
	PaidAt     time.Time                 `json:"paid_at"`
}

// DebtResponse represents one partner debt row
type DebtResponse struct {
	ID             uuid.UUID           `json:"id"`
	PartnerID      uuid.UUID           `json:"partner_id"`
	PartnerType    finance.PartnerType `json:"partner_type"`
	SourceOrderID  *uuid.UUID          `json:"source_order_id,omitempty"`
	OriginalAmount decimal.Decimal     `json:"original_amount"`
	PaidAmount     decimal.Decimal     `json:"paid_amount"`
	Remaining      decimal.Decimal     `json:"remaining"`
	Status         finance.DebtStatus  `json:"status"`
	DueDate        *time.Time          `json:"due_date,omitempty"`
}

// RecordPaymentResponse is the updated snapshot after a payment
type RecordPaymentResponse struct {
	Payment        PaymentResponse         `json:"payment"`
	Order          *appsales.OrderResponse `json:"order,omitempty"`
	Debts          []DebtResponse          `json:"debts,omitempty"`
	AccountBalance decimal.Decimal         `json:"account_balance"`
}

// DebtSummaryResponse aggregates a partner's outstanding position
type DebtSummaryResponse struct {
	PartnerID      uuid.UUID       `json:"partner_id"`
	TotalOriginal  decimal.Decimal `json:"total_original"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	Debts          []DebtResponse  `json:"debts"`
}

// ToPaymentResponse converts a domain payment record
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		TargetType: p.TargetType,
		TargetID:   p.TargetID,
		Amount:     p.Amount,
		Method:     p.Method,
		AccountID:  p.AccountID,
		IsDeposit:  p.IsDeposit,
		Note:       p.Note,
		PaidAt:     p.PaidAt,
	}
}

// ToDebtResponse converts a domain debt row
func ToDebtResponse(d *finance.PartnerDebt) DebtResponse {
	return DebtResponse{
		ID:             d.ID,
		PartnerID:      d.PartnerID,
		PartnerType:    d.PartnerType,
		SourceOrderID:  d.SourceOrderID,
		OriginalAmount: d.OriginalAmount,
		PaidAmount:     d.PaidAmount,
		Remaining:      d.Remaining(),
		Status:         d.Status,
		DueDate:        d.DueDate,
	}
}
