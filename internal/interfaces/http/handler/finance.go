package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appfinance "github.com/atelier-erp/backend/internal/application/finance"
	"github.com/atelier-erp/backend/internal/domain/finance"
	"github.com/atelier-erp/backend/internal/interfaces/http/middleware"
)

// FinanceHandler handles payment and debt endpoints
type FinanceHandler struct {
	BaseHandler
	payments *appfinance.PaymentService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(payments *appfinance.PaymentService) *FinanceHandler {
	return &FinanceHandler{payments: payments}
}

// RecordPayment applies money to an order, a partner's general debt, or a
// specific debt row
func (h *FinanceHandler) RecordPayment(c *gin.Context) {
	var req appfinance.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	result, err := h.payments.RecordPayment(c.Request.Context(), req, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetDebtSummary aggregates a partner's outstanding position
func (h *FinanceHandler) GetDebtSummary(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	summary, err := h.payments.GetDebtSummary(c.Request.Context(), partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// GetPaymentsByTarget lists the payment history of one target
func (h *FinanceHandler) GetPaymentsByTarget(c *gin.Context) {
	targetType := finance.PaymentTargetType(c.Query("target_type"))
	if !targetType.IsValid() {
		h.BadRequest(c, "Invalid payment target type")
		return
	}

	targetID, err := uuid.Parse(c.Query("target_id"))
	if err != nil {
		h.BadRequest(c, "Invalid target ID format")
		return
	}

	payments, err := h.payments.GetPaymentsByTarget(c.Request.Context(), finance.PaymentTarget{
		Type: targetType,
		ID:   targetID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
