package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsales "github.com/atelier-erp/backend/internal/application/sales"
	"github.com/atelier-erp/backend/internal/interfaces/http/middleware"
)

// FulfillmentHandler handles sales order lifecycle endpoints
type FulfillmentHandler struct {
	BaseHandler
	fulfillment *appsales.FulfillmentService
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(fulfillment *appsales.FulfillmentService) *FulfillmentHandler {
	return &FulfillmentHandler{fulfillment: fulfillment}
}

// Create creates a new sales order in PENDING state
func (h *FulfillmentHandler) Create(c *gin.Context) {
	var req appsales.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.fulfillment.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID retrieves a sales order
func (h *FulfillmentHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.fulfillment.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List retrieves sales orders with filtering and pagination
func (h *FulfillmentHandler) List(c *gin.Context) {
	var filter appsales.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		h.BadRequest(c, "Invalid order status")
		return
	}

	page, err := h.fulfillment.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Confirm transitions the order PENDING -> CONFIRMED
func (h *FulfillmentHandler) Confirm(c *gin.Context) {
	h.transition(c, h.fulfillment.Confirm)
}

// Cancel transitions the order PENDING -> CANCELLED
func (h *FulfillmentHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req appsales.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.fulfillment.Cancel(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// EvaluateProductionNeed reports whether the order needs manufacturing
func (h *FulfillmentHandler) EvaluateProductionNeed(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	need, err := h.fulfillment.EvaluateProductionNeed(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, need)
}

// StartProduction transitions PAID -> IN_PRODUCTION and creates the
// production order
func (h *FulfillmentHandler) StartProduction(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	result, err := h.fulfillment.StartProduction(c.Request.Context(), orderID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// MarkReadyToExport transitions PAID or IN_PRODUCTION -> READY_TO_EXPORT
func (h *FulfillmentHandler) MarkReadyToExport(c *gin.Context) {
	h.transition(c, h.fulfillment.SkipToReadyToExport)
}

// Export moves the order's goods out of a warehouse and marks it EXPORTED
func (h *FulfillmentHandler) Export(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req appsales.ExportOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	order, err := h.fulfillment.Export(c.Request.Context(), orderID, req, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Complete transitions EXPORTED -> COMPLETED
func (h *FulfillmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.fulfillment.Complete)
}

// transition runs a parameterless status transition on the path order id
func (h *FulfillmentHandler) transition(c *gin.Context, fn func(ctx context.Context, orderID uuid.UUID) (*appsales.OrderResponse, error)) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := fn(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
