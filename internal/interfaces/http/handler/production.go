package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appproduction "github.com/atelier-erp/backend/internal/application/production"
)

// ProductionHandler handles production order endpoints
type ProductionHandler struct {
	BaseHandler
	production *appproduction.ProductionService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(production *appproduction.ProductionService) *ProductionHandler {
	return &ProductionHandler{production: production}
}

// GetByID retrieves a production order with its material lines
func (h *ProductionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid production order ID format")
		return
	}

	po, err := h.production.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// GetBySourceOrder lists the production orders created for a sales order
func (h *ProductionHandler) GetBySourceOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	orders, err := h.production.GetBySourceOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Start transitions the production order CREATED -> IN_PROGRESS
func (h *ProductionHandler) Start(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid production order ID format")
		return
	}

	po, err := h.production.Start(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// Finish transitions the production order IN_PROGRESS -> FINISHED
func (h *ProductionHandler) Finish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid production order ID format")
		return
	}

	po, err := h.production.Finish(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}
