package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinventory "github.com/atelier-erp/backend/internal/application/inventory"
	"github.com/atelier-erp/backend/internal/interfaces/http/middleware"
)

// InventoryHandler handles stock evaluation and movement endpoints
type InventoryHandler struct {
	BaseHandler
	stock *appinventory.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stock *appinventory.StockService) *InventoryHandler {
	return &InventoryHandler{stock: stock}
}

// ReceiveStockRequest adds quantity to an item's balance in a warehouse
type ReceiveStockRequest struct {
	ItemID      uuid.UUID       `json:"item_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// EvaluateStock reports per-warehouse fulfillment for a set of items
func (h *InventoryHandler) EvaluateStock(c *gin.Context) {
	var req appinventory.EvaluateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	report, err := h.stock.EvaluateStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ReceiveStock increases an item's balance in a warehouse
func (h *InventoryHandler) ReceiveStock(c *gin.Context) {
	var req ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	balance, err := h.stock.ReceiveStock(c.Request.Context(), req.ItemID, req.WarehouseID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// GetWarehouseBalances lists the balance rows of one warehouse
func (h *InventoryHandler) GetWarehouseBalances(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	balances, err := h.stock.GetWarehouseBalances(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balances)
}

// GetExportsByOrder lists the export transactions recorded for an order
func (h *InventoryHandler) GetExportsByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	exports, err := h.stock.GetExportsByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, exports)
}
