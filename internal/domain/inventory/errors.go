package inventory

import (
	"fmt"
	"strings"

	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shortage itemizes one line of an insufficient-stock failure
type Shortage struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
}

// InsufficientStockError reports an export or evaluation shortfall with an
// itemized breakdown so the caller can remediate (restock, pick another
// warehouse). It is never retried automatically.
type InsufficientStockError struct {
	Shortages []Shortage
}

// NewInsufficientStockError creates an itemized insufficient-stock error
func NewInsufficientStockError(shortages []Shortage) *InsufficientStockError {
	return &InsufficientStockError{Shortages: shortages}
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		parts[i] = fmt.Sprintf("item %s: required %s, available %s", s.ItemID, s.Required, s.Available)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match the shared sentinel and the HTTP layer map
// the error kind without knowing this type
func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}
