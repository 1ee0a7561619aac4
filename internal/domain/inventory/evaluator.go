package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRequirement is one (item, required quantity) pair to evaluate
type ItemRequirement struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Required decimal.Decimal `json:"required"`
}

// ItemAvailability is the per-item outcome of an evaluation in one warehouse
type ItemAvailability struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Covered   bool            `json:"covered"`
}

// WarehouseFulfillment is the evaluation result for a single warehouse
type WarehouseFulfillment struct {
	WarehouseID uuid.UUID          `json:"warehouse_id"`
	CanFulfill  bool               `json:"can_fulfill"`
	Items       []ItemAvailability `json:"items"`
}

// Shortages returns the uncovered items as itemized shortages
func (f WarehouseFulfillment) Shortages() []Shortage {
	var shortages []Shortage
	for _, item := range f.Items {
		if !item.Covered {
			shortages = append(shortages, Shortage{
				ItemID:    item.ItemID,
				Required:  item.Required,
				Available: item.Available,
			})
		}
	}
	return shortages
}

// FulfillmentReport is the evaluation result across the queried warehouses
type FulfillmentReport struct {
	Warehouses []WarehouseFulfillment `json:"warehouses"`
}

// AnyCanFulfill returns true if at least one warehouse covers every
// requirement simultaneously
func (r FulfillmentReport) AnyCanFulfill() bool {
	for _, w := range r.Warehouses {
		if w.CanFulfill {
			return true
		}
	}
	return false
}

// ForWarehouse returns the fulfillment entry for one warehouse, or nil
func (r FulfillmentReport) ForWarehouse(warehouseID uuid.UUID) *WarehouseFulfillment {
	for i := range r.Warehouses {
		if r.Warehouses[i].WarehouseID == warehouseID {
			return &r.Warehouses[i]
		}
	}
	return nil
}

// Evaluate computes fulfillment per warehouse given the requirements and the
// balances on hand. It is a pure function of its inputs: callers load
// balances from the latest committed state without coordination and
// re-validate at commit time (export re-checks inside its transaction).
// Items with no balance row in a warehouse evaluate as available zero.
func Evaluate(requirements []ItemRequirement, warehouseIDs []uuid.UUID, balances []InventoryBalance) FulfillmentReport {
	onHand := make(map[uuid.UUID]map[uuid.UUID]decimal.Decimal, len(warehouseIDs))
	for _, wid := range warehouseIDs {
		onHand[wid] = make(map[uuid.UUID]decimal.Decimal)
	}
	for _, b := range balances {
		if _, ok := onHand[b.WarehouseID]; ok {
			onHand[b.WarehouseID][b.ItemID] = b.Quantity
		}
	}

	report := FulfillmentReport{Warehouses: make([]WarehouseFulfillment, 0, len(warehouseIDs))}
	for _, wid := range warehouseIDs {
		fulfillment := WarehouseFulfillment{
			WarehouseID: wid,
			CanFulfill:  true,
			Items:       make([]ItemAvailability, 0, len(requirements)),
		}
		for _, req := range requirements {
			available := onHand[wid][req.ItemID]
			covered := available.GreaterThanOrEqual(req.Required)
			if !covered {
				fulfillment.CanFulfill = false
			}
			fulfillment.Items = append(fulfillment.Items, ItemAvailability{
				ItemID:    req.ItemID,
				Required:  req.Required,
				Available: available,
				Covered:   covered,
			})
		}
		report.Warehouses = append(report.Warehouses, fulfillment)
	}
	return report
}
