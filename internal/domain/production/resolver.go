package production

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/catalog"
)

// LineDemand is one (item, quantity) pair to resolve into materials
type LineDemand struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// MaterialRequirement is an aggregated material need across all resolved
// lines
type MaterialRequirement struct {
	MaterialItemID uuid.UUID       `json:"material_item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// ResolutionResult carries the aggregated requirements plus the finished
// items that had no bill of materials and were skipped instead of aborting
// the trigger.
type ResolutionResult struct {
	Requirements []MaterialRequirement
	SkippedItems []uuid.UUID
}

// ResolveMaterials turns order line demands into aggregated material
// requirements. Raw materials sold directly resolve to themselves; finished
// items resolve through their BOM scaled by the demanded quantity. A
// finished item with no BOM entry is skipped and reported, not fatal.
// Requirements for the same material sum additively across lines.
func ResolveMaterials(demands []LineDemand, kinds map[uuid.UUID]catalog.ItemKind, bom map[uuid.UUID][]*BOMEntry) ResolutionResult {
	totals := make(map[uuid.UUID]decimal.Decimal)
	var skipped []uuid.UUID

	for _, demand := range demands {
		if kinds[demand.ItemID] == catalog.ItemKindRawMaterial {
			totals[demand.ItemID] = totals[demand.ItemID].Add(demand.Quantity)
			continue
		}
		entries := bom[demand.ItemID]
		if len(entries) == 0 {
			skipped = append(skipped, demand.ItemID)
			continue
		}
		for _, entry := range entries {
			required := entry.QuantityPerUnit.Mul(demand.Quantity)
			totals[entry.MaterialItemID] = totals[entry.MaterialItemID].Add(required)
		}
	}

	requirements := make([]MaterialRequirement, 0, len(totals))
	for materialID, quantity := range totals {
		requirements = append(requirements, MaterialRequirement{
			MaterialItemID: materialID,
			Quantity:       quantity,
		})
	}
	// deterministic output for tests and stable persistence order
	sort.Slice(requirements, func(i, j int) bool {
		return requirements[i].MaterialItemID.String() < requirements[j].MaterialItemID.String()
	})

	return ResolutionResult{Requirements: requirements, SkippedItems: skipped}
}
