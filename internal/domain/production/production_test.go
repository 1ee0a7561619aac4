package production

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-erp/backend/internal/domain/catalog"
)

func bomEntry(finishedID, materialID uuid.UUID, perUnit int64) *BOMEntry {
	return &BOMEntry{
		FinishedItemID:  finishedID,
		MaterialItemID:  materialID,
		QuantityPerUnit: decimal.NewFromInt(perUnit),
	}
}

func TestResolveMaterials(t *testing.T) {
	finished := uuid.New()
	fabric := uuid.New()
	thread := uuid.New()

	kinds := map[uuid.UUID]catalog.ItemKind{finished: catalog.ItemKindFinished}
	bom := map[uuid.UUID][]*BOMEntry{
		finished: {
			bomEntry(finished, fabric, 3),
			bomEntry(finished, thread, 2),
		},
	}

	t.Run("scales BOM by demanded quantity", func(t *testing.T) {
		result := ResolveMaterials(
			[]LineDemand{{ItemID: finished, Quantity: decimal.NewFromInt(4)}},
			kinds, bom,
		)
		require.Len(t, result.Requirements, 2)
		require.Empty(t, result.SkippedItems)

		byMaterial := map[uuid.UUID]decimal.Decimal{}
		for _, r := range result.Requirements {
			byMaterial[r.MaterialItemID] = r.Quantity
		}
		assert.True(t, byMaterial[fabric].Equal(decimal.NewFromInt(12)))
		assert.True(t, byMaterial[thread].Equal(decimal.NewFromInt(8)))
	})

	t.Run("raw material maps to itself", func(t *testing.T) {
		raw := uuid.New()
		result := ResolveMaterials(
			[]LineDemand{{ItemID: raw, Quantity: decimal.NewFromInt(7)}},
			map[uuid.UUID]catalog.ItemKind{raw: catalog.ItemKindRawMaterial},
			nil,
		)
		require.Len(t, result.Requirements, 1)
		assert.Equal(t, raw, result.Requirements[0].MaterialItemID)
		assert.True(t, result.Requirements[0].Quantity.Equal(decimal.NewFromInt(7)))
	})

	t.Run("sums requirements across lines additively", func(t *testing.T) {
		other := uuid.New()
		kinds := map[uuid.UUID]catalog.ItemKind{
			finished: catalog.ItemKindFinished,
			other:    catalog.ItemKindFinished,
		}
		multiBOM := map[uuid.UUID][]*BOMEntry{
			finished: {bomEntry(finished, fabric, 3)},
			other:    {bomEntry(other, fabric, 1)},
		}
		result := ResolveMaterials(
			[]LineDemand{
				{ItemID: finished, Quantity: decimal.NewFromInt(2)},
				{ItemID: other, Quantity: decimal.NewFromInt(5)},
			},
			kinds, multiBOM,
		)
		require.Len(t, result.Requirements, 1)
		assert.True(t, result.Requirements[0].Quantity.Equal(decimal.NewFromInt(11)))
	})

	t.Run("finished item without BOM is skipped, not fatal", func(t *testing.T) {
		noBOM := uuid.New()
		result := ResolveMaterials(
			[]LineDemand{
				{ItemID: finished, Quantity: decimal.NewFromInt(1)},
				{ItemID: noBOM, Quantity: decimal.NewFromInt(1)},
			},
			map[uuid.UUID]catalog.ItemKind{
				finished: catalog.ItemKindFinished,
				noBOM:    catalog.ItemKindFinished,
			},
			bom,
		)
		require.Len(t, result.SkippedItems, 1)
		assert.Equal(t, noBOM, result.SkippedItems[0])
		assert.Len(t, result.Requirements, 2)
	})
}

func TestNewProductionOrder(t *testing.T) {
	sourceID := uuid.New()
	materialID := uuid.New()
	requirements := []MaterialRequirement{
		{MaterialItemID: materialID, Quantity: decimal.NewFromInt(6)},
	}

	t.Run("valid", func(t *testing.T) {
		po, err := NewProductionOrder("PRO-2025-0001", sourceID, requirements)
		require.NoError(t, err)
		assert.Equal(t, ProductionStatusCreated, po.Status)
		assert.Equal(t, sourceID, po.SourceOrderID)
		assert.True(t, po.RequirementFor(materialID).Equal(decimal.NewFromInt(6)))
		assert.True(t, po.RequirementFor(uuid.New()).IsZero())

		events := po.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductionOrderCreated, events[0].EventType())
	})

	t.Run("empty code rejected", func(t *testing.T) {
		_, err := NewProductionOrder("", sourceID, requirements)
		assert.Error(t, err)
	})

	t.Run("non-positive material quantity rejected", func(t *testing.T) {
		_, err := NewProductionOrder("PRO-2025-0002", sourceID, []MaterialRequirement{
			{MaterialItemID: materialID, Quantity: decimal.Zero},
		})
		assert.Error(t, err)
	})
}

func TestProductionOrder_Lifecycle(t *testing.T) {
	po, err := NewProductionOrder("PRO-2025-0003", uuid.New(), nil)
	require.NoError(t, err)

	require.Error(t, po.Finish())

	require.NoError(t, po.Start())
	assert.Equal(t, ProductionStatusInProgress, po.Status)
	require.NotNil(t, po.StartedAt)

	require.Error(t, po.Start())

	require.NoError(t, po.Finish())
	assert.Equal(t, ProductionStatusFinished, po.Status)
	require.NotNil(t, po.FinishedAt)
}
