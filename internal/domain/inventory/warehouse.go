package inventory

import (
	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WarehouseType classifies what a warehouse may hold
type WarehouseType string

const (
	WarehouseTypeRawMaterial   WarehouseType = "RAW_MATERIAL"
	WarehouseTypeFinishedGoods WarehouseType = "FINISHED_GOODS"
	WarehouseTypeMixed         WarehouseType = "MIXED"
)

// IsValid checks if the type is a valid WarehouseType
func (t WarehouseType) IsValid() bool {
	switch t {
	case WarehouseTypeRawMaterial, WarehouseTypeFinishedGoods, WarehouseTypeMixed:
		return true
	}
	return false
}

// String returns the string representation of WarehouseType
func (t WarehouseType) String() string {
	return string(t)
}

// HoldsFinishedGoods returns true if the warehouse can hold sellable
// finished items. Only these warehouses count when deciding whether an
// order can skip production.
func (t WarehouseType) HoldsFinishedGoods() bool {
	return t == WarehouseTypeFinishedGoods || t == WarehouseTypeMixed
}

// Warehouse is a read-only registry entity within this core: the warehouse
// registry is owned by an external collaborator and the fulfillment engine
// never mutates its definitional fields.
type Warehouse struct {
	shared.BaseEntity
	Name     string        `gorm:"type:varchar(200);not null"`
	Type     WarehouseType `gorm:"type:varchar(20);not null"`
	BranchID uuid.UUID     `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}
