package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultReorderLevel applies when an inventory item is created without one
const DefaultReorderLevel = 10

// Supplier provides fabric and notions to a tailor
type Supplier struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	TailorID      uint           `json:"tailor_id" gorm:"index;not null"`
	Name          string         `json:"name" gorm:"type:varchar(100);index;not null"`
	ContactPerson string         `json:"contact_person" gorm:"type:varchar(100)"`
	Email         string         `json:"email" gorm:"type:varchar(100)"`
	Phone         string         `json:"phone" gorm:"type:varchar(20)"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// InventoryItem is a stocked material. Quantities are decimal (metres of fabric, spools).
type InventoryItem struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	TailorID        uint            `json:"tailor_id" gorm:"index;not null"`
	SupplierID      *uint           `json:"supplier_id,omitempty" gorm:"index"`
	Supplier        *Supplier       `json:"supplier,omitempty"`
	Name            string          `json:"name" gorm:"type:varchar(100);not null"`
	Description     string          `json:"description" gorm:"type:text"`
	QuantityInStock decimal.Decimal `json:"quantity_in_stock" gorm:"type:numeric(10,2);not null"`
	Unit            string          `json:"unit" gorm:"type:varchar(20)"`
	CostPerUnit     decimal.Decimal `json:"cost_per_unit" gorm:"type:numeric(10,2);not null"`
	ReorderLevel    decimal.Decimal `json:"reorder_level" gorm:"type:numeric(10,2);not null"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsLowStock reports whether the stock has fallen to the reorder level
func (i InventoryItem) IsLowStock() bool {
	return i.QuantityInStock.LessThanOrEqual(i.ReorderLevel)
}
