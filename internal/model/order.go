package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order is one garment-production job for a customer
type Order struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	TailorID      uint            `json:"tailor_id" gorm:"index;not null"`
	CustomerID    uint            `json:"customer_id" gorm:"index;not null"`
	Customer      *Customer       `json:"customer,omitempty"`
	Item          string          `json:"item" gorm:"type:varchar(200);not null"`
	FabricDetails string          `json:"fabric_details" gorm:"type:text"`
	Notes         string          `json:"notes" gorm:"type:text"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null"`
	DueDate       time.Time       `json:"due_date" gorm:"type:date;index;not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	AmountPaid    decimal.Decimal `json:"amount_paid" gorm:"type:numeric(10,2);not null"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	Tasks         []OrderTask     `json:"tasks,omitempty"`
	Images        []OrderImage    `json:"images,omitempty"`
	Materials     []OrderMaterial `json:"materials,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BalanceDue is price minus amount paid. Overpayment gives a negative balance.
func (o Order) BalanceDue() decimal.Decimal {
	return o.Price.Sub(o.AmountPaid)
}

// SetStatus changes the status and keeps CompletedAt in step with it
func (o *Order) SetStatus(status OrderStatus, now time.Time) {
	if status == o.Status {
		return
	}
	o.Status = status
	if status == OrderCompleted {
		t := now
		o.CompletedAt = &t
	} else {
		o.CompletedAt = nil
	}
}

// MarshalJSON adds the derived balance_due to the stored fields
func (o Order) MarshalJSON() ([]byte, error) {
	type orderAlias Order
	return json.Marshal(struct {
		orderAlias
		BalanceDue decimal.Decimal `json:"balance_due"`
	}{
		orderAlias: orderAlias(o),
		BalanceDue: o.BalanceDue(),
	})
}

// OrderTask is a checklist step instantiated on an order from a task definition.
// Name and OrderIndex are copied so the task survives template deletion.
type OrderTask struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	TailorID         uint       `json:"tailor_id" gorm:"index;not null"`
	OrderID          uint       `json:"order_id" gorm:"index;not null"`
	TaskDefinitionID *uint      `json:"task_definition_id,omitempty" gorm:"index"`
	Name             string     `json:"name" gorm:"type:varchar(100);not null"`
	OrderIndex       int        `json:"order_index" gorm:"not null"`
	IsCompleted      bool       `json:"is_completed" gorm:"not null"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SetCompleted flips the task and stamps or clears CompletedAt.
// It reports whether anything changed.
func (t *OrderTask) SetCompleted(completed bool, now time.Time) bool {
	if t.IsCompleted == completed {
		return false
	}
	t.IsCompleted = completed
	if completed {
		ts := now
		t.CompletedAt = &ts
	} else {
		t.CompletedAt = nil
	}
	return true
}

// OrderImage references an uploaded photo of the garment
type OrderImage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TailorID  uint      `json:"tailor_id" gorm:"index;not null"`
	OrderID   uint      `json:"order_id" gorm:"index;not null"`
	ImageURL  string    `json:"image_url" gorm:"type:varchar(500);not null"`
	Caption   string    `json:"caption" gorm:"type:varchar(200)"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderMaterial records inventory consumed by an order
type OrderMaterial struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	TailorID        uint            `json:"tailor_id" gorm:"index;not null"`
	OrderID         uint            `json:"order_id" gorm:"not null;uniqueIndex:idx_order_materials_order_item,priority:1"`
	InventoryItemID uint            `json:"inventory_item_id" gorm:"not null;uniqueIndex:idx_order_materials_order_item,priority:2"`
	InventoryItem   *InventoryItem  `json:"inventory_item,omitempty"`
	QuantityUsed    decimal.Decimal `json:"quantity_used" gorm:"type:numeric(10,2);not null"`
	CreatedAt       time.Time       `json:"created_at"`
}
