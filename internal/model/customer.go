package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer belongs to one tailor; the phone number is unique within that tailor
type Customer struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	TailorID        uint          `json:"tailor_id" gorm:"not null;uniqueIndex:idx_customers_tailor_phone,priority:1"`
	ClientAccountID *uint         `json:"client_account_id,omitempty" gorm:"uniqueIndex"`
	Name            string        `json:"name" gorm:"type:varchar(100);not null"`
	Phone           string        `json:"phone" gorm:"type:varchar(20);not null;uniqueIndex:idx_customers_tailor_phone,priority:2"`
	Email           string        `json:"email" gorm:"type:varchar(100)"`
	Address         string        `json:"address" gorm:"type:text"`
	Measurements    []Measurement `json:"measurements,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Measurement is a named body measurement (chest, waist, inseam...) of a customer
type Measurement struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	TailorID   uint            `json:"tailor_id" gorm:"index;not null"`
	CustomerID uint            `json:"customer_id" gorm:"index;not null"`
	Name       string          `json:"name" gorm:"type:varchar(50);not null"`
	Value      decimal.Decimal `json:"value" gorm:"type:numeric(5,2);not null"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
