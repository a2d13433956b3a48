package model

import "time"

// Appointment is a fitting or consultation slot between a tailor and a customer
type Appointment struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	TailorID   uint              `json:"tailor_id" gorm:"index;not null"`
	CustomerID uint              `json:"customer_id" gorm:"index;not null"`
	Customer   *Customer         `json:"customer,omitempty"`
	Title      string            `json:"title" gorm:"type:varchar(200);not null"`
	StartTime  time.Time         `json:"start_time" gorm:"index;not null"`
	EndTime    time.Time         `json:"end_time" gorm:"not null"`
	Status     AppointmentStatus `json:"status" gorm:"type:varchar(20);index;not null"`
	Notes      string            `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
