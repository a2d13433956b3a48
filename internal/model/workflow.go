package model

import "time"

// WorkflowTemplate is a reusable checklist for a garment type
type WorkflowTemplate struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	TailorID    uint             `json:"tailor_id" gorm:"index;not null"`
	Name        string           `json:"name" gorm:"type:varchar(100);not null"`
	Definitions []TaskDefinition `json:"definitions" gorm:"foreignKey:TemplateID"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TaskDefinition is one step of a template. OrderIndex gives the display sequence.
type TaskDefinition struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	TemplateID uint   `json:"template_id" gorm:"index;not null"`
	Name       string `json:"name" gorm:"type:varchar(100);not null"`
	OrderIndex int    `json:"order_index" gorm:"not null"`
}
