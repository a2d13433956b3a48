package service

import (
	"context"
	"fmt"
	"time"

	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/navafv/digital-thread-tailor-app/prometheus"
	"gorm.io/gorm"
)

// PortalService serves the read-only views a client sees of their own records
type PortalService struct {
	base
}

// NewPortalService creates a portal service backed by db
func NewPortalService(db *gorm.DB, opts ...Option) *PortalService {
	return &PortalService{base: newBase(db, opts)}
}

// PortalDashboard is the client's landing page
type PortalDashboard struct {
	Customer              model.Customer      `json:"customer"`
	Orders                []model.Order       `json:"orders"`
	PendingOrders         int                 `json:"pending_orders"`
	CompletedOrders       int                 `json:"completed_orders"`
	ConfirmedAppointments []model.Appointment `json:"confirmed_appointments"`
	RequestedAppointments []model.Appointment `json:"requested_appointments"`
}

// Dashboard returns the client's orders and upcoming appointments
func (s *PortalService) Dashboard(ctx context.Context, who model.Identity) (*PortalDashboard, error) {
	tenantID, customerID, err := clientScope(who)
	if err != nil {
		return nil, err
	}
	defer prometheus.TrackDBOperation("portal_dashboard")(time.Now())

	db := s.conn(ctx)
	customer, err := s.customer(db, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	orders, err := customerOrders(db, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	var appointments []model.Appointment
	if err := db.Where("tailor_id = ? AND customer_id = ? AND status IN ?", tenantID, customerID,
		[]string{string(model.AppointmentConfirmed), string(model.AppointmentRequested)}).
		Order("start_time ASC").
		Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("portal appointments: %w", err)
	}

	d := &PortalDashboard{
		Customer:              *customer,
		Orders:                orders,
		ConfirmedAppointments: []model.Appointment{},
		RequestedAppointments: []model.Appointment{},
	}
	for _, o := range orders {
		switch o.Status {
		case model.OrderPending, model.OrderInProgress:
			d.PendingOrders++
		case model.OrderCompleted:
			d.CompletedOrders++
		case model.OrderCancelled:
		}
	}
	for _, a := range appointments {
		if a.Status == model.AppointmentConfirmed {
			d.ConfirmedAppointments = append(d.ConfirmedAppointments, a)
		} else {
			d.RequestedAppointments = append(d.RequestedAppointments, a)
		}
	}
	return d, nil
}

// Orders lists the client's orders, newest first
func (s *PortalService) Orders(ctx context.Context, who model.Identity) ([]model.Order, error) {
	tenantID, customerID, err := clientScope(who)
	if err != nil {
		return nil, err
	}
	return customerOrders(s.conn(ctx), tenantID, customerID)
}

// Order returns one of the client's own orders with its checklist and images
func (s *PortalService) Order(ctx context.Context, who model.Identity, id uint) (*model.Order, error) {
	tenantID, customerID, err := clientScope(who)
	if err != nil {
		return nil, err
	}
	var order model.Order
	tx := s.conn(ctx).
		Preload("Tasks", orderByIndex).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
	if err := loadOwned(tx, tenantID, "order", id, &order); err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, apperr.Forbidden("order", id)
	}
	return &order, nil
}

// Profile returns the client's customer record with measurements
func (s *PortalService) Profile(ctx context.Context, who model.Identity) (*model.Customer, error) {
	tenantID, customerID, err := clientScope(who)
	if err != nil {
		return nil, err
	}
	tx := s.conn(ctx).Preload("Measurements", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	})
	return s.customer(tx, tenantID, customerID)
}

func (s *PortalService) customer(db *gorm.DB, tenantID, customerID uint) (*model.Customer, error) {
	var customer model.Customer
	if err := loadOwned(db, tenantID, "customer", customerID, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func customerOrders(db *gorm.DB, tenantID, customerID uint) ([]model.Order, error) {
	orders := []model.Order{}
	if err := db.Where("tailor_id = ? AND customer_id = ?", tenantID, customerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("customer orders: %w", err)
	}
	return orders, nil
}
