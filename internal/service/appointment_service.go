package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/navafv/digital-thread-tailor-app/pkg/logger"
	"github.com/navafv/digital-thread-tailor-app/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppointmentService books fittings between tailors and their customers
type AppointmentService struct {
	base
}

// NewAppointmentService creates an appointment service backed by db
func NewAppointmentService(db *gorm.DB, opts ...Option) *AppointmentService {
	return &AppointmentService{base: newBase(db, opts)}
}

// AppointmentInput describes a slot. CustomerID is ignored for client requests.
type AppointmentInput struct {
	CustomerID uint
	Title      string
	StartTime  time.Time
	EndTime    time.Time
	Notes      string
}

func (in AppointmentInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Invalid("title", "is required")
	}
	if in.StartTime.IsZero() {
		return apperr.Invalid("start_time", "is required")
	}
	if !in.EndTime.After(in.StartTime) {
		return apperr.Invalid("end_time", "must be after start_time")
	}
	return nil
}

func (in AppointmentInput) build(tenantID, customerID uint, status model.AppointmentStatus) model.Appointment {
	return model.Appointment{
		TailorID:   tenantID,
		CustomerID: customerID,
		Title:      strings.TrimSpace(in.Title),
		StartTime:  in.StartTime.UTC(),
		EndTime:    in.EndTime.UTC(),
		Status:     status,
		Notes:      in.Notes,
	}
}

// CreateAppointment books a slot on behalf of the tailor; it starts Confirmed
func (s *AppointmentService) CreateAppointment(ctx context.Context, who model.Identity, in AppointmentInput) (*model.Appointment, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	prometheus.RecordOperation("appointment", "create")
	defer prometheus.TrackDBOperation("insert")(time.Now())

	appointment := in.build(tenantID, in.CustomerID, model.AppointmentConfirmed)
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := loadOwned(tx, tenantID, "customer", in.CustomerID, &customer); err != nil {
			return err
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// RequestAppointment lets a client ask their tailor for a slot; it starts Requested
func (s *AppointmentService) RequestAppointment(ctx context.Context, who model.Identity, in AppointmentInput) (*model.Appointment, error) {
	tenantID, customerID, err := clientScope(who)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	prometheus.RecordOperation("appointment", "request")
	defer prometheus.TrackDBOperation("insert")(time.Now())

	appointment := in.build(tenantID, customerID, model.AppointmentRequested)
	if err := s.conn(ctx).Create(&appointment).Error; err != nil {
		return nil, fmt.Errorf("request appointment: %w", err)
	}

	logger.FromContext(ctx).Info("Appointment requested",
		zap.Uint("id", appointment.ID),
		zap.Uint("customer_id", customerID),
		zap.Uint("tenant_id", tenantID))
	return &appointment, nil
}

// UpdateAppointmentStatus moves an appointment to Confirmed, Cancelled or
// Completed. Requested is only ever the initial state.
func (s *AppointmentService) UpdateAppointmentStatus(ctx context.Context, who model.Identity, id uint, status string) (*model.Appointment, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	target, err := model.ParseAppointmentStatus(status)
	if err != nil {
		return nil, apperr.Invalid("status", "%q is not a valid appointment status", status)
	}
	switch target {
	case model.AppointmentConfirmed, model.AppointmentCancelled, model.AppointmentCompleted:
	case model.AppointmentRequested:
		return nil, apperr.Invalid("status", "an appointment cannot be moved back to Requested")
	}
	prometheus.RecordOperation("appointment", "update_status")

	var appointment model.Appointment
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOwned(tx, tenantID, "appointment", id, &appointment); err != nil {
			return err
		}
		appointment.Status = target
		return tx.Model(&appointment).Update("status", target).Error
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// ListAppointments returns the tailor's appointments by start time,
// optionally filtered by status
func (s *AppointmentService) ListAppointments(ctx context.Context, who model.Identity, status string) ([]model.Appointment, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	q := s.conn(ctx).Preload("Customer").Where("tailor_id = ?", tenantID)
	if status != "" {
		st, err := model.ParseAppointmentStatus(status)
		if err != nil {
			return nil, apperr.Invalid("status", "%q is not a valid appointment status", status)
		}
		q = q.Where("status = ?", string(st))
	}

	appointments := []model.Appointment{}
	if err := q.Order("start_time ASC").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}
