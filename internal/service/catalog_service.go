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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService stores the tenant's reference data: customers and their
// measurements, suppliers, inventory and workflow templates.
type CatalogService struct {
	base
}

// NewCatalogService creates a catalog service backed by db
func NewCatalogService(db *gorm.DB, opts ...Option) *CatalogService {
	return &CatalogService{base: newBase(db, opts)}
}

// CustomerInput is the editable part of a customer
type CustomerInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

func (in CustomerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Invalid("name", "is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return apperr.Invalid("phone", "is required")
	}
	return nil
}

// CreateCustomer adds a customer to the acting tailor's book
func (s *CatalogService) CreateCustomer(ctx context.Context, who model.Identity, in CustomerInput) (*model.Customer, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	prometheus.RecordOperation("customer", "create")
	defer prometheus.TrackDBOperation("insert")(time.Now())

	customer := model.Customer{
		TailorID: tenantID,
		Name:     strings.TrimSpace(in.Name),
		Phone:    strings.TrimSpace(in.Phone),
		Email:    in.Email,
		Address:  in.Address,
	}

	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniquePhone(tx, tenantID, customer.Phone, 0); err != nil {
			return err
		}
		return tx.Create(&customer).Error
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Customer created",
		zap.Uint("id", customer.ID),
		zap.Uint("tenant_id", tenantID))
	return &customer, nil
}

// UpdateCustomer replaces the editable fields of a customer
func (s *CatalogService) UpdateCustomer(ctx context.Context, who model.Identity, id uint, in CustomerInput) (*model.Customer, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	prometheus.RecordOperation("customer", "update")
	defer prometheus.TrackDBOperation("update")(time.Now())

	var customer model.Customer
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOwned(tx, tenantID, "customer", id, &customer); err != nil {
			return err
		}
		phone := strings.TrimSpace(in.Phone)
		if err := ensureUniquePhone(tx, tenantID, phone, customer.ID); err != nil {
			return err
		}
		customer.Name = strings.TrimSpace(in.Name)
		customer.Phone = phone
		customer.Email = in.Email
		customer.Address = in.Address
		return tx.Save(&customer).Error
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetCustomer returns a customer with its measurements
func (s *CatalogService) GetCustomer(ctx context.Context, who model.Identity, id uint) (*model.Customer, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	var customer model.Customer
	tx := s.conn(ctx).Preload("Measurements", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	})
	if err := loadOwned(tx, tenantID, "customer", id, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListCustomers returns the tailor's customers by name
func (s *CatalogService) ListCustomers(ctx context.Context, who model.Identity) ([]model.Customer, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	var customers []model.Customer
	if err := s.conn(ctx).Where("tailor_id = ?", tenantID).Order("name ASC").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func ensureUniquePhone(tx *gorm.DB, tenantID uint, phone string, exceptID uint) error {
	var count int64
	q := tx.Model(&model.Customer{}).Where("tailor_id = ? AND phone = ?", tenantID, phone)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check phone: %w", err)
	}
	if count > 0 {
		return apperr.Invalid("phone", "a customer with this phone number already exists")
	}
	return nil
}

// MeasurementInput carries the raw form value so non-numeric input is
// rejected here rather than at the transport.
type MeasurementInput struct {
	Name  string
	Value string
}

func (in MeasurementInput) parse() (string, decimal.Decimal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", decimal.Zero, apperr.Invalid("name", "is required")
	}
	value, err := decimal.NewFromString(strings.TrimSpace(in.Value))
	if err != nil {
		return "", decimal.Zero, apperr.Invalid("value", "%q is not a number", in.Value)
	}
	if value.IsNegative() {
		return "", decimal.Zero, apperr.Invalid("value", "must not be negative")
	}
	return name, value, nil
}

// AddMeasurement records a measurement for a customer
func (s *CatalogService) AddMeasurement(ctx context.Context, who model.Identity, customerID uint, in MeasurementInput) (*model.Measurement, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	name, value, err := in.parse()
	if err != nil {
		return nil, err
	}
	prometheus.RecordOperation("measurement", "create")

	measurement := model.Measurement{TailorID: tenantID, CustomerID: customerID, Name: name, Value: value}
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := loadOwned(tx, tenantID, "customer", customerID, &customer); err != nil {
			return err
		}
		return tx.Create(&measurement).Error
	})
	if err != nil {
		return nil, err
	}
	return &measurement, nil
}

// UpdateMeasurement changes a measurement's name and value
func (s *CatalogService) UpdateMeasurement(ctx context.Context, who model.Identity, id uint, in MeasurementInput) (*model.Measurement, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	name, value, err := in.parse()
	if err != nil {
		return nil, err
	}
	prometheus.RecordOperation("measurement", "update")

	var measurement model.Measurement
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOwned(tx, tenantID, "measurement", id, &measurement); err != nil {
			return err
		}
		measurement.Name = name
		measurement.Value = value
		return tx.Save(&measurement).Error
	})
	if err != nil {
		return nil, err
	}
	return &measurement, nil
}

// DeleteMeasurement removes a measurement
func (s *CatalogService) DeleteMeasurement(ctx context.Context, who model.Identity, id uint) error {
	tenantID, err := tailorScope(who)
	if err != nil {
		return err
	}
	prometheus.RecordOperation("measurement", "delete")

	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var measurement model.Measurement
		if err := loadOwned(tx, tenantID, "measurement", id, &measurement); err != nil {
			return err
		}
		return tx.Delete(&measurement).Error
	})
}
