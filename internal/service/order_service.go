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

// OrderService is the order ledger: orders, their images and the materials
// they consume from inventory.
type OrderService struct {
	base
}

// NewOrderService creates an order service backed by db
func NewOrderService(db *gorm.DB, opts ...Option) *OrderService {
	return &OrderService{base: newBase(db, opts)}
}

// OrderInput is the editable part of an order. An empty Status means
// Pending on create and "unchanged" on update.
type OrderInput struct {
	Item          string
	FabricDetails string
	Notes         string
	Status        string
	DueDate       time.Time
	Price         decimal.Decimal
	AmountPaid    decimal.Decimal
}

func (in OrderInput) validate() error {
	if strings.TrimSpace(in.Item) == "" {
		return apperr.Invalid("item", "is required")
	}
	if in.DueDate.IsZero() {
		return apperr.Invalid("due_date", "is required")
	}
	if err := validAmount("price", in.Price); err != nil {
		return err
	}
	return validAmount("amount_paid", in.AmountPaid)
}

// maxAmount is the first value a numeric(10,2) column cannot hold
var maxAmount = decimal.New(1, 8)

func validAmount(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return apperr.Invalid(field, "must not be negative")
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return apperr.Invalid(field, "must be less than %s", maxAmount)
	}
	if !d.Equal(d.Round(2)) {
		return apperr.Invalid(field, "must have at most 2 decimal places")
	}
	return nil
}

func parseStatusField(raw string) (model.OrderStatus, error) {
	status, err := model.ParseOrderStatus(raw)
	if err != nil {
		return "", apperr.Invalid("status", "%q is not a valid order status", raw)
	}
	return status, nil
}

// CreateOrder opens an order for one of the tailor's customers
func (s *OrderService) CreateOrder(ctx context.Context, who model.Identity, customerID uint, in OrderInput) (*model.Order, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	status := model.OrderPending
	if in.Status != "" {
		if status, err = parseStatusField(in.Status); err != nil {
			return nil, err
		}
	}
	prometheus.RecordOperation("order", "create")
	defer prometheus.TrackDBOperation("insert")(time.Now())

	order := model.Order{
		TailorID:      tenantID,
		CustomerID:    customerID,
		Item:          strings.TrimSpace(in.Item),
		FabricDetails: in.FabricDetails,
		Notes:         in.Notes,
		DueDate:       dateOnly(in.DueDate),
		Price:         in.Price,
		AmountPaid:    in.AmountPaid,
		Status:        model.OrderPending,
	}
	order.SetStatus(status, s.clock())

	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := loadOwned(tx, tenantID, "customer", customerID, &customer); err != nil {
			return err
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Order created",
		zap.Uint("id", order.ID),
		zap.Uint("customer_id", customerID),
		zap.Uint("tenant_id", tenantID))
	return &order, nil
}

// UpdateOrder replaces the editable fields of an order. A manual status edit
// is allowed in any direction; completed_at follows the status.
func (s *OrderService) UpdateOrder(ctx context.Context, who model.Identity, id uint, in OrderInput) (*model.Order, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	var status model.OrderStatus
	if in.Status != "" {
		if status, err = parseStatusField(in.Status); err != nil {
			return nil, err
		}
	}
	prometheus.RecordOperation("order", "update")
	defer prometheus.TrackDBOperation("update")(time.Now())

	var order model.Order
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOwned(tx, tenantID, "order", id, &order); err != nil {
			return err
		}
		order.Item = strings.TrimSpace(in.Item)
		order.FabricDetails = in.FabricDetails
		order.Notes = in.Notes
		order.DueDate = dateOnly(in.DueDate)
		order.Price = in.Price
		order.AmountPaid = in.AmountPaid
		if status != "" {
			order.SetStatus(status, s.clock())
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder returns an order with its customer, tasks in display order,
// images and materials
func (s *OrderService) GetOrder(ctx context.Context, who model.Identity, id uint) (*model.Order, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	var order model.Order
	if err := loadOwned(withOrderDetail(s.conn(ctx)), tenantID, "order", id, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the tailor's orders, newest first, optionally filtered by status
func (s *OrderService) ListOrders(ctx context.Context, who model.Identity, status string) ([]model.Order, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	q := s.conn(ctx).Preload("Customer").Where("tailor_id = ?", tenantID)
	if status != "" {
		st, err := parseStatusField(status)
		if err != nil {
			return nil, err
		}
		q = q.Where("status = ?", string(st))
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	orders := []model.Order{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ImageInput references an already-stored image
type ImageInput struct {
	ImageURL string
	Caption  string
}

// AttachImage links an image to an order
func (s *OrderService) AttachImage(ctx context.Context, who model.Identity, orderID uint, in ImageInput) (*model.OrderImage, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return nil, apperr.Invalid("image_url", "is required")
	}
	prometheus.RecordOperation("order_image", "create")

	image := model.OrderImage{
		TailorID: tenantID,
		OrderID:  orderID,
		ImageURL: strings.TrimSpace(in.ImageURL),
		Caption:  in.Caption,
	}
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := loadOwned(tx, tenantID, "order", orderID, &order); err != nil {
			return err
		}
		return tx.Create(&image).Error
	})
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// DetachImage removes an image from its order
func (s *OrderService) DetachImage(ctx context.Context, who model.Identity, imageID uint) error {
	tenantID, err := tailorScope(who)
	if err != nil {
		return err
	}
	prometheus.RecordOperation("order_image", "delete")

	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var image model.OrderImage
		if err := loadOwned(tx, tenantID, "order image", imageID, &image); err != nil {
			return err
		}
		return tx.Delete(&image).Error
	})
}

// AttachMaterial records quantity of an inventory item used by an order and
// takes it out of stock. Insufficient stock rejects the whole operation.
func (s *OrderService) AttachMaterial(ctx context.Context, who model.Identity, orderID, itemID uint, quantity decimal.Decimal) (*model.OrderMaterial, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if !quantity.IsPositive() {
		return nil, apperr.Invalid("quantity_used", "must be greater than zero")
	}
	prometheus.RecordOperation("order_material", "create")
	defer prometheus.TrackDBOperation("attach_material")(time.Now())

	material := model.OrderMaterial{
		TailorID:        tenantID,
		OrderID:         orderID,
		InventoryItemID: itemID,
		QuantityUsed:    quantity,
	}
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := loadOwned(tx, tenantID, "order", orderID, &order); err != nil {
			return err
		}
		var item model.InventoryItem
		if err := loadOwned(tx, tenantID, "inventory item", itemID, &item); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.OrderMaterial{}).
			Where("order_id = ? AND inventory_item_id = ?", orderID, itemID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check material: %w", err)
		}
		if count > 0 {
			return apperr.Invalid("inventory_item_id", "item is already attached to this order")
		}

		res := tx.Model(&model.InventoryItem{}).
			Where("id = ? AND quantity_in_stock >= ?", itemID, quantity).
			Update("quantity_in_stock", gorm.Expr("quantity_in_stock - ?", quantity))
		if res.Error != nil {
			return fmt.Errorf("consume stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Invalid("quantity_used", "only %s %s of %s in stock", item.QuantityInStock, item.Unit, item.Name)
		}
		return tx.Create(&material).Error
	})
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// DetachMaterial removes a material link and returns its quantity to stock
func (s *OrderService) DetachMaterial(ctx context.Context, who model.Identity, materialID uint) error {
	tenantID, err := tailorScope(who)
	if err != nil {
		return err
	}
	prometheus.RecordOperation("order_material", "delete")
	defer prometheus.TrackDBOperation("detach_material")(time.Now())

	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var material model.OrderMaterial
		if err := loadOwned(tx, tenantID, "order material", materialID, &material); err != nil {
			return err
		}
		if err := tx.Model(&model.InventoryItem{}).
			Where("id = ?", material.InventoryItemID).
			Update("quantity_in_stock", gorm.Expr("quantity_in_stock + ?", material.QuantityUsed)).Error; err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
		return tx.Delete(&material).Error
	})
}

func withOrderDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer").
		Preload("Tasks", orderByIndex).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Materials.InventoryItem")
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
