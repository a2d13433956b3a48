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

// SupplierInput is the editable part of a supplier
type SupplierInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
}

// CreateSupplier adds a supplier for the acting tailor
func (s *CatalogService) CreateSupplier(ctx context.Context, who model.Identity, in SupplierInput) (*model.Supplier, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	prometheus.RecordOperation("supplier", "create")
	defer prometheus.TrackDBOperation("insert")(time.Now())

	supplier := model.Supplier{
		TailorID:      tenantID,
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: in.ContactPerson,
		Email:         in.Email,
		Phone:         in.Phone,
	}
	if err := s.conn(ctx).Create(&supplier).Error; err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return &supplier, nil
}

// UpdateSupplier replaces the editable fields of a supplier
func (s *CatalogService) UpdateSupplier(ctx context.Context, who model.Identity, id uint, in SupplierInput) (*model.Supplier, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	prometheus.RecordOperation("supplier", "update")
	defer prometheus.TrackDBOperation("update")(time.Now())

	var supplier model.Supplier
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOwned(tx, tenantID, "supplier", id, &supplier); err != nil {
			return err
		}
		supplier.Name = strings.TrimSpace(in.Name)
		supplier.ContactPerson = in.ContactPerson
		supplier.Email = in.Email
		supplier.Phone = in.Phone
		return tx.Save(&supplier).Error
	})
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// GetSupplier returns one supplier
func (s *CatalogService) GetSupplier(ctx context.Context, who model.Identity, id uint) (*model.Supplier, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	var supplier model.Supplier
	if err := loadOwned(s.conn(ctx), tenantID, "supplier", id, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// ListSuppliers returns the tailor's suppliers by name
func (s *CatalogService) ListSuppliers(ctx context.Context, who model.Identity) ([]model.Supplier, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	var suppliers []model.Supplier
	if err := s.conn(ctx).Where("tailor_id = ?", tenantID).Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// DeleteSupplier soft-deletes a supplier and detaches its inventory items
func (s *CatalogService) DeleteSupplier(ctx context.Context, who model.Identity, id uint) error {
	tenantID, err := tailorScope(who)
	if err != nil {
		return err
	}
	prometheus.RecordOperation("supplier", "delete")
	defer prometheus.TrackDBOperation("delete")(time.Now())

	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var supplier model.Supplier
		if err := loadOwned(tx, tenantID, "supplier", id, &supplier); err != nil {
			return err
		}
		if err := tx.Model(&model.InventoryItem{}).
			Where("supplier_id = ?", supplier.ID).
			Update("supplier_id", nil).Error; err != nil {
			return fmt.Errorf("detach inventory: %w", err)
		}
		return tx.Delete(&supplier).Error
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("Supplier deleted",
		zap.Uint("id", id),
		zap.Uint("tenant_id", tenantID))
	return nil
}

// InventoryInput is the editable part of an inventory item.
// A nil ReorderLevel means model.DefaultReorderLevel.
type InventoryInput struct {
	SupplierID      *uint
	Name            string
	Description     string
	QuantityInStock decimal.Decimal
	Unit            string
	CostPerUnit     decimal.Decimal
	ReorderLevel    *decimal.Decimal
}

func (in InventoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Invalid("name", "is required")
	}
	if in.QuantityInStock.IsNegative() {
		return apperr.Invalid("quantity_in_stock", "must not be negative")
	}
	if in.CostPerUnit.IsNegative() {
		return apperr.Invalid("cost_per_unit", "must not be negative")
	}
	if in.ReorderLevel != nil && in.ReorderLevel.IsNegative() {
		return apperr.Invalid("reorder_level", "must not be negative")
	}
	return nil
}

func (in InventoryInput) apply(item *model.InventoryItem) {
	item.SupplierID = in.SupplierID
	item.Name = strings.TrimSpace(in.Name)
	item.Description = in.Description
	item.QuantityInStock = in.QuantityInStock
	item.Unit = in.Unit
	item.CostPerUnit = in.CostPerUnit
	if in.ReorderLevel != nil {
		item.ReorderLevel = *in.ReorderLevel
	} else {
		item.ReorderLevel = decimal.NewFromInt(model.DefaultReorderLevel)
	}
}

func checkSupplier(tx *gorm.DB, tenantID uint, supplierID *uint) error {
	if supplierID == nil {
		return nil
	}
	var supplier model.Supplier
	return loadOwned(tx, tenantID, "supplier", *supplierID, &supplier)
}

// CreateInventoryItem adds a stocked material
func (s *CatalogService) CreateInventoryItem(ctx context.Context, who model.Identity, in InventoryInput) (*model.InventoryItem, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	prometheus.RecordOperation("inventory", "create")
	defer prometheus.TrackDBOperation("insert")(time.Now())

	item := model.InventoryItem{TailorID: tenantID}
	in.apply(&item)
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSupplier(tx, tenantID, in.SupplierID); err != nil {
			return err
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateInventoryItem replaces the editable fields of an inventory item
func (s *CatalogService) UpdateInventoryItem(ctx context.Context, who model.Identity, id uint, in InventoryInput) (*model.InventoryItem, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	prometheus.RecordOperation("inventory", "update")
	defer prometheus.TrackDBOperation("update")(time.Now())

	var item model.InventoryItem
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOwned(tx, tenantID, "inventory item", id, &item); err != nil {
			return err
		}
		if err := checkSupplier(tx, tenantID, in.SupplierID); err != nil {
			return err
		}
		in.apply(&item)
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetInventoryItem returns one inventory item with its supplier
func (s *CatalogService) GetInventoryItem(ctx context.Context, who model.Identity, id uint) (*model.InventoryItem, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	var item model.InventoryItem
	if err := loadOwned(s.conn(ctx).Preload("Supplier"), tenantID, "inventory item", id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListInventory returns all inventory items by name
func (s *CatalogService) ListInventory(ctx context.Context, who model.Identity) ([]model.InventoryItem, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	var items []model.InventoryItem
	if err := s.conn(ctx).Preload("Supplier").
		Where("tailor_id = ?", tenantID).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return items, nil
}

// LowStock returns items at or below their reorder level, scarcest first
func (s *CatalogService) LowStock(ctx context.Context, who model.Identity) ([]model.InventoryItem, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	return lowStockItems(s.conn(ctx), tenantID)
}

func lowStockItems(db *gorm.DB, tenantID uint) ([]model.InventoryItem, error) {
	defer prometheus.TrackDBOperation("low_stock")(time.Now())

	items := []model.InventoryItem{}
	if err := db.Where("tailor_id = ? AND quantity_in_stock <= reorder_level", tenantID).
		Order("quantity_in_stock ASC").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return items, nil
}
