package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/service"
	"github.com/shopspring/decimal"
)

// SupplierRequest is the body for supplier create and update
type SupplierRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

func (r SupplierRequest) input() service.SupplierInput {
	return service.SupplierInput{Name: r.Name, ContactPerson: r.ContactPerson, Email: r.Email, Phone: r.Phone}
}

// InventoryRequest is the body for inventory create and update
type InventoryRequest struct {
	SupplierID      *uint            `json:"supplier_id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	QuantityInStock decimal.Decimal  `json:"quantity_in_stock"`
	Unit            string           `json:"unit"`
	CostPerUnit     decimal.Decimal  `json:"cost_per_unit"`
	ReorderLevel    *decimal.Decimal `json:"reorder_level"`
}

func (r InventoryRequest) input() service.InventoryInput {
	return service.InventoryInput{
		SupplierID:      r.SupplierID,
		Name:            r.Name,
		Description:     r.Description,
		QuantityInStock: r.QuantityInStock,
		Unit:            r.Unit,
		CostPerUnit:     r.CostPerUnit,
		ReorderLevel:    r.ReorderLevel,
	}
}

// CreateSupplier handles POST /api/suppliers
func (h *Handler) CreateSupplier(c echo.Context) error {
	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	supplier, err := h.catalog.CreateSupplier(c.Request().Context(), identity(c), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier handles PUT /api/suppliers/:id
func (h *Handler) UpdateSupplier(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "supplier id")
	}
	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	supplier, err := h.catalog.UpdateSupplier(c.Request().Context(), identity(c), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, supplier)
}

// GetSupplier handles GET /api/suppliers/:id
func (h *Handler) GetSupplier(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "supplier id")
	}
	supplier, err := h.catalog.GetSupplier(c.Request().Context(), identity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, supplier)
}

// ListSuppliers handles GET /api/suppliers
func (h *Handler) ListSuppliers(c echo.Context) error {
	suppliers, err := h.catalog.ListSuppliers(c.Request().Context(), identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"suppliers": suppliers,
		"count":     len(suppliers),
	})
}

// DeleteSupplier handles DELETE /api/suppliers/:id
func (h *Handler) DeleteSupplier(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "supplier id")
	}
	if err := h.catalog.DeleteSupplier(c.Request().Context(), identity(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Supplier deleted successfully"})
}

// CreateInventoryItem handles POST /api/inventory
func (h *Handler) CreateInventoryItem(c echo.Context) error {
	var req InventoryRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	item, err := h.catalog.CreateInventoryItem(c.Request().Context(), identity(c), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// UpdateInventoryItem handles PUT /api/inventory/:id
func (h *Handler) UpdateInventoryItem(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "inventory item id")
	}
	var req InventoryRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	item, err := h.catalog.UpdateInventoryItem(c.Request().Context(), identity(c), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// GetInventoryItem handles GET /api/inventory/:id
func (h *Handler) GetInventoryItem(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "inventory item id")
	}
	item, err := h.catalog.GetInventoryItem(c.Request().Context(), identity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// ListInventory handles GET /api/inventory
func (h *Handler) ListInventory(c echo.Context) error {
	items, err := h.catalog.ListInventory(c.Request().Context(), identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"count": len(items),
	})
}

// LowStock handles GET /api/inventory/low-stock
func (h *Handler) LowStock(c echo.Context) error {
	items, err := h.catalog.LowStock(c.Request().Context(), identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"count": len(items),
	})
}
