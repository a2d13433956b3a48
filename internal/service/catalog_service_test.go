package service

import (
	"context"
	"errors"
	"testing"

	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
)

func TestCustomerPhoneUniquePerTailor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCatalogService(f.db, f.opts...)

	first := f.customer(t, f.tailorA, "Asha Rao", "555-0101")

	_, err := svc.CreateCustomer(ctx, f.tailorA, CustomerInput{Name: "Other", Phone: "555-0101"})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) || verr.Field != "phone" {
		t.Errorf("Expected phone ValidationError, got %v", err)
	}

	// same phone is fine under another tailor
	if _, err := svc.CreateCustomer(ctx, f.tailorB, CustomerInput{Name: "Other", Phone: "555-0101"}); err != nil {
		t.Errorf("Expected same phone to be allowed for another tailor, got %v", err)
	}

	second := f.customer(t, f.tailorA, "Chen Li", "555-0103")
	if _, err := svc.UpdateCustomer(ctx, f.tailorA, second.ID, CustomerInput{Name: "Chen Li", Phone: "555-0101"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Expected ErrValidation updating to a taken phone, got %v", err)
	}
	if _, err := svc.UpdateCustomer(ctx, f.tailorA, first.ID, CustomerInput{Name: "Asha R.", Phone: "555-0101"}); err != nil {
		t.Errorf("Expected keeping own phone to succeed, got %v", err)
	}
}

func TestCustomerCrossTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCatalogService(f.db, f.opts...)

	custB := f.customer(t, f.tailorB, "Ben Ode", "555-0202")

	if _, err := svc.GetCustomer(ctx, f.tailorA, custB.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if _, err := svc.AddMeasurement(ctx, f.tailorA, custB.ID, MeasurementInput{Name: "Chest", Value: "40"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Expected ErrForbidden adding measurement, got %v", err)
	}

	list, err := svc.ListCustomers(ctx, f.tailorA)
	if err != nil {
		t.Fatalf("ListCustomers failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected no customers for tenant A, got %d", len(list))
	}
}

func TestMeasurements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCatalogService(f.db, f.opts...)
	cust := f.customer(t, f.tailorA, "Asha Rao", "555-0101")

	tests := []struct {
		name    string
		in      MeasurementInput
		wantErr bool
	}{
		{name: "valid", in: MeasurementInput{Name: "Chest", Value: "38.5"}},
		{name: "non_numeric", in: MeasurementInput{Name: "Waist", Value: "abc"}, wantErr: true},
		{name: "empty_value", in: MeasurementInput{Name: "Waist", Value: ""}, wantErr: true},
		{name: "negative", in: MeasurementInput{Name: "Waist", Value: "-2"}, wantErr: true},
		{name: "missing_name", in: MeasurementInput{Value: "30"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddMeasurement(ctx, f.tailorA, cust.ID, tt.in)
			if tt.wantErr && !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}

	got, err := svc.GetCustomer(ctx, f.tailorA, cust.ID)
	if err != nil {
		t.Fatalf("GetCustomer failed: %v", err)
	}
	if len(got.Measurements) != 1 {
		t.Fatalf("Expected 1 measurement, got %d", len(got.Measurements))
	}
	m := got.Measurements[0]
	if !m.Value.Equal(dec("38.5")) {
		t.Errorf("Expected 38.5, got %s", m.Value)
	}

	updated, err := svc.UpdateMeasurement(ctx, f.tailorA, m.ID, MeasurementInput{Name: "Chest", Value: "39"})
	if err != nil {
		t.Fatalf("UpdateMeasurement failed: %v", err)
	}
	if !updated.Value.Equal(dec("39")) {
		t.Errorf("Expected 39, got %s", updated.Value)
	}
	if err := svc.DeleteMeasurement(ctx, f.tailorB, m.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Expected ErrForbidden deleting foreign measurement, got %v", err)
	}
	if err := svc.DeleteMeasurement(ctx, f.tailorA, m.ID); err != nil {
		t.Errorf("DeleteMeasurement failed: %v", err)
	}
}

func TestLowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCatalogService(f.db, f.opts...)

	ten := dec("10")
	items := []InventoryInput{
		{Name: "Silk", QuantityInStock: dec("5"), ReorderLevel: &ten},
		{Name: "Cotton", QuantityInStock: dec("20"), ReorderLevel: &ten},
		{Name: "Buttons", QuantityInStock: dec("2")},
	}
	var created []*model.InventoryItem
	for _, in := range items {
		item, err := svc.CreateInventoryItem(ctx, f.tailorA, in)
		if err != nil {
			t.Fatalf("CreateInventoryItem(%s) failed: %v", in.Name, err)
		}
		created = append(created, item)
	}
	if !created[2].ReorderLevel.Equal(dec("10")) {
		t.Errorf("Expected default reorder level 10, got %s", created[2].ReorderLevel)
	}

	low, err := svc.LowStock(ctx, f.tailorA)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("Expected 2 low stock items, got %d", len(low))
	}
	if low[0].Name != "Buttons" || low[1].Name != "Silk" {
		t.Errorf("Expected [Buttons Silk], got [%s %s]", low[0].Name, low[1].Name)
	}

	others, err := svc.LowStock(ctx, f.tailorB)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(others) != 0 {
		t.Errorf("Expected no low stock items for tenant B, got %d", len(others))
	}

	if _, err := svc.CreateInventoryItem(ctx, f.tailorA, InventoryInput{Name: "Lace", QuantityInStock: dec("-1")}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Expected ErrValidation for negative stock, got %v", err)
	}
}

func TestDeleteSupplierDetachesInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCatalogService(f.db, f.opts...)

	supplier, err := svc.CreateSupplier(ctx, f.tailorA, SupplierInput{Name: "Mill Co"})
	if err != nil {
		t.Fatalf("CreateSupplier failed: %v", err)
	}
	item, err := svc.CreateInventoryItem(ctx, f.tailorA, InventoryInput{Name: "Linen", QuantityInStock: dec("30"), SupplierID: &supplier.ID})
	if err != nil {
		t.Fatalf("CreateInventoryItem failed: %v", err)
	}

	foreign, err := svc.CreateSupplier(ctx, f.tailorB, SupplierInput{Name: "Other Mill"})
	if err != nil {
		t.Fatalf("CreateSupplier failed: %v", err)
	}
	if _, err := svc.CreateInventoryItem(ctx, f.tailorA, InventoryInput{Name: "Wool", SupplierID: &foreign.ID}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Expected ErrForbidden linking a foreign supplier, got %v", err)
	}
	if err := svc.DeleteSupplier(ctx, f.tailorB, supplier.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Expected ErrForbidden deleting foreign supplier, got %v", err)
	}

	if err := svc.DeleteSupplier(ctx, f.tailorA, supplier.ID); err != nil {
		t.Fatalf("DeleteSupplier failed: %v", err)
	}
	if _, err := svc.GetSupplier(ctx, f.tailorA, supplier.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected deleted supplier to be not found, got %v", err)
	}
	got, err := svc.GetInventoryItem(ctx, f.tailorA, item.ID)
	if err != nil {
		t.Fatalf("GetInventoryItem failed: %v", err)
	}
	if got.SupplierID != nil {
		t.Errorf("Expected supplier to be detached, got %d", *got.SupplierID)
	}
}

func TestTemplates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCatalogService(f.db, f.opts...)
	tasks := NewTaskService(f.db, f.opts...)

	tpl := f.template(t, f.tailorA, "Shirt",
		TaskDefinitionInput{Name: "Press", OrderIndex: 3},
		TaskDefinitionInput{Name: "Cut", OrderIndex: 1},
		TaskDefinitionInput{Name: "Sew", OrderIndex: 2},
	)
	got, err := svc.GetTemplate(ctx, f.tailorA, tpl.ID)
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	names := []string{}
	for _, d := range got.Definitions {
		names = append(names, d.Name)
	}
	if len(names) != 3 || names[0] != "Cut" || names[1] != "Sew" || names[2] != "Press" {
		t.Errorf("Expected [Cut Sew Press], got %v", names)
	}

	if _, err := svc.CreateTemplate(ctx, f.tailorA, TemplateInput{Name: "Bad", Steps: []TaskDefinitionInput{{Name: " "}}}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Expected ErrValidation for blank step, got %v", err)
	}
	if _, err := svc.GetTemplate(ctx, f.tailorB, tpl.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}

	cust := f.customer(t, f.tailorA, "Asha Rao", "555-0101")
	order := f.order(t, f.tailorA, cust.ID, OrderInput{})
	if _, err := tasks.ApplyTemplate(ctx, f.tailorA, order.ID, tpl.ID); err != nil {
		t.Fatalf("ApplyTemplate failed: %v", err)
	}

	if err := svc.DeleteTemplate(ctx, f.tailorA, tpl.ID); err != nil {
		t.Fatalf("DeleteTemplate failed: %v", err)
	}
	remaining, err := tasks.ListTasks(ctx, f.tailorA, order.ID)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("Expected applied tasks to survive template deletion, got %d", len(remaining))
	}
	if remaining[0].Name != "Cut" || remaining[0].TaskDefinitionID != nil {
		t.Errorf("Expected detached task Cut, got %s %v", remaining[0].Name, remaining[0].TaskDefinitionID)
	}
}
