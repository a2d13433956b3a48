package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	opts    []Option
	tailorA model.Identity
	tailorB model.Identity
}

// newFixture opens a private in-memory database with two tailor tenants
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	f := &fixture{
		db:   db,
		opts: []Option{WithClock(func() time.Time { return testNow })},
	}
	f.tailorA = f.tailor(t, "amina")
	f.tailorB = f.tailor(t, "bruno")
	return f
}

func (f *fixture) tailor(t *testing.T, username string) model.Identity {
	t.Helper()
	account := model.Account{Username: username, PasswordHash: "x", Role: model.RoleTailor}
	if err := f.db.Create(&account).Error; err != nil {
		t.Fatalf("Failed to create tailor %s: %v", username, err)
	}
	return model.Identity{UserID: account.ID, TenantID: account.ID, Role: model.RoleTailor}
}

func (f *fixture) customer(t *testing.T, who model.Identity, name, phone string) *model.Customer {
	t.Helper()
	c, err := NewCatalogService(f.db, f.opts...).CreateCustomer(context.Background(), who, CustomerInput{Name: name, Phone: phone})
	if err != nil {
		t.Fatalf("Failed to create customer: %v", err)
	}
	return c
}

func (f *fixture) order(t *testing.T, who model.Identity, customerID uint, in OrderInput) *model.Order {
	t.Helper()
	if in.Item == "" {
		in.Item = "Kurta"
	}
	if in.DueDate.IsZero() {
		in.DueDate = testNow.AddDate(0, 0, 3)
	}
	o, err := NewOrderService(f.db, f.opts...).CreateOrder(context.Background(), who, customerID, in)
	if err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}
	return o
}

func (f *fixture) template(t *testing.T, who model.Identity, name string, steps ...TaskDefinitionInput) *model.WorkflowTemplate {
	t.Helper()
	tpl, err := NewCatalogService(f.db, f.opts...).CreateTemplate(context.Background(), who, TemplateInput{Name: name, Steps: steps})
	if err != nil {
		t.Fatalf("Failed to create template: %v", err)
	}
	return tpl
}

func (f *fixture) client(t *testing.T, customer *model.Customer) model.Identity {
	t.Helper()
	account := model.Account{Username: "client" + customer.Phone, PasswordHash: "x", Role: model.RoleClient}
	if err := f.db.Create(&account).Error; err != nil {
		t.Fatalf("Failed to create client account: %v", err)
	}
	if err := f.db.Model(customer).Update("client_account_id", account.ID).Error; err != nil {
		t.Fatalf("Failed to link client account: %v", err)
	}
	customerID := customer.ID
	return model.Identity{UserID: account.ID, TenantID: customer.TailorID, Role: model.RoleClient, CustomerID: &customerID}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
