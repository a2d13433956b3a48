package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/navafv/digital-thread-tailor-app/pkg/config"
	"github.com/navafv/digital-thread-tailor-app/pkg/jwtutil"
	"golang.org/x/crypto/bcrypt"
)

func newAccountService(f *fixture) (*AccountService, *jwtutil.JWTUtil) {
	tokens := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	svc := NewAccountService(f.db, tokens, f.opts...)
	svc.cost = bcrypt.MinCost
	return svc, tokens
}

func TestRegisterAndLoginTailor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc, tokens := newAccountService(f)

	account, err := svc.Register(ctx, RegisterInput{Username: "carmen", Email: "c@example.com", Password: "s3cretpass"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if account.Role != model.RoleTailor {
		t.Errorf("Expected role tailor, got %s", account.Role)
	}
	if account.PasswordHash == "s3cretpass" {
		t.Error("Expected password to be hashed")
	}

	res, err := svc.Login(ctx, "carmen", "s3cretpass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.HomePath != TailorHome {
		t.Errorf("Expected home %s, got %s", TailorHome, res.HomePath)
	}
	claims, err := tokens.ValidateToken(res.Token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TenantID != account.ID || claims.Role != "tailor" || claims.CustomerID != nil {
		t.Errorf("Unexpected claims %+v", claims)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	svc, _ := newAccountService(f)

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{name: "no_username", in: RegisterInput{Password: "longenough"}, field: "username"},
		{name: "short_password", in: RegisterInput{Username: "dee", Password: "short"}, field: "password"},
		// "amina" is created by the fixture
		{name: "taken", in: RegisterInput{Username: "amina", Password: "longenough"}, field: "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			var verr *apperr.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("Expected ValidationError on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc, _ := newAccountService(f)

	if _, err := svc.Register(ctx, RegisterInput{Username: "carmen", Password: "s3cretpass"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Login(ctx, "carmen", "wrong"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "s3cretpass"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated for unknown user, got %v", err)
	}
}

func TestInviteCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc, tokens := newAccountService(f)

	cust := f.customer(t, f.tailorA, "Asha Rao", "555-0101")

	inv, err := svc.InviteCustomer(ctx, f.tailorA, cust.ID)
	if err != nil {
		t.Fatalf("InviteCustomer failed: %v", err)
	}
	wantUser := fmt.Sprintf("asha%d", cust.ID)
	if inv.Username != wantUser {
		t.Errorf("Expected username %s, got %s", wantUser, inv.Username)
	}
	if len(inv.TemporaryPassword) != tempPasswordLength {
		t.Errorf("Expected %d char password, got %q", tempPasswordLength, inv.TemporaryPassword)
	}
	if strings.Trim(inv.TemporaryPassword, tempPasswordAlphabet) != "" {
		t.Errorf("Expected alphanumeric password, got %q", inv.TemporaryPassword)
	}

	if _, err := svc.InviteCustomer(ctx, f.tailorA, cust.ID); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Expected ErrValidation inviting twice, got %v", err)
	}
	custB := f.customer(t, f.tailorB, "Ben Ode", "555-0202")
	if _, err := svc.InviteCustomer(ctx, f.tailorA, custB.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Expected ErrForbidden inviting a foreign customer, got %v", err)
	}

	res, err := svc.Login(ctx, inv.Username, inv.TemporaryPassword)
	if err != nil {
		t.Fatalf("Client login failed: %v", err)
	}
	if res.Role != model.RoleClient || res.HomePath != ClientHome {
		t.Errorf("Expected client home, got %s %s", res.Role, res.HomePath)
	}
	claims, err := tokens.ValidateToken(res.Token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TenantID != f.tailorA.TenantID {
		t.Errorf("Expected tenant %d, got %d", f.tailorA.TenantID, claims.TenantID)
	}
	if claims.CustomerID == nil || *claims.CustomerID != cust.ID {
		t.Errorf("Expected customer %d in claims, got %v", cust.ID, claims.CustomerID)
	}
}

func TestPortalUsernameAddsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc, _ := newAccountService(f)

	cust := f.customer(t, f.tailorA, "Asha Rao", "555-0101")
	taken := fmt.Sprintf("asha%d", cust.ID)
	if err := f.db.Create(&model.Account{Username: taken, PasswordHash: "x", Role: model.RoleTailor}).Error; err != nil {
		t.Fatalf("Failed to seed account: %v", err)
	}

	inv, err := svc.InviteCustomer(ctx, f.tailorA, cust.ID)
	if err != nil {
		t.Fatalf("InviteCustomer failed: %v", err)
	}
	if inv.Username != taken+"1" {
		t.Errorf("Expected %s1, got %s", taken, inv.Username)
	}
}
