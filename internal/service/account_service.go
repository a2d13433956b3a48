package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/navafv/digital-thread-tailor-app/pkg/jwtutil"
	"github.com/navafv/digital-thread-tailor-app/pkg/logger"
	"github.com/navafv/digital-thread-tailor-app/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength    = 8
	tempPasswordLength   = 10
	tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Role home paths returned on login
const (
	TailorHome = "/api/dashboard"
	ClientHome = "/api/portal/dashboard"
)

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateToken(claims jwtutil.TenantClaims) (string, error)
}

// AccountService handles sign-up, login and portal invitations
type AccountService struct {
	base
	tokens TokenIssuer
	cost   int
}

// NewAccountService creates an account service that signs tokens with tokens
func NewAccountService(db *gorm.DB, tokens TokenIssuer, opts ...Option) *AccountService {
	return &AccountService{base: newBase(db, opts), tokens: tokens, cost: bcrypt.DefaultCost}
}

// RegisterInput is a tailor sign-up request
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is returned on successful login
type LoginResult struct {
	Token    string         `json:"token"`
	Role     model.Role     `json:"role"`
	HomePath string         `json:"home_path"`
	Account  *model.Account `json:"account"`
}

// Invitation carries the one-time credentials created for a client
type Invitation struct {
	CustomerID        uint   `json:"customer_id"`
	Username          string `json:"username"`
	TemporaryPassword string `json:"temporary_password"`
}

// Register creates a tailor account. Public sign-up never creates clients.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperr.Invalid("username", "is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Invalid("password", "must be at least %d characters", minPasswordLength)
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := model.Account{
		Username:     username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         model.RoleTailor,
	}
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := usernameTaken(tx, username)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Invalid("username", "is already taken")
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Tailor registered",
		zap.Uint("id", account.ID),
		zap.String("username", account.Username))
	return &account, nil
}

// Login checks credentials and issues a token scoped to the account's tenant
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	log := logger.FromContext(ctx)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var account model.Account
	if err := s.conn(ctx).Where("username = ?", strings.TrimSpace(username)).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			prometheus.LoginCounter.WithLabelValues("unknown_user").Inc()
			return nil, apperr.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		prometheus.LoginCounter.WithLabelValues("wrong_password").Inc()
		return nil, apperr.ErrUnauthenticated
	}

	claims := jwtutil.TenantClaims{
		Username: account.Username,
		UserID:   account.ID,
		Role:     string(account.Role),
	}
	var home string
	switch account.Role {
	case model.RoleTailor:
		claims.TenantID = account.ID
		home = TailorHome
	case model.RoleClient:
		var customer model.Customer
		if err := s.conn(ctx).Where("client_account_id = ?", account.ID).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("Client account without customer record", zap.Uint("account_id", account.ID))
				prometheus.LoginCounter.WithLabelValues("unlinked_client").Inc()
				return nil, apperr.ErrUnauthenticated
			}
			return nil, fmt.Errorf("load customer: %w", err)
		}
		customerID := customer.ID
		claims.TenantID = customer.TailorID
		claims.CustomerID = &customerID
		home = ClientHome
	default:
		return nil, fmt.Errorf("account %d has unknown role %q", account.ID, account.Role)
	}

	token, err := s.tokens.GenerateToken(claims)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	prometheus.LoginCounter.WithLabelValues("success").Inc()
	log.Info("User logged in",
		zap.Uint("id", account.ID),
		zap.String("role", string(account.Role)),
		zap.Uint("tenant_id", claims.TenantID))
	return &LoginResult{Token: token, Role: account.Role, HomePath: home, Account: &account}, nil
}

// InviteCustomer creates a client login for a customer and returns the
// temporary credentials to hand over. A customer can be invited once.
func (s *AccountService) InviteCustomer(ctx context.Context, who model.Identity, customerID uint) (*Invitation, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	password, err := temporaryPassword()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	prometheus.RecordOperation("customer", "invite")

	var invitation Invitation
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := loadOwned(tx, tenantID, "customer", customerID, &customer); err != nil {
			return err
		}
		if customer.ClientAccountID != nil {
			return apperr.Invalid("customer", "already has a client portal account")
		}

		username, err := portalUsername(tx, customer)
		if err != nil {
			return err
		}
		account := model.Account{
			Username:     username,
			Email:        customer.Email,
			PasswordHash: string(hash),
			Role:         model.RoleClient,
		}
		if err := tx.Create(&account).Error; err != nil {
			return fmt.Errorf("create client account: %w", err)
		}
		if err := tx.Model(&customer).Update("client_account_id", account.ID).Error; err != nil {
			return fmt.Errorf("link client account: %w", err)
		}
		invitation = Invitation{CustomerID: customer.ID, Username: username, TemporaryPassword: password}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Customer invited to portal",
		zap.Uint("customer_id", customerID),
		zap.String("username", invitation.Username),
		zap.Uint("tenant_id", tenantID))
	return &invitation, nil
}

// portalUsername is the lower-cased first name followed by the customer id,
// with a counter appended until it is unused
func portalUsername(tx *gorm.DB, customer model.Customer) (string, error) {
	first := "client"
	if fields := strings.Fields(customer.Name); len(fields) > 0 {
		first = strings.ToLower(fields[0])
	}
	base := fmt.Sprintf("%s%d", first, customer.ID)
	candidate := base
	for n := 1; ; n++ {
		taken, err := usernameTaken(tx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, n)
	}
}

func usernameTaken(tx *gorm.DB, username string) (bool, error) {
	var count int64
	if err := tx.Model(&model.Account{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return count > 0, nil
}

func temporaryPassword() (string, error) {
	out := make([]byte, tempPasswordLength)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}
