// Package service implements the tailor-shop operations. Every exported
// operation takes the acting model.Identity explicitly and rejects targets
// owned by another tenant.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"gorm.io/gorm"
)

// Option configures a service
type Option func(*base)

// WithClock overrides the time source. Tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		b.now = now
	}
}

type base struct {
	db  *gorm.DB
	now func() time.Time
}

func newBase(db *gorm.DB, opts []Option) base {
	b := base{db: db, now: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b base) conn(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

func (b base) clock() time.Time {
	return b.now().UTC()
}

// tailorScope returns the tenant a tailor identity acts for. Clients are
// rejected: they only reach data through the portal operations.
func tailorScope(who model.Identity) (uint, error) {
	switch who.Role {
	case model.RoleTailor:
		if who.TenantID == 0 {
			return 0, fmt.Errorf("tailor identity without tenant: %w", apperr.ErrForbidden)
		}
		return who.TenantID, nil
	case model.RoleClient:
		return 0, fmt.Errorf("client %d cannot perform tailor operations: %w", who.UserID, apperr.ErrForbidden)
	default:
		return 0, fmt.Errorf("unknown role %q: %w", who.Role, apperr.ErrForbidden)
	}
}

// clientScope returns the tenant and customer record a client identity acts for
func clientScope(who model.Identity) (tenantID, customerID uint, err error) {
	switch who.Role {
	case model.RoleClient:
		if who.TenantID == 0 || who.CustomerID == nil {
			return 0, 0, fmt.Errorf("client identity without customer link: %w", apperr.ErrForbidden)
		}
		return who.TenantID, *who.CustomerID, nil
	case model.RoleTailor:
		return 0, 0, fmt.Errorf("tailor %d has no client portal: %w", who.UserID, apperr.ErrForbidden)
	default:
		return 0, 0, fmt.Errorf("unknown role %q: %w", who.Role, apperr.ErrForbidden)
	}
}

// loadOwned loads dest by primary key and checks it belongs to tenantID.
// A missing row is NotFound; a row of another tenant is Forbidden.
func loadOwned(tx *gorm.DB, tenantID uint, entity string, id uint, dest model.Owned) error {
	if err := tx.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(entity, id)
		}
		return fmt.Errorf("load %s %d: %w", entity, id, err)
	}
	if dest.OwnerID() != tenantID {
		return apperr.Forbidden(entity, id)
	}
	return nil
}
