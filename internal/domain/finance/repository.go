package finance

import (
	"context"

	"github.com/google/uuid"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

// AccountRepository persists cash/bank accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Account, error)
	Save(ctx context.Context, account *Account) error
	// SaveWithLock persists the account guarded by its version and returns
	// shared.ErrConcurrencyConflict on a lost race.
	SaveWithLock(ctx context.Context, account *Account) error
}

// PaymentRepository appends payment audit records. There is no update or
// delete: payment history is immutable.
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByTarget(ctx context.Context, target PaymentTarget) ([]*Payment, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]*Payment, error)
	Save(ctx context.Context, payment *Payment) error
}

// PartnerDebtRepository persists partner debt rows
type PartnerDebtRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PartnerDebt, error)
	// FindOutstandingByPartner returns the partner's unsettled rows oldest
	// first, the order general payments are allocated in.
	FindOutstandingByPartner(ctx context.Context, partnerID uuid.UUID) ([]*PartnerDebt, error)
	FindByPartner(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) ([]*PartnerDebt, error)
	FindBySourceOrder(ctx context.Context, sourceOrderID uuid.UUID) (*PartnerDebt, error)
	Save(ctx context.Context, debt *PartnerDebt) error
	SaveWithLock(ctx context.Context, debt *PartnerDebt) error
}
