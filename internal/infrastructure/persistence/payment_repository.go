package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-erp/backend/internal/domain/finance"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// GormPaymentRepository implements finance.PaymentRepository using GORM.
// Payments are append-only, so Save always inserts.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var payment finance.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("PAYMENT_NOT_FOUND", "Payment not found")
		}
		return nil, err
	}
	return &payment, nil
}

// FindByTarget returns the payment history of one target, oldest first
func (r *GormPaymentRepository) FindByTarget(ctx context.Context, target finance.PaymentTarget) ([]*finance.Payment, error) {
	var payments []*finance.Payment
	if err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Order("paid_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByAccount returns payments recorded against an account
func (r *GormPaymentRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]*finance.Payment, error) {
	var payments []*finance.Payment
	query := r.db.WithContext(ctx).
		Model(&finance.Payment{}).
		Where("account_id = ?", accountID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("paid_at DESC")

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save appends a payment record
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
