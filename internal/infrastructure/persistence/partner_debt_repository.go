package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-erp/backend/internal/domain/finance"
	"github.com/atelier-erp/backend/internal/domain/shared"
)

// GormPartnerDebtRepository implements finance.PartnerDebtRepository using GORM
type GormPartnerDebtRepository struct {
	db *gorm.DB
}

// NewGormPartnerDebtRepository creates a new GormPartnerDebtRepository
func NewGormPartnerDebtRepository(db *gorm.DB) *GormPartnerDebtRepository {
	return &GormPartnerDebtRepository{db: db}
}

// FindByID finds a debt row by ID
func (r *GormPartnerDebtRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.PartnerDebt, error) {
	var debt finance.PartnerDebt
	if err := r.db.WithContext(ctx).First(&debt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("DEBT_NOT_FOUND", "Debt row not found")
		}
		return nil, err
	}
	return &debt, nil
}

// FindOutstandingByPartner returns the partner's unsettled debt rows oldest
// first. General payments consume this list in order.
func (r *GormPartnerDebtRepository) FindOutstandingByPartner(ctx context.Context, partnerID uuid.UUID) ([]*finance.PartnerDebt, error) {
	var debts []*finance.PartnerDebt
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND status <> ?", partnerID, finance.DebtStatusSettled).
		Order("created_at ASC").
		Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

// FindByPartner returns all debt rows of a partner with pagination
func (r *GormPartnerDebtRepository) FindByPartner(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) ([]*finance.PartnerDebt, error) {
	var debts []*finance.PartnerDebt
	query := r.db.WithContext(ctx).
		Model(&finance.PartnerDebt{}).
		Where("partner_id = ?", partnerID)

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, DebtSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if err := query.Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

// FindBySourceOrder returns the debt row opened for a sales order, if any
func (r *GormPartnerDebtRepository) FindBySourceOrder(ctx context.Context, sourceOrderID uuid.UUID) (*finance.PartnerDebt, error) {
	var debt finance.PartnerDebt
	if err := r.db.WithContext(ctx).
		First(&debt, "source_order_id = ?", sourceOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("DEBT_NOT_FOUND", "No debt row for this order")
		}
		return nil, err
	}
	return &debt, nil
}

// Save saves a debt row
func (r *GormPartnerDebtRepository) Save(ctx context.Context, debt *finance.PartnerDebt) error {
	return r.db.WithContext(ctx).Save(debt).Error
}

// SaveWithLock saves paid amount and status guarded by the version the
// aggregate held before it mutated
func (r *GormPartnerDebtRepository) SaveWithLock(ctx context.Context, debt *finance.PartnerDebt) error {
	debt.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&finance.PartnerDebt{}).
		Where("id = ? AND version = ?", debt.ID, debt.Version-1).
		Updates(map[string]interface{}{
			"paid_amount": debt.PaidAmount,
			"status":      debt.Status,
			"version":     debt.Version,
			"updated_at":  debt.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ finance.PartnerDebtRepository = (*GormPartnerDebtRepository)(nil)
