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

// GormAccountRepository implements finance.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Account, error) {
	var account finance.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		return nil, err
	}
	return &account, nil
}

// FindAll finds accounts with pagination
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*finance.Account, error) {
	var accounts []*finance.Account
	query := r.db.WithContext(ctx).Model(&finance.Account{})

	if accountType, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", accountType)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("name ASC")

	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save saves an account
func (r *GormAccountRepository) Save(ctx context.Context, account *finance.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// SaveWithLock saves the balance guarded by the version the aggregate held
// before it mutated
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, account *finance.Account) error {
	account.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&finance.Account{}).
		Where("id = ? AND version = ?", account.ID, account.Version-1).
		Updates(map[string]interface{}{
			"balance":    account.Balance,
			"version":    account.Version,
			"updated_at": account.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ finance.AccountRepository = (*GormAccountRepository)(nil)
