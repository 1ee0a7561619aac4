package finance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/atelier-erp/backend/internal/domain/shared/valueobject"
)

// AccountType classifies where the money sits
type AccountType string

const (
	AccountTypeCash AccountType = "CASH"
	AccountTypeBank AccountType = "BANK"
)

// IsValid checks if the type is a valid AccountType
func (t AccountType) IsValid() bool {
	return t == AccountTypeCash || t == AccountTypeBank
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// Account is a cash or bank account. The registry fields are owned by an
// external collaborator; only Balance belongs to this core's write surface.
// Customer-origin payments credit it, supplier-origin payments debit it.
type Account struct {
	shared.BaseAggregateRoot
	Name    string          `gorm:"type:varchar(200);not null"`
	Type    AccountType     `gorm:"type:varchar(20);not null"`
	Balance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates an account with a zero balance
func NewAccount(name string, accountType AccountType) (*Account, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Unknown account type")
	}
	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              accountType,
		Balance:           decimal.Zero,
	}, nil
}

// Credit adds incoming money to the balance
func (a *Account) Credit(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}

	a.Balance = a.Balance.Add(amount.Amount())
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountCreditedEvent(a, amount.Amount()))

	return nil
}

// Debit removes outgoing money from the balance. The balance cannot go
// negative.
func (a *Account) Debit(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Debit amount must be positive")
	}
	if a.Balance.LessThan(amount.Amount()) {
		return shared.NewDomainError("INSUFFICIENT_FUNDS", fmt.Sprintf("Debit %s exceeds account balance %s", amount.Amount(), a.Balance))
	}

	a.Balance = a.Balance.Sub(amount.Amount())
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountDebitedEvent(a, amount.Amount()))

	return nil
}
