package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atelier-erp/backend/internal/domain/finance"
	"github.com/atelier-erp/backend/internal/domain/sales"
	"github.com/atelier-erp/backend/internal/domain/shared"
	"github.com/atelier-erp/backend/internal/domain/shared/valueobject"
)

// In-memory fakes keep the sequence tests stateful: a payment's effect on
// one call must be visible to the next.

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*finance.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*finance.Account)}
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*finance.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return a, nil
	}
	return nil, shared.NewNotFoundError("ACCOUNT_NOT_FOUND", "Account not found")
}

func (r *fakeAccountRepo) FindAll(_ context.Context, _ shared.Filter) ([]*finance.Account, error) {
	var out []*finance.Account
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, a *finance.Account) error {
	r.accounts[a.ID] = a
	return nil
}

func (r *fakeAccountRepo) SaveWithLock(_ context.Context, a *finance.Account) error {
	r.accounts[a.ID] = a
	return nil
}

type fakePaymentRepo struct {
	payments []*finance.Payment
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*finance.Payment, error) {
	for _, p := range r.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.NewNotFoundError("PAYMENT_NOT_FOUND", "Payment not found")
}

func (r *fakePaymentRepo) FindByTarget(_ context.Context, target finance.PaymentTarget) ([]*finance.Payment, error) {
	var out []*finance.Payment
	for _, p := range r.payments {
		if p.TargetType == target.Type && p.TargetID == target.ID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FindByAccount(_ context.Context, accountID uuid.UUID, _ shared.Filter) ([]*finance.Payment, error) {
	var out []*finance.Payment
	for _, p := range r.payments {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) Save(_ context.Context, p *finance.Payment) error {
	r.payments = append(r.payments, p)
	return nil
}

type fakeDebtRepo struct {
	debts []*finance.PartnerDebt
}

func (r *fakeDebtRepo) FindByID(_ context.Context, id uuid.UUID) (*finance.PartnerDebt, error) {
	for _, d := range r.debts {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, shared.NewNotFoundError("DEBT_NOT_FOUND", "Debt not found")
}

func (r *fakeDebtRepo) FindOutstandingByPartner(_ context.Context, partnerID uuid.UUID) ([]*finance.PartnerDebt, error) {
	var out []*finance.PartnerDebt
	for _, d := range r.debts {
		if d.PartnerID == partnerID && !d.IsSettled() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDebtRepo) FindByPartner(_ context.Context, partnerID uuid.UUID, _ shared.Filter) ([]*finance.PartnerDebt, error) {
	var out []*finance.PartnerDebt
	for _, d := range r.debts {
		if d.PartnerID == partnerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDebtRepo) FindBySourceOrder(_ context.Context, sourceOrderID uuid.UUID) (*finance.PartnerDebt, error) {
	for _, d := range r.debts {
		if d.SourceOrderID != nil && *d.SourceOrderID == sourceOrderID {
			return d, nil
		}
	}
	return nil, shared.NewNotFoundError("DEBT_NOT_FOUND", "Debt not found")
}

func (r *fakeDebtRepo) Save(_ context.Context, d *finance.PartnerDebt) error {
	r.debts = append(r.debts, d)
	return nil
}

func (r *fakeDebtRepo) SaveWithLock(_ context.Context, _ *finance.PartnerDebt) error {
	return nil
}

type fakeOrderRepo struct {
	orders map[uuid.UUID]*sales.SalesOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*sales.SalesOrder)}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.SalesOrder, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, shared.NewNotFoundError("ORDER_NOT_FOUND", "Order not found")
}

func (r *fakeOrderRepo) FindByCode(_ context.Context, _ string) (*sales.SalesOrder, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByCustomer(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]sales.SalesOrder, error) {
	return nil, nil
}

func (r *fakeOrderRepo) FindByStatus(_ context.Context, _ sales.OrderStatus, _ shared.Filter) ([]sales.SalesOrder, error) {
	return nil, nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]sales.SalesOrder, error) {
	return nil, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, o *sales.SalesOrder) error {
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) SaveWithLock(_ context.Context, o *sales.SalesOrder) error {
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) { return 0, nil }

func (r *fakeOrderRepo) ExistsByCode(_ context.Context, _ string) (bool, error) { return false, nil }

func (r *fakeOrderRepo) GenerateCode(_ context.Context) (string, error) { return "SO-TEST", nil }

type paymentFixture struct {
	accounts *fakeAccountRepo
	payments *fakePaymentRepo
	debts    *fakeDebtRepo
	orders   *fakeOrderRepo
	service  *PaymentService
	account  *finance.Account
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		accounts: newFakeAccountRepo(),
		payments: &fakePaymentRepo{},
		debts:    &fakeDebtRepo{},
		orders:   newFakeOrderRepo(),
	}
	scope := NewNoOpTransactionScope(f.accounts, f.payments, f.debts, f.orders)
	f.service = NewPaymentService(scope, zap.NewNop())

	account, err := finance.NewAccount("Main cash", finance.AccountTypeCash)
	require.NoError(t, err)
	f.account = account
	f.accounts.accounts[account.ID] = account
	return f
}

// confirmedOrder builds a confirmed order with finalAmount 200 and its
// matching debt row, the state an order is in when the deposit arrives
func (f *paymentFixture) confirmedOrder(t *testing.T, customerID uuid.UUID) *sales.SalesOrder {
	t.Helper()
	order, err := sales.NewSalesOrder("SO-"+uuid.NewString()[:8], customerID, uuid.New(), time.Now())
	require.NoError(t, err)
	_, err = order.AddLine(uuid.New(), decimal.NewFromInt(2),
		valueobject.NewMoneyVND(decimal.NewFromInt(100)), valueobject.ZeroVND(), nil)
	require.NoError(t, err)
	require.NoError(t, order.Confirm())
	order.ClearDomainEvents()
	f.orders.orders[order.ID] = order

	orderID := order.ID
	debt, err := finance.NewPartnerDebt(customerID, finance.PartnerTypeCustomer, &orderID,
		valueobject.NewMoneyVND(order.FinalAmount), nil)
	require.NoError(t, err)
	debt.ClearDomainEvents()
	f.debts.debts = append(f.debts.debts, debt)
	return order
}

func (f *paymentFixture) orderPayment(orderID uuid.UUID, amount int64) RecordPaymentRequest {
	return RecordPaymentRequest{
		TargetType: finance.PaymentTargetOrder,
		TargetID:   orderID,
		Amount:     decimal.NewFromInt(amount),
		Method:     finance.PaymentMethodCash,
		AccountID:  f.account.ID,
	}
}

func TestPaymentService_DepositAdvancesToPaid(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	order := f.confirmedOrder(t, uuid.New())

	response, err := f.service.RecordPayment(ctx, f.orderPayment(order.ID, 50), uuid.New())
	require.NoError(t, err)

	assert.True(t, response.Payment.IsDeposit)
	require.NotNil(t, response.Order)
	assert.Equal(t, sales.OrderStatusPaid, response.Order.Status)
	assert.Equal(t, sales.PaymentStatusPartial, response.Order.PaymentStatus)
	assert.True(t, response.Order.Remaining.Equal(decimal.NewFromInt(150)))
	assert.True(t, response.AccountBalance.Equal(decimal.NewFromInt(50)))

	// the order's debt row mirrors the deposit
	require.Len(t, response.Debts, 1)
	assert.True(t, response.Debts[0].Remaining.Equal(decimal.NewFromInt(150)))
}

func TestPaymentService_RemainderPaymentDoesNotChangeStatus(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	order := f.confirmedOrder(t, uuid.New())

	_, err := f.service.RecordPayment(ctx, f.orderPayment(order.ID, 50), uuid.New())
	require.NoError(t, err)
	require.NoError(t, order.MarkReadyToExport())

	response, err := f.service.RecordPayment(ctx, f.orderPayment(order.ID, 150), uuid.New())
	require.NoError(t, err)
	assert.False(t, response.Payment.IsDeposit)
	assert.Equal(t, sales.OrderStatusReadyToExport, response.Order.Status)
	assert.Equal(t, sales.PaymentStatusPaid, response.Order.PaymentStatus)
	assert.True(t, response.Order.Remaining.IsZero())
}

func TestPaymentService_OverpaymentRejectedAtomically(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	order := f.confirmedOrder(t, uuid.New())

	_, err := f.service.RecordPayment(ctx, f.orderPayment(order.ID, 250), uuid.New())
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))

	// nothing applied: no audit record, account untouched
	assert.Empty(t, f.payments.payments)
	assert.True(t, f.account.Balance.IsZero())
	assert.True(t, order.Remaining().Equal(decimal.NewFromInt(200)))
}

func TestPaymentService_ValidationFailures(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	order := f.confirmedOrder(t, uuid.New())

	t.Run("non-positive amount", func(t *testing.T) {
		req := f.orderPayment(order.ID, 0)
		_, err := f.service.RecordPayment(ctx, req, uuid.New())
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("unknown method", func(t *testing.T) {
		req := f.orderPayment(order.ID, 10)
		req.Method = "CARD"
		_, err := f.service.RecordPayment(ctx, req, uuid.New())
		require.Error(t, err)
	})

	t.Run("unknown account", func(t *testing.T) {
		req := f.orderPayment(order.ID, 10)
		req.AccountID = uuid.New()
		_, err := f.service.RecordPayment(ctx, req, uuid.New())
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("unknown order", func(t *testing.T) {
		req := f.orderPayment(uuid.New(), 10)
		_, err := f.service.RecordPayment(ctx, req, uuid.New())
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestPaymentService_PartnerConsistency(t *testing.T) {
	// For any sequence of general and order-targeted payments, the sum of
	// the customer's orders' remainders equals the partner's aggregate
	// remainder.
	ctx := context.Background()
	f := newPaymentFixture(t)
	customerID := uuid.New()
	actorID := uuid.New()

	orderA := f.confirmedOrder(t, customerID)
	orderB := f.confirmedOrder(t, customerID)

	checkInvariant := func() {
		t.Helper()
		summary, err := f.service.GetDebtSummary(ctx, customerID)
		require.NoError(t, err)
		orderSum := orderA.Remaining().Add(orderB.Remaining())
		assert.True(t, summary.TotalRemaining.Equal(orderSum),
			"partner remaining %s != order remainders %s", summary.TotalRemaining, orderSum)
	}
	checkInvariant()

	// order-targeted deposit on A
	_, err := f.service.RecordPayment(ctx, f.orderPayment(orderA.ID, 50), actorID)
	require.NoError(t, err)
	checkInvariant()

	// general partner payment allocated oldest first (A then B)
	_, err = f.service.RecordPayment(ctx, RecordPaymentRequest{
		TargetType: finance.PaymentTargetPartnerDebt,
		TargetID:   customerID,
		Amount:     decimal.NewFromInt(200),
		Method:     finance.PaymentMethodTransfer,
		AccountID:  f.account.ID,
	}, actorID)
	require.NoError(t, err)
	checkInvariant()
	assert.True(t, orderA.Remaining().IsZero())
	assert.True(t, orderB.Remaining().Equal(decimal.NewFromInt(150)))

	// specific debt-row payment settles B
	debtB, err := f.debts.FindBySourceOrder(ctx, orderB.ID)
	require.NoError(t, err)
	_, err = f.service.RecordPayment(ctx, RecordPaymentRequest{
		TargetType: finance.PaymentTargetDebtRow,
		TargetID:   debtB.ID,
		Amount:     decimal.NewFromInt(150),
		Method:     finance.PaymentMethodBank,
		AccountID:  f.account.ID,
	}, actorID)
	require.NoError(t, err)
	checkInvariant()
	assert.True(t, orderB.Remaining().IsZero())

	// everything settled; the account collected the full 400
	summary, err := f.service.GetDebtSummary(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, summary.TotalRemaining.IsZero())
	assert.True(t, f.account.Balance.Equal(decimal.NewFromInt(400)))

	// further general payment has nothing to settle
	_, err = f.service.RecordPayment(ctx, RecordPaymentRequest{
		TargetType: finance.PaymentTargetPartnerDebt,
		TargetID:   customerID,
		Amount:     decimal.NewFromInt(1),
		Method:     finance.PaymentMethodCash,
		AccountID:  f.account.ID,
	}, actorID)
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

type fakeIdempotencyStore struct {
	keys     map[string]bool
	released []string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.keys[key], nil
}

func (s *fakeIdempotencyStore) Release(_ context.Context, key string) error {
	delete(s.keys, key)
	s.released = append(s.released, key)
	return nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

func TestPaymentService_DuplicateIdempotencyKeyRejected(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	store := newFakeIdempotencyStore()
	f.service.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())
	order := f.confirmedOrder(t, uuid.New())

	req := f.orderPayment(order.ID, 50)
	req.IdempotencyKey = "pay-001"
	_, err := f.service.RecordPayment(ctx, req, uuid.New())
	require.NoError(t, err)

	retry := f.orderPayment(order.ID, 50)
	retry.IdempotencyKey = "pay-001"
	_, err = f.service.RecordPayment(ctx, retry, uuid.New())
	require.Error(t, err)

	// the duplicate never reached the ledger
	require.Len(t, f.payments.payments, 1)
	assert.True(t, f.account.Balance.Equal(decimal.NewFromInt(50)))
}

func TestPaymentService_FailedPaymentReleasesIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	store := newFakeIdempotencyStore()
	f.service.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())
	order := f.confirmedOrder(t, uuid.New())

	// overpayment fails after the key was reserved
	req := f.orderPayment(order.ID, 250)
	req.IdempotencyKey = "pay-002"
	_, err := f.service.RecordPayment(ctx, req, uuid.New())
	require.Error(t, err)
	assert.Equal(t, []string{"pay-002"}, store.released)

	// the client can retry the corrected payment under the same key
	retry := f.orderPayment(order.ID, 50)
	retry.IdempotencyKey = "pay-002"
	_, err = f.service.RecordPayment(ctx, retry, uuid.New())
	require.NoError(t, err)
	require.Len(t, f.payments.payments, 1)
}

func TestPaymentService_GeneralPaymentCappedByOutstanding(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	customerID := uuid.New()
	f.confirmedOrder(t, customerID)

	_, err := f.service.RecordPayment(ctx, RecordPaymentRequest{
		TargetType: finance.PaymentTargetPartnerDebt,
		TargetID:   customerID,
		Amount:     decimal.NewFromInt(201),
		Method:     finance.PaymentMethodCash,
		AccountID:  f.account.ID,
	}, uuid.New())
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	assert.Empty(t, f.payments.payments)
}
