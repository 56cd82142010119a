package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"jewelrystore/internal/domain/model"
	repo "jewelrystore/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error containing %q, got %q", want, err.Error())
	}
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =====================
// Cart store
// =====================

type CartStoreMock struct{ mock.Mock }

func (m *CartStoreMock) Get(ctx context.Context, sessionID string) (model.Cart, error) {
	args := m.Called(ctx, sessionID)
	// ストアと同じく呼び出しごとに別のカートを返す
	stored := args.Get(0).(model.Cart)
	cart := model.Cart{Items: make(map[int64]int64, len(stored.Items)), UpdatedAt: stored.UpdatedAt}
	for id, qty := range stored.Items {
		cart.Items[id] = qty
	}
	return cart, args.Error(1)
}

func (m *CartStoreMock) Save(ctx context.Context, sessionID string, cart model.Cart) error {
	args := m.Called(ctx, sessionID, cart)
	return args.Error(0)
}

func (m *CartStoreMock) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// =====================
// Counter / Customer / Setting
// =====================

type CounterRepoMock struct{ mock.Mock }

func (m *CounterRepoMock) List(ctx context.Context) ([]model.Counter, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Counter), args.Error(1)
}

func (m *CounterRepoMock) FindByID(ctx context.Context, id int64) (model.Counter, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Counter), args.Error(1)
}

func (m *CounterRepoMock) FindByAssignedEmployee(ctx context.Context, userID int64) (model.Counter, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Counter), args.Bool(1), args.Error(2)
}

func (m *CounterRepoMock) Create(ctx context.Context, c model.Counter) (model.Counter, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(model.Counter), args.Error(1)
}

func (m *CounterRepoMock) Update(ctx context.Context, c model.Counter) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CounterRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CounterRepoMock) ReplaceProducts(ctx context.Context, counterID int64, productIDs []int64) error {
	args := m.Called(ctx, counterID, productIDs)
	return args.Error(0)
}

type CustomerRepoMock struct{ mock.Mock }

func (m *CustomerRepoMock) Create(ctx context.Context, c model.Customer) (model.Customer, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(model.Customer), args.Error(1)
}

func (m *CustomerRepoMock) List(ctx context.Context, q string, page int, limit int) ([]model.Customer, int64, error) {
	args := m.Called(ctx, q, page, limit)
	return args.Get(0).([]model.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *CustomerRepoMock) FindByID(ctx context.Context, id int64) (model.Customer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Customer), args.Error(1)
}

func (m *CustomerRepoMock) Update(ctx context.Context, c model.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type SettingRepoMock struct{ mock.Mock }

func (m *SettingRepoMock) GetOrCreate(ctx context.Context) (model.SystemSetting, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.SystemSetting), args.Error(1)
}

func (m *SettingRepoMock) Save(ctx context.Context, s model.SystemSetting) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// =====================
// User / Group / Audit / Validator
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type GroupRepoMock struct{ mock.Mock }

func (m *GroupRepoMock) FindOrCreateByName(ctx context.Context, name string) (model.Group, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.Group), args.Error(1)
}

func (m *GroupRepoMock) ReplaceUserGroups(ctx context.Context, userID int64, groups []model.Group) error {
	args := m.Called(ctx, userID, groups)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.AuditLog), args.Get(1).(int64), args.Error(2)
}

type ValidatorMock struct{ mock.Mock }

func (m *ValidatorMock) ValidateRegister(ctx context.Context, username string, email string, password string) error {
	args := m.Called(ctx, username, email, password)
	return args.Error(0)
}

func (m *ValidatorMock) ValidateLogin(ctx context.Context, login string, password string) error {
	args := m.Called(ctx, login, password)
	return args.Error(0)
}

func (m *ValidatorMock) ValidatePassword(ctx context.Context, password string) error {
	args := m.Called(ctx, password)
	return args.Error(0)
}

func (m *ValidatorMock) ValidateEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// =====================
// Product / Inventory / Order / Debt
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *ProductRepoMock) LockByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	panic("not used outside transaction tests")
}

func (m *ProductRepoMock) BulkUpdateStock(ctx context.Context, stocks map[int64]int64) error {
	panic("not used outside transaction tests")
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductRepoMock) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStockWithAdjustment(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) (int64, error) {
	args := m.Called(ctx, adminUserID, productID, newStock, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InventoryRepoMock) ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]model.InventoryAdjustment), args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used in ReportUsecase tests")
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used in ReportUsecase tests")
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	panic("not used in ReportUsecase tests")
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	panic("not used in ReportUsecase tests")
}

func (m *OrderRepoMock) Save(ctx context.Context, order model.Order) error {
	panic("not used in ReportUsecase tests")
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, createdByID int64, key string) (model.Order, bool, error) {
	panic("not used in ReportUsecase tests")
}

func (m *OrderRepoMock) SumTotalsInRange(ctx context.Context, from, to time.Time, statuses []model.OrderStatus) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to, statuses)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *OrderRepoMock) CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[model.OrderStatus]int64), args.Error(1)
}

type DebtRepoMock struct{ mock.Mock }

func (m *DebtRepoMock) List(ctx context.Context, accountantID *int64) ([]model.Debt, error) {
	args := m.Called(ctx, accountantID)
	return args.Get(0).([]model.Debt), args.Error(1)
}

func (m *DebtRepoMock) FindByID(ctx context.Context, id int64) (model.Debt, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Debt), args.Error(1)
}

func (m *DebtRepoMock) Create(ctx context.Context, d model.Debt) (model.Debt, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(model.Debt), args.Error(1)
}

func (m *DebtRepoMock) Update(ctx context.Context, d model.Debt) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *DebtRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
