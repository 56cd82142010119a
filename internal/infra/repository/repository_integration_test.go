package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jewelrystore/internal/config"
	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/infra/db"
	infrarepo "jewelrystore/internal/infra/repository"
	"jewelrystore/internal/infra/session"
	repo "jewelrystore/internal/repository"
	"jewelrystore/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := db.Connect(config.Config{DatabaseURL: dsn})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func seedProduct(t *testing.T, gdb *gorm.DB, name string, price int64, stock int64) model.Product {
	t.Helper()
	p, err := infrarepo.NewProductGormRepository(gdb).Create(context.Background(), model.Product{
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		IsActive: true,
	})
	require.NoError(t, err)
	return p
}

func stockOf(t *testing.T, gdb *gorm.DB, id int64) int64 {
	t.Helper()
	var p model.Product
	require.NoError(t, gdb.Unscoped().First(&p, id).Error)
	return p.Stock
}

// =====================
// ProductGormRepository
// =====================

func TestProductRepo_LockAndBulkUpdate(t *testing.T) {
	gdb := setupTestDB(t)
	ctx := context.Background()

	a := seedProduct(t, gdb, "Ring", 10, 5)
	b := seedProduct(t, gdb, "Chain", 20, 7)
	require.NoError(t, infrarepo.NewProductGormRepository(gdb).SoftDelete(ctx, b.ID))

	tm := infrarepo.NewTxManagerGorm(gdb)
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		locked, err := r.Products().LockByIDs(ctx, []int64{b.ID, a.ID})
		if err != nil {
			return err
		}
		// 削除済みも返る・id昇順
		require.Len(t, locked, 2)
		assert.Equal(t, a.ID, locked[0].ID)
		assert.Equal(t, b.ID, locked[1].ID)
		assert.True(t, locked[1].DeletedAt.Valid)

		return r.Products().BulkUpdateStock(ctx, map[int64]int64{a.ID: 2, b.ID: 9})
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), stockOf(t, gdb, a.ID))
	assert.Equal(t, int64(9), stockOf(t, gdb, b.ID))
}

func TestProductRepo_BulkUpdateStock_NegativeRejected(t *testing.T) {
	gdb := setupTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, gdb, "Ring", 10, 1)

	err := infrarepo.NewProductGormRepository(gdb).BulkUpdateStock(ctx, map[int64]int64{p.ID: -1})
	require.Error(t, err)
	assert.Equal(t, int64(1), stockOf(t, gdb, p.ID))
}

func TestProductRepo_BulkUpdateStock_MissingRow(t *testing.T) {
	gdb := setupTestDB(t)

	err := infrarepo.NewProductGormRepository(gdb).BulkUpdateStock(context.Background(), map[int64]int64{999: 1})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestInventoryRepo_SetStockWithAdjustment(t *testing.T) {
	gdb := setupTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, gdb, "Ring", 10, 5)
	inv := infrarepo.NewInventoryGormRepository(gdb)

	before, err := inv.SetStockWithAdjustment(ctx, 1, p.ID, 12, "restock")
	require.NoError(t, err)
	assert.Equal(t, int64(5), before)
	assert.Equal(t, int64(12), stockOf(t, gdb, p.ID))

	adjs, err := inv.ListAdjustments(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, adjs, 1)
	assert.Equal(t, int64(7), adjs[0].Delta)
}

// =====================
// Checkout on a real database
// =====================

type storeEnv struct {
	gdb    *gorm.DB
	carts  *session.RedisCartStore
	orders *usecase.OrderUsecase
	trans  *usecase.OrderTransitionUsecase
}

func newStoreEnv(t *testing.T) *storeEnv {
	t.Helper()
	gdb := setupTestDB(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	carts := session.NewRedisCartStore(client, time.Hour)

	tm := infrarepo.NewTxManagerGorm(gdb)
	clock := usecase.NewRealClock()
	return &storeEnv{
		gdb:   gdb,
		carts: carts,
		orders: usecase.NewOrderUsecase(tm, carts,
			infrarepo.NewCounterGormRepository(gdb),
			infrarepo.NewCustomerGormRepository(gdb),
			infrarepo.NewSettingGormRepository(gdb),
			clock, zap.NewNop()),
		trans: usecase.NewOrderTransitionUsecase(tm, clock, zap.NewNop()),
	}
}

func (e *storeEnv) fillCart(t *testing.T, sessionID string, productID int64, qty int64) {
	t.Helper()
	cart := model.NewCart()
	cart.Add(productID, qty)
	require.NoError(t, e.carts.Save(context.Background(), sessionID, cart))
}

func TestCheckout_Postgres_Lifecycle(t *testing.T) {
	env := newStoreEnv(t)
	ctx := context.Background()

	p := seedProduct(t, env.gdb, "Ring", 10, 5)
	env.fillCart(t, "s1", p.ID, 3)

	out, err := env.orders.Checkout(ctx, 1, usecase.CheckoutInput{SessionID: "s1"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(30).Equal(out.TotalAmount))
	assert.Equal(t, int64(2), stockOf(t, env.gdb, p.ID))

	cart, err := env.carts.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	_, err = env.trans.Pay(ctx, 1, out.ID, usecase.PayInput{AmountReceived: decimal.NewFromInt(20), Method: "cash"})
	var ipe *model.InsufficientPaymentError
	require.True(t, errors.As(err, &ipe))

	paid, err := env.trans.Pay(ctx, 1, out.ID, usecase.PayInput{AmountReceived: decimal.NewFromInt(30), Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusPaid), paid.Status)

	refunded, err := env.trans.Refund(ctx, 1, out.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusRefunded), refunded.Status)
	assert.Equal(t, int64(5), stockOf(t, env.gdb, p.ID))

	// outboxに created / paid / refunded
	events, err := infrarepo.NewOutboxGormRepository(env.gdb).ListUnprocessed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, model.OrderEventCreated, events[0].EventType)
	assert.Equal(t, model.OrderEventRefunded, events[2].EventType)
}

func TestCheckout_Postgres_InsufficientStock_RollsBack(t *testing.T) {
	env := newStoreEnv(t)
	ctx := context.Background()

	p := seedProduct(t, env.gdb, "Ring", 10, 2)
	env.fillCart(t, "s1", p.ID, 3)

	_, err := env.orders.Checkout(ctx, 1, usecase.CheckoutInput{SessionID: "s1"})
	var ise *model.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(2), ise.Available)
	assert.Equal(t, int64(3), ise.Requested)

	var n int64
	require.NoError(t, env.gdb.Model(&model.Order{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, int64(2), stockOf(t, env.gdb, p.ID))
}

func TestCheckout_Postgres_CancelTwice(t *testing.T) {
	env := newStoreEnv(t)
	ctx := context.Background()

	p := seedProduct(t, env.gdb, "Ring", 10, 5)
	env.fillCart(t, "s1", p.ID, 3)

	out, err := env.orders.Checkout(ctx, 1, usecase.CheckoutInput{SessionID: "s1"})
	require.NoError(t, err)

	_, err = env.trans.Cancel(ctx, 1, out.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stockOf(t, env.gdb, p.ID))

	_, err = env.trans.Cancel(ctx, 1, out.ID)
	var ste *model.StateTransitionError
	require.True(t, errors.As(err, &ste))
	assert.Equal(t, int64(5), stockOf(t, env.gdb, p.ID))
}

// 最後の1個を同時に取り合っても売れるのは1件だけ
func TestCheckout_Postgres_ConcurrentLastItem(t *testing.T) {
	env := newStoreEnv(t)
	ctx := context.Background()

	p := seedProduct(t, env.gdb, "Ring", 10, 1)
	env.fillCart(t, "s1", p.ID, 1)
	env.fillCart(t, "s2", p.ID, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, sid := range []string{"s1", "s2"} {
		wg.Add(1)
		go func(i int, sid string) {
			defer wg.Done()
			_, errs[i] = env.orders.Checkout(ctx, int64(i+1), usecase.CheckoutInput{SessionID: sid})
		}(i, sid)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var ise *model.InsufficientStockError
		assert.True(t, errors.As(err, &ise), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(0), stockOf(t, env.gdb, p.ID))
}

func TestCheckout_Postgres_IdempotencyKey(t *testing.T) {
	env := newStoreEnv(t)
	ctx := context.Background()

	p := seedProduct(t, env.gdb, "Ring", 10, 5)
	env.fillCart(t, "s1", p.ID, 2)

	first, err := env.orders.Checkout(ctx, 1, usecase.CheckoutInput{SessionID: "s1", IdempotencyKey: "k-1"})
	require.NoError(t, err)

	// カートは空になっているが、同じキーなら同じ注文を返す
	env.fillCart(t, "s1", p.ID, 2)
	second, err := env.orders.Checkout(ctx, 1, usecase.CheckoutInput{SessionID: "s1", IdempotencyKey: "k-1"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(3), stockOf(t, env.gdb, p.ID))
}

func TestCheckout_Postgres_IdempotencyKeyPerUser(t *testing.T) {
	env := newStoreEnv(t)
	ctx := context.Background()

	p1 := seedProduct(t, env.gdb, "Ring", 10, 5)
	p2 := seedProduct(t, env.gdb, "Chain", 25, 5)
	env.fillCart(t, "s1", p1.ID, 3)
	env.fillCart(t, "s2", p2.ID, 1)

	a, err := env.orders.Checkout(ctx, 7, usecase.CheckoutInput{SessionID: "s1", IdempotencyKey: "k"})
	require.NoError(t, err)
	b, err := env.orders.Checkout(ctx, 99, usecase.CheckoutInput{SessionID: "s2", IdempotencyKey: "k"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(99), *b.CreatedByID)
	assert.Equal(t, int64(2), stockOf(t, env.gdb, p1.ID))
	assert.Equal(t, int64(4), stockOf(t, env.gdb, p2.ID))
}

// 同じユーザー・同じキーの同時確定は1件だけ作られ、両方が同じ注文を受け取る
func TestCheckout_Postgres_SameKeyConcurrent(t *testing.T) {
	env := newStoreEnv(t)
	ctx := context.Background()

	p := seedProduct(t, env.gdb, "Ring", 10, 10)
	env.fillCart(t, "s1", p.ID, 2)
	env.fillCart(t, "s2", p.ID, 2)

	var wg sync.WaitGroup
	outs := make([]usecase.OrderOutput, 2)
	errs := make([]error, 2)
	for i, sid := range []string{"s1", "s2"} {
		wg.Add(1)
		go func(i int, sid string) {
			defer wg.Done()
			outs[i], errs[i] = env.orders.Checkout(ctx, 7, usecase.CheckoutInput{SessionID: sid, IdempotencyKey: "same"})
		}(i, sid)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, outs[0].ID, outs[1].ID)

	var n int64
	require.NoError(t, env.gdb.Model(&model.Order{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(8), stockOf(t, env.gdb, p.ID))
}
