package repository

import (
	"context"
	"errors"
	"time"

	"jewelrystore/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 一意制約違反（同じユーザーが同じidempotency_keyで同時に確定したときなど）
var ErrDuplicateKey = errors.New("duplicate key")

type OrderListFilter struct {
	Page        int
	Limit       int
	Status      string
	CreatedByID *int64
	CounterID   *int64
	CustomerID  *int64
	From        *time.Time
	To          *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 行ロック付き（トランザクション内で使う）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	// ステータス・支払い情報・合計をまとめて保存
	Save(ctx context.Context, order model.Order) error

	// キーは作成者ごとに一意。他人の注文は見えない
	FindByIdempotencyKey(ctx context.Context, createdByID int64, key string) (model.Order, bool, error)

	// 期間内の合計（statusesが空なら全ステータス）
	SumTotalsInRange(ctx context.Context, from, to time.Time, statuses []model.OrderStatus) (decimal.Decimal, error)
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error)
}
