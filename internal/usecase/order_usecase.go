package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"jewelrystore/internal/domain/model"
	repo "jewelrystore/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	carts     repo.CartStore
	counters  repo.CounterRepository
	customers repo.CustomerRepository
	settings  repo.SettingRepository
	clock     Clock
	logger    *zap.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	carts repo.CartStore,
	counters repo.CounterRepository,
	customers repo.CustomerRepository,
	settings repo.SettingRepository,
	clock Clock,
	logger *zap.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		carts:     carts,
		counters:  counters,
		customers: customers,
		settings:  settings,
		clock:     clock,
		logger:    logger,
	}
}

// 同時支払い（任意）
type PaymentInput struct {
	AmountReceived decimal.Decimal
	Method         string
}

type CheckoutInput struct {
	SessionID      string
	CustomerID     *int64
	IdempotencyKey string
	Payment        *PaymentInput
}

type OrderItemOutput struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID             int64               `json:"id"`
	Status         string              `json:"status"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	CreatedByID    *int64              `json:"created_by_id"`
	CustomerID     *int64              `json:"customer_id"`
	CounterID      *int64              `json:"counter_id"`
	PaymentMethod  string              `json:"payment_method,omitempty"`
	AmountReceived decimal.NullDecimal `json:"amount_received"`
	Change         decimal.Decimal     `json:"change"`
	PaidAt         *time.Time          `json:"paid_at"`
	CanceledAt     *time.Time          `json:"canceled_at"`
	RefundedAt     *time.Time          `json:"refunded_at"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []OrderItemOutput   `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func validatePayment(in *PaymentInput) (model.PaymentMethod, error) {
	method, ok := model.ParsePaymentMethod(strings.TrimSpace(in.Method))
	if !ok {
		return "", NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}
	if in.AmountReceived.IsNegative() {
		return "", NewHTTPError(http.StatusBadRequest, "amount_received must be >= 0")
	}
	return method, nil
}

// カートを注文に確定する。
// 商品行をid昇順でロック -> 全件の在庫を検証 -> 在庫を一括更新 -> 注文と明細を作成、までを1トランザクションで行う。
// どこかで失敗したら何も書かれず、カートもそのまま残る。
func (u *OrderUsecase) Checkout(ctx context.Context, actorUserID int64, in CheckoutInput) (OrderOutput, error) {
	if actorUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.SessionID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	var method model.PaymentMethod
	if in.Payment != nil {
		m, err := validatePayment(in.Payment)
		if err != nil {
			return OrderOutput{}, err
		}
		method = m
	}

	cart, err := u.carts.Get(ctx, in.SessionID)
	if err != nil {
		return OrderOutput{}, sessionError(err)
	}
	if cart.IsEmpty() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	if in.CustomerID != nil {
		if _, err := u.customers.FindByID(ctx, *in.CustomerID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return OrderOutput{}, &model.NotFoundError{Resource: "customer", ID: *in.CustomerID}
			}
			return OrderOutput{}, dbError(err)
		}
	}

	//担当カウンターがあれば注文に紐づける
	var counterID *int64
	counter, found, err := u.counters.FindByAssignedEmployee(ctx, actorUserID)
	if err != nil {
		return OrderOutput{}, dbError(err)
	}
	if found {
		counterID = &counter.ID
	}

	var out OrderOutput
	replayed := false

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じユーザーの同じキーなら同じ結果
		if key != "" {
			existing, found, err := findCheckoutReplay(ctx, r, actorUserID, key)
			if err != nil {
				return err
			}
			if found {
				out = existing
				replayed = true
				return nil
			}
		}

		ids := cart.ProductIDs()
		locked, err := r.Products().LockByIDs(ctx, ids)
		if err != nil {
			return dbError(err)
		}
		byID := make(map[int64]model.Product, len(locked))
		for _, p := range locked {
			byID[p.ID] = p
		}

		//先に全件を検証してから書き込む
		for _, id := range ids {
			p, ok := byID[id]
			if !ok || !p.Available() {
				return &model.NotFoundError{Resource: "product", ID: id}
			}
			if qty := cart.Quantity(id); p.Stock < qty {
				return &model.InsufficientStockError{ProductID: id, Name: p.Name, Available: p.Stock, Requested: qty}
			}
		}

		now := u.clock.Now()
		newStocks := make(map[int64]int64, len(ids))
		items := make([]model.OrderItem, 0, len(ids))
		for _, id := range ids {
			p := byID[id]
			qty := cart.Quantity(id)
			newStocks[id] = p.Stock - qty

			//価格はこの時点で固定
			items = append(items, model.OrderItem{
				ProductID:           id,
				ProductNameSnapshot: p.Name,
				UnitPrice:           p.Price,
				Quantity:            qty,
				CreatedAt:           now,
			})
		}

		if err := r.Products().BulkUpdateStock(ctx, newStocks); err != nil {
			return dbError(err)
		}

		order := model.Order{
			CreatedByID: &actorUserID,
			CustomerID:  in.CustomerID,
			CounterID:   counterID,
			Status:      model.OrderStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		order.RecalculateTotal(items)

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return dbError(err)
		}
		order.ID = orderID

		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return dbError(err)
		}
		if err := writeOrderEvent(ctx, r, model.OrderEventCreated, order, items, actorUserID, now); err != nil {
			return err
		}

		//同時支払い。足りなければ注文ごと取り消す
		if in.Payment != nil {
			if err := order.Pay(in.Payment.AmountReceived, method, now); err != nil {
				return err
			}
			if err := r.Orders().Save(ctx, order); err != nil {
				return dbError(err)
			}
			if err := writeOrderEvent(ctx, r, model.OrderEventPaid, order, items, actorUserID, now); err != nil {
				return err
			}
		}

		out = toOrderOutput(order, items)
		return nil
	})
	//同じキーの確定が並行して先にコミットされた
	if err != nil && key != "" && errors.Is(err, repo.ErrDuplicateKey) {
		return u.replayAfterConflict(ctx, actorUserID, key)
	}
	if err != nil {
		return OrderOutput{}, err
	}

	if replayed {
		u.logger.Info("checkout replayed", zap.Int64("order_id", out.ID), zap.String("idempotency_key", key))
		return out, nil
	}

	u.removeOrderedLines(ctx, in.SessionID, out)

	u.logger.Info("order checked out",
		zap.Int64("order_id", out.ID),
		zap.Int64("actor_user_id", actorUserID),
		zap.String("status", out.Status),
		zap.String("total", out.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(out.Items)))
	return out, nil
}

func findCheckoutReplay(ctx context.Context, r repo.TxRepos, actorUserID int64, key string) (OrderOutput, bool, error) {
	existing, found, err := r.Orders().FindByIdempotencyKey(ctx, actorUserID, key)
	if err != nil {
		return OrderOutput{}, false, dbError(err)
	}
	if !found {
		return OrderOutput{}, false, nil
	}
	items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
	if err != nil {
		return OrderOutput{}, false, dbError(err)
	}
	return toOrderOutput(existing, items), true, nil
}

// 一意制約で負けた側。失敗したトランザクションの外で読み直す
func (u *OrderUsecase) replayAfterConflict(ctx context.Context, actorUserID int64, key string) (OrderOutput, error) {
	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := findCheckoutReplay(ctx, r, actorUserID, key)
		if err != nil {
			return err
		}
		if !found {
			return NewHTTPError(http.StatusConflict, "idempotency_key conflict")
		}
		out = existing
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	u.logger.Info("checkout replayed after conflict", zap.Int64("order_id", out.ID), zap.String("idempotency_key", key))
	return out, nil
}

// 注文した分だけカートから減らす。確定中に追加された行は残す
// 注文は確定済みなので、失敗はログだけ
func (u *OrderUsecase) removeOrderedLines(ctx context.Context, sessionID string, out OrderOutput) {
	ordered := make(map[int64]int64, len(out.Items))
	for _, it := range out.Items {
		ordered[it.ProductID] += it.Quantity
	}

	cart, err := u.carts.Get(ctx, sessionID)
	if err == nil {
		cart.Subtract(ordered)
		if cart.IsEmpty() {
			err = u.carts.Delete(ctx, sessionID)
		} else {
			cart.UpdatedAt = u.clock.Now()
			err = u.carts.Save(ctx, sessionID, cart)
		}
	}
	if err != nil {
		u.logger.Warn("failed to clear cart after checkout", zap.Int64("order_id", out.ID), zap.Error(err))
	}
}

func (u *OrderUsecase) List(ctx context.Context, f repo.OrderListFilter) (OrderListOutput, error) {
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" {
		switch model.OrderStatus(f.Status) {
		case model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusCanceled, model.OrderStatusRefunded:
		default:
			return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, f)
		if err != nil {
			return dbError(err)
		}

		out = OrderListOutput{Items: make([]OrderOutput, 0, len(orders)), Total: total, Page: f.Page, Limit: f.Limit}
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return dbError(err)
			}
			out.Items = append(out.Items, toOrderOutput(o, items))
		}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) Detail(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return &model.NotFoundError{Resource: "order", ID: orderID}
		}
		if err != nil {
			return dbError(err)
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError(err)
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

type InvoiceOutput struct {
	StoreName    string          `json:"store_name"`
	ContactEmail string          `json:"contact_email"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	IssuedAt     time.Time       `json:"issued_at"`
	Order        OrderOutput     `json:"order"`
}

// 請求書の表示用データ（レイアウトはクライアント側）
func (u *OrderUsecase) Invoice(ctx context.Context, orderID int64) (InvoiceOutput, error) {
	order, err := u.Detail(ctx, orderID)
	if err != nil {
		return InvoiceOutput{}, err
	}

	s, err := u.settings.GetOrCreate(ctx)
	if err != nil {
		return InvoiceOutput{}, dbError(err)
	}

	return InvoiceOutput{
		StoreName:    s.StoreName,
		ContactEmail: s.ContactEmail,
		TaxRate:      s.TaxRate,
		IssuedAt:     u.clock.Now(),
		Order:        order,
	}, nil
}

func writeOrderEvent(ctx context.Context, r repo.TxRepos, typ model.OrderEventType, o model.Order, items []model.OrderItem, actorUserID int64, now time.Time) error {
	ev, err := newOrderEvent(typ, o, items, actorUserID, now)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "event encode error")
	}
	if err := r.Outbox().Create(ctx, ev); err != nil {
		return dbError(err)
	}
	return nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}

	return OrderOutput{
		ID:             o.ID,
		Status:         string(o.Status),
		TotalAmount:    o.TotalAmount,
		CreatedByID:    o.CreatedByID,
		CustomerID:     o.CustomerID,
		CounterID:      o.CounterID,
		PaymentMethod:  string(o.PaymentMethod),
		AmountReceived: o.AmountReceived,
		Change:         o.Change(),
		PaidAt:         o.PaidAt,
		CanceledAt:     o.CanceledAt,
		RefundedAt:     o.RefundedAt,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}
