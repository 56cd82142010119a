package usecase

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"jewelrystore/internal/domain/model"
	repo "jewelrystore/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 注文のステータス遷移と明細の修正
type OrderTransitionUsecase struct {
	tx     repo.TransactionManager
	clock  Clock
	logger *zap.Logger
}

func NewOrderTransitionUsecase(tx repo.TransactionManager, clock Clock, logger *zap.Logger) *OrderTransitionUsecase {
	return &OrderTransitionUsecase{tx: tx, clock: clock, logger: logger}
}

type orderStatusAudit struct {
	Status      model.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
}

// 注文をロックして明細と一緒に取り出す
func lockOrder(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, []model.OrderItem, error) {
	o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, nil, &model.NotFoundError{Resource: "order", ID: orderID}
	}
	if err != nil {
		return model.Order{}, nil, dbError(err)
	}

	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return model.Order{}, nil, dbError(err)
	}
	return o, items, nil
}

// 明細の数量を商品ごとに在庫へ戻す
func restoreStock(ctx context.Context, r repo.TxRepos, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	qtyByProduct := make(map[int64]int64, len(items))
	for _, it := range items {
		qtyByProduct[it.ProductID] += it.Quantity
	}
	ids := make([]int64, 0, len(qtyByProduct))
	for id := range qtyByProduct {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked, err := r.Products().LockByIDs(ctx, ids)
	if err != nil {
		return dbError(err)
	}

	newStocks := make(map[int64]int64, len(locked))
	for _, p := range locked {
		newStocks[p.ID] = p.Stock + qtyByProduct[p.ID]
	}
	if len(newStocks) != len(ids) {
		return NewHTTPError(http.StatusInternalServerError, "product missing for order item")
	}
	if err := r.Products().BulkUpdateStock(ctx, newStocks); err != nil {
		return dbError(err)
	}
	return nil
}

func (u *OrderTransitionUsecase) finish(ctx context.Context, r repo.TxRepos, actorUserID int64, action model.AuditAction, ev model.OrderEventType, before orderStatusAudit, o model.Order, items []model.OrderItem) error {
	now := u.clock.Now()
	if err := r.Orders().Save(ctx, o); err != nil {
		return dbError(err)
	}

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   o.ID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(orderStatusAudit{Status: o.Status, TotalAmount: o.TotalAmount}),
		CreatedAt:    now,
	}); err != nil {
		return dbError(err)
	}

	return writeOrderEvent(ctx, r, ev, o, items, actorUserID, now)
}

type PayInput struct {
	AmountReceived decimal.Decimal
	Method         string
}

// 支払い（pending -> paid）
func (u *OrderTransitionUsecase) Pay(ctx context.Context, actorUserID int64, orderID int64, in PayInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	method, err := validatePayment(&PaymentInput{AmountReceived: in.AmountReceived, Method: in.Method})
	if err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, items, err := lockOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		before := orderStatusAudit{Status: o.Status, TotalAmount: o.TotalAmount}

		if err := o.Pay(in.AmountReceived, method, u.clock.Now()); err != nil {
			return err
		}
		if err := u.finish(ctx, r, actorUserID, model.AuditActionPayOrder, model.OrderEventPaid, before, o, items); err != nil {
			return err
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.logger.Info("order paid", zap.Int64("order_id", orderID), zap.String("method", string(method)))
	return out, nil
}

// キャンセル（pending -> canceled）。在庫を戻す
func (u *OrderTransitionUsecase) Cancel(ctx context.Context, actorUserID int64, orderID int64) (OrderOutput, error) {
	return u.release(ctx, actorUserID, orderID, model.OrderStatusCanceled)
}

// 返金（paid -> refunded）。在庫を戻す
func (u *OrderTransitionUsecase) Refund(ctx context.Context, actorUserID int64, orderID int64) (OrderOutput, error) {
	return u.release(ctx, actorUserID, orderID, model.OrderStatusRefunded)
}

// ステータスを先に変えてから在庫を戻す。遷移できなければ在庫には触らない
func (u *OrderTransitionUsecase) release(ctx context.Context, actorUserID int64, orderID int64, next model.OrderStatus) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	action, ev := model.AuditActionCancelOrder, model.OrderEventCanceled
	if next == model.OrderStatusRefunded {
		action, ev = model.AuditActionRefundOrder, model.OrderEventRefunded
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, items, err := lockOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		before := orderStatusAudit{Status: o.Status, TotalAmount: o.TotalAmount}

		now := u.clock.Now()
		if next == model.OrderStatusRefunded {
			err = o.Refund(now)
		} else {
			err = o.Cancel(now)
		}
		if err != nil {
			return err
		}

		if err := restoreStock(ctx, r, items); err != nil {
			return err
		}
		if err := u.finish(ctx, r, actorUserID, action, ev, before, o, items); err != nil {
			return err
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.logger.Info("order stock released", zap.Int64("order_id", orderID), zap.String("status", string(next)))
	return out, nil
}

// pendingの明細数量を変更する。差分だけ在庫を動かし、合計を再計算
func (u *OrderTransitionUsecase) UpdateItemQuantity(ctx context.Context, actorUserID int64, orderID int64, itemID int64, qty int64) (OrderOutput, error) {
	if orderID <= 0 || itemID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if qty < 1 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, items, err := lockOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusPending {
			return NewHTTPError(http.StatusConflict, "only pending orders can be edited")
		}
		before := orderStatusAudit{Status: o.Status, TotalAmount: o.TotalAmount}

		idx := -1
		for i := range items {
			if items[i].ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &model.NotFoundError{Resource: "order item", ID: itemID}
		}

		delta := qty - items[idx].Quantity
		if delta != 0 {
			productID := items[idx].ProductID
			locked, err := r.Products().LockByIDs(ctx, []int64{productID})
			if err != nil {
				return dbError(err)
			}
			if len(locked) == 0 {
				return &model.NotFoundError{Resource: "product", ID: productID}
			}
			p := locked[0]
			if delta > 0 && p.Stock < delta {
				return &model.InsufficientStockError{ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: delta}
			}
			if err := r.Products().BulkUpdateStock(ctx, map[int64]int64{p.ID: p.Stock - delta}); err != nil {
				return dbError(err)
			}
			if err := r.OrderItems().UpdateQuantity(ctx, itemID, qty); err != nil {
				return dbError(err)
			}
			items[idx].Quantity = qty
		}

		o.RecalculateTotal(items)
		if err := u.finish(ctx, r, actorUserID, model.AuditActionUpdateOrderItem, model.OrderEventUpdated, before, o, items); err != nil {
			return err
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 明細から合計を出し直して保存
func (u *OrderTransitionUsecase) RecalculateTotal(ctx context.Context, actorUserID int64, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, items, err := lockOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		before := orderStatusAudit{Status: o.Status, TotalAmount: o.TotalAmount}

		o.RecalculateTotal(items)
		if err := u.finish(ctx, r, actorUserID, model.AuditActionRecalculateOrder, model.OrderEventUpdated, before, o, items); err != nil {
			return err
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}
