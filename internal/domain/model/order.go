package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusRefunded OrderStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// 支払い方法の文字列を検証する
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodBankTransfer:
		return PaymentMethod(s), true
	default:
		return "", false
	}
}

// 遷移表（pending -> paid|canceled, paid -> refunded）
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCanceled},
	OrderStatusPaid:    {OrderStatusRefunded},
}

// 注文
// TotalAmountは明細から導出する値（RecalculateTotalで更新）
type Order struct {
	ID             int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedByID    *int64              `gorm:"index;uniqueIndex:idx_orders_creator_idempotency_key,priority:1" json:"created_by_id"`
	CustomerID     *int64              `gorm:"index" json:"customer_id"`
	CounterID      *int64              `gorm:"index" json:"counter_id"`
	Status         OrderStatus         `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount    decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`
	PaymentMethod  PaymentMethod       `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	AmountReceived decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"amount_received"`
	PaidAt         *time.Time          `json:"paid_at"`
	CanceledAt     *time.Time          `json:"canceled_at"`
	RefundedAt     *time.Time          `json:"refunded_at"`
	IdempotencyKey *string             `gorm:"type:varchar(255);uniqueIndex:idx_orders_creator_idempotency_key,priority:2" json:"-"`
	CreatedAt      time.Time           `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (o Order) CanTransitionTo(next OrderStatus) bool {
	for _, s := range orderTransitions[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// 在庫を確保している状態か（キャンセル・返金で戻す対象）
func (o Order) HoldsStock() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPaid
}

func (o *Order) transition(next OrderStatus) error {
	if !o.CanTransitionTo(next) {
		return &StateTransitionError{OrderID: o.ID, Current: o.Status, Attempted: next}
	}
	o.Status = next
	return nil
}

// 支払い。受取額が合計未満ならステータスは変えない
func (o *Order) Pay(received decimal.Decimal, method PaymentMethod, now time.Time) error {
	if !o.CanTransitionTo(OrderStatusPaid) {
		return &StateTransitionError{OrderID: o.ID, Current: o.Status, Attempted: OrderStatusPaid}
	}
	if received.LessThan(o.TotalAmount) {
		return &InsufficientPaymentError{Total: o.TotalAmount, Received: received}
	}
	if err := o.transition(OrderStatusPaid); err != nil {
		return err
	}
	o.PaymentMethod = method
	o.AmountReceived = decimal.NewNullDecimal(received)
	o.PaidAt = &now
	return nil
}

// キャンセル（在庫戻しは呼び出し側のトランザクションで行う）
func (o *Order) Cancel(now time.Time) error {
	if err := o.transition(OrderStatusCanceled); err != nil {
		return err
	}
	o.CanceledAt = &now
	return nil
}

// 返金（paidからのみ）
func (o *Order) Refund(now time.Time) error {
	if err := o.transition(OrderStatusRefunded); err != nil {
		return err
	}
	o.RefundedAt = &now
	return nil
}

// 明細から合計を計算し直す
func (o *Order) RecalculateTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	o.TotalAmount = total
	return total
}

// お釣り（未払いならゼロ）
func (o Order) Change() decimal.Decimal {
	if !o.AmountReceived.Valid {
		return decimal.Zero
	}
	return o.AmountReceived.Decimal.Sub(o.TotalAmount)
}
