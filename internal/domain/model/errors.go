package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// 対象が存在しない（削除済み・非公開の商品も含む）
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// 在庫0の商品をカートに入れようとした
type OutOfStockError struct {
	ProductID int64
	Name      string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %d (%s) is out of stock", e.ProductID, e.Name)
}

// 確定時に在庫が足りない
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): available=%d requested=%d",
		e.ProductID, e.Name, e.Available, e.Requested)
}

// 受取額が合計に満たない
type InsufficientPaymentError struct {
	Total    decimal.Decimal
	Received decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("payment %s is less than order total %s", e.Received.StringFixed(2), e.Total.StringFixed(2))
}

// 許可されていないステータス遷移
type StateTransitionError struct {
	OrderID   int64
	Current   OrderStatus
	Attempted OrderStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("order %d cannot move from %s to %s", e.OrderID, e.Current, e.Attempted)
}
