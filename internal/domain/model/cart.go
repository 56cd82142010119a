package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// セッション単位のカート（product_id -> 数量）
// セッションストアにJSONで保存する。数量は常に1以上
type Cart struct {
	Items     map[int64]int64 `json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// 1行あたりの数量の上限
const MaxCartLineQuantity int64 = 999

func NewCart() Cart {
	return Cart{Items: map[int64]int64{}}
}

func (c *Cart) ensure() {
	if c.Items == nil {
		c.Items = map[int64]int64{}
	}
}

// 上限で頭打ち。0以下になったら削除
func (c *Cart) Add(productID int64, delta int64) {
	c.ensure()
	cur := c.Items[productID]
	if delta > MaxCartLineQuantity-cur {
		c.Items[productID] = MaxCartLineQuantity
		return
	}
	c.Items[productID] = cur + delta
	if c.Items[productID] <= 0 {
		delete(c.Items, productID)
	}
}

// 0以下なら削除、上限で頭打ち
func (c *Cart) SetQuantity(productID int64, qty int64) {
	c.ensure()
	if qty <= 0 {
		delete(c.Items, productID)
		return
	}
	if qty > MaxCartLineQuantity {
		qty = MaxCartLineQuantity
	}
	c.Items[productID] = qty
}

// 注文した数量だけ減らす（確定後に追加された分は残る）
func (c *Cart) Subtract(ordered map[int64]int64) {
	for id, qty := range ordered {
		if _, ok := c.Items[id]; ok {
			c.Add(id, -qty)
		}
	}
}

func (c *Cart) Remove(productID int64) {
	delete(c.Items, productID)
}

func (c Cart) Quantity(productID int64) int64 {
	return c.Items[productID]
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// 昇順のproduct_id（ロック順・表示順に使う）
func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.Items))
	for id := range c.Items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type CartLine struct {
	Product  Product         `json:"product"`
	Quantity int64           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartSnapshot struct {
	Lines      []CartLine      `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	TotalItems int64           `json:"total_items"`
}

// 現在価格で小計を出す。カタログから消えた商品は載せない
func BuildCartSnapshot(c Cart, products map[int64]Product) CartSnapshot {
	snap := CartSnapshot{Lines: []CartLine{}, Total: decimal.Zero}
	for _, id := range c.ProductIDs() {
		p, ok := products[id]
		if !ok || !p.Available() {
			continue
		}
		qty := c.Items[id]
		sub := p.Price.Mul(decimal.NewFromInt(qty))
		snap.Lines = append(snap.Lines, CartLine{Product: p, Quantity: qty, Subtotal: sub})
		snap.Total = snap.Total.Add(sub)
		snap.TotalItems += qty
	}
	return snap
}
