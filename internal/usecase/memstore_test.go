package usecase_test

import (
	"context"
	"sort"
	"time"

	"jewelrystore/internal/domain/model"
	repo "jewelrystore/internal/repository"

	"github.com/shopspring/decimal"
)

// トランザクションの中身を確かめるためのメモリ上のDB
// WithinTxはコピーに対して実行し、成功したときだけ反映する（失敗ならロールバック）
type memState struct {
	products  map[int64]model.Product
	orders    map[int64]model.Order
	items     map[int64][]model.OrderItem
	audits    []model.AuditLog
	outbox    []model.OutboxEvent
	nextOrder int64
	nextItem  int64

	// 残り回数だけキー検索を空振りさせる（別リクエストが未コミットの状態）
	// ロールバックでも戻らないようにポインタで共有する
	missedKeyLookups *int
}

func (s *memState) clone() *memState {
	c := &memState{
		products:  make(map[int64]model.Product, len(s.products)),
		orders:    make(map[int64]model.Order, len(s.orders)),
		items:     make(map[int64][]model.OrderItem, len(s.items)),
		audits:    append([]model.AuditLog(nil), s.audits...),
		outbox:    append([]model.OutboxEvent(nil), s.outbox...),
		nextOrder: s.nextOrder,
		nextItem:  s.nextItem,

		missedKeyLookups: s.missedKeyLookups,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]model.OrderItem(nil), v...)
	}
	return c
}

type memTxManager struct {
	state *memState
	calls int
}

func newMemTxManager(products ...model.Product) *memTxManager {
	st := &memState{
		products:         map[int64]model.Product{},
		orders:           map[int64]model.Order{},
		items:            map[int64][]model.OrderItem{},
		missedKeyLookups: new(int),
	}
	for _, p := range products {
		st.products[p.ID] = p
	}
	return &memTxManager{state: st}
}

func (m *memTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.calls++
	work := m.state.clone()
	if err := fn(memRepos{s: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *memTxManager) stock(id int64) int64 {
	return m.state.products[id].Stock
}

func (m *memTxManager) orderCount() int {
	return len(m.state.orders)
}

func (m *memTxManager) eventTypes() []model.OrderEventType {
	out := make([]model.OrderEventType, 0, len(m.state.outbox))
	for _, ev := range m.state.outbox {
		out = append(out, ev.EventType)
	}
	return out
}

type memRepos struct{ s *memState }

func (r memRepos) Orders() repo.OrderRepository         { return memOrders{s: r.s} }
func (r memRepos) OrderItems() repo.OrderItemRepository { return memOrderItems{s: r.s} }
func (r memRepos) Products() repo.ProductRepository     { return memProducts{s: r.s} }
func (r memRepos) AuditLogs() repo.AuditLogRepository   { return memAudits{s: r.s} }
func (r memRepos) Outbox() repo.OutboxRepository        { return memOutbox{s: r.s} }

// ---- products ----

type memProducts struct{ s *memState }

func (m memProducts) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in transaction tests")
}

func (m memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := m.s.products[id]
	if !ok || p.DeletedAt.Valid {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (m memProducts) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	panic("not used in transaction tests")
}

func (m memProducts) LockByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make([]model.Product, 0, len(sorted))
	for _, id := range sorted {
		if p, ok := m.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m memProducts) BulkUpdateStock(ctx context.Context, stocks map[int64]int64) error {
	for id, stock := range stocks {
		p := m.s.products[id]
		p.Stock = stock
		m.s.products[id] = p
	}
	return nil
}

func (m memProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in transaction tests")
}

func (m memProducts) Update(ctx context.Context, p model.Product) error {
	panic("not used in transaction tests")
}

func (m memProducts) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in transaction tests")
}

func (m memProducts) CountActive(ctx context.Context) (int64, error) {
	panic("not used in transaction tests")
}

// ---- orders ----

type memOrders struct{ s *memState }

func (m memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := m.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (m memOrders) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return m.FindByID(ctx, orderID)
}

func (m memOrders) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	ids := make([]int64, 0, len(m.s.orders))
	for id, o := range m.s.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.CreatedByID != nil && (o.CreatedByID == nil || *o.CreatedByID != *f.CreatedByID) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	out := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.s.orders[id])
	}
	return out, int64(len(out)), nil
}

func (m memOrders) Create(ctx context.Context, order model.Order) (int64, error) {
	if order.IdempotencyKey != nil && order.CreatedByID != nil {
		for _, o := range m.s.orders {
			if sameIdempotencyKey(o, *order.CreatedByID, *order.IdempotencyKey) {
				return 0, repo.ErrDuplicateKey
			}
		}
	}
	m.s.nextOrder++
	order.ID = m.s.nextOrder
	m.s.orders[order.ID] = order
	return order.ID, nil
}

func (m memOrders) Save(ctx context.Context, order model.Order) error {
	if _, ok := m.s.orders[order.ID]; !ok {
		return repo.ErrNotFound
	}
	m.s.orders[order.ID] = order
	return nil
}

func (m memOrders) FindByIdempotencyKey(ctx context.Context, createdByID int64, key string) (model.Order, bool, error) {
	if *m.s.missedKeyLookups > 0 {
		*m.s.missedKeyLookups--
		return model.Order{}, false, nil
	}
	for _, o := range m.s.orders {
		if sameIdempotencyKey(o, createdByID, key) {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

func sameIdempotencyKey(o model.Order, createdByID int64, key string) bool {
	return o.IdempotencyKey != nil && *o.IdempotencyKey == key &&
		o.CreatedByID != nil && *o.CreatedByID == createdByID
}

func (m memOrders) SumTotalsInRange(ctx context.Context, from, to time.Time, statuses []model.OrderStatus) (decimal.Decimal, error) {
	panic("not used in transaction tests")
}

func (m memOrders) CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	panic("not used in transaction tests")
}

// ---- order items ----

type memOrderItems struct{ s *memState }

func (m memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	for _, it := range items {
		m.s.nextItem++
		it.ID = m.s.nextItem
		it.OrderID = orderID
		m.s.items[orderID] = append(m.s.items[orderID], it)
	}
	return nil
}

func (m memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	return append([]model.OrderItem(nil), m.s.items[orderID]...), nil
}

func (m memOrderItems) FindByID(ctx context.Context, orderID int64, itemID int64) (model.OrderItem, error) {
	for _, it := range m.s.items[orderID] {
		if it.ID == itemID {
			return it, nil
		}
	}
	return model.OrderItem{}, repo.ErrNotFound
}

func (m memOrderItems) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	for orderID, list := range m.s.items {
		for i := range list {
			if list[i].ID == itemID {
				list[i].Quantity = qty
				m.s.items[orderID] = list
				return nil
			}
		}
	}
	return repo.ErrNotFound
}

// ---- audit / outbox ----

type memAudits struct{ s *memState }

func (m memAudits) Create(ctx context.Context, log model.AuditLog) error {
	m.s.audits = append(m.s.audits, log)
	return nil
}

func (m memAudits) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	panic("not used in transaction tests")
}

type memOutbox struct{ s *memState }

func (m memOutbox) Create(ctx context.Context, ev model.OutboxEvent) error {
	m.s.outbox = append(m.s.outbox, ev)
	return nil
}

func (m memOutbox) ListUnprocessed(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	panic("not used in transaction tests")
}

func (m memOutbox) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	panic("not used in transaction tests")
}
