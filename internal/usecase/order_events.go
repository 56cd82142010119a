package usecase

import (
	"encoding/json"
	"strconv"
	"time"

	"jewelrystore/internal/domain/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderEventPayload struct {
	OrderID     int64             `json:"order_id"`
	Status      model.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	ActorUserID int64             `json:"actor_user_id"`
	Items       []orderEventItem  `json:"items"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

type orderEventItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// outboxに積むイベントを作る
func newOrderEvent(typ model.OrderEventType, o model.Order, items []model.OrderItem, actorUserID int64, now time.Time) (model.OutboxEvent, error) {
	p := orderEventPayload{
		OrderID:     o.ID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		ActorUserID: actorUserID,
		Items:       make([]orderEventItem, 0, len(items)),
		OccurredAt:  now,
	}
	for _, it := range items {
		p.Items = append(p.Items, orderEventItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}

	b, err := json.Marshal(p)
	if err != nil {
		return model.OutboxEvent{}, err
	}
	return model.OutboxEvent{
		EventID:     uuid.NewString(),
		AggregateID: strconv.FormatInt(o.ID, 10),
		EventType:   typ,
		Payload:     b,
		CreatedAt:   now,
	}, nil
}

// 監査ログ用のJSON（失敗しても空文字）
func toJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
