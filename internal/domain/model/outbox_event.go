package model

import (
	"encoding/json"
	"time"
)

type OrderEventType string

const (
	OrderEventCreated  OrderEventType = "order.created"
	OrderEventPaid     OrderEventType = "order.paid"
	OrderEventCanceled OrderEventType = "order.canceled"
	OrderEventRefunded OrderEventType = "order.refunded"
	OrderEventUpdated  OrderEventType = "order.updated"
)

// 注文変更と同じトランザクションで書き、pollerがKafkaへ流す
type OutboxEvent struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     string          `gorm:"type:uuid;not null;uniqueIndex" json:"event_id"`
	AggregateID string          `gorm:"type:varchar(64);not null;index" json:"aggregate_id"`
	EventType   OrderEventType  `gorm:"type:varchar(50);not null" json:"event_type"`
	Payload     json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	ProcessedAt *time.Time      `gorm:"index" json:"processed_at"`
}
