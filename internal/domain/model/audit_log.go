package model

import "time"

// 操作の種類
type AuditAction string

const (
	AuditActionUpdateStock      AuditAction = "UPDATE_STOCK"
	AuditActionPayOrder         AuditAction = "PAY_ORDER"
	AuditActionCancelOrder      AuditAction = "CANCEL_ORDER"
	AuditActionRefundOrder      AuditAction = "REFUND_ORDER"
	AuditActionUpdateOrderItem  AuditAction = "UPDATE_ORDER_ITEM"
	AuditActionRecalculateOrder AuditAction = "RECALCULATE_ORDER"
	AuditActionUpdateUser       AuditAction = "UPDATE_USER"
	AuditActionUpdateSetting    AuditAction = "UPDATE_SETTING"
	AuditActionDeleteProduct    AuditAction = "DELETE_PRODUCT"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
	AuditResourceSetting AuditResourceType = "setting"
)

// 監査ログ
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
