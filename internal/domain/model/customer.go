package model

import "time"

// 来店顧客
type Customer struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//氏名
	Name string `gorm:"type:varchar(255);not null" json:"name"`

	//電話番号
	Phone string `gorm:"type:varchar(30)" json:"phone"`

	//住所
	Address string `gorm:"type:text" json:"address"`

	//ポイント
	LoyaltyPoints int64 `gorm:"not null;default:0" json:"loyalty_points"`

	//登録したスタッフ
	CreatedByID *int64 `gorm:"index" json:"created_by_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
