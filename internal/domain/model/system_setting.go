package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 店舗設定は1行だけ（id=1）
const SystemSettingID int64 = 1

type SystemSetting struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	StoreName    string          `gorm:"type:varchar(255);not null" json:"store_name"`
	ContactEmail string          `gorm:"type:varchar(255);not null" json:"contact_email"`
	TaxRate      decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"tax_rate"`
	DiscountRate decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"discount_rate"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func DefaultSystemSetting() SystemSetting {
	return SystemSetting{
		ID:           SystemSettingID,
		StoreName:    "Jewelry Sales Manager",
		ContactEmail: "info@example.com",
		TaxRate:      decimal.NewFromFloat(5.0),
		DiscountRate: decimal.Zero,
	}
}
