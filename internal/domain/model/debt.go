package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 債務（経理担当が管理）
type Debt struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	InterestRate decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"interest_rate"`
	AccountantID int64           `gorm:"not null;index" json:"accountant_id"`
	Note         string          `gorm:"type:text" json:"note"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 利息額 = amount * rate / 100
func (d Debt) Interest() decimal.Decimal {
	return d.Amount.Mul(d.InterestRate).Div(decimal.NewFromInt(100)).Round(2)
}
