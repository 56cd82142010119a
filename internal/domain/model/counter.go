package model

import "time"

// 売り場（カウンター）
// 担当はsales_staff、責任者はstore_manager
type Counter struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Location           string    `gorm:"type:varchar(255);not null" json:"location"`
	AssignedEmployeeID *int64    `gorm:"index" json:"assigned_employee_id"`
	ManagerID          *int64    `gorm:"index" json:"manager_id"`
	Products           []Product `gorm:"many2many:counter_products;" json:"products,omitempty"`
	CreatedAt          time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
