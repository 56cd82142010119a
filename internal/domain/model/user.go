package model

import "time"

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleAccountant   Role = "accountant"
	RoleStoreManager Role = "store_manager"
	RoleSalesStaff   Role = "sales_staff"
)

// ロールごとの所属グループ名
var roleGroupNames = map[Role]string{
	RoleAdmin:        "Admin",
	RoleAccountant:   "Accountant",
	RoleStoreManager: "Store Manager",
	RoleSalesStaff:   "Sales Staff",
}

func (r Role) Valid() bool {
	_, ok := roleGroupNames[r]
	return ok
}

func (r Role) GroupName() string {
	return roleGroupNames[r]
}

type User struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	Username     string  `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string  `gorm:"uniqueIndex;not null"`
	PasswordHash string  `gorm:"column:password_hash;not null"`
	Phone        string  `gorm:"type:varchar(15)"`
	Role         Role    `gorm:"type:varchar(20);not null;default:'sales_staff'"`
	TokenVersion int     `gorm:"not null;default:0"`
	IsActive     bool    `gorm:"not null;default:true"`
	Groups       []Group `gorm:"many2many:user_groups;"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// 権限グループ
type Group struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
