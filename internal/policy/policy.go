package policy

import "jewelrystore/internal/domain/model"

// 操作
type Action string

const (
	ActionProductManage   Action = "product.manage"
	ActionInventoryManage Action = "inventory.manage"

	ActionOrderCreate  Action = "order.create"
	ActionOrderView    Action = "order.view"
	ActionOrderViewAll Action = "order.view_all"
	ActionOrderPay     Action = "order.pay"
	ActionOrderCancel  Action = "order.cancel"
	ActionOrderRefund  Action = "order.refund"
	ActionOrderEdit    Action = "order.edit"

	ActionCustomerManage Action = "customer.manage"
	ActionCounterView    Action = "counter.view"
	ActionCounterManage  Action = "counter.manage"
	ActionDebtManage     Action = "debt.manage"
	ActionSettingView    Action = "setting.view"
	ActionSettingManage  Action = "setting.manage"
	ActionReportView     Action = "report.view"
	ActionUserManage     Action = "user.manage"
	ActionAuditView      Action = "audit.view"
)

// 操作する人
type Principal struct {
	UserID int64
	Role   model.Role
}

// 操作の対象。OwnerIDは自分の注文など、持ち主で判定するときだけ使う
type Resource struct {
	Type    string
	ID      int64
	OwnerID *int64
}

// 持ち主で判定しないとき
var Any = Resource{}

var (
	staff    = []model.Role{model.RoleAdmin, model.RoleStoreManager, model.RoleSalesStaff}
	managers = []model.Role{model.RoleAdmin, model.RoleStoreManager}
	back     = []model.Role{model.RoleAdmin, model.RoleStoreManager, model.RoleAccountant}
	everyone = []model.Role{model.RoleAdmin, model.RoleStoreManager, model.RoleAccountant, model.RoleSalesStaff}
)

// ロールごとに許可する操作
var rules = map[Action][]model.Role{
	ActionProductManage:   managers,
	ActionInventoryManage: managers,

	ActionOrderCreate:  staff,
	ActionOrderView:    everyone,
	ActionOrderViewAll: back,
	ActionOrderPay:     staff,
	ActionOrderCancel:  staff,
	ActionOrderRefund:  managers,
	ActionOrderEdit:    managers,

	ActionCustomerManage: staff,
	ActionCounterView:    everyone,
	ActionCounterManage:  managers,
	ActionDebtManage:     {model.RoleAdmin, model.RoleAccountant},
	ActionSettingView:    everyone,
	ActionSettingManage:  {model.RoleAdmin},
	ActionReportView:     back,
	ActionUserManage:     {model.RoleAdmin},
	ActionAuditView:      {model.RoleAdmin},
}

// sales_staffは自分が作った注文だけ扱える
var ownerScoped = map[Action]bool{
	ActionOrderView:   true,
	ActionOrderPay:    true,
	ActionOrderCancel: true,
}

func allowed(role model.Role, a Action) bool {
	for _, r := range rules[a] {
		if r == role {
			return true
		}
	}
	return false
}

// 認可の判定はここだけで行う
func Evaluate(p Principal, a Action, r Resource) bool {
	if p.UserID <= 0 || !p.Role.Valid() {
		return false
	}
	if !allowed(p.Role, a) {
		return false
	}
	if p.Role != model.RoleSalesStaff || !ownerScoped[a] || r.OwnerID == nil {
		return true
	}
	return *r.OwnerID == p.UserID
}
