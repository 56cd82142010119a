package server

import (
	"jewelrystore/internal/config"
	"jewelrystore/internal/handler"
	"jewelrystore/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth            *handler.AuthHandler
	Product         *handler.ProductHandler
	AdminProduct    *handler.AdminProductHandler
	AdminUser       *handler.AdminUserHandler
	Cart            *handler.CartHandler
	Order           *handler.OrderHandler
	OrderTransition *handler.OrderTransitionHandler
	Customer        *handler.CustomerHandler
	Counter         *handler.CounterHandler
	Debt            *handler.DebtHandler
	Setting         *handler.SettingHandler
	Report          *handler.ReportHandler
	AuditLog        *handler.AuditLogHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, userRepo repository.UserRepository) {
	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e, cfg, userRepo)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.OrderTransition.RegisterRoutes(e, cfg, userRepo)
	h.Customer.RegisterRoutes(e, cfg, userRepo)
	h.Counter.RegisterRoutes(e, cfg, userRepo)
	h.Debt.RegisterRoutes(e, cfg, userRepo)
	h.Setting.RegisterRoutes(e, cfg, userRepo)
	h.Report.RegisterRoutes(e, cfg, userRepo)
	h.AuditLog.RegisterRoutes(e, cfg, userRepo)
}
