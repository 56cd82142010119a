package middleware

import (
	"net/http"

	"jewelrystore/internal/policy"

	"github.com/labstack/echo/v4"
)

// AuthJWT（とTokenVersionGuard）が入れたPrincipal
func PrincipalFromContext(c echo.Context) (policy.Principal, bool) {
	p, ok := c.Get(CtxPrincipalKey).(policy.Principal)
	if !ok || p.UserID <= 0 {
		return policy.Principal{}, false
	}
	return p, true
}

// 操作ごとの権限チェック（持ち主の判定はhandler側）
func RequirePermission(action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if !policy.Evaluate(p, action, policy.Any) {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			return next(c)
		}
	}
}
