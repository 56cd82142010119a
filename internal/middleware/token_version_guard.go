package middleware

import (
	"net/http"

	"jewelrystore/internal/policy"
	"jewelrystore/internal/repository"

	"github.com/labstack/echo/v4"
)

// トークンのtvがDBのtoken_versionと一致するか確認する。
// 一致したらPrincipalのロールをDBの値に差し替える
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			user, err := userRepo.FindByID(c.Request().Context(), p.UserID)
			if err != nil || user == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//ログアウト・強制ログアウト・ロール変更の後は古いtvになる
			if user.TokenVersion != tv {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if !user.IsActive {
				return c.JSON(http.StatusForbidden, errorJSON("user is inactive"))
			}

			c.Set(CtxPrincipalKey, policy.Principal{UserID: user.ID, Role: user.Role})
			return next(c)
		}
	}
}
