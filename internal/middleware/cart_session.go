package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CartCookieName      = "cart_session"
	CtxCartSessionIDKey = "cart_session_id" // string
)

// カートのセッションIDをCookieで払い出す（無い・壊れていれば新規）
func CartSession(ttl time.Duration, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID := ""
			if ck, err := c.Cookie(CartCookieName); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					sessionID = ck.Value
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			//アクセスのたびに期限を延ばす
			c.SetCookie(&http.Cookie{
				Name:     CartCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(ttl),
			})

			c.Set(CtxCartSessionIDKey, sessionID)
			return next(c)
		}
	}
}
