package middleware

import (
	"net/http"
	"strings"

	"jewelrystore/internal/authtoken"
	"jewelrystore/internal/config"
	"jewelrystore/internal/policy"

	"github.com/labstack/echo/v4"
)

const (
	CtxPrincipalKey    = "principal"     // policy.Principal
	CtxTokenVersionKey = "token_version" // int
)

// Bearerトークンを検証し、PrincipalとtvをContextに入れる
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := authtoken.Parse(cfg.JWTSecret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxPrincipalKey, policy.Principal{UserID: claims.UserID(), Role: claims.Role})
			c.Set(CtxTokenVersionKey, claims.TokenVersion)
			return next(c)
		}
	}
}

// "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
