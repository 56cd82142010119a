package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// アクセスログ
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("query", req.URL.RawQuery),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			}
			if p, ok := PrincipalFromContext(c); ok {
				fields = append(fields, zap.Int64("user_id", p.UserID))
			}

			if c.Response().Status >= 500 {
				logger.Error("HTTP request", append(fields, zap.Error(err))...)
			} else {
				logger.Info("HTTP request", fields...)
			}
			return nil
		}
	}
}
