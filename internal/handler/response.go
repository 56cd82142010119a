package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/middleware"
	"jewelrystore/internal/usecase"
	"jewelrystore/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error   string        `json:"error"`
	Details *ErrorDetails `json:"details,omitempty"`
}

// ドメインエラーの中身（返す項目はエラーごとに違う）
type ErrorDetails struct {
	Resource  string           `json:"resource,omitempty"`
	ID        int64            `json:"id,omitempty"`
	ProductID int64            `json:"product_id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Available *int64           `json:"available,omitempty"`
	Requested *int64           `json:"requested,omitempty"`
	Total     *decimal.Decimal `json:"total,omitempty"`
	Received  *decimal.Decimal `json:"received,omitempty"`
	Current   string           `json:"current,omitempty"`
	Attempted string           `json:"attempted,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var (
		nf  *model.NotFoundError
		oos *model.OutOfStockError
		is  *model.InsufficientStockError
		ip  *model.InsufficientPaymentError
		st  *model.StateTransitionError
	)
	switch {
	case errors.As(err, &nf):
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not found",
			Details: &ErrorDetails{Resource: nf.Resource, ID: nf.ID},
		})
	case errors.As(err, &oos):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "out of stock",
			Details: &ErrorDetails{ProductID: oos.ProductID, Name: oos.Name},
		})
	case errors.As(err, &is):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error: "insufficient stock",
			Details: &ErrorDetails{
				ProductID: is.ProductID,
				Name:      is.Name,
				Available: &is.Available,
				Requested: &is.Requested,
			},
		})
	case errors.As(err, &ip):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "insufficient payment",
			Details: &ErrorDetails{Total: &ip.Total, Received: &ip.Received},
		})
	case errors.As(err, &st):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "invalid state transition",
			Details: &ErrorDetails{ID: st.OrderID, Current: string(st.Current), Attempted: string(st.Attempted)},
		})
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	switch {
	case errors.Is(err, validator.ErrInvalidInput), errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	case errors.Is(err, validator.ErrEmailAlreadyUsed):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "email already used"})
	case errors.Is(err, validator.ErrUsernameAlreadyUsed):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "username already used"})
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	case errors.Is(err, usecase.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}

	//500
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 認証済みユーザーのID
func getUserIDFromContext(c echo.Context) (int64, bool) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return 0, false
	}
	return p.UserID, true
}

func getCartSessionID(c echo.Context) string {
	s, _ := c.Get(middleware.CtxCartSessionIDKey).(string)
	return s
}

func paramID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// page（default 1）とlimit（default 20）
func pageAndLimit(c echo.Context) (int, int, bool) {
	page, limit := 1, 20
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		limit = l
	}
	return page, limit, true
}

func optionalInt64Query(c echo.Context, name string) (*int64, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	x, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, false
	}
	return &x, true
}

// RFC3339のクエリ。空ならnil
func parseTimeQuery(c echo.Context, name string) (*time.Time, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, false
	}
	return &t, true
}
