package handler

import (
	"net/http"

	"jewelrystore/internal/config"
	"jewelrystore/internal/middleware"
	"jewelrystore/internal/policy"
	"jewelrystore/internal/repository"
	"jewelrystore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /orders/:id 配下のステータス変更と明細修正
type OrderTransitionHandler struct {
	orders *usecase.OrderUsecase
	uc     *usecase.OrderTransitionUsecase
}

func NewOrderTransitionHandler(orders *usecase.OrderUsecase, uc *usecase.OrderTransitionUsecase) *OrderTransitionHandler {
	return &OrderTransitionHandler{orders: orders, uc: uc}
}

type UpdateOrderItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *OrderTransitionHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/orders/:id")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.POST("/pay", h.pay, middleware.RequirePermission(policy.ActionOrderPay))
	g.POST("/cancel", h.cancel, middleware.RequirePermission(policy.ActionOrderCancel))
	g.POST("/refund", h.refund, middleware.RequirePermission(policy.ActionOrderRefund))
	g.POST("/recalculate", h.recalculate, middleware.RequirePermission(policy.ActionOrderEdit))
	g.PATCH("/items/:item_id", h.updateItem, middleware.RequirePermission(policy.ActionOrderEdit))
}

func (h *OrderTransitionHandler) pay(c echo.Context) error {
	order, err := loadOrderFor(c, h.orders, policy.ActionOrderPay)
	if err != nil {
		return writeError(c, err)
	}

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, _ := getUserIDFromContext(c)
	out, err := h.uc.Pay(c.Request().Context(), userID, order.ID, usecase.PayInput{
		AmountReceived: req.AmountReceived,
		Method:         req.Method,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderTransitionHandler) cancel(c echo.Context) error {
	order, err := loadOrderFor(c, h.orders, policy.ActionOrderCancel)
	if err != nil {
		return writeError(c, err)
	}

	userID, _ := getUserIDFromContext(c)
	out, err := h.uc.Cancel(c.Request().Context(), userID, order.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderTransitionHandler) refund(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	userID, _ := getUserIDFromContext(c)
	out, err := h.uc.Refund(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderTransitionHandler) recalculate(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	userID, _ := getUserIDFromContext(c)
	out, err := h.uc.RecalculateTotal(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderTransitionHandler) updateItem(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item_id"})
	}

	var req UpdateOrderItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, _ := getUserIDFromContext(c)
	out, err := h.uc.UpdateItemQuantity(c.Request().Context(), userID, id, itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
