package handler

import (
	"net/http"
	"strings"

	"jewelrystore/internal/config"
	"jewelrystore/internal/middleware"
	"jewelrystore/internal/policy"
	"jewelrystore/internal/repository"
	"jewelrystore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type PaymentRequest struct {
	AmountReceived decimal.Decimal `json:"amount_received"`
	Method         string          `json:"method"`
}

type CheckoutRequest struct {
	CustomerID *int64          `json:"customer_id"`
	Payment    *PaymentRequest `json:"payment"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/checkout", h.checkout,
		middleware.CartSession(cfg.CartTTL, cfg.CookieSecure),
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.RequirePermission(policy.ActionOrderCreate),
	)

	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.RequirePermission(policy.ActionOrderView))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.GET("/:id/invoice", h.invoice)
}

// カートを注文にする
func (h *OrderHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in := usecase.CheckoutInput{
		SessionID:  getCartSessionID(c),
		CustomerID: req.CustomerID,
		//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
		IdempotencyKey: c.Request().Header.Get("X-Idempotency-Key"),
	}
	if req.Payment != nil {
		in.Payment = &usecase.PaymentInput{
			AmountReceived: req.Payment.AmountReceived,
			Method:         req.Payment.Method,
		}
	}

	out, err := h.uc.Checkout(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// 全件を見られないロールは自分の注文だけ
func (h *OrderHandler) list(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, limit, ok := pageAndLimit(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page or limit"})
	}

	f := repository.OrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: strings.TrimSpace(c.QueryParam("status")),
	}

	if f.CounterID, ok = optionalInt64Query(c, "counter_id"); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid counter_id"})
	}
	if f.CustomerID, ok = optionalInt64Query(c, "customer_id"); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid customer_id"})
	}
	if f.CreatedByID, ok = optionalInt64Query(c, "created_by"); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid created_by"})
	}
	if f.From, ok = parseTimeQuery(c, "from"); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	if f.To, ok = parseTimeQuery(c, "to"); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	if !policy.Evaluate(p, policy.ActionOrderViewAll, policy.Any) {
		f.CreatedByID = &p.UserID
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	out, err := loadOrderFor(c, h.uc, policy.ActionOrderView)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) invoice(c echo.Context) error {
	order, err := loadOrderFor(c, h.uc, policy.ActionOrderView)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Invoice(c.Request().Context(), order.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 注文を読み、持ち主を含めて権限を確認する
func loadOrderFor(c echo.Context, uc *usecase.OrderUsecase, action policy.Action) (usecase.OrderOutput, error) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return usecase.OrderOutput{}, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return usecase.OrderOutput{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	out, err := uc.Detail(c.Request().Context(), id)
	if err != nil {
		return usecase.OrderOutput{}, err
	}

	if !policy.Evaluate(p, action, policy.Resource{Type: "order", ID: id, OwnerID: out.CreatedByID}) {
		return usecase.OrderOutput{}, usecase.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return out, nil
}
