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

type AdminUserHandler struct {
	users *usecase.UserUsecase
	auth  *usecase.AuthUsecase
}

func NewAdminUserHandler(users *usecase.UserUsecase, auth *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{users: users, auth: auth}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	// /admin/users 配下は全部「JWT必須 + token_version一致 + user.manage」
	admin := e.Group(
		"/admin/users",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.RequirePermission(policy.ActionUserManage),
	)

	admin.GET("", h.list)
	admin.PATCH("/:id", h.update)
	admin.POST("/:id/force-logout", h.forceLogout)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, limit, ok := pageAndLimit(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page or limit"})
	}

	out, err := h.users.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) update(c echo.Context) error {
	targetID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	var req usecase.UserUpdateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actorID, _ := getUserIDFromContext(c)
	out, err := h.users.Update(c.Request().Context(), actorID, targetID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	userID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	res, err := h.auth.ForceLogout(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}
