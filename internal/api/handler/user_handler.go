package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gourmet-gateway/user-service/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the profile of the authenticated caller.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	if _, err := ctxPrincipal(c); err != nil {
		return err
	}

	user, err := h.userService.Me(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateLocation replaces the caller's coordinates.
//
// @Summary      Update location
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      locationRequest  true  "New coordinates"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users/location [put]
func (h *UserHandler) UpdateLocation(c echo.Context) error {
	if _, err := ctxPrincipal(c); err != nil {
		return err
	}

	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateLocation(c.Request().Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Lookup returns any user by username. ADMIN only.
//
// @Summary      Look up a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  userResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /admin/users/{username} [get]
func (h *UserHandler) Lookup(c echo.Context) error {
	user, err := h.userService.Lookup(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
