package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/workdesk/accounts-api/internal/core/domain"
	"github.com/workdesk/accounts-api/internal/core/ports"
)

// AdminHandler serves the administrative directory endpoints. Routes must be
// registered behind the admin policy.
type AdminHandler struct {
	users ports.UserService
}

func NewAdminHandler(users ports.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// List returns every account.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// Delete removes an account and its work requests.
//
// @Summary      Delete user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	deleted, err := h.users.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(deleted))
}

// SetStatus moves an account to a new status.
//
// @Summary      Set user status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "User id"
// @Param        body  body      setStatusRequest  true  "New status"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /admin/users/{id}/status [patch]
func (h *AdminHandler) SetStatus(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req setStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.SetStatus(c.Request().Context(), id, domain.Status(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// SetRole changes an account's role.
//
// @Summary      Set user role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "User id"
// @Param        body  body      setRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /admin/users/{id}/role [patch]
func (h *AdminHandler) SetRole(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req setRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.SetRole(c.Request().Context(), id, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
