package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pedidos-api/internal/application/account"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
)

// UserHandler maneja consulta de usuarios y aprobación/rechazo de cuentas.
type UserHandler struct {
	uc *account.AccountUseCase
}

// NewUserHandler construye el handler de usuarios.
func NewUserHandler(uc *account.AccountUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Me godoc
// @Summary      Usuario autenticado
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := h.uc.GetByID(GetUserID(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(user)
}

// List godoc
// @Summary      Listar usuarios (solo admin)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máx 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	users, err := h.uc.List(page)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(users)
}

// Activate godoc
// @Summary      Aprobar una cuenta pendiente (solo admin)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "user id"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/activate [post]
func (h *UserHandler) Activate(c *fiber.Ctx) error {
	user, err := h.uc.Activate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(user)
}

// Reject godoc
// @Summary      Rechazar/bloquear una cuenta (solo admin, revoca sesiones)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "user id"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/reject [post]
func (h *UserHandler) Reject(c *fiber.Ctx) error {
	user, err := h.uc.Reject(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(user)
}
