package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/order"
)

// OrderHandler maneja creación, consulta y flujo de aprobación de pedidos.
type OrderHandler struct {
	uc *order.OrderUseCase
}

// NewOrderHandler construye el handler de pedidos.
func NewOrderHandler(uc *order.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido (estado created, total congelado)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateOrderRequest  true  "líneas del pedido"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar pedidos (propios; un admin ve todos)
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máx 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	orders, err := h.uc.List(GetUserID(c), GetRole(c), page)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(orders)
}

// GetByID godoc
// @Summary      Consultar un pedido (dueño o admin)
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "order id"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Params("id"), GetUserID(c), GetRole(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// RequestConfirmation godoc
// @Summary      Solicitar confirmación (dueño; created → awaiting_confirmation)
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "order id"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/confirmation [post]
func (h *OrderHandler) RequestConfirmation(c *fiber.Ctx) error {
	out, err := h.uc.RequestConfirmation(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// Resolve godoc
// @Summary      Resolver un pedido en revisión (solo admin; confirm | reject)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                   true  "order id"
// @Param        body  body  dto.ResolveOrderRequest  true  "action: confirm | reject"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/resolve [post]
func (h *OrderHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Resolve(c.UserContext(), c.Params("id"), in.Action)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}
