package order

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// OrderUseCase máquina de estados del pedido:
// created → awaiting_confirmation → confirmed | rejected.
type OrderUseCase struct {
	txRunner   TxRunner
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
	notifier   Notifier
	adminEmail string // audiencia admin para "pendiente de revisión"
}

// NewOrderUseCase construye el caso de uso de pedidos.
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	adminEmail string,
) *OrderUseCase {
	return &OrderUseCase{
		txRunner:   txRunner,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		adminEmail: adminEmail,
	}
}

// Create crea un pedido con estado created. El total se congela al crearse:
// suma de precio × cantidad de todas las líneas.
func (uc *OrderUseCase) Create(ctx context.Context, ownerID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Status:    entity.OrderStatusCreated,
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, item := range in.Items {
		if item.ProductRef == "" || item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		line := entity.OrderItem{
			ID:         uuid.New().String(),
			OrderID:    order.ID,
			ProductRef: item.ProductRef,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
		}
		order.Items = append(order.Items, line)
		order.Total = order.Total.Add(line.Subtotal())
	}
	// Cabecera y líneas en una sola transacción.
	err := uc.txRunner.Run(ctx, func(orderRepo repository.OrderRepository) error {
		return orderRepo.Create(order)
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// RequestConfirmation pasa el pedido de created a awaiting_confirmation.
// Solo el dueño puede invocarla y no es idempotente: cualquier otro estado
// actual falla con ErrInvalidTransition.
func (uc *OrderUseCase) RequestConfirmation(ctx context.Context, orderID, callerID string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.UserID != callerID {
		return nil, domain.ErrForbidden
	}
	changed, err := uc.orderRepo.UpdateStatus(orderID, entity.OrderStatusCreated, entity.OrderStatusAwaitingConfirmation)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, domain.ErrInvalidTransition
	}
	order.Status = entity.OrderStatusAwaitingConfirmation
	order.UpdatedAt = time.Now()
	uc.notify(entity.Notification{
		Recipient: uc.adminEmail,
		Subject:   "Pedido pendiente de revisión",
		Body:      fmt.Sprintf("El pedido %s espera confirmación de un administrador.", order.ID),
	})
	return toOrderResponse(order), nil
}

// Resolve confirma o rechaza un pedido en awaiting_confirmation (solo admin,
// restringido en el router). Ambas ramas son one-shot: el update condicionado
// por estado garantiza que bajo dos llamadas concurrentes exactamente una gana
// y el código de confirmación jamás se regenera.
func (uc *OrderUseCase) Resolve(ctx context.Context, orderID, action string) (*dto.OrderResponse, error) {
	if action != entity.OrderActionConfirm && action != entity.OrderActionReject {
		return nil, domain.ErrInvalidAction
	}
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	if action == entity.OrderActionConfirm {
		code, err := generateConfirmationCode()
		if err != nil {
			return nil, err
		}
		changed, err := uc.orderRepo.Confirm(orderID, code)
		if err != nil {
			return nil, err
		}
		if !changed {
			return nil, domain.ErrInvalidTransition
		}
		order.Status = entity.OrderStatusConfirmed
		order.ConfirmationCode = code
		order.UpdatedAt = time.Now()
		uc.notifyOwner(order, "Pedido confirmado",
			fmt.Sprintf("Tu pedido %s fue confirmado. Código de confirmación: %s", order.ID, code))
		return toOrderResponse(order), nil
	}

	changed, err := uc.orderRepo.UpdateStatus(orderID, entity.OrderStatusAwaitingConfirmation, entity.OrderStatusRejected)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, domain.ErrInvalidTransition
	}
	order.Status = entity.OrderStatusRejected
	order.UpdatedAt = time.Now()
	uc.notifyOwner(order, "Pedido rechazado",
		fmt.Sprintf("Tu pedido %s fue rechazado por un administrador.", order.ID))
	return toOrderResponse(order), nil
}

// GetByID devuelve un pedido. Regla de acceso: dueño o admin.
func (uc *OrderUseCase) GetByID(orderID, callerID, callerRole string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.UserID != callerID && callerRole != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return toOrderResponse(order), nil
}

// List lista pedidos: un admin ve todos, un usuario solo los propios.
func (uc *OrderUseCase) List(callerID, callerRole string, page dto.PageRequest) ([]*dto.OrderResponse, error) {
	page.DefaultPage()
	var (
		orders []*entity.Order
		err    error
	)
	if callerRole == entity.RoleAdmin {
		orders, err = uc.orderRepo.List(page.Limit, page.Offset)
	} else {
		orders, err = uc.orderRepo.ListByUser(callerID, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}

// generateConfirmationCode produce un código numérico de 6 dígitos con
// crypto/rand. No usar math/rand: el código viaja fuera de banda y debe
// ser impredecible.
func generateConfirmationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (uc *OrderUseCase) notifyOwner(order *entity.Order, subject, body string) {
	owner, err := uc.userRepo.GetByID(order.UserID)
	if err != nil || owner == nil {
		log.Warn().Str("order_id", order.ID).Str("user_id", order.UserID).Msg("dueño del pedido no disponible para notificar")
		return
	}
	uc.notify(entity.Notification{Recipient: owner.Email, Subject: subject, Body: body})
}

// notify despacha best-effort: un fallo se registra y nunca revierte la transición.
func (uc *OrderUseCase) notify(n entity.Notification) {
	if err := uc.notifier.Send(n.Recipient, n.Subject, n.Body); err != nil {
		log.Warn().Err(err).Str("recipient", n.Recipient).Str("subject", n.Subject).Msg("notificación no entregada")
	}
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, i := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductRef: i.ProductRef,
			UnitPrice:  i.UnitPrice,
			Quantity:   i.Quantity,
			Subtotal:   i.Subtotal(),
		})
	}
	return &dto.OrderResponse{
		ID:               o.ID,
		UserID:           o.UserID,
		Items:            items,
		Total:            o.Total,
		Status:           o.Status,
		ConfirmationCode: o.ConfirmationCode,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
