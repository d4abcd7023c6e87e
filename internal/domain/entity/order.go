package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido. confirmed y rejected son terminales: ninguna
// transición sale de ellos y el código de confirmación nunca se regenera.
const (
	OrderStatusCreated              = "created"
	OrderStatusAwaitingConfirmation = "awaiting_confirmation"
	OrderStatusConfirmed            = "confirmed"
	OrderStatusRejected             = "rejected"
)

// Acciones de resolución admitidas por el flujo de aprobación.
const (
	OrderActionConfirm = "confirm"
	OrderActionReject  = "reject"
)

// OrderItem línea de pedido. Inmutable una vez creado el pedido.
type OrderItem struct {
	ID         string
	OrderID    string
	ProductRef string
	UnitPrice  decimal.Decimal
	Quantity   int
}

// Subtotal precio unitario por cantidad.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order representa un pedido de un usuario. El dueño es inmutable y el
// total queda congelado al crearse (suma de precio × cantidad).
type Order struct {
	ID               string
	UserID           string
	Items            []OrderItem
	Total            decimal.Decimal
	Status           string // created, awaiting_confirmation, confirmed, rejected
	ConfirmationCode string // presente solo cuando Status == confirmed
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
