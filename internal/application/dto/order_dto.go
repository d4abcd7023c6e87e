package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de pedido en la creación.
type OrderItemRequest struct {
	ProductRef string          `json:"product_ref" validate:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price" validate:"required"`
	Quantity   int             `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest entrada para crear un pedido.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ResolveOrderRequest entrada para resolver un pedido en revisión.
type ResolveOrderRequest struct {
	Action string `json:"action" validate:"required,oneof=confirm reject"`
}

// OrderItemResponse línea de pedido en respuestas.
type OrderItemResponse struct {
	ProductRef string          `json:"product_ref"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de un pedido. El código de confirmación solo se
// incluye cuando el pedido está confirmado.
type OrderResponse struct {
	ID               string              `json:"id"`
	UserID           string              `json:"user_id"`
	Items            []OrderItemResponse `json:"items"`
	Total            decimal.Decimal     `json:"total"`
	Status           string              `json:"status"`
	ConfirmationCode string              `json:"confirmation_code,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
