package order

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// Notifier puerto del despachador de notificaciones externo.
type Notifier interface {
	Send(recipient, subject, body string) error
}

// TxRunner ejecuta fn dentro de una transacción, con un OrderRepository
// atado a la tx. Cabecera y líneas del pedido se insertan juntas o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(orderRepo repository.OrderRepository) error) error
}
