package repository

import "github.com/jhoicas/pedidos-api/internal/domain/entity"

// OrderRepository define el puerto de persistencia para Order.
//
// Las transiciones de estado usan updates condicionados por el estado
// actual (compare-and-swap por fila): bajo dos llamadas concurrentes
// sobre el mismo pedido exactamente una observa changed=true.
type OrderRepository interface {
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	// UpdateStatus transiciona de fromStatus a toStatus solo si el pedido
	// sigue en fromStatus. changed=false cuando otro caller ganó la carrera.
	UpdateStatus(id, fromStatus, toStatus string) (changed bool, err error)
	// Confirm fija status=confirmed y el código de una sola vez, solo desde
	// awaiting_confirmation. El código nunca se sobrescribe.
	Confirm(id, code string) (changed bool, err error)
	ListByUser(userID string, limit, offset int) ([]*entity.Order, error)
	List(limit, offset int) ([]*entity.Order, error)
}
