package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL (usable con pool o tx).
//
// Las transiciones de estado son updates condicionados por el estado actual:
// el WHERE por status hace de compare-and-swap a nivel de fila, así dos
// llamadas concurrentes sobre el mismo pedido nunca ganan ambas.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para pedidos. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste cabecera y líneas del pedido. Invocar dentro de una tx
// (vía TxRunner) para que se inserte todo o nada.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (id, user_id, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.UserID, order.Total, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for _, item := range order.Items {
		query := `
			INSERT INTO order_items (id, order_id, product_ref, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)`
		_, err := r.q.Exec(context.Background(), query,
			item.ID, item.OrderID, item.ProductRef, item.UnitPrice, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un pedido con sus líneas.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	query := `
		SELECT id, user_id, total, status, COALESCE(confirmation_code, ''), created_at, updated_at
		FROM orders WHERE id = $1`
	var o entity.Order
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.UserID, &o.Total, &o.Status, &o.ConfirmationCode, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	items, err := r.loadItems([]string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

// UpdateStatus transiciona de fromStatus a toStatus solo si el pedido sigue
// en fromStatus. changed=false cuando el pedido no existe o perdió la carrera.
func (r *OrderRepo) UpdateStatus(id, fromStatus, toStatus string) (bool, error) {
	query := `
		UPDATE orders SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(context.Background(), query, id, fromStatus, toStatus, time.Now())
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Confirm fija status=confirmed y el código de una sola vez. El predicado por
// status y código nulo garantiza que el código jamás se sobrescribe.
func (r *OrderRepo) Confirm(id, code string) (bool, error) {
	query := `
		UPDATE orders SET status = $2, confirmation_code = $3, updated_at = $4
		WHERE id = $1 AND status = $5 AND confirmation_code IS NULL`
	tag, err := r.q.Exec(context.Background(), query,
		id, entity.OrderStatusConfirmed, code, time.Now(), entity.OrderStatusAwaitingConfirmation,
	)
	if err != nil {
		return false, fmt.Errorf("confirm order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser lista pedidos de un usuario con paginación.
func (r *OrderRepo) ListByUser(userID string, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT id, user_id, total, status, COALESCE(confirmation_code, ''), created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, userID, limit, offset)
}

// List lista todos los pedidos con paginación (vista admin).
func (r *OrderRepo) List(limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT id, user_id, total, status, COALESCE(confirmation_code, ''), created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(query, limit, offset)
}

func (r *OrderRepo) list(query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var (
		list []*entity.Order
		ids  []string
	)
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.ConfirmationCode, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	items, err := r.loadItems(ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}
	return list, nil
}

func (r *OrderRepo) loadItems(orderIDs []string) (map[string][]entity.OrderItem, error) {
	query := `
		SELECT id, order_id, product_ref, unit_price, quantity
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	items := make(map[string][]entity.OrderItem)
	for rows.Next() {
		var i entity.OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ProductRef, &i.UnitPrice, &i.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[i.OrderID] = append(items[i.OrderID], i)
	}
	return items, rows.Err()
}
