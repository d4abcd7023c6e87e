package repository

import "github.com/jhoicas/pedidos-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	// UpdateStatus cambia el estado de la cuenta. Devuelve true si la fila
	// cambió (false cuando ya estaba en ese estado).
	UpdateStatus(id, status string) (bool, error)
	List(limit, offset int) ([]*entity.User, error)
}
