package account

import (
	"context"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
)

// AccountUseCase aprueba o rechaza cuentas pendientes. Las rutas que lo
// invocan están restringidas a rol admin por el middleware RBAC.
type AccountUseCase struct {
	userRepo repository.UserRepository
	sessions TokenRevoker
	notifier Notifier
}

// NewAccountUseCase construye el caso de uso de ciclo de vida de cuentas.
func NewAccountUseCase(userRepo repository.UserRepository, sessions TokenRevoker, notifier Notifier) *AccountUseCase {
	return &AccountUseCase{userRepo: userRepo, sessions: sessions, notifier: notifier}
}

// Activate pasa la cuenta a active y notifica al usuario. Idempotente: si la
// cuenta ya está active no es error, el estado objetivo ya se alcanzó.
// También reactiva cuentas blocked (acción administrativa explícita).
func (uc *AccountUseCase) Activate(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if user.Status == entity.StatusActive {
		return toUserResponse(user), nil
	}
	if _, err := uc.userRepo.UpdateStatus(id, entity.StatusActive); err != nil {
		return nil, err
	}
	user.Status = entity.StatusActive
	user.UpdatedAt = time.Now()
	uc.notify(entity.Notification{
		Recipient: user.Email,
		Subject:   "Cuenta activada",
		Body:      "Tu cuenta fue aprobada. Ya puedes iniciar sesión.",
	})
	return toUserResponse(user), nil
}

// Reject pasa la cuenta a blocked, revoca sus sesiones vigentes y notifica.
// Idempotente si la cuenta ya está blocked.
func (uc *AccountUseCase) Reject(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if user.Status == entity.StatusBlocked {
		return toUserResponse(user), nil
	}
	if _, err := uc.userRepo.UpdateStatus(id, entity.StatusBlocked); err != nil {
		return nil, err
	}
	user.Status = entity.StatusBlocked
	user.UpdatedAt = time.Now()
	// Una cuenta bloqueada no conserva sesiones: revocar todos sus refresh tokens.
	if err := uc.sessions.RevokeAll(ctx, id); err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("revocar sesiones de cuenta bloqueada")
	}
	uc.notify(entity.Notification{
		Recipient: user.Email,
		Subject:   "Cuenta rechazada",
		Body:      "Tu cuenta fue rechazada por un administrador.",
	})
	return toUserResponse(user), nil
}

// GetByID devuelve un usuario o ErrNotFound.
func (uc *AccountUseCase) GetByID(id string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return toUserResponse(user), nil
}

// List lista usuarios con paginación (solo admin).
func (uc *AccountUseCase) List(page dto.PageRequest) ([]*dto.UserResponse, error) {
	page.DefaultPage()
	users, err := uc.userRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

// notify despacha best-effort: un fallo se registra y nunca revierte la transición.
func (uc *AccountUseCase) notify(n entity.Notification) {
	if err := uc.notifier.Send(n.Recipient, n.Subject, n.Body); err != nil {
		log.Warn().Err(err).Str("recipient", n.Recipient).Str("subject", n.Subject).Msg("notificación no entregada")
	}
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
