package account_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/account"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*entity.User, error) { return nil, nil }
func (r *fakeUserRepo) GetByEmail(email string) (*entity.User, error)       { return nil, nil }

func (r *fakeUserRepo) UpdateStatus(id, status string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Status == status {
		return false, nil
	}
	u.Status = status
	return true, nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked []string
}

func (s *fakeRevoker) RevokeAll(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked = append(s.revoked, userID)
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []string // recipients
	fail    bool
	subject string
}

func (n *fakeNotifier) Send(recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp no disponible")
	}
	n.sent = append(n.sent, recipient)
	n.subject = subject
	return nil
}

func pendingUser(id, email string) *entity.User {
	return &entity.User{
		ID:       id,
		Username: id,
		Email:    email,
		Role:     entity.RoleUser,
		Status:   entity.StatusPending,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Activate
// ──────────────────────────────────────────────────────────────────────────────

func TestActivate_CuentaPendiente(t *testing.T) {
	repo := newFakeUserRepo(pendingUser("u1", "u1@test.com"))
	revoker := &fakeRevoker{}
	notifier := &fakeNotifier{}
	uc := account.NewAccountUseCase(repo, revoker, notifier)

	out, err := uc.Activate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, out.Status)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "u1@test.com", notifier.sent[0])
}

// Activar una cuenta ya activa no es error y no dispara un segundo correo.
func TestActivate_Idempotente(t *testing.T) {
	repo := newFakeUserRepo(pendingUser("u1", "u1@test.com"))
	notifier := &fakeNotifier{}
	uc := account.NewAccountUseCase(repo, &fakeRevoker{}, notifier)

	_, err := uc.Activate(context.Background(), "u1")
	require.NoError(t, err)
	out, err := uc.Activate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, out.Status)
	assert.Len(t, notifier.sent, 1, "sin notificación duplicada")
}

// Una cuenta bloqueada puede reactivarse por decisión administrativa.
func TestActivate_ReactivaBloqueada(t *testing.T) {
	u := pendingUser("u1", "u1@test.com")
	u.Status = entity.StatusBlocked
	repo := newFakeUserRepo(u)
	uc := account.NewAccountUseCase(repo, &fakeRevoker{}, &fakeNotifier{})

	out, err := uc.Activate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, out.Status)
}

func TestActivate_Inexistente(t *testing.T) {
	uc := account.NewAccountUseCase(newFakeUserRepo(), &fakeRevoker{}, &fakeNotifier{})
	_, err := uc.Activate(context.Background(), "nadie")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivate_FalloDeNotificacionNoRevierte(t *testing.T) {
	repo := newFakeUserRepo(pendingUser("u1", "u1@test.com"))
	uc := account.NewAccountUseCase(repo, &fakeRevoker{}, &fakeNotifier{fail: true})

	out, err := uc.Activate(context.Background(), "u1")
	require.NoError(t, err, "el despacho es best-effort")
	assert.Equal(t, entity.StatusActive, out.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reject
// ──────────────────────────────────────────────────────────────────────────────

func TestReject_BloqueaYRevocaSesiones(t *testing.T) {
	repo := newFakeUserRepo(pendingUser("u1", "u1@test.com"))
	revoker := &fakeRevoker{}
	notifier := &fakeNotifier{}
	uc := account.NewAccountUseCase(repo, revoker, notifier)

	out, err := uc.Reject(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusBlocked, out.Status)
	assert.Equal(t, []string{"u1"}, revoker.revoked, "una cuenta bloqueada no conserva sesiones")
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Cuenta rechazada", notifier.subject)
}

func TestReject_Idempotente(t *testing.T) {
	repo := newFakeUserRepo(pendingUser("u1", "u1@test.com"))
	revoker := &fakeRevoker{}
	uc := account.NewAccountUseCase(repo, revoker, &fakeNotifier{})

	_, err := uc.Reject(context.Background(), "u1")
	require.NoError(t, err)
	out, err := uc.Reject(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusBlocked, out.Status)
	assert.Len(t, revoker.revoked, 1, "sin segunda revocación")
}

func TestReject_Inexistente(t *testing.T) {
	uc := account.NewAccountUseCase(newFakeUserRepo(), &fakeRevoker{}, &fakeNotifier{})
	_, err := uc.Reject(context.Background(), "nadie")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetByID / List
// ──────────────────────────────────────────────────────────────────────────────

func TestGetByID(t *testing.T) {
	repo := newFakeUserRepo(pendingUser("u1", "u1@test.com"))
	uc := account.NewAccountUseCase(repo, &fakeRevoker{}, &fakeNotifier{})

	out, err := uc.GetByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@test.com", out.Email)

	_, err = uc.GetByID("nadie")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList(t *testing.T) {
	repo := newFakeUserRepo(pendingUser("u1", "u1@test.com"), pendingUser("u2", "u2@test.com"))
	uc := account.NewAccountUseCase(repo, &fakeRevoker{}, &fakeNotifier{})

	out, err := uc.List(dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
