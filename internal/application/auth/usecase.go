package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// TokenConfig configuración para emisión de tokens. Access y refresh
// se firman con secrets distintos.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// AuthUseCase casos de uso de autenticación: registro, login, rotación y logout.
type AuthUseCase struct {
	userRepo repository.UserRepository
	tokens   TokenStore
	cfg      TokenConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, tokens TokenStore, cfg TokenConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, tokens: tokens, cfg: cfg}
}

// Register crea un usuario: hashea password con bcrypt y persiste con estado
// pending. Devuelve ErrDuplicate si username, email o phone ya existen.
func (uc *AuthUseCase) Register(in dto.RegisterRequest) (*dto.UserResponse, error) {
	if in.Username == "" || in.Email == "" || in.Phone == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = in.Username
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		Name:         name,
		PasswordHash: string(hash),
		Role:         entity.RoleUser,
		Status:       entity.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica identidad y password, exige cuenta active y emite el par de tokens.
//
// Se envía exactamente uno de username o email. "Usuario no existe" y
// "password incorrecto" devuelven el mismo ErrInvalidCredentials;
// ErrAccountNotActive solo se devuelve cuando la identidad ya fue verificada.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Password == "" || (in.Username == "") == (in.Email == "") {
		return nil, domain.ErrInvalidInput
	}
	var (
		user *entity.User
		err  error
	)
	if in.Username != "" {
		user, err = uc.userRepo.GetByUsername(in.Username)
	} else {
		user, err = uc.userRepo.GetByEmail(in.Email)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status != entity.StatusActive {
		return nil, domain.ErrAccountNotActive
	}
	pair, err := uc.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{TokenPairResponse: *pair, User: *toUserResponse(user)}, nil
}

// Refresh rota el refresh token: lo valida, consume su jti de forma atómica
// e inscribe uno nuevo. Un token ya rotado o revocado falla con
// ErrInvalidRefresh — la rotación es one-shot por diseño, un replay
// concurrente nunca obtiene un segundo par.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairResponse, error) {
	claims, err := jwt.Parse(uc.cfg.RefreshSecret, refreshToken, jwt.TypeRefresh)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := uc.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != entity.StatusActive {
		// Cuenta eliminada o bloqueada: el token ya no sirve, sin más detalle.
		return nil, domain.ErrInvalidRefresh
	}
	newJTI := uuid.New().String()
	if err := uc.tokens.Rotate(ctx, user.ID, claims.ID, newJTI, uc.cfg.RefreshTTL); err != nil {
		return nil, err
	}
	return uc.generatePair(user, newJTI)
}

// Logout revoca todos los refresh tokens vigentes del usuario. Idempotente.
func (uc *AuthUseCase) Logout(ctx context.Context, userID string) error {
	return uc.tokens.RevokeAll(ctx, userID)
}

// issue emite un par nuevo y registra el jti del refresh como vigente.
func (uc *AuthUseCase) issue(ctx context.Context, user *entity.User) (*dto.TokenPairResponse, error) {
	jti := uuid.New().String()
	if err := uc.tokens.Save(ctx, user.ID, jti, uc.cfg.RefreshTTL); err != nil {
		return nil, err
	}
	return uc.generatePair(user, jti)
}

func (uc *AuthUseCase) generatePair(user *entity.User, jti string) (*dto.TokenPairResponse, error) {
	access, err := jwt.Generate(uc.cfg.AccessSecret, user.ID, user.Role, jwt.TypeAccess, uc.cfg.Issuer, "", uc.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt.Generate(uc.cfg.RefreshSecret, user.ID, user.Role, jwt.TypeRefresh, uc.cfg.Issuer, jti, uc.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairResponse{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
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
