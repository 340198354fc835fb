package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/jwt"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UserTxRunner ejecuta fn en una transacción exclusiva sobre usuarios
// (alta del primer admin, protección del último admin).
type UserTxRunner interface {
	RunUsers(ctx context.Context, fn func(userRepo repository.UserRepository) error) error
}

// TokenRevoker lista de tokens revocados por logout, indexada por jti.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthUseCase casos de uso de autenticación: registro, login, logout y validación de token.
type AuthUseCase struct {
	userRepo repository.UserRepository
	txRunner UserTxRunner
	revoker  TokenRevoker
	jwtCfg   JWTConfig
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, txRunner UserTxRunner, revoker TokenRevoker, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		txRunner: txRunner,
		revoker:  revoker,
		jwtCfg:   jwtCfg,
		log:      log.Component("auth"),
	}
}

// HashPassword genera el hash bcrypt de la contraseña.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register crea un usuario. El primer usuario del sistema siempre es admin; en los demás casos
// el rol pedido solo se respeta si quien llama es admin, si no queda como empleado.
func (uc *AuthUseCase) Register(ctx context.Context, caller entity.Actor, in dto.RegisterRequest) (*dto.UserResponse, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         entity.RoleEmployee,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.txRunner.RunUsers(ctx, func(userRepo repository.UserRepository) error {
		count, err := userRepo.Count(ctx)
		if err != nil {
			return err
		}
		switch {
		case count == 0:
			user.Role = entity.RoleAdmin
		case caller.IsAdmin() && entity.Role(in.Role) == entity.RoleAdmin:
			user.Role = entity.RoleAdmin
		}
		if err := EnsureUnique(ctx, userRepo, user); err != nil {
			return err
		}
		return userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, domain.WrapOperation("registrar usuario", err)
	}
	uc.log.Info().Str("user_id", user.ID).Str("username", user.Username).Str("role", string(user.Role)).Msg("usuario registrado")
	resp := dto.FromUser(user)
	return &resp, nil
}

// Login verifica username/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Warn().Str("username", user.Username).Msg("contraseña incorrecta")
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, string(user.Role), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  dto.FromUser(user),
	}, nil
}

// Logout revoca el token hasta su expiración.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	info, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return domain.ErrUnauthorized
	}
	ttl := time.Until(info.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := uc.revoker.Revoke(ctx, info.TokenID, ttl); err != nil {
		return err
	}
	uc.log.Info().Str("user_id", info.UserID).Msg("sesión cerrada")
	return nil
}

// Authenticate valida firma, expiración y revocación del token y devuelve el actor.
// Usuario y rol se releen del repositorio: un usuario borrado o degradado pierde el acceso
// o los privilegios aunque su token siga vigente.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (entity.Actor, error) {
	info, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return entity.Actor{}, domain.ErrUnauthorized
	}
	revoked, err := uc.revoker.IsRevoked(ctx, info.TokenID)
	if err != nil {
		return entity.Actor{}, err
	}
	if revoked {
		return entity.Actor{}, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByID(ctx, info.UserID)
	if err != nil {
		return entity.Actor{}, err
	}
	if user == nil {
		uc.log.Warn().Str("user_id", info.UserID).Msg("token de un usuario inexistente")
		return entity.Actor{}, domain.ErrUnauthorized
	}
	return entity.Actor{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// EnsureUnique devuelve ErrDuplicateUser si username o email pertenecen a otro usuario.
func EnsureUnique(ctx context.Context, userRepo repository.UserRepository, user *entity.User) error {
	byName, err := userRepo.GetByUsername(ctx, user.Username)
	if err != nil {
		return err
	}
	if byName != nil && byName.ID != user.ID {
		return domain.ErrDuplicateUser
	}
	byEmail, err := userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if byEmail != nil && byEmail.ID != user.ID {
		return domain.ErrDuplicateUser
	}
	return nil
}
