package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func newAuth(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	uc, _ := newAuthWithStore(t)
	return uc
}

func newAuthWithStore(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	return auth.NewAuthUseCase(store.Users(), store, memory.NewTokenDenylist(), auth.JWTConfig{
		Secret:     "test-secret",
		ExpMinutes: 60,
		Issuer:     "almacen-api",
	}, logger.Nop()), store
}

func register(t *testing.T, uc *auth.AuthUseCase, caller entity.Actor, username, role string) *dto.UserResponse {
	t.Helper()
	u, err := uc.Register(context.Background(), caller, dto.RegisterRequest{
		Username: username,
		Email:    username + "@almacen.bo",
		Password: "secreto1",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func TestRegister_PrimerUsuarioEsAdmin(t *testing.T) {
	uc := newAuth(t)

	first := register(t, uc, entity.Actor{}, "ana", "")
	assert.Equal(t, string(entity.RoleAdmin), first.Role)

	second := register(t, uc, entity.Actor{}, "luis", "admin")
	assert.Equal(t, string(entity.RoleEmployee), second.Role, "sin admin que lo pida queda como empleado")

	caller := entity.Actor{UserID: first.ID, Username: "ana", Role: entity.RoleAdmin}
	third := register(t, uc, caller, "beto", "admin")
	assert.Equal(t, string(entity.RoleAdmin), third.Role)
}

func TestRegister_UsuarioOEmailDuplicado(t *testing.T) {
	uc := newAuth(t)
	register(t, uc, entity.Actor{}, "ana", "")

	_, err := uc.Register(context.Background(), entity.Actor{}, dto.RegisterRequest{
		Username: "ana", Email: "nuevo@almacen.bo", Password: "secreto1",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	_, err = uc.Register(context.Background(), entity.Actor{}, dto.RegisterRequest{
		Username: "otra", Email: "ANA@almacen.bo", Password: "secreto1",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestLogin_YAuthenticate(t *testing.T) {
	uc := newAuth(t)
	ctx := context.Background()
	u := register(t, uc, entity.Actor{}, "ana", "")

	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "secreto1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, u.ID, resp.User.ID)

	actor, err := uc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, actor.UserID)
	assert.Equal(t, "ana", actor.Username)
	assert.True(t, actor.IsAdmin())
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc := newAuth(t)
	ctx := context.Background()
	register(t, uc, entity.Actor{}, "ana", "")

	_, err := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "secreto1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogout_RevocaElToken(t *testing.T) {
	uc := newAuth(t)
	ctx := context.Background()
	register(t, uc, entity.Actor{}, "ana", "")
	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "secreto1"})
	require.NoError(t, err)

	require.NoError(t, uc.Logout(ctx, resp.Token))

	_, err = uc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticate_TokenInvalido(t *testing.T) {
	uc := newAuth(t)
	_, err := uc.Authenticate(context.Background(), "no-es-un-jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticate_UsuarioDegradadoPierdeAdmin(t *testing.T) {
	uc, store := newAuthWithStore(t)
	ctx := context.Background()
	ana := register(t, uc, entity.Actor{}, "ana", "")
	anaActor := entity.Actor{UserID: ana.ID, Username: "ana", Role: entity.RoleAdmin}
	beto := register(t, uc, anaActor, "beto", "admin")

	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "beto", Password: "secreto1"})
	require.NoError(t, err)
	actor, err := uc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	require.True(t, actor.IsAdmin())

	users := usecase.NewUserUseCase(store.Users(), store, logger.Nop())
	_, err = users.Update(ctx, anaActor, beto.ID, dto.UpdateUserRequest{
		Username: "beto", Email: "beto@almacen.bo", Role: string(entity.RoleEmployee),
	})
	require.NoError(t, err)

	actor, err = uc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEmployee, actor.Role)
	assert.False(t, actor.IsAdmin())
}

func TestAuthenticate_UsuarioEliminadoNoAccede(t *testing.T) {
	uc, store := newAuthWithStore(t)
	ctx := context.Background()
	ana := register(t, uc, entity.Actor{}, "ana", "")
	anaActor := entity.Actor{UserID: ana.ID, Username: "ana", Role: entity.RoleAdmin}
	beto := register(t, uc, anaActor, "beto", "admin")

	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "beto", Password: "secreto1"})
	require.NoError(t, err)

	users := usecase.NewUserUseCase(store.Users(), store, logger.Nop())
	require.NoError(t, users.Delete(ctx, anaActor, beto.ID))

	_, err = uc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticate_UsaNombreActualDelUsuario(t *testing.T) {
	uc, store := newAuthWithStore(t)
	ctx := context.Background()
	ana := register(t, uc, entity.Actor{}, "ana", "")
	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "secreto1"})
	require.NoError(t, err)

	users := usecase.NewUserUseCase(store.Users(), store, logger.Nop())
	anaActor := entity.Actor{UserID: ana.ID, Username: "ana", Role: entity.RoleAdmin}
	_, err = users.Update(ctx, anaActor, ana.ID, dto.UpdateUserRequest{
		Username: "ana.maria", Email: "ana@almacen.bo", Role: string(entity.RoleAdmin),
	})
	require.NoError(t, err)

	actor, err := uc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana.maria", actor.Username)
}
