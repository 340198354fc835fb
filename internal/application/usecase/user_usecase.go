package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// UserUseCase administración de usuarios. Todas las operaciones exigen un actor admin,
// salvo EnsureUser y SetPassword que usa la herramienta de mantenimiento.
type UserUseCase struct {
	repo     repository.UserRepository
	txRunner auth.UserTxRunner
	log      *logger.Logger
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, txRunner auth.UserTxRunner, log *logger.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, txRunner: txRunner, log: log.Component("users")}
}

// List usuarios en orden de alta.
func (uc *UserUseCase) List(ctx context.Context, actor entity.Actor) ([]dto.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.FromUser(u))
	}
	return out, nil
}

// Create alta de usuario con el rol indicado.
func (uc *UserUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	role := entity.Role(in.Role)
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "rol desconocido")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.txRunner.RunUsers(ctx, func(userRepo repository.UserRepository) error {
		if err := auth.EnsureUnique(ctx, userRepo, user); err != nil {
			return err
		}
		return userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, domain.WrapOperation("crear usuario", err)
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", string(role)).Str("by", actor.UserID).Msg("usuario creado")
	resp := dto.FromUser(user)
	return &resp, nil
}

// Update edita username, email y rol; Password vacío conserva la contraseña actual.
// Quitar el rol admin al último administrador devuelve ErrLastAdmin.
func (uc *UserUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	role := entity.Role(in.Role)
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "rol desconocido")
	}
	var hash string
	if in.Password != "" {
		h, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}
	var updated *entity.User
	err := uc.txRunner.RunUsers(ctx, func(userRepo repository.UserRepository) error {
		user, err := userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		if user.Role == entity.RoleAdmin && role != entity.RoleAdmin {
			if err := ensureAnotherAdmin(ctx, userRepo); err != nil {
				return err
			}
		}
		user.Username = strings.TrimSpace(in.Username)
		user.Email = strings.TrimSpace(in.Email)
		user.Role = role
		if hash != "" {
			user.PasswordHash = hash
		}
		user.UpdatedAt = time.Now().UTC()
		if err := auth.EnsureUnique(ctx, userRepo, user); err != nil {
			return err
		}
		if err := userRepo.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, domain.WrapOperation("actualizar usuario", err)
	}
	uc.log.Info().Str("user_id", id).Str("by", actor.UserID).Msg("usuario actualizado")
	resp := dto.FromUser(updated)
	return &resp, nil
}

// Delete borra el usuario; sus movimientos quedan como registro histórico sin atribución.
// No permite borrar al último administrador.
func (uc *UserUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	err := uc.txRunner.RunUsers(ctx, func(userRepo repository.UserRepository) error {
		user, err := userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		if user.Role == entity.RoleAdmin {
			if err := ensureAnotherAdmin(ctx, userRepo); err != nil {
				return err
			}
		}
		return userRepo.Delete(ctx, id)
	})
	if err != nil {
		return domain.WrapOperation("eliminar usuario", err)
	}
	uc.log.Warn().Str("user_id", id).Str("by", actor.UserID).Msg("usuario eliminado")
	return nil
}

// EnsureUser crea el usuario si el username no existe. Devuelve true si lo creó.
func (uc *UserUseCase) EnsureUser(ctx context.Context, username, email, password string, role entity.Role) (bool, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	created := false
	err = uc.txRunner.RunUsers(ctx, func(userRepo repository.UserRepository) error {
		existing, err := userRepo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		now := time.Now().UTC()
		user := &entity.User{
			ID:           uuid.New().String(),
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := auth.EnsureUnique(ctx, userRepo, user); err != nil {
			return err
		}
		created = true
		return userRepo.Create(ctx, user)
	})
	if err != nil {
		return false, domain.WrapOperation("sembrar usuario", err)
	}
	return created, nil
}

// SetPassword reemplaza la contraseña del usuario indicado.
func (uc *UserUseCase) SetPassword(ctx context.Context, username, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	err = uc.txRunner.RunUsers(ctx, func(userRepo repository.UserRepository) error {
		user, err := userRepo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		user.PasswordHash = hash
		user.UpdatedAt = time.Now().UTC()
		return userRepo.Update(ctx, user)
	})
	if err != nil {
		return domain.WrapOperation("cambiar contraseña", err)
	}
	uc.log.Info().Str("username", username).Msg("contraseña actualizada")
	return nil
}

func ensureAnotherAdmin(ctx context.Context, userRepo repository.UserRepository) error {
	admins, err := userRepo.CountByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}
