package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct {
	s *Store
}

// Create inserta el usuario; ErrDuplicateUser si username o email ya existen.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflicts(user) {
		return domain.ErrDuplicateUser
	}
	cp := *user
	r.s.st.users = append(r.s.st.users, &cp)
	return nil
}

// GetByID devuelve una copia del usuario o nil.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id }), nil
}

// GetByUsername devuelve el usuario con ese nombre o nil.
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username }), nil
}

// GetByEmail devuelve el usuario con ese email (sin distinguir mayúsculas) o nil.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

// Update reemplaza el usuario.
func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(user.ID)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	if r.conflicts(user) {
		return domain.ErrDuplicateUser
	}
	cp := *user
	r.s.st.users[i] = &cp
	return nil
}

// List usuarios en orden de alta.
func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.s.st.users))
	for _, u := range r.s.st.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

// Delete borra el usuario y deja sin atribución sus ingresos y salidas.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	r.s.st.users = append(r.s.st.users[:i], r.s.st.users[i+1:]...)
	for _, in := range r.s.st.ingresses {
		if in.UserID != nil && *in.UserID == id {
			in.UserID = nil
		}
	}
	for _, e := range r.s.st.egresses {
		if e.UserID != nil && *e.UserID == id {
			e.UserID = nil
		}
	}
	return nil
}

// Count total de usuarios.
func (r *UserRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.st.users)), nil
}

// CountByRole usuarios con el rol dado.
func (r *UserRepo) CountByRole(_ context.Context, role entity.Role) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, u := range r.s.st.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *UserRepo) find(match func(*entity.User) bool) *entity.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.st.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *UserRepo) indexOf(id string) int {
	for i, u := range r.s.st.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// conflicts se llama con mu tomado.
func (r *UserRepo) conflicts(user *entity.User) bool {
	for _, u := range r.s.st.users {
		if u.ID == user.ID {
			continue
		}
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return true
		}
	}
	return false
}
