// Package memory implementa los repositorios en memoria. Sirve para tests y para levantar
// la API sin base de datos (STORE_DRIVER=memory); los datos se pierden al reiniciar.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Store estado en memoria. Las transacciones se serializan con txMu y, si fallan,
// restauran la foto tomada al iniciar.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   state
}

type state struct {
	products  []*entity.Product // orden de inserción
	ingresses []*entity.Ingress
	egresses  []*entity.Egress
	users     []*entity.User
}

// New crea un store vacío.
func New() *Store {
	return &Store{}
}

// Products repositorio de productos sobre el store.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Ingresses repositorio de entradas sobre el store.
func (s *Store) Ingresses() *IngressRepo { return &IngressRepo{s: s} }

// Egresses repositorio de salidas sobre el store.
func (s *Store) Egresses() *EgressRepo { return &EgressRepo{s: s} }

// Users repositorio de usuarios sobre el store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Analytics consultas agregadas sobre el store.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

// Run ejecuta fn de forma exclusiva; si devuelve error se restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	ingressRepo repository.IngressRepository,
	egressRepo repository.EgressRepository,
) error) error {
	return s.atomically(ctx, func() error {
		return fn(s.Products(), s.Ingresses(), s.Egresses())
	})
}

// RunUsers ejecuta fn de forma exclusiva sobre el repositorio de usuarios.
func (s *Store) RunUsers(ctx context.Context, fn func(userRepo repository.UserRepository) error) error {
	return s.atomically(ctx, func() error {
		return fn(s.Users())
	})
}

func (s *Store) atomically(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (st state) clone() state {
	c := state{
		products:  make([]*entity.Product, len(st.products)),
		ingresses: make([]*entity.Ingress, len(st.ingresses)),
		egresses:  make([]*entity.Egress, len(st.egresses)),
		users:     make([]*entity.User, len(st.users)),
	}
	for i, p := range st.products {
		c.products[i] = p.Clone()
	}
	for i, in := range st.ingresses {
		c.ingresses[i] = cloneIngress(in)
	}
	for i, e := range st.egresses {
		c.egresses[i] = cloneEgress(e)
	}
	for i, u := range st.users {
		cp := *u
		c.users[i] = &cp
	}
	return c
}

func cloneRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := *ref
	return &v
}

func cloneIngress(in *entity.Ingress) *entity.Ingress {
	c := *in
	c.UserID = cloneRef(in.UserID)
	return &c
}

func cloneEgress(e *entity.Egress) *entity.Egress {
	c := *e
	c.UserID = cloneRef(e.UserID)
	return &c
}
