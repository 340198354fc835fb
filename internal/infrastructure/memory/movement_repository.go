package memory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.IngressRepository = (*IngressRepo)(nil)
	_ repository.EgressRepository  = (*EgressRepo)(nil)
)

// IngressRepo implementación en memoria de IngressRepository.
type IngressRepo struct {
	s *Store
}

// Create agrega la entrada al final (orden de inserción).
func (r *IngressRepo) Create(_ context.Context, ingress *entity.Ingress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.hasProduct(ingress.ProductID) {
		return domain.ErrNotFound
	}
	r.s.st.ingresses = append(r.s.st.ingresses, cloneIngress(ingress))
	return nil
}

// List todas las entradas en orden de inserción.
func (r *IngressRepo) List(_ context.Context) ([]*entity.Ingress, error) {
	return r.filter(func(*entity.Ingress) bool { return true }), nil
}

// ListByProduct entradas de un producto en orden de inserción.
func (r *IngressRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Ingress, error) {
	return r.filter(func(in *entity.Ingress) bool { return in.ProductID == productID }), nil
}

// DeleteByProduct borra las entradas del producto y devuelve cuántas eran.
func (r *IngressRepo) DeleteByProduct(_ context.Context, productID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.st.ingresses[:0]
	var n int64
	for _, in := range r.s.st.ingresses {
		if in.ProductID == productID {
			n++
			continue
		}
		kept = append(kept, in)
	}
	r.s.st.ingresses = kept
	return n, nil
}

func (r *IngressRepo) filter(keep func(*entity.Ingress) bool) []*entity.Ingress {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Ingress, 0, len(r.s.st.ingresses))
	for _, in := range r.s.st.ingresses {
		if keep(in) {
			out = append(out, cloneIngress(in))
		}
	}
	return out
}

// EgressRepo implementación en memoria de EgressRepository.
type EgressRepo struct {
	s *Store
}

// Create agrega la salida al final (orden de inserción).
func (r *EgressRepo) Create(_ context.Context, egress *entity.Egress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.hasProduct(egress.ProductID) {
		return domain.ErrNotFound
	}
	r.s.st.egresses = append(r.s.st.egresses, cloneEgress(egress))
	return nil
}

// GetByID devuelve una copia de la salida o nil.
func (r *EgressRepo) GetByID(_ context.Context, id string) (*entity.Egress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return cloneEgress(r.s.st.egresses[i]), nil
	}
	return nil, nil
}

// GetForUpdate igual que GetByID; la exclusión la da la transacción del store.
func (r *EgressRepo) GetForUpdate(ctx context.Context, id string) (*entity.Egress, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza la salida conservando su posición.
func (r *EgressRepo) Update(_ context.Context, egress *entity.Egress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(egress.ID)
	if i < 0 {
		return domain.ErrNotFound
	}
	if !r.s.hasProduct(egress.ProductID) {
		return domain.ErrNotFound
	}
	r.s.st.egresses[i] = cloneEgress(egress)
	return nil
}

// Delete borra la salida.
func (r *EgressRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	r.s.st.egresses = append(r.s.st.egresses[:i], r.s.st.egresses[i+1:]...)
	return nil
}

// List todas las salidas en orden de inserción.
func (r *EgressRepo) List(_ context.Context) ([]*entity.Egress, error) {
	return r.filter(func(*entity.Egress) bool { return true }), nil
}

// ListByProduct salidas de un producto en orden de inserción.
func (r *EgressRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Egress, error) {
	return r.filter(func(e *entity.Egress) bool { return e.ProductID == productID }), nil
}

// LockByProduct cuenta las salidas del producto; la exclusión ya la da el mutex de Run.
func (r *EgressRepo) LockByProduct(_ context.Context, productID string) (int, error) {
	return len(r.filter(func(e *entity.Egress) bool { return e.ProductID == productID })), nil
}

// DeleteByProduct borra las salidas del producto y devuelve cuántas eran.
func (r *EgressRepo) DeleteByProduct(_ context.Context, productID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.st.egresses[:0]
	var n int64
	for _, e := range r.s.st.egresses {
		if e.ProductID == productID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.s.st.egresses = kept
	return n, nil
}

func (r *EgressRepo) indexOf(id string) int {
	for i, e := range r.s.st.egresses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (r *EgressRepo) filter(keep func(*entity.Egress) bool) []*entity.Egress {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Egress, 0, len(r.s.st.egresses))
	for _, e := range r.s.st.egresses {
		if keep(e) {
			out = append(out, cloneEgress(e))
		}
	}
	return out
}

// hasProduct se llama con mu tomado.
func (s *Store) hasProduct(id string) bool {
	for _, p := range s.st.products {
		if p.ID == id {
			return true
		}
	}
	return false
}
