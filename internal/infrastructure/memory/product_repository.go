package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s *Store
}

// Create inserta el producto; ErrDuplicateCode si el código ya existe.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.st.products {
		if p.Code == product.Code {
			return domain.ErrDuplicateCode
		}
	}
	r.s.st.products = append(r.s.st.products, product.Clone())
	return nil
}

// GetByID devuelve una copia del producto o nil.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.s.st.products[i].Clone(), nil
	}
	return nil, nil
}

// GetByCode devuelve una copia del producto con ese código o nil.
func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.st.products {
		if p.Code == code {
			return p.Clone(), nil
		}
	}
	return nil, nil
}

// GetForUpdate igual que GetByID; la exclusión la da la transacción del store.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza el producto; ErrDuplicateCode si el nuevo código pertenece a otro.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(product.ID)
	if i < 0 {
		return domain.ErrNotFound
	}
	for _, p := range r.s.st.products {
		if p.Code == product.Code && p.ID != product.ID {
			return domain.ErrDuplicateCode
		}
	}
	r.s.st.products[i] = product.Clone()
	return nil
}

// List productos ordenados por nombre y código; search filtra sin distinguir mayúsculas.
func (r *ProductRepo) List(_ context.Context, search string) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]*entity.Product, 0, len(r.s.st.products))
	for _, p := range r.s.st.products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Code), needle) {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

// Delete borra el producto; el historial lo borran los repos de eventos.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	r.s.st.products = append(r.s.st.products[:i], r.s.st.products[i+1:]...)
	return nil
}

func (r *ProductRepo) indexOf(id string) int {
	for i, p := range r.s.st.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
