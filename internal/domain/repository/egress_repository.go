package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// EgressRepository define el puerto de persistencia para salidas de stock.
type EgressRepository interface {
	Create(ctx context.Context, egress *entity.Egress) error
	GetByID(ctx context.Context, id string) (*entity.Egress, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Egress, error)
	Update(ctx context.Context, egress *entity.Egress) error
	Delete(ctx context.Context, id string) error
	// List devuelve todas las salidas en orden de inserción.
	List(ctx context.Context) ([]*entity.Egress, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Egress, error)
	// LockByProduct bloquea las salidas del producto y devuelve cuántas hay.
	LockByProduct(ctx context.Context, productID string) (int, error)
	DeleteByProduct(ctx context.Context, productID string) (int64, error)
}
