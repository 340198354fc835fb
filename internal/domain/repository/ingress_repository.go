package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// IngressRepository define el puerto de persistencia para entradas de stock.
type IngressRepository interface {
	Create(ctx context.Context, ingress *entity.Ingress) error
	// List devuelve todas las entradas en orden de inserción.
	List(ctx context.Context) ([]*entity.Ingress, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Ingress, error)
	// DeleteByProduct borra el historial de entradas del producto y devuelve cuántas eran.
	DeleteByProduct(ctx context.Context, productID string) (int64, error)
}
