package inventory

import (
	"context"
	"io"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ningún cambio persistido.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		ingressRepo repository.IngressRepository,
		egressRepo repository.EgressRepository,
	) error) error
}

// AttachmentStore guarda una imagen adjunta y devuelve su ruta relativa (opaca para el núcleo).
// Delete borra una ruta devuelta por Save; se usa cuando la transacción que la referencia falla.
type AttachmentStore interface {
	Save(ctx context.Context, file *dto.Upload) (string, error)
	Delete(ctx context.Context, path string) error
}

// ProductSheetReader convierte una planilla (xlsx/csv) en filas de importación.
// Las filas con errores de conversión vuelven en la segunda lista, no como error.
type ProductSheetReader interface {
	ReadProducts(filename string, r io.Reader) ([]dto.ImportRow, []dto.ImportRowError, error)
}
