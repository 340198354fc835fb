package inventory

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// ImportUseCase importación masiva de productos desde una planilla.
// Las filas válidas se confirman en un único lote; cada producto nuevo lleva su ingreso inicial.
type ImportUseCase struct {
	txRunner TxRunner
	reader   ProductSheetReader
	cfg      Config
	log      *logger.Logger
	now      func() time.Time
}

// NewImportUseCase construye el caso de uso de importación.
func NewImportUseCase(txRunner TxRunner, reader ProductSheetReader, cfg Config, log *logger.Logger) *ImportUseCase {
	return &ImportUseCase{
		txRunner: txRunner,
		reader:   reader,
		cfg:      cfg,
		log:      log.Component("import"),
		now:      time.Now,
	}
}

// Import lee el archivo y crea los productos cuyo código no exista todavía.
// Filas sin código se ignoran; códigos existentes (o repetidos en el archivo) se cuentan como omitidos;
// filas que no convierten o no validan se devuelven en Errors. Solo admin.
func (uc *ImportUseCase) Import(ctx context.Context, actor entity.Actor, filename string, r io.Reader) (*dto.ImportResult, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	rows, rowErrs, err := uc.reader.ReadProducts(filename, r)
	if err != nil {
		return nil, domain.NewValidationError("file", err.Error())
	}
	result := &dto.ImportResult{Errors: append([]dto.ImportRowError{}, rowErrs...)}

	valid := make([]dto.ImportRow, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Code) == "" {
			continue
		}
		if reason := validateImportRow(row); reason != "" {
			result.Errors = append(result.Errors, dto.ImportRowError{Line: row.Line, Reason: reason})
			continue
		}
		valid = append(valid, row)
	}

	now := uc.now().UTC()
	imported, skipped := 0, 0
	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		ingressRepo repository.IngressRepository,
		_ repository.EgressRepository,
	) error {
		imported, skipped = 0, 0
		seen := make(map[string]bool, len(valid))
		for _, row := range valid {
			code := strings.TrimSpace(row.Code)
			if seen[code] {
				skipped++
				continue
			}
			seen[code] = true
			existing, err := productRepo.GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if existing != nil {
				skipped++
				continue
			}
			product := &entity.Product{ID: uuid.New().String(), CreatedAt: now}
			applyProductFields(product, dto.ProductRequest{
				Code:         code,
				Name:         row.Name,
				Quantity:     row.Quantity,
				Price:        row.Price,
				Supplier:     row.Supplier,
				MinStock:     row.MinStock,
				SubWarehouse: row.SubWarehouse,
				Unit:         row.Unit,
				Diameter:     row.Diameter,
			}, uc.cfg.DefaultMinStock, now)
			if err := productRepo.Create(ctx, product); err != nil {
				return err
			}
			if err := ingressRepo.Create(ctx, &entity.Ingress{
				ID:        uuid.New().String(),
				ProductID: product.ID,
				Quantity:  product.Quantity,
				UserID:    actor.Ref(),
				CreatedAt: now,
			}); err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("file", filename).Msg("importación revertida")
		return nil, domain.WrapOperation("importar productos", err)
	}
	result.Imported = imported
	result.Skipped = skipped
	uc.log.Info().
		Str("file", filename).
		Int("imported", imported).
		Int("skipped", skipped).
		Int("errors", len(result.Errors)).
		Str("user_id", actor.UserID).
		Msg("importación completada")
	return result, nil
}

func validateImportRow(row dto.ImportRow) string {
	switch {
	case strings.TrimSpace(row.Name) == "":
		return "nombre vacío"
	case strings.TrimSpace(row.Unit) == "":
		return "unidad vacía"
	case row.Quantity.IsNegative():
		return "cantidad negativa"
	case row.Price.IsNegative():
		return "precio negativo"
	case row.MinStock != nil && row.MinStock.IsNegative():
		return "stock mínimo negativo"
	case !entity.FitsScale(row.Quantity):
		return "cantidad con más de 2 decimales"
	case !entity.FitsScale(row.Price):
		return "precio con más de 2 decimales"
	case row.MinStock != nil && !entity.FitsScale(*row.MinStock):
		return "stock mínimo con más de 2 decimales"
	case !entity.SubWarehouse(row.SubWarehouse).Valid():
		return "subalmacén desconocido: " + row.SubWarehouse
	}
	return ""
}
