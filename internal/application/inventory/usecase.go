package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// Config parámetros de negocio del motor de stock.
type Config struct {
	DefaultMinStock    decimal.Decimal
	AttachmentLocation entity.SubWarehouse // único subalmacén que guarda imágenes
}

// minEgressQuantity cantidad mínima aceptada en una salida.
var minEgressQuantity = decimal.RequireFromString("0.01")

const msgMaxDecimals = "máximo 2 decimales"

// StockUseCase motor de mutaciones de stock. Cada operación corre en una sola transacción
// con las filas de producto bloqueadas (SELECT FOR UPDATE) y queda emparejada con su
// registro de Ingress o Egress, de modo que Quantity = Σ ingresos − Σ salidas.
type StockUseCase struct {
	txRunner    TxRunner
	attachments AttachmentStore
	cfg         Config
	log         *logger.Logger
	now         func() time.Time
}

// NewStockUseCase construye el caso de uso. attachments puede ser nil (sin adjuntos).
func NewStockUseCase(txRunner TxRunner, attachments AttachmentStore, cfg Config, log *logger.Logger) *StockUseCase {
	return &StockUseCase{
		txRunner:    txRunner,
		attachments: attachments,
		cfg:         cfg,
		log:         log.Component("stock"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *StockUseCase) WithClock(now func() time.Time) *StockUseCase {
	uc.now = now
	return uc
}

// CreateProduct crea el producto y su ingreso inicial por la cantidad dada. Solo admin.
func (uc *StockUseCase) CreateProduct(ctx context.Context, actor entity.Actor, in dto.ProductRequest, file *dto.Upload) (*entity.Product, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	product := &entity.Product{
		ID:        uuid.New().String(),
		CreatedAt: now,
	}
	applyProductFields(product, in, uc.cfg.DefaultMinStock, now)

	var saved string
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		ingressRepo repository.IngressRepository,
		_ repository.EgressRepository,
	) error {
		existing, err := productRepo.GetByCode(ctx, product.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateCode
		}
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		saved = uc.saveAttachment(ctx, product.SubWarehouse, file)
		return ingressRepo.Create(ctx, &entity.Ingress{
			ID:         uuid.New().String(),
			ProductID:  product.ID,
			Quantity:   product.Quantity,
			Attachment: saved,
			UserID:     actor.Ref(),
			CreatedAt:  now,
		})
	})
	if err != nil {
		uc.discardAttachment(ctx, saved)
		uc.log.Warn().Err(err).Str("code", product.Code).Msg("alta de producto revertida")
		return nil, domain.WrapOperation("crear producto", err)
	}
	uc.log.Info().
		Str("product_id", product.ID).
		Str("code", product.Code).
		Str("quantity", product.Quantity.String()).
		Str("user_id", actor.UserID).
		Msg("producto creado")
	return product, nil
}

// EditProduct actualiza los campos del producto. Un aumento de cantidad genera un Ingress
// por la diferencia; una disminución se persiste sin registro de salida. Solo admin.
func (uc *StockUseCase) EditProduct(ctx context.Context, actor entity.Actor, id string, in dto.ProductRequest, file *dto.Upload) (*entity.Product, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	var (
		updated *entity.Product
		delta   decimal.Decimal
		saved   string
	)
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		ingressRepo repository.IngressRepository,
		_ repository.EgressRepository,
	) error {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		code := strings.TrimSpace(in.Code)
		if code != p.Code {
			other, err := productRepo.GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if other != nil && other.ID != p.ID {
				return domain.ErrDuplicateCode
			}
		}
		previous := p.Quantity
		applyProductFields(p, in, p.MinStock, now)
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}
		delta = p.Quantity.Sub(previous)
		if delta.IsPositive() {
			saved = uc.saveAttachment(ctx, p.SubWarehouse, file)
			if err := ingressRepo.Create(ctx, &entity.Ingress{
				ID:         uuid.New().String(),
				ProductID:  p.ID,
				Quantity:   delta,
				Attachment: saved,
				UserID:     actor.Ref(),
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		uc.discardAttachment(ctx, saved)
		uc.log.Warn().Err(err).Str("product_id", id).Msg("edición de producto revertida")
		return nil, domain.WrapOperation("editar producto", err)
	}
	ev := uc.log.Info()
	if delta.IsNegative() {
		ev = uc.log.Warn()
	}
	ev.Str("product_id", updated.ID).
		Str("code", updated.Code).
		Str("delta", delta.String()).
		Str("user_id", actor.UserID).
		Msg("producto actualizado")
	return updated, nil
}

// DeleteProduct borra el producto junto con todo su historial de ingresos y salidas. Solo admin.
// Bloquea primero las salidas y después el producto, el mismo orden que EditEgress y DeleteEgress.
func (uc *StockUseCase) DeleteProduct(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	var (
		code      string
		ingresses int64
		egrs      int64
	)
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		ingressRepo repository.IngressRepository,
		egressRepo repository.EgressRepository,
	) error {
		if _, err := egressRepo.LockByProduct(ctx, id); err != nil {
			return err
		}
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		code = p.Code
		if ingresses, err = ingressRepo.DeleteByProduct(ctx, id); err != nil {
			return err
		}
		if egrs, err = egressRepo.DeleteByProduct(ctx, id); err != nil {
			return err
		}
		return productRepo.Delete(ctx, id)
	})
	if err != nil {
		return domain.WrapOperation("eliminar producto", err)
	}
	uc.log.Warn().
		Str("product_id", id).
		Str("code", code).
		Int64("ingresses_deleted", ingresses).
		Int64("egresses_deleted", egrs).
		Str("user_id", actor.UserID).
		Msg("producto eliminado con su historial")
	return nil
}

// RegisterEgress descuenta stock y registra la salida con el precio vigente del producto.
func (uc *StockUseCase) RegisterEgress(ctx context.Context, actor entity.Actor, in dto.EgressRequest, file *dto.Upload) (*entity.Egress, error) {
	if err := validateEgress(in); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	egress := &entity.Egress{
		ID:            uuid.New().String(),
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		RequesterName: strings.TrimSpace(in.RequesterName),
		RequesterCode: strings.TrimSpace(in.RequesterCode),
		UserID:        actor.Ref(),
		CreatedAt:     now,
	}
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.IngressRepository,
		egressRepo repository.EgressRepository,
	) error {
		p, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if in.Quantity.GreaterThan(p.Quantity) {
			return &domain.InsufficientStockError{ProductCode: p.Code, Available: p.Quantity, Requested: in.Quantity}
		}
		p.Quantity = p.Quantity.Sub(in.Quantity)
		p.UpdatedAt = now
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}
		egress.UnitPrice = p.Price
		egress.Attachment = uc.saveAttachment(ctx, p.SubWarehouse, file)
		return egressRepo.Create(ctx, egress)
	})
	if err != nil {
		uc.discardAttachment(ctx, egress.Attachment)
		uc.log.Warn().Err(err).Str("product_id", in.ProductID).Msg("salida rechazada")
		return nil, domain.WrapOperation("registrar salida", err)
	}
	uc.log.Info().
		Str("egress_id", egress.ID).
		Str("product_id", egress.ProductID).
		Str("quantity", egress.Quantity.String()).
		Str("requester", egress.RequesterName).
		Str("user_id", actor.UserID).
		Msg("salida registrada")
	return egress, nil
}

// EditEgress modifica una salida existente (cantidad, producto destino, solicitante).
// Revierte la cantidad original, valida contra el producto destino ya revertido y aplica;
// si la validación falla no queda ningún cambio. El precio se vuelve a capturar del destino.
// Solo admin.
func (uc *StockUseCase) EditEgress(ctx context.Context, actor entity.Actor, id string, in dto.EgressRequest, file *dto.Upload) (*entity.Egress, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := validateEgress(in); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	var (
		updated *entity.Egress
		saved   string
	)
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.IngressRepository,
		egressRepo repository.EgressRepository,
	) error {
		e, err := egressRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.ErrNotFound
		}
		locked, err := lockProducts(ctx, productRepo, e.ProductID, in.ProductID)
		if err != nil {
			return err
		}
		oldP, newP := locked[e.ProductID], locked[in.ProductID]
		if oldP == nil || newP == nil {
			return domain.ErrNotFound
		}

		// 1. revertir la salida original
		oldP.Quantity = oldP.Quantity.Add(e.Quantity)

		// 2. validar contra el destino (si es el mismo producto ya incluye la reversión)
		if in.Quantity.GreaterThan(newP.Quantity) {
			available := newP.Quantity
			oldP.Quantity = oldP.Quantity.Sub(e.Quantity)
			return &domain.InsufficientStockError{ProductCode: newP.Code, Available: available, Requested: in.Quantity}
		}

		// 3. aplicar
		newP.Quantity = newP.Quantity.Sub(in.Quantity)
		for _, p := range locked {
			p.UpdatedAt = now
			if err := productRepo.Update(ctx, p); err != nil {
				return err
			}
		}
		e.ProductID = newP.ID
		e.Quantity = in.Quantity
		e.RequesterName = strings.TrimSpace(in.RequesterName)
		e.RequesterCode = strings.TrimSpace(in.RequesterCode)
		e.UnitPrice = newP.Price
		if saved = uc.saveAttachment(ctx, newP.SubWarehouse, file); saved != "" {
			e.Attachment = saved
		}
		if err := egressRepo.Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		uc.discardAttachment(ctx, saved)
		uc.log.Warn().Err(err).Str("egress_id", id).Msg("edición de salida revertida")
		return nil, domain.WrapOperation("editar salida", err)
	}
	uc.log.Info().
		Str("egress_id", updated.ID).
		Str("product_id", updated.ProductID).
		Str("quantity", updated.Quantity.String()).
		Str("user_id", actor.UserID).
		Msg("salida actualizada")
	return updated, nil
}

// DeleteEgress devuelve la cantidad al producto y borra la salida. Solo admin.
func (uc *StockUseCase) DeleteEgress(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	var restored *entity.Egress
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.IngressRepository,
		egressRepo repository.EgressRepository,
	) error {
		e, err := egressRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.ErrNotFound
		}
		p, err := productRepo.GetForUpdate(ctx, e.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		p.Quantity = p.Quantity.Add(e.Quantity)
		p.UpdatedAt = uc.now().UTC()
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}
		restored = e
		return egressRepo.Delete(ctx, id)
	})
	if err != nil {
		return domain.WrapOperation("eliminar salida", err)
	}
	uc.log.Info().
		Str("egress_id", id).
		Str("product_id", restored.ProductID).
		Str("restored", restored.Quantity.String()).
		Str("user_id", actor.UserID).
		Msg("salida eliminada y stock devuelto")
	return nil
}

// lockProducts bloquea los productos en orden ascendente de id para evitar deadlocks.
func lockProducts(ctx context.Context, productRepo repository.ProductRepository, ids ...string) (map[string]*entity.Product, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)
	locked := make(map[string]*entity.Product, len(unique))
	for _, id := range unique {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			locked[id] = p
		}
	}
	return locked, nil
}

// saveAttachment persiste la imagen solo para el subalmacén configurado.
// Un fallo del storage se registra y se trata como "sin adjunto".
func (uc *StockUseCase) saveAttachment(ctx context.Context, location entity.SubWarehouse, file *dto.Upload) string {
	if file == nil || uc.attachments == nil || location != uc.cfg.AttachmentLocation {
		return ""
	}
	path, err := uc.attachments.Save(ctx, file)
	if err != nil {
		uc.log.Error().Err(err).Str("file", file.Filename).Msg("error al guardar imagen")
		return ""
	}
	return path
}

// discardAttachment borra la imagen de una transacción revertida para no dejar archivos huérfanos.
func (uc *StockUseCase) discardAttachment(ctx context.Context, path string) {
	if path == "" || uc.attachments == nil {
		return
	}
	if err := uc.attachments.Delete(context.WithoutCancel(ctx), path); err != nil {
		uc.log.Error().Err(err).Str("path", path).Msg("error al borrar imagen de una operación revertida")
	}
}

func applyProductFields(p *entity.Product, in dto.ProductRequest, fallbackMinStock decimal.Decimal, now time.Time) {
	p.Code = strings.TrimSpace(in.Code)
	p.Name = strings.TrimSpace(in.Name)
	p.Quantity = in.Quantity
	p.Price = in.Price
	p.Supplier = strings.TrimSpace(in.Supplier)
	p.MinStock = fallbackMinStock
	if in.MinStock != nil {
		p.MinStock = *in.MinStock
	}
	p.SubWarehouse = entity.SubWarehouse(in.SubWarehouse)
	p.Unit = strings.TrimSpace(in.Unit)
	p.Diameter = strings.TrimSpace(in.Diameter)
	p.UpdatedAt = now
}

func validateProduct(in dto.ProductRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Code) == "" {
		fields["code"] = "requerido"
	}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "requerido"
	}
	if strings.TrimSpace(in.Unit) == "" {
		fields["unit"] = "requerido"
	}
	switch {
	case in.Quantity.IsNegative():
		fields["quantity"] = "no puede ser negativa"
	case !entity.FitsScale(in.Quantity):
		fields["quantity"] = msgMaxDecimals
	}
	switch {
	case in.Price.IsNegative():
		fields["price"] = "no puede ser negativo"
	case !entity.FitsScale(in.Price):
		fields["price"] = msgMaxDecimals
	}
	if in.MinStock != nil {
		switch {
		case in.MinStock.IsNegative():
			fields["min_stock"] = "no puede ser negativo"
		case !entity.FitsScale(*in.MinStock):
			fields["min_stock"] = msgMaxDecimals
		}
	}
	if !entity.SubWarehouse(in.SubWarehouse).Valid() {
		fields["sub_warehouse"] = "subalmacén desconocido"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func validateEgress(in dto.EgressRequest) error {
	fields := map[string]string{}
	if in.ProductID == "" {
		fields["product_id"] = "requerido"
	}
	switch {
	case in.Quantity.LessThan(minEgressQuantity):
		fields["quantity"] = "debe ser al menos 0.01"
	case !entity.FitsScale(in.Quantity):
		fields["quantity"] = msgMaxDecimals
	}
	if strings.TrimSpace(in.RequesterName) == "" {
		fields["requester_name"] = "requerido"
	}
	if strings.TrimSpace(in.RequesterCode) == "" {
		fields["requester_code"] = "requerido"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
