package usecase

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ProductUseCase consultas de productos y salidas. Las mutaciones viven en inventory.StockUseCase.
type ProductUseCase struct {
	productRepo repository.ProductRepository
	egressRepo  repository.EgressRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(productRepo repository.ProductRepository, egressRepo repository.EgressRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, egressRepo: egressRepo}
}

// List devuelve los productos (filtrados por nombre o código si search no está vacío)
// junto con los que de esa lista están en alerta de stock.
func (uc *ProductUseCase) List(ctx context.Context, search string) (*dto.ProductListResponse, error) {
	products, err := uc.productRepo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Items:  dto.FromProducts(products),
		Alerts: dto.FromProducts(filterAlerts(products)),
	}
	return resp, nil
}

// LowStock productos con cantidad menor o igual a su stock mínimo.
func (uc *ProductUseCase) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := uc.productRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	return dto.FromProducts(filterAlerts(products)), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.FromProduct(product)
	return &resp, nil
}

// GetEgress obtiene una salida por ID.
func (uc *ProductUseCase) GetEgress(ctx context.Context, id string) (*dto.EgressResponse, error) {
	egress, err := uc.egressRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if egress == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.FromEgress(egress)
	return &resp, nil
}

func filterAlerts(products []*entity.Product) []*entity.Product {
	alerts := make([]*entity.Product, 0)
	for _, p := range products {
		if p.NeedsAlert() {
			alerts = append(alerts, p)
		}
	}
	return alerts
}
