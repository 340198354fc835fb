package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest entrada para crear o editar un producto.
// MinStock nil aplica el stock mínimo configurado por defecto.
type ProductRequest struct {
	Code         string           `json:"code" form:"code" validate:"required,max=50"`
	Name         string           `json:"name" form:"name" validate:"required,max=100"`
	Quantity     decimal.Decimal  `json:"quantity" form:"quantity" validate:"gte=0,decimals"`
	Price        decimal.Decimal  `json:"price" form:"price" validate:"gte=0,decimals"`
	Supplier     string           `json:"supplier" form:"supplier" validate:"max=100"`
	MinStock     *decimal.Decimal `json:"min_stock,omitempty" form:"min_stock" validate:"omitempty,gte=0,decimals"`
	SubWarehouse string           `json:"sub_warehouse" form:"sub_warehouse" validate:"required,oneof='SCPE' 'POZO 57' 'ALMACEN CENTRAL'"`
	Unit         string           `json:"unit" form:"unit" validate:"required,max=50"`
	Diameter     string           `json:"diameter" form:"diameter" validate:"max=50"`
}

// ProductResponse salida de un producto con sus derivados.
type ProductResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Supplier     string          `json:"supplier"`
	MinStock     decimal.Decimal `json:"min_stock"`
	NeedsAlert   bool            `json:"needs_alert"`
	SubWarehouse string          `json:"sub_warehouse"`
	Unit         string          `json:"unit"`
	Diameter     string          `json:"diameter"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse listado de productos más los que están en alerta de stock.
type ProductListResponse struct {
	Items  []ProductResponse `json:"items"`
	Alerts []ProductResponse `json:"alerts"`
}
