package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ConsumedResult total retirado de un producto sumando todas sus salidas.
type ConsumedResult struct {
	ProductID   string
	ProductCode string
	ProductName string
	Unit        string
	Total       decimal.Decimal
}

// LocationValuation valor total del stock de un subalmacén.
type LocationValuation struct {
	SubWarehouse entity.SubWarehouse
	ProductCount int
	TotalValue   decimal.Decimal
}

// AnalyticsRepository consultas agregadas de solo lectura para reportes.
type AnalyticsRepository interface {
	// TopConsumed agrupa salidas por producto y devuelve los n con mayor total.
	// Empates: gana el producto cuya primera salida es más antigua.
	TopConsumed(ctx context.Context, n int) ([]ConsumedResult, error)
	// ValuationBySubWarehouse devuelve una fila por cada subalmacén enumerado, incluso vacío.
	ValuationBySubWarehouse(ctx context.Context) ([]LocationValuation, error)
}
