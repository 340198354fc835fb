package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas agregadas de solo lectura para reportes.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// TopConsumed suma las salidas por producto. En empate gana el producto con la salida más antigua.
func (r *AnalyticsRepo) TopConsumed(ctx context.Context, n int) ([]repository.ConsumedResult, error) {
	const query = `
	SELECT
	    p.id,
	    p.code,
	    p.name,
	    p.unit,
	    SUM(e.quantity)  AS total
	FROM egresses e
	JOIN products p ON p.id = e.product_id
	GROUP BY p.id, p.code, p.name, p.unit
	ORDER BY total DESC, MIN(e.seq) ASC
	LIMIT $1`

	rows, err := r.q.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("analytics.TopConsumed: %w", err)
	}
	defer rows.Close()

	results := make([]repository.ConsumedResult, 0)
	for rows.Next() {
		var row repository.ConsumedResult
		if err := rows.Scan(&row.ProductID, &row.ProductCode, &row.ProductName, &row.Unit, &row.Total); err != nil {
			return nil, fmt.Errorf("analytics.TopConsumed scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// ValuationBySubWarehouse una fila por subalmacén enumerado, en orden de presentación, incluso sin productos.
func (r *AnalyticsRepo) ValuationBySubWarehouse(ctx context.Context) ([]repository.LocationValuation, error) {
	const query = `
	SELECT
	    s.sub_warehouse,
	    COUNT(p.id)                                AS product_count,
	    COALESCE(SUM(p.quantity * p.price), 0)     AS total_value
	FROM unnest($1::text[]) WITH ORDINALITY AS s(sub_warehouse, ord)
	LEFT JOIN products p ON p.sub_warehouse = s.sub_warehouse
	GROUP BY s.sub_warehouse, s.ord
	ORDER BY s.ord`

	subs := entity.AllSubWarehouses()
	names := make([]string, 0, len(subs))
	for _, s := range subs {
		names = append(names, string(s))
	}

	rows, err := r.q.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("analytics.ValuationBySubWarehouse: %w", err)
	}
	defer rows.Close()

	results := make([]repository.LocationValuation, 0, len(subs))
	for rows.Next() {
		var (
			row  repository.LocationValuation
			name string
		)
		if err := rows.Scan(&name, &row.ProductCount, &row.TotalValue); err != nil {
			return nil, fmt.Errorf("analytics.ValuationBySubWarehouse scan: %w", err)
		}
		row.SubWarehouse = entity.SubWarehouse(name)
		results = append(results, row)
	}
	return results, rows.Err()
}
