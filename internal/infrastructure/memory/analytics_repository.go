package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados de reportes calculados sobre el store.
type AnalyticsRepo struct {
	s *Store
}

// TopConsumed suma salidas por producto; en empate queda primero el de salida más antigua.
func (r *AnalyticsRepo) TopConsumed(_ context.Context, n int) ([]repository.ConsumedResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make(map[string]*entity.Product, len(r.s.st.products))
	for _, p := range r.s.st.products {
		products[p.ID] = p
	}
	index := make(map[string]int)
	var out []repository.ConsumedResult
	for _, e := range r.s.st.egresses {
		i, ok := index[e.ProductID]
		if !ok {
			p := products[e.ProductID]
			if p == nil {
				continue
			}
			i = len(out)
			index[e.ProductID] = i
			out = append(out, repository.ConsumedResult{
				ProductID:   p.ID,
				ProductCode: p.Code,
				ProductName: p.Name,
				Unit:        p.Unit,
				Total:       decimal.Zero,
			})
		}
		out[i].Total = out[i].Total.Add(e.Quantity)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// ValuationBySubWarehouse una fila por subalmacén enumerado.
func (r *AnalyticsRepo) ValuationBySubWarehouse(_ context.Context) ([]repository.LocationValuation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]repository.LocationValuation, 0, len(entity.AllSubWarehouses()))
	for _, sub := range entity.AllSubWarehouses() {
		v := repository.LocationValuation{SubWarehouse: sub, TotalValue: decimal.Zero}
		for _, p := range r.s.st.products {
			if p.SubWarehouse == sub {
				v.ProductCount++
				v.TotalValue = v.TotalValue.Add(p.TotalValue())
			}
		}
		out = append(out, v)
	}
	return out, nil
}
