package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

var (
	admin    = entity.Actor{UserID: "u-admin", Username: "ana", Role: entity.RoleAdmin}
	employee = entity.Actor{UserID: "u-emp", Username: "luis", Role: entity.RoleEmployee}
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// captureRenderer guarda el último documento recibido.
type captureRenderer struct {
	last *dto.ReportDocument
	err  error
}

func (r *captureRenderer) Render(doc dto.ReportDocument) ([]byte, error) {
	r.last = &doc
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-fake"), nil
}

type fixture struct {
	store  *memory.Store
	stock  *inventory.StockUseCase
	report *usecase.ReportUseCase
	pdf    *captureRenderer
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.New(),
		pdf:   &captureRenderer{},
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	cfg := inventory.Config{DefaultMinStock: d("10"), AttachmentLocation: entity.SubWarehousePozo57}
	f.stock = inventory.NewStockUseCase(f.store, nil, cfg, logger.Nop()).WithClock(func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	})
	ledger := inventory.NewLedgerUseCase(f.store.Ingresses(), f.store.Egresses(), f.store.Products(), f.store.Users(), inventory.NewDisplay(4))
	f.report = usecase.NewReportUseCase(
		f.store.Products(),
		f.store.Egresses(),
		f.store.Analytics(),
		ledger,
		map[string]usecase.ReportRenderer{usecase.FormatPDF: f.pdf},
		2,
	)
	return f
}

func (f *fixture) product(t *testing.T, code, name, qty, price string, sub entity.SubWarehouse) *entity.Product {
	t.Helper()
	p, err := f.stock.CreateProduct(context.Background(), admin, dto.ProductRequest{
		Code:         code,
		Name:         name,
		Quantity:     d(qty),
		Price:        d(price),
		SubWarehouse: string(sub),
		Unit:         "pieza",
	}, nil)
	require.NoError(t, err)
	return p
}

func (f *fixture) egress(t *testing.T, productID, qty, requester string) {
	t.Helper()
	_, err := f.stock.RegisterEgress(context.Background(), employee, dto.EgressRequest{
		ProductID:     productID,
		Quantity:      d(qty),
		RequesterName: requester,
		RequesterCode: "F-" + requester,
	}, nil)
	require.NoError(t, err)
}

func TestReports_SoloAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.report.LowStock(ctx, employee)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.report.TopConsumed(ctx, employee)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.report.Export(ctx, employee, usecase.ReportInventory, usecase.FormatPDF)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLowStock_IncluyeCantidadIgualAlMinimo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "A-1", "Arandela", "8", "1", entity.SubWarehouseSCPE)
	f.product(t, "B-1", "Brida", "10", "1", entity.SubWarehouseSCPE)
	f.product(t, "C-1", "Codo", "11", "1", entity.SubWarehouseSCPE)

	items, err := f.report.LowStock(ctx, admin)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A-1", items[0].Code)
	assert.Equal(t, "B-1", items[1].Code)
}

func TestEgressesByRequester_TotalesConPrecioCapturado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "V-1", "Válvula", "100", "12.50", entity.SubWarehouseSCPE)
	f.egress(t, p.ID, "4", "Juan")
	f.egress(t, p.ID, "2", "Ana")
	f.egress(t, p.ID, "1", "Juan")

	groups, err := f.report.EgressesByRequester(ctx, admin)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Ana", groups[0].Key)
	assert.Equal(t, "Juan", groups[1].Key)
	assert.True(t, groups[1].TotalQuantity.Equal(d("5")))
	assert.True(t, groups[1].TotalAmount.Equal(d("62.5")))
	require.Len(t, groups[1].Items, 2)
	assert.Equal(t, "V-1", groups[1].Items[0].ProductCode)
}

func TestEgressesByProduct_AgrupaPorNombre(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A-1", "Acople", "50", "1", entity.SubWarehouseSCPE)
	b := f.product(t, "B-1", "Bomba", "50", "1", entity.SubWarehouseSCPE)
	f.egress(t, b.ID, "3", "Juan")
	f.egress(t, a.ID, "1", "Juan")
	f.egress(t, b.ID, "2", "Ana")

	groups, err := f.report.EgressesByProduct(ctx, admin)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Acople", groups[0].Key)
	assert.Equal(t, "Bomba", groups[1].Key)
	assert.True(t, groups[1].TotalQuantity.Equal(d("5")))
}

func TestIngressReport_AgrupaPorProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "T-1", "Tubo", "10", "1", entity.SubWarehouseSCPE)
	req := dto.ProductRequest{Code: "T-1", Name: "Tubo", Quantity: d("25"), Price: d("1"), SubWarehouse: string(entity.SubWarehouseSCPE), Unit: "pieza"}
	_, err := f.stock.EditProduct(ctx, admin, p.ID, req, nil)
	require.NoError(t, err)

	groups, err := f.report.IngressReport(ctx, admin)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "T-1", groups[0].ProductCode)
	assert.True(t, groups[0].Total.Equal(d("25")))
	require.Len(t, groups[0].Items, 2)
	assert.True(t, groups[0].Items[0].Quantity.Equal(d("15")), "más reciente primero")
}

func TestTopStocked_LimitaAN(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A-1", "A", "5", "1", entity.SubWarehouseSCPE)
	f.product(t, "B-1", "B", "50", "1", entity.SubWarehouseSCPE)
	f.product(t, "C-1", "C", "20", "1", entity.SubWarehouseSCPE)

	items, err := f.report.TopStocked(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Rank)
	assert.Equal(t, "B-1", items[0].ProductCode)
	assert.Equal(t, "C-1", items[1].ProductCode)
}

func TestTopConsumed_SumaSalidas(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A-1", "A", "100", "1", entity.SubWarehouseSCPE)
	b := f.product(t, "B-1", "B", "100", "1", entity.SubWarehouseSCPE)
	f.egress(t, a.ID, "5", "Juan")
	f.egress(t, b.ID, "8", "Juan")
	f.egress(t, a.ID, "4", "Ana")

	items, err := f.report.TopConsumed(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A-1", items[0].ProductCode)
	assert.True(t, items[0].Value.Equal(d("9")))
}

func TestValuation_TodasLasUbicaciones(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A-1", "A", "10", "2.5", entity.SubWarehousePozo57)
	f.product(t, "B-1", "B", "4", "10", entity.SubWarehousePozo57)

	locations, err := f.report.Valuation(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, locations, len(entity.AllSubWarehouses()))
	for _, loc := range locations {
		if loc.SubWarehouse == string(entity.SubWarehousePozo57) {
			assert.Equal(t, 2, loc.ProductCount)
			assert.True(t, loc.TotalValue.Equal(d("65")))
			assert.Len(t, loc.Products, 2)
			continue
		}
		assert.Zero(t, loc.ProductCount)
		assert.True(t, loc.TotalValue.IsZero())
	}
}

func TestExport_Ledger(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "P-1", "Perno", "10", "1", entity.SubWarehouseSCPE)
	f.egress(t, p.ID, "3", "Juan")

	file, err := f.report.Export(context.Background(), admin, usecase.ReportLedger, usecase.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "Historial_Completo.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.ContentType)

	doc := f.pdf.last
	require.NotNil(t, doc)
	assert.Equal(t, "Historial_Kardex", doc.SheetName)
	require.Len(t, doc.Sections, 1)
	rows := doc.Sections[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, entity.MovementTypeEgress, rows[0][1])
	assert.Equal(t, "Retirado por: Juan", rows[0][6])
	// 12:02 UTC menos 4 horas
	assert.Equal(t, "01/03/2026 08:02", rows[0][0])
}

func TestExport_Inventario(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P-1", "Perno", "10", "2", entity.SubWarehouseSCPE)

	file, err := f.report.Export(context.Background(), admin, usecase.ReportInventory, usecase.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "Reporte_Inventario.pdf", file.Name)
	doc := f.pdf.last
	assert.Equal(t, "INVENTARIO GENERAL", doc.Title)
	assert.NotEmpty(t, doc.GeneratedAt)
	assert.Equal(t, "Valor total: 20,00 Bs", doc.Sections[0].Footer)
}

func TestExport_FormatoYNombreInvalidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.report.Export(ctx, admin, usecase.ReportInventory, usecase.FormatXLSX)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "format")

	_, err = f.report.Export(ctx, admin, "desconocido", usecase.FormatPDF)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExport_ErrorDelRenderer(t *testing.T) {
	f := newFixture(t)
	f.pdf.err = errors.New("sin fuente")

	_, err := f.report.Export(context.Background(), admin, usecase.ReportLowStock, usecase.FormatPDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sin fuente")
}
