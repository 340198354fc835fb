package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/numfmt"
)

// Formatos de exportación.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// Nombres de reporte aceptados por Export.
const (
	ReportInventory           = "inventory"
	ReportLedger              = "ledger"
	ReportLowStock            = "low-stock"
	ReportIngresses           = "ingresses"
	ReportEgressesByRequester = "egresses-by-requester"
	ReportEgressesByProduct   = "egresses-by-product"
	ReportTopStocked          = "top-stocked"
	ReportTopConsumed         = "top-consumed"
	ReportValuation           = "valuation"
)

const defaultTopN = 10

var contentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ReportRenderer dibuja un ReportDocument en un formato de archivo.
type ReportRenderer interface {
	Render(doc dto.ReportDocument) ([]byte, error)
}

// ReportUseCase reportes de solo lectura y su exportación. Todo requiere admin.
type ReportUseCase struct {
	productRepo   repository.ProductRepository
	egressRepo    repository.EgressRepository
	analyticsRepo repository.AnalyticsRepository
	ledger        *inventory.LedgerUseCase
	renderers     map[string]ReportRenderer
	topN          int
	now           func() time.Time
}

// NewReportUseCase construye el caso de uso. renderers se indexa por formato (FormatPDF, FormatXLSX).
func NewReportUseCase(
	productRepo repository.ProductRepository,
	egressRepo repository.EgressRepository,
	analyticsRepo repository.AnalyticsRepository,
	ledger *inventory.LedgerUseCase,
	renderers map[string]ReportRenderer,
	topN int,
) *ReportUseCase {
	if topN <= 0 {
		topN = defaultTopN
	}
	return &ReportUseCase{
		productRepo:   productRepo,
		egressRepo:    egressRepo,
		analyticsRepo: analyticsRepo,
		ledger:        ledger,
		renderers:     renderers,
		topN:          topN,
		now:           time.Now,
	}
}

// Ledger Kardex completo (lectura, cualquier usuario autenticado).
func (uc *ReportUseCase) Ledger(ctx context.Context) ([]dto.MovementResponse, error) {
	movs, err := uc.ledger.Movements(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.FromMovement(m, inventory.DisplayLayout))
	}
	return out, nil
}

// LowStock productos en alerta.
func (uc *ReportUseCase) LowStock(ctx context.Context, actor entity.Actor) ([]dto.ProductResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	products, err := uc.productRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	return dto.FromProducts(filterAlerts(products)), nil
}

// IngressReport entradas agrupadas por producto, con el total por grupo.
func (uc *ReportUseCase) IngressReport(ctx context.Context, actor entity.Actor) ([]dto.IngressGroup, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	movs, err := uc.ledger.Movements(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	groups := make([]dto.IngressGroup, 0)
	for _, m := range movs {
		if m.Type != entity.MovementTypeIngress {
			continue
		}
		i, ok := index[m.ProductID]
		if !ok {
			i = len(groups)
			index[m.ProductID] = i
			groups = append(groups, dto.IngressGroup{ProductName: m.ProductName, ProductCode: m.ProductCode, Total: decimal.Zero})
		}
		groups[i].Total = groups[i].Total.Add(m.Quantity)
		groups[i].Items = append(groups[i].Items, dto.IngressLineItem{
			ID:        m.ID,
			Quantity:  m.Quantity,
			Timestamp: m.Timestamp.Format(inventory.DisplayLayout),
			Actor:     m.Actor,
		})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].ProductName < groups[j].ProductName })
	return groups, nil
}

// EgressesByRequester salidas agrupadas por funcionario con total en Bs (cantidad × precio capturado).
func (uc *ReportUseCase) EgressesByRequester(ctx context.Context, actor entity.Actor) ([]dto.EgressGroup, error) {
	return uc.egressGroups(ctx, actor, func(item dto.EgressLineItem) string { return item.RequesterName })
}

// EgressesByProduct salidas agrupadas por producto con la cantidad total retirada.
func (uc *ReportUseCase) EgressesByProduct(ctx context.Context, actor entity.Actor) ([]dto.EgressGroup, error) {
	return uc.egressGroups(ctx, actor, func(item dto.EgressLineItem) string { return item.ProductName })
}

// TopStocked los N productos con mayor cantidad actual.
func (uc *ReportUseCase) TopStocked(ctx context.Context, actor entity.Actor) ([]dto.RankedProduct, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	products, err := uc.productRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Quantity.GreaterThan(products[j].Quantity)
	})
	if len(products) > uc.topN {
		products = products[:uc.topN]
	}
	out := make([]dto.RankedProduct, 0, len(products))
	for i, p := range products {
		out = append(out, dto.RankedProduct{
			Rank:        i + 1,
			ProductID:   p.ID,
			ProductCode: p.Code,
			ProductName: p.Name,
			Unit:        p.Unit,
			Value:       p.Quantity,
		})
	}
	return out, nil
}

// TopConsumed los N productos con más cantidad retirada en total.
func (uc *ReportUseCase) TopConsumed(ctx context.Context, actor entity.Actor) ([]dto.RankedProduct, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	rows, err := uc.analyticsRepo.TopConsumed(ctx, uc.topN)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RankedProduct, 0, len(rows))
	for i, r := range rows {
		out = append(out, dto.RankedProduct{
			Rank:        i + 1,
			ProductID:   r.ProductID,
			ProductCode: r.ProductCode,
			ProductName: r.ProductName,
			Unit:        r.Unit,
			Value:       r.Total,
		})
	}
	return out, nil
}

// Valuation valor del stock por subalmacén, con los productos de cada uno.
func (uc *ReportUseCase) Valuation(ctx context.Context, actor entity.Actor) ([]dto.LocationValuationResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	var (
		totals   []repository.LocationValuation
		products []*entity.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = uc.analyticsRepo.ValuationBySubWarehouse(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = uc.productRepo.List(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	bySub := make(map[entity.SubWarehouse][]*entity.Product)
	for _, p := range products {
		bySub[p.SubWarehouse] = append(bySub[p.SubWarehouse], p)
	}
	out := make([]dto.LocationValuationResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, dto.LocationValuationResponse{
			SubWarehouse: string(t.SubWarehouse),
			ProductCount: t.ProductCount,
			TotalValue:   t.TotalValue,
			Products:     dto.FromProducts(bySub[t.SubWarehouse]),
		})
	}
	return out, nil
}

// Export genera el reporte indicado en PDF o Excel.
func (uc *ReportUseCase) Export(ctx context.Context, actor entity.Actor, name, format string) (*dto.FileResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	renderer, ok := uc.renderers[format]
	if !ok {
		return nil, domain.NewValidationError("format", "formato no soportado: use pdf o xlsx")
	}
	doc, err := uc.document(ctx, actor, name)
	if err != nil {
		return nil, err
	}
	doc.GeneratedAt = uc.ledger.Display().Format(uc.now())
	content, err := renderer.Render(*doc)
	if err != nil {
		return nil, fmt.Errorf("render %s %s: %w", name, format, err)
	}
	return &dto.FileResponse{
		Name:        doc.FileName + "." + format,
		ContentType: contentTypes[format],
		Content:     content,
	}, nil
}

func (uc *ReportUseCase) document(ctx context.Context, actor entity.Actor, name string) (*dto.ReportDocument, error) {
	switch name {
	case ReportInventory:
		return uc.inventoryDocument(ctx)
	case ReportLedger:
		return uc.ledgerDocument(ctx)
	case ReportLowStock:
		items, err := uc.LowStock(ctx, actor)
		if err != nil {
			return nil, err
		}
		return productTableDocument("PRODUCTOS CON STOCK BAJO", "Cantidad igual o menor al stock mínimo", "Stock_Bajo", "Reporte_Stock_Bajo", items), nil
	case ReportIngresses:
		groups, err := uc.IngressReport(ctx, actor)
		if err != nil {
			return nil, err
		}
		return ingressDocument(groups), nil
	case ReportEgressesByRequester:
		groups, err := uc.EgressesByRequester(ctx, actor)
		if err != nil {
			return nil, err
		}
		return egressDocument("REPORTE DE SALIDAS", "Historial de retiros por funcionario", "Salidas", "Reporte_Salidas", groups, true), nil
	case ReportEgressesByProduct:
		groups, err := uc.EgressesByProduct(ctx, actor)
		if err != nil {
			return nil, err
		}
		return egressDocument("SALIDAS POR PRODUCTO", "Detalle de movimientos por ítem", "Por_Item", "Reporte_Por_Item", groups, false), nil
	case ReportTopStocked:
		items, err := uc.TopStocked(ctx, actor)
		if err != nil {
			return nil, err
		}
		return rankingDocument("PRODUCTOS CON MAYOR STOCK", fmt.Sprintf("Top %d por cantidad disponible", uc.topN), "Top_Stock", "Reporte_Top_Stock", "Cantidad", items), nil
	case ReportTopConsumed:
		items, err := uc.TopConsumed(ctx, actor)
		if err != nil {
			return nil, err
		}
		return rankingDocument("PRODUCTOS MÁS RETIRADOS", fmt.Sprintf("Top %d por cantidad total de salidas", uc.topN), "Top_Salidas", "Reporte_Top_Salidas", "Total retirado", items), nil
	case ReportValuation:
		locations, err := uc.Valuation(ctx, actor)
		if err != nil {
			return nil, err
		}
		return valuationDocument(locations), nil
	}
	return nil, domain.ErrNotFound
}

func (uc *ReportUseCase) inventoryDocument(ctx context.Context) (*dto.ReportDocument, error) {
	products, err := uc.productRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	display := uc.ledger.Display()
	rows := make([][]any, 0, len(products))
	total := decimal.Zero
	for _, p := range products {
		rows = append(rows, []any{
			p.Code, p.Name, p.Quantity, dto.Bs(p.Price), dto.Bs(p.TotalValue()), p.Supplier,
			display.Local(p.CreatedAt).Format("02/01/2006"), string(p.SubWarehouse), p.Unit,
		})
		total = total.Add(p.TotalValue())
	}
	return &dto.ReportDocument{
		Title:     "INVENTARIO GENERAL",
		Subtitle:  "Estado actual del almacén",
		SheetName: "Inventario",
		FileName:  "Reporte_Inventario",
		Landscape: true,
		Sections: []dto.ReportSection{{
			Columns: []string{"Código", "Nombre", "Cantidad", "Precio", "Total", "Proveedor", "Fecha", "Subalmacén", "Unidad"},
			Widths:  []int{1, 3, 1, 1, 1, 1, 1, 2, 1},
			Rows:    rows,
			Footer:  "Valor total: " + numfmt.Amount(total) + " Bs",
		}},
	}, nil
}

func (uc *ReportUseCase) ledgerDocument(ctx context.Context) (*dto.ReportDocument, error) {
	movs, err := uc.ledger.Movements(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(movs))
	for _, m := range movs {
		rows = append(rows, []any{
			m.Timestamp.Format(inventory.DisplayLayout), m.Type, m.ProductCode, m.ProductName, m.Quantity, m.Actor, m.Detail,
		})
	}
	return &dto.ReportDocument{
		Title:     "HISTORIAL DE MOVIMIENTOS",
		Subtitle:  "Kardex completo de operaciones",
		SheetName: "Historial_Kardex",
		FileName:  "Historial_Completo",
		Landscape: true,
		Sections: []dto.ReportSection{{
			Columns: []string{"Fecha y Hora (Bolivia)", "Tipo", "Código", "Producto", "Cantidad", "Registrado Por", "Detalle"},
			Widths:  []int{2, 1, 1, 3, 1, 2, 2},
			Rows:    rows,
		}},
	}, nil
}

func (uc *ReportUseCase) egressGroups(ctx context.Context, actor entity.Actor, key func(dto.EgressLineItem) string) ([]dto.EgressGroup, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	var (
		egresses []*entity.Egress
		products []*entity.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		egresses, err = uc.egressRepo.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = uc.productRepo.List(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	productByID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	display := uc.ledger.Display()
	index := make(map[string]int)
	groups := make([]dto.EgressGroup, 0)
	for _, e := range egresses {
		item := dto.EgressLineItem{
			ID:            e.ID,
			RequesterName: e.RequesterName,
			RequesterCode: e.RequesterCode,
			Quantity:      e.Quantity,
			UnitPrice:     e.UnitPrice,
			Total:         e.Total(),
			Timestamp:     display.Format(e.CreatedAt),
		}
		if p := productByID[e.ProductID]; p != nil {
			item.ProductCode = p.Code
			item.ProductName = p.Name
		}
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, dto.EgressGroup{Key: k, TotalQuantity: decimal.Zero, TotalAmount: decimal.Zero})
		}
		groups[i].TotalQuantity = groups[i].TotalQuantity.Add(item.Quantity)
		groups[i].TotalAmount = groups[i].TotalAmount.Add(item.Total)
		groups[i].Items = append(groups[i].Items, item)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, nil
}

func productTableDocument(title, subtitle, sheet, file string, items []dto.ProductResponse) *dto.ReportDocument {
	rows := make([][]any, 0, len(items))
	for _, p := range items {
		rows = append(rows, []any{p.Code, p.Name, p.Quantity, p.MinStock, p.Unit, p.SubWarehouse})
	}
	return &dto.ReportDocument{
		Title:     title,
		Subtitle:  subtitle,
		SheetName: sheet,
		FileName:  file,
		Sections: []dto.ReportSection{{
			Columns: []string{"Código", "Nombre", "Cantidad", "Stock Mínimo", "Unidad", "Subalmacén"},
			Widths:  []int{2, 4, 1, 2, 1, 2},
			Rows:    rows,
		}},
	}
}

func ingressDocument(groups []dto.IngressGroup) *dto.ReportDocument {
	sections := make([]dto.ReportSection, 0, len(groups))
	for _, g := range groups {
		rows := make([][]any, 0, len(g.Items))
		for _, it := range g.Items {
			rows = append(rows, []any{it.Timestamp, g.ProductCode, it.Quantity, it.Actor})
		}
		sections = append(sections, dto.ReportSection{
			Heading: g.ProductName,
			Columns: []string{"Fecha", "Código", "Cantidad", "Registrado Por"},
			Widths:  []int{3, 2, 2, 5},
			Rows:    rows,
			Footer:  "Total ingresado: " + numfmt.Quantity(g.Total),
		})
	}
	return &dto.ReportDocument{
		Title:     "REPORTE DE INGRESOS",
		Subtitle:  "Historial de entradas al almacén",
		SheetName: "Ingresos",
		FileName:  "Reporte_Ingresos",
		Sections:  sections,
	}
}

func egressDocument(title, subtitle, sheet, file string, groups []dto.EgressGroup, byRequester bool) *dto.ReportDocument {
	sections := make([]dto.ReportSection, 0, len(groups))
	for _, g := range groups {
		rows := make([][]any, 0, len(g.Items))
		for _, it := range g.Items {
			who := it.ProductName
			if !byRequester {
				who = it.RequesterName
			}
			rows = append(rows, []any{it.Timestamp, it.ProductCode, who, it.Quantity, dto.Bs(it.UnitPrice), dto.Bs(it.Total)})
		}
		third := "Producto"
		footer := "Total: " + numfmt.Amount(g.TotalAmount) + " Bs"
		if !byRequester {
			third = "Funcionario"
			footer = "Cantidad total: " + numfmt.Quantity(g.TotalQuantity)
		}
		sections = append(sections, dto.ReportSection{
			Heading: g.Key,
			Columns: []string{"Fecha", "Código", third, "Cantidad", "Precio (Bs)", "Total (Bs)"},
			Widths:  []int{2, 2, 3, 1, 2, 2},
			Rows:    rows,
			Footer:  footer,
		})
	}
	return &dto.ReportDocument{
		Title:     title,
		Subtitle:  subtitle,
		SheetName: sheet,
		FileName:  file,
		Sections:  sections,
	}
}

func rankingDocument(title, subtitle, sheet, file, valueColumn string, items []dto.RankedProduct) *dto.ReportDocument {
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{it.Rank, it.ProductCode, it.ProductName, it.Value, it.Unit})
	}
	return &dto.ReportDocument{
		Title:     title,
		Subtitle:  subtitle,
		SheetName: sheet,
		FileName:  file,
		Sections: []dto.ReportSection{{
			Columns: []string{"#", "Código", "Producto", valueColumn, "Unidad"},
			Widths:  []int{1, 2, 5, 2, 2},
			Rows:    rows,
		}},
	}
}

func valuationDocument(locations []dto.LocationValuationResponse) *dto.ReportDocument {
	sections := make([]dto.ReportSection, 0, len(locations))
	for _, loc := range locations {
		rows := make([][]any, 0, len(loc.Products))
		for _, p := range loc.Products {
			rows = append(rows, []any{p.Code, p.Name, p.Quantity, dto.Bs(p.Price), dto.Bs(p.TotalValue)})
		}
		sections = append(sections, dto.ReportSection{
			Heading: loc.SubWarehouse,
			Columns: []string{"Código", "Nombre", "Cantidad", "Precio (Bs)", "Total (Bs)"},
			Widths:  []int{2, 4, 2, 2, 2},
			Rows:    rows,
			Footer:  fmt.Sprintf("%d productos, valor total: %s Bs", loc.ProductCount, numfmt.Amount(loc.TotalValue)),
		})
	}
	return &dto.ReportDocument{
		Title:     "POR SUBALMACÉN",
		Subtitle:  "Inventario valorado por ubicación",
		SheetName: "Por_Subalmacen",
		FileName:  "Reporte_Por_Subalmacen",
		Sections:  sections,
	}
}
