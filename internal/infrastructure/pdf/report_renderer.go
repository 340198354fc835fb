// Package pdf dibuja los reportes del almacén en PDF con Maroto v2.
//
// Layout de cada página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + subtítulo      │  Fecha de generación     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SECCIÓN: encabezado de grupo (opcional)                    │
//	│  TABLA: cabecera azul + filas alternadas                    │
//	│  PIE DE SECCIÓN: totales                                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: nombre del sistema              Página X de Y      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/pkg/numfmt"
)

// FooterText leyenda al pie de cada página.
const FooterText = "Sistema de Control de Pozos y Estaciones (SCPE)"

const gridSize = 12

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorZebra   = &props.Color{Red: 240, Green: 244, Blue: 248}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// ReportRenderer implementa usecase.ReportRenderer usando Maroto v2.
type ReportRenderer struct {
	author string
}

// NewReportRenderer construye el renderer; author va a los metadatos del PDF.
func NewReportRenderer(author string) *ReportRenderer {
	return &ReportRenderer{author: author}
}

// Render genera el PDF y devuelve sus bytes.
func (r *ReportRenderer) Render(doc dto.ReportDocument) ([]byte, error) {
	builder := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(doc.Title, true).
		WithAuthor(r.author, true).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   colorGray,
		})
	if doc.Landscape {
		builder = builder.WithOrientation(orientation.Horizontal)
	}

	m := maroto.New(builder.Build())
	if err := m.RegisterHeader(headerRows(doc)...); err != nil {
		return nil, fmt.Errorf("pdf: registrar encabezado: %w", err)
	}
	if err := m.RegisterFooter(footerRow()); err != nil {
		return nil, fmt.Errorf("pdf: registrar pie: %w", err)
	}

	for _, section := range doc.Sections {
		m.AddRows(sectionRows(section)...)
	}
	if len(doc.Sections) == 0 || emptyReport(doc.Sections) {
		m.AddRows(row.New(10).Add(col.New(gridSize).Add(
			text.New("Sin registros", props.Text{Size: 9, Align: align.Center, Color: colorGray, Top: 3}),
		)))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRows: título y subtítulo (izq), fecha de generación (der), línea azul.
func headerRows(doc dto.ReportDocument) []core.Row {
	return []core.Row{
		row.New(16).Add(
			col.New(8).Add(
				text.New(doc.Title, props.Text{
					Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
				}),
				text.New(doc.Subtitle, props.Text{
					Size: 9, Top: 9, Color: colorGray,
				}),
			),
			col.New(4).Add(
				text.New("Generado: "+doc.GeneratedAt, props.Text{
					Size: 8, Align: align.Right, Top: 9, Color: colorGray,
				}),
			),
		),
		line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}),
		row.New(2),
	}
}

func footerRow() core.Row {
	return row.New(6).Add(col.New(gridSize).Add(
		text.New(FooterText, props.Text{Size: 7, Color: colorGray, Top: 2}),
	))
}

// sectionRows: encabezado del grupo, cabecera de tabla, filas alternadas y pie de totales.
func sectionRows(s dto.ReportSection) []core.Row {
	widths := columnWidths(s)
	rows := make([]core.Row, 0, len(s.Rows)+4)

	if s.Heading != "" {
		rows = append(rows, row.New(8).Add(col.New(gridSize).Add(
			text.New(s.Heading, props.Text{Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 2}),
		)))
	}

	header := row.New(7).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
	for i, label := range s.Columns {
		header.Add(col.New(widths[i]).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Color: colorWhite, Top: 1.5, Left: 1, Right: 1,
		})))
	}
	rows = append(rows, header)

	for n, cells := range s.Rows {
		r := row.New(6)
		if n%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: colorZebra})
		}
		for i := range s.Columns {
			var cell any
			if i < len(cells) {
				cell = cells[i]
			}
			value, numeric := formatCell(cell)
			a := align.Left
			if numeric {
				a = align.Right
			}
			r.Add(col.New(widths[i]).Add(text.New(value, props.Text{
				Size: 7.5, Align: a, Top: 1, Left: 1, Right: 1,
			})))
		}
		rows = append(rows, r)
	}

	if s.Footer != "" {
		rows = append(rows,
			line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}),
			row.New(7).Add(col.New(gridSize).Add(
				text.New(s.Footer, props.Text{Style: fontstyle.Bold, Size: 8.5, Align: align.Right, Color: colorPrimary, Top: 1}),
			)),
		)
	}
	rows = append(rows, row.New(4))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// columnWidths usa Widths si suma la grilla completa; si no, reparte en partes iguales
// y entrega el resto a la última columna.
func columnWidths(s dto.ReportSection) []int {
	n := len(s.Columns)
	if n == 0 {
		return nil
	}
	if len(s.Widths) == n {
		sum := 0
		for _, w := range s.Widths {
			sum += w
		}
		if sum == gridSize {
			return s.Widths
		}
	}
	widths := make([]int, n)
	base := gridSize / n
	if base == 0 {
		base = 1
	}
	used := 0
	for i := range widths {
		widths[i] = base
		used += base
	}
	if used < gridSize {
		widths[n-1] += gridSize - used
	}
	return widths
}

// formatCell texto de la celda y si es numérica (alineada a la derecha).
func formatCell(v any) (string, bool) {
	switch c := v.(type) {
	case nil:
		return "", false
	case string:
		return c, false
	case int:
		return strconv.Itoa(c), true
	case decimal.Decimal:
		return numfmt.Quantity(c), true
	case dto.Money:
		return numfmt.Amount(c.Value), true
	case fmt.Stringer:
		return c.String(), false
	default:
		return fmt.Sprint(c), false
	}
}

func emptyReport(sections []dto.ReportSection) bool {
	for _, s := range sections {
		if len(s.Rows) > 0 {
			return false
		}
	}
	return true
}
