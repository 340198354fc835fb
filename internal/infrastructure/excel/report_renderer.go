// Package excel exporta reportes a .xlsx e importa planillas de productos (.xlsx y .csv).
package excel

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

const (
	defaultSheet = "Sheet1"
	maxSheetName = 31
	amountFormat = "#,##0.00"
	minColWidth  = 10
	maxColWidth  = 60
)

// ReportRenderer implementa usecase.ReportRenderer con excelize. Cada sección se escribe como
// tabla con cabecera en la misma hoja; el título del reporte va a las propiedades del libro.
type ReportRenderer struct {
	author string
}

// NewReportRenderer construye el renderer; author va a las propiedades del libro.
func NewReportRenderer(author string) *ReportRenderer {
	return &ReportRenderer{author: author}
}

type styles struct {
	header  int
	heading int
	footer  int
	amount  int
}

// Render genera el libro y devuelve sus bytes.
func (r *ReportRenderer) Render(doc dto.ReportDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(doc.SheetName)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("excel: nombrar hoja: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       doc.Title,
		Subject:     doc.Subtitle,
		Description: "Generado: " + doc.GeneratedAt,
		Creator:     r.author,
	}); err != nil {
		return nil, fmt.Errorf("excel: propiedades: %w", err)
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	widths := make(map[int]int)
	line := 1
	for _, s := range doc.Sections {
		if line > 1 {
			line++ // fila en blanco entre secciones
		}
		if s.Heading != "" {
			if err := setCell(f, sheet, 1, line, s.Heading, st.heading); err != nil {
				return nil, err
			}
			line++
		}
		for c, label := range s.Columns {
			if err := setCell(f, sheet, c+1, line, label, st.header); err != nil {
				return nil, err
			}
			trackWidth(widths, c+1, label)
		}
		line++
		for _, cells := range s.Rows {
			for c, v := range cells {
				value, style := cellValue(v, st)
				if err := setCell(f, sheet, c+1, line, value, style); err != nil {
					return nil, err
				}
				trackWidth(widths, c+1, fmt.Sprint(value))
			}
			line++
		}
		if s.Footer != "" {
			if err := setCell(f, sheet, 1, line, s.Footer, st.footer); err != nil {
				return nil, err
			}
			line++
		}
	}

	for c, w := range widths {
		name, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return nil, fmt.Errorf("excel: columna %d: %w", c, err)
		}
		if err := f.SetColWidth(sheet, name, name, float64(w)); err != nil {
			return nil, fmt.Errorf("excel: ancho de columna: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		st  styles
		err error
	)
	amount := amountFormat
	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"00467F"}, Pattern: 1},
	})
	if err != nil {
		return st, fmt.Errorf("excel: estilo cabecera: %w", err)
	}
	st.heading, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12, Color: "00467F"}})
	if err != nil {
		return st, fmt.Errorf("excel: estilo título: %w", err)
	}
	st.footer, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return st, fmt.Errorf("excel: estilo pie: %w", err)
	}
	st.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &amount})
	if err != nil {
		return st, fmt.Errorf("excel: estilo monto: %w", err)
	}
	return st, nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("excel: celda %d,%d: %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("excel: valor %s: %w", cell, err)
	}
	if style != 0 {
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("excel: estilo %s: %w", cell, err)
		}
	}
	return nil
}

// cellValue convierte la celda a un valor nativo: números como número, no como texto.
func cellValue(v any, st styles) (any, int) {
	switch c := v.(type) {
	case decimal.Decimal:
		return c.InexactFloat64(), 0
	case dto.Money:
		return c.Value.Round(2).InexactFloat64(), st.amount
	case nil:
		return "", 0
	default:
		return c, 0
	}
}

func trackWidth(widths map[int]int, col int, s string) {
	w := utf8.RuneCountInString(s) + 2
	if w < minColWidth {
		w = minColWidth
	}
	if w > maxColWidth {
		w = maxColWidth
	}
	if w > widths[col] {
		widths[col] = w
	}
}

func sheetName(name string) string {
	if name == "" {
		return "Reporte"
	}
	if utf8.RuneCountInString(name) > maxSheetName {
		return string([]rune(name)[:maxSheetName])
	}
	return name
}
