package excel

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

// Columnas reconocidas (normalizadas: minúsculas, sin tildes).
const (
	colCode     = "codigo"
	colName     = "nombre"
	colQuantity = "cantidad"
	colPrice    = "precio"
	colSub      = "subalmacen"
	colUnit     = "unidad"
	colSupplier = "proveedor"
	colMinStock = "stock minimo"
	colDiameter = "diametro"
)

var requiredColumns = []string{colCode, colName, colQuantity, colPrice, colSub, colUnit}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrUnsupportedFormat extensión distinta de .xlsx o .csv.
var ErrUnsupportedFormat = errors.New("formato no soportado: use .xlsx o .csv")

// ProductReader implementa inventory.ProductSheetReader para .xlsx (primera hoja) y .csv.
type ProductReader struct{}

// NewProductReader construye el lector.
func NewProductReader() *ProductReader { return &ProductReader{} }

// ReadProducts lee la cabecera y convierte cada fila. Las filas con errores de conversión
// vuelven en la segunda lista con su número de fila (la cabecera es la fila 1).
func (p *ProductReader) ReadProducts(filename string, r io.Reader) ([]dto.ImportRow, []dto.ImportRowError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("leer archivo: %w", err)
	}
	var records [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		records, err = xlsxRecords(data)
	case ".csv":
		records, err = csvRecords(data)
	default:
		return nil, nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, errors.New("el archivo está vacío")
	}
	index, err := headerIndex(records[0])
	if err != nil {
		return nil, nil, err
	}

	rows := make([]dto.ImportRow, 0, len(records)-1)
	var rowErrs []dto.ImportRowError
	for i, rec := range records[1:] {
		line := i + 2
		get := func(col string) string {
			pos, ok := index[col]
			if !ok || pos >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[pos])
		}
		if get(colCode) == "" {
			continue
		}
		row, reason := convertRow(line, get)
		if reason != "" {
			rowErrs = append(rowErrs, dto.ImportRowError{Line: line, Reason: reason})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func convertRow(line int, get func(string) string) (dto.ImportRow, string) {
	row := dto.ImportRow{
		Line:         line,
		Code:         get(colCode),
		Name:         get(colName),
		SubWarehouse: get(colSub),
		Unit:         get(colUnit),
		Supplier:     get(colSupplier),
		Diameter:     get(colDiameter),
	}
	var err error
	if row.Quantity, err = parseNumber(get(colQuantity)); err != nil {
		return row, "Cantidad: " + err.Error()
	}
	if row.Price, err = parseNumber(get(colPrice)); err != nil {
		return row, "Precio: " + err.Error()
	}
	if raw := get(colMinStock); raw != "" {
		v, err := parseNumber(raw)
		if err != nil {
			return row, "Stock Mínimo: " + err.Error()
		}
		row.MinStock = &v
	}
	return row, ""
}

// parseNumber acepta "12.5", "12,5" y "1.234,50".
func parseNumber(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return decimal.Zero, errors.New("valor vacío")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q no es un número", raw)
	}
	return v, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := index[key]; !dup && key != "" {
			index[key] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("faltan columnas: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

// normalizeHeader "Subalmacén " -> "subalmacen"; "Stock_Mínimo" -> "stock minimo".
func normalizeHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, h)
	if err != nil {
		s = h
	}
	s = strings.ToLower(strings.TrimSpace(strings.Trim(s, "\"'\t")))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

func xlsxRecords(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("abrir xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("el archivo no tiene hojas")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", sheet, err)
	}
	return rows, nil
}

// csvRecords acepta UTF-8 (con o sin BOM) y, si no es UTF-8 válido, Windows-1252.
// El separador es ';' cuando la cabecera tiene más ';' que ','.
func csvRecords(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("decodificar csv: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}
	return records, nil
}

func detectDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}
