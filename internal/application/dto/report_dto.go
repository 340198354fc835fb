package dto

import "github.com/shopspring/decimal"

// ReportDocument contenido tabular de un reporte listo para exportar a PDF o Excel.
// Los renderizadores no aplican lógica de negocio: solo dibujan lo que viene aquí.
type ReportDocument struct {
	Title       string
	Subtitle    string
	SheetName   string
	FileName    string // sin extensión
	GeneratedAt string // ya formateado en hora local
	Landscape   bool
	Sections    []ReportSection
}

// ReportSection tabla de un reporte; Heading vacío significa una tabla única sin título.
// Widths suma 12 (grilla de columnas del PDF); nil reparte en partes iguales.
// Las celdas son string, int, decimal.Decimal (cantidad) o Money: el Excel guarda números
// y el PDF los formatea.
type ReportSection struct {
	Heading string
	Columns []string
	Widths  []int
	Rows    [][]any
	Footer  string
}

// Money monto en Bs dentro de una celda de reporte (siempre con 2 decimales).
type Money struct {
	Value decimal.Decimal
}

// Bs envuelve un monto para una celda.
func Bs(v decimal.Decimal) Money { return Money{Value: v} }

// FileResponse archivo generado para descarga.
type FileResponse struct {
	Name        string
	ContentType string
	Content     []byte
}

// IngressGroup entradas de un mismo producto.
type IngressGroup struct {
	ProductName string            `json:"product_name"`
	ProductCode string            `json:"product_code"`
	Total       decimal.Decimal   `json:"total"`
	Items       []IngressLineItem `json:"items"`
}

// IngressLineItem una entrada dentro del reporte.
type IngressLineItem struct {
	ID        string          `json:"id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Timestamp string          `json:"timestamp"`
	Actor     string          `json:"actor"`
}

// EgressGroup salidas agrupadas por solicitante o por producto.
type EgressGroup struct {
	Key           string           `json:"key"`
	TotalQuantity decimal.Decimal  `json:"total_quantity"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	Items         []EgressLineItem `json:"items"`
}

// EgressLineItem una salida dentro del reporte.
type EgressLineItem struct {
	ID            string          `json:"id"`
	ProductCode   string          `json:"product_code"`
	ProductName   string          `json:"product_name"`
	RequesterName string          `json:"requester_name"`
	RequesterCode string          `json:"requester_code"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Total         decimal.Decimal `json:"total"`
	Timestamp     string          `json:"timestamp"`
}

// RankedProduct producto en un top-N con el valor que lo ordena.
type RankedProduct struct {
	Rank        int             `json:"rank"`
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Value       decimal.Decimal `json:"value"`
}

// LocationValuationResponse valorización de un subalmacén con sus productos.
type LocationValuationResponse struct {
	SubWarehouse string            `json:"sub_warehouse"`
	ProductCount int               `json:"product_count"`
	TotalValue   decimal.Decimal   `json:"total_value"`
	Products     []ProductResponse `json:"products"`
}
