package dto

import "github.com/shopspring/decimal"

// ImportRow fila ya convertida de una planilla de importación.
// Line es el número de fila en el archivo (la cabecera es la 1).
type ImportRow struct {
	Line         int
	Code         string
	Name         string
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	SubWarehouse string
	Unit         string
	Supplier     string
	MinStock     *decimal.Decimal
	Diameter     string
}

// ImportRowError fila que no se pudo importar y el motivo.
type ImportRowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult resumen de una importación masiva.
type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors"`
}
