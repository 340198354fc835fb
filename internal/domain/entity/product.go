package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del almacén con su stock acumulado.
// Quantity es el total corriente: suma de ingresos menos suma de salidas.
type Product struct {
	ID           string
	Code         string // único en todo el almacén
	Name         string
	Quantity     decimal.Decimal
	Price        decimal.Decimal // precio unitario en Bs
	Supplier     string
	MinStock     decimal.Decimal
	SubWarehouse SubWarehouse
	Unit         string
	Diameter     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TotalValue valor del stock actual (cantidad * precio).
func (p *Product) TotalValue() decimal.Decimal {
	return p.Quantity.Mul(p.Price)
}

// NeedsAlert true si la cantidad llegó al stock mínimo o por debajo.
func (p *Product) NeedsAlert() bool {
	return p.Quantity.LessThanOrEqual(p.MinStock)
}

// MaxDecimals decimales que guardan las columnas NUMERIC(14, 2) de cantidades y precios.
const MaxDecimals = 2

// FitsScale true si d no tiene más de MaxDecimals decimales significativos.
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MaxDecimals))
}

// Clone copia superficial; todos los campos son valores.
func (p *Product) Clone() *Product {
	c := *p
	return &c
}
