package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Egress registro de salida de stock entregada a un solicitante.
type Egress struct {
	ID            string
	ProductID     string
	Quantity      decimal.Decimal
	RequesterName string
	RequesterCode string          // identificador libre (ficha, carnet), no es FK
	UnitPrice     decimal.Decimal // precio del producto al momento de la salida
	Attachment    string
	UserID        *string
	CreatedAt     time.Time
}

// Total valor de la salida con el precio capturado.
func (e *Egress) Total() decimal.Decimal {
	return e.Quantity.Mul(e.UnitPrice)
}
