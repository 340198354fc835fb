package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del Kardex.
const (
	MovementTypeIngress = "INGRESO"
	MovementTypeEgress  = "SALIDA"
)

// Movement fila del Kardex: vista unificada de un Ingress o un Egress.
// Timestamp ya viene ajustado a la hora local de presentación.
type Movement struct {
	ID          string
	Type        string
	Timestamp   time.Time
	ProductID   string
	ProductCode string
	ProductName string
	Quantity    decimal.Decimal
	Actor       string
	Detail      string
}
