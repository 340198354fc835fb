package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingress registro de entrada de stock. No se modifica después de creado.
type Ingress struct {
	ID         string
	ProductID  string
	Quantity   decimal.Decimal
	Attachment string  // ruta opaca devuelta por el storage; vacío si no hay
	UserID     *string // nil = registro histórico sin usuario
	CreatedAt  time.Time
}
