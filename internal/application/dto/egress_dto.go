package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EgressRequest entrada para registrar o editar una salida.
type EgressRequest struct {
	ProductID     string          `json:"product_id" form:"product_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity" form:"quantity" validate:"gte=0.01,decimals"`
	RequesterName string          `json:"requester_name" form:"requester_name" validate:"required,max=100"`
	RequesterCode string          `json:"requester_code" form:"requester_code" validate:"required,max=50"`
}

// EgressResponse salida de una salida de stock.
type EgressResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	RequesterName string          `json:"requester_name"`
	RequesterCode string          `json:"requester_code"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Total         decimal.Decimal `json:"total"`
	Attachment    string          `json:"attachment,omitempty"`
	UserID        *string         `json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementResponse fila del Kardex.
type MovementResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Timestamp   string          `json:"timestamp"` // DD/MM/YYYY HH:MM, ya ajustado
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Actor       string          `json:"actor"`
	Detail      string          `json:"detail"`
}
