package http_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	apphttp "github.com/jhoicas/almacen-api/internal/interfaces/http"
)

func egressInput(qty string) dto.EgressRequest {
	return dto.EgressRequest{
		ProductID:     "p-1",
		Quantity:      decimal.RequireFromString(qty),
		RequesterName: "Juan Pérez",
		RequesterCode: "F-100",
	}
}

func TestValidator_SalidaMasDeDosDecimales(t *testing.T) {
	v := apphttp.NewValidator()

	err := v.Struct(egressInput("0.015"))
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{"quantity": "máximo 2 decimales"}, verr.Fields)

	assert.NoError(t, v.Struct(egressInput("0.01")))
	assert.NoError(t, v.Struct(egressInput("12.50")))
	assert.NoError(t, v.Struct(egressInput("3.000")))
}

func TestValidator_ProductoMasDeDosDecimales(t *testing.T) {
	v := apphttp.NewValidator()
	minStock := decimal.RequireFromString("1.001")
	in := dto.ProductRequest{
		Code:         "P-001",
		Name:         "Válvula",
		Quantity:     decimal.RequireFromString("10.5"),
		Price:        decimal.RequireFromString("0.125"),
		MinStock:     &minStock,
		SubWarehouse: "SCPE",
		Unit:         "pieza",
	}

	err := v.Struct(in)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "máximo 2 decimales", verr.Fields["price"])
	assert.Equal(t, "máximo 2 decimales", verr.Fields["min_stock"])
	assert.NotContains(t, verr.Fields, "quantity")

	in.Price = decimal.RequireFromString("0.12")
	in.MinStock = nil
	assert.NoError(t, v.Struct(in))
}
