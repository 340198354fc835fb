package numfmt_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/almacen-api/pkg/numfmt"
)

func TestAmount(t *testing.T) {
	assert.Equal(t, "12.345,50", numfmt.Amount(decimal.RequireFromString("12345.5")))
	assert.Equal(t, "0,00", numfmt.Amount(decimal.Zero))
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, "12,5", numfmt.Quantity(decimal.RequireFromString("12.50")))
	assert.Equal(t, "15.000", numfmt.Quantity(decimal.NewFromInt(15000)))
	assert.Equal(t, "0,01", numfmt.Quantity(decimal.RequireFromString("0.01")))
}
