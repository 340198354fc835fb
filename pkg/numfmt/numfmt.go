// Package numfmt formatea cantidades y montos con la convención boliviana
// (punto de miles, coma decimal).
package numfmt

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Spanish)

// Amount monto con dos decimales: 12345.5 -> "12.345,50".
func Amount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", f)
}

// Quantity cantidad sin ceros sobrantes: 12.50 -> "12,5"; 15000 -> "15.000".
func Quantity(d decimal.Decimal) string {
	places := -d.Exponent()
	if places < 0 {
		places = 0
	}
	r := d.Round(places)
	for places > 0 && r.Equal(r.Round(places-1)) {
		places--
	}
	f, _ := r.Float64()
	return printer.Sprintf(fmt.Sprintf("%%.%df", places), f)
}
