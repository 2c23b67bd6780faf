// Package money formats naira amounts and quantities for operator-facing text.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const nairaSign = "₦"

// Round rounds half away from zero to places decimals.
func Round(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// Sum adds values without accumulating binary rounding error.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

func grouped(value float64, places int) string {
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(value, number.Scale(places)))
}

// Naira renders an amount as ₦1,234.50. Negative amounts carry a leading minus.
func Naira(amount float64) string {
	rounded := decimal.NewFromFloat(amount).Round(2)
	if rounded.IsNegative() {
		return "-" + nairaSign + grouped(rounded.Neg().InexactFloat64(), 2)
	}
	return nairaSign + grouped(rounded.InexactFloat64(), 2)
}

// Kg renders a mass as 1,234.50 kg.
func Kg(quantity float64) string {
	return grouped(Round(quantity, 2), 2) + " kg"
}

// Liters renders a volume as 1,234.50 L.
func Liters(volume float64) string {
	return grouped(Round(volume, 2), 2) + " L"
}

// Percent renders a percentage with one decimal, e.g. 87.5%.
func Percent(value float64) string {
	return grouped(Round(value, 1), 1) + "%"
}
