// Package fixedpoint converts decimal strings reported by the quote provider into
// scaled integers and back. Prices and ratios are persisted as integers because the
// record store cannot represent decimals reliably:
//
//	$24.10  -> 2410    (ScaleCurrency)
//	12.84%  -> 1284    (ScaleCurrency, ratio already expressed in percent)
//	0.1284  -> 1284    (ScalePercent, fraction expressed as 0-1)
package fixedpoint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	// ScaleCurrency is used for prices and plain ratios (two decimal places).
	ScaleCurrency int64 = 100

	// ScalePercent is used for fractional percentages reported as 0-1 values.
	ScalePercent int64 = 10000
)

// ErrParse is returned when the input is neither numeric nor one of the
// provider's "not available" sentinels.
var ErrParse = errors.New("fixedpoint: value is not numeric")

// notAvailable lists the values the provider uses in place of a missing number.
var notAvailable = map[string]struct{}{
	"None": {},
	"":     {},
	"-":    {},
}

// EncodeCurrency encodes a decimal string with ScaleCurrency.
//
// Example:
//
//	EncodeCurrency("406.78")   // 40678
//	EncodeCurrency("148.3400") // 14834
//	EncodeCurrency("None")     // 0
func EncodeCurrency(value string) (int64, error) {
	return Encode(value, ScaleCurrency)
}

// DecodeCurrency converts a ScaleCurrency integer back into a display value.
func DecodeCurrency(value int64) float64 {
	return Decode(value, ScaleCurrency)
}

// Encode multiplies the decimal value by scale and truncates toward zero.
// The multiplication is exact, so "148.34" encodes to 14834 rather than the
// 14833 a binary float product would truncate to.
func Encode(value string, scale int64) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if _, ok := notAvailable[trimmed]; ok {
		return 0, nil
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, value)
	}

	return d.Mul(decimal.NewFromInt(scale)).Truncate(0).IntPart(), nil
}

// Decode divides a scaled integer by scale.
func Decode(value, scale int64) float64 {
	return float64(value) / float64(scale)
}

// FormatUSD renders a ScaleCurrency amount for display, e.g. "$1,234.56".
func FormatUSD(cents int64) string {
	return money.New(cents, money.USD).Display()
}

// MarketCapBillions formats a raw market capitalization (an integer string in
// dollars) in billions with one decimal place: "160300990464" -> "160.3B".
// A nil or unparseable value renders as "-".
func MarketCapBillions(raw *string) string {
	if raw == nil {
		return "-"
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return "-"
	}
	return d.Shift(-9).StringFixed(1) + "B"
}
