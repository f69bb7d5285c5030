package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Code is an ISO 4217 currency code from the supported set.
type Code string

// BaseCurrency is the currency every aggregate is reported in.
const BaseCurrency Code = "BRL"

const (
	BRL Code = "BRL"
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	CAD Code = "CAD"
	AUD Code = "AUD"
	CHF Code = "CHF"
	JPY Code = "JPY"
	CLP Code = "CLP"
	ARS Code = "ARS"
	UYU Code = "UYU"
	COP Code = "COP"
	PEN Code = "PEN"
)

// Supported lists the currencies an expense may be recorded in.
var Supported = []Code{BRL, USD, EUR, GBP, CAD, AUD, CHF, JPY, CLP, ARS, UYU, COP, PEN}

// Normalize upper-cases and trims a raw code.
func Normalize(raw string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsSupported reports whether code belongs to Supported.
func IsSupported(code string) bool {
	c := Normalize(code)
	for _, s := range Supported {
		if s == c {
			return true
		}
	}
	return false
}

// approximate BRL value of one unit, used when the quote API is unreachable
var fallbackRates = map[Code]decimal.Decimal{
	USD: decimal.RequireFromString("6.00"),
	EUR: decimal.RequireFromString("6.30"),
	GBP: decimal.RequireFromString("7.50"),
	CAD: decimal.RequireFromString("4.20"),
	AUD: decimal.RequireFromString("3.80"),
	CHF: decimal.RequireFromString("6.50"),
	JPY: decimal.RequireFromString("0.04"),
	CLP: decimal.RequireFromString("0.0063"),
	ARS: decimal.RequireFromString("0.0060"),
	UYU: decimal.RequireFromString("0.14"),
	COP: decimal.RequireFromString("0.0014"),
	PEN: decimal.RequireFromString("1.60"),
}

// FallbackRate returns the static rate for code. BRL and unknown codes yield 1.
func FallbackRate(code Code) decimal.Decimal {
	if rate, ok := fallbackRates[code]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}
